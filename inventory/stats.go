/*
stats.go - Per-item quantity and revenue series

PURPOSE:
  Groups the sale history by item name for charting. Revenue accumulates at
  full decimal precision and is rounded to two places once at the end, so
  per-record rounding drift cannot creep in.
*/
package inventory

import (
	"context"

	"github.com/shopspring/decimal"
)

// Summary holds the per-item series derived from the sale history.
type Summary struct {
	ByItemQuantity map[string]int
	ByItemRevenue  map[string]decimal.Decimal
}

// Summarize groups a sale history snapshot by item name.
func Summarize(sales []SaleRecord) Summary {
	quantities := make(map[string]int)
	revenues := make(map[string]decimal.Decimal)

	for _, sale := range sales {
		quantities[sale.ItemName] += sale.Quantity
		revenues[sale.ItemName] = revenues[sale.ItemName].Add(sale.LineTotal())
	}

	// Round once, after accumulation.
	for name, revenue := range revenues {
		revenues[name] = revenue.Round(2)
	}

	return Summary{ByItemQuantity: quantities, ByItemRevenue: revenues}
}

// Statistician fetches the sale history and summarizes it.
type Statistician struct {
	store SaleStore
}

func NewStatistician(store SaleStore) *Statistician {
	return &Statistician{store: store}
}

func (s *Statistician) Summarize(ctx context.Context) (Summary, error) {
	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return Summary{}, collaboratorErr("list sales", err)
	}
	return Summarize(sales), nil
}
