/*
sales.go - Sale recording and same-day merge logic

PURPOSE:
  The SaleAggregator is the only writer of the sale ledger. Recording a sale
  is a two-phase intent: deduct stock first, then merge-or-create the sale
  record. Repeated sales of the same item, at the same price, by the same
  employee, on the same day collapse into one ledger row by quantity
  summation - business-equivalent to one larger sale, and it keeps the
  ledger from growing unboundedly under point-of-sale usage.

ORDERING:
  The stock deduction is committed before the sale write is issued. A crash
  between the two leaves "stock decremented, sale not recorded"
  (under-reporting), which is safer to reconcile manually than a recorded
  sale with phantom inventory. Retrying the sale merges idempotently into
  the same merge-key row; the engine never auto-corrects.

SEE ALSO:
  - ledger.go: DeductStock with optimistic concurrency
  - report.go: Read-side filtering over the sale ledger
*/
package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MERGE KEY - Identifies sales that combine rather than duplicate
// =============================================================================

// MergeKey is the tuple identifying a sale ledger row. At most one SaleRecord
// exists per key at any time.
type MergeKey struct {
	ItemName      string
	UnitPrice     decimal.Decimal
	EmployeeEmail string
	Date          Date
}

// MergeKeyOf extracts the merge key of an existing record.
func MergeKeyOf(s SaleRecord) MergeKey {
	return MergeKey{
		ItemName:      s.ItemName,
		UnitPrice:     s.UnitPrice,
		EmployeeEmail: s.EmployeeEmail,
		Date:          s.Date,
	}
}

// Matches reports whether a record belongs to this key. Prices compare by
// value, so "10" and "10.00" are the same price.
func (k MergeKey) Matches(s SaleRecord) bool {
	return s.ItemName == k.ItemName &&
		s.UnitPrice.Equal(k.UnitPrice) &&
		s.EmployeeEmail == k.EmployeeEmail &&
		s.Date.Equal(k.Date)
}

// FindMergeTarget returns the existing record for a key, if any.
func FindMergeTarget(sales []SaleRecord, key MergeKey) (SaleRecord, bool) {
	for _, s := range sales {
		if key.Matches(s) {
			return s, true
		}
	}
	return SaleRecord{}, false
}

// =============================================================================
// SALE AGGREGATOR
// =============================================================================

// SaleResult carries the refreshed snapshots after a recorded sale.
type SaleResult struct {
	Sale  SaleRecord
	Items []Item
	Sales []SaleRecord
}

// SaleAggregator decides merge-vs-create for incoming sales and keeps the
// item collection in step through the stock ledger.
type SaleAggregator struct {
	ledger *StockLedger
	store  Store
}

func NewSaleAggregator(ledger *StockLedger, store Store) *SaleAggregator {
	return &SaleAggregator{ledger: ledger, store: store}
}

// RecordSale deducts stock for the item and folds the sale into the ledger.
// A zero date means today.
func (a *SaleAggregator) RecordSale(ctx context.Context, itemID string, quantity int, employeeEmail string, date Date) (SaleResult, error) {
	if quantity <= 0 {
		return SaleResult{}, &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	if employeeEmail == "" {
		return SaleResult{}, &ValidationError{Field: "employeeEmail", Message: "must not be empty"}
	}
	if date.IsZero() {
		date = Today()
	}

	// Snapshot the item before deduction: the sale row carries the name and
	// price as they were at the moment of sale.
	items, err := a.ledger.Items(ctx)
	if err != nil {
		return SaleResult{}, err
	}
	item, ok := findItem(items, itemID)
	if !ok {
		return SaleResult{}, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}
	if quantity > item.StockCount {
		return SaleResult{}, &InsufficientStockError{
			ItemName:  item.Name,
			Available: item.StockCount,
			Requested: quantity,
		}
	}

	// Phase 1: deduction, committed before any sale write. A failure here
	// aborts the whole operation with no orphaned sale record.
	refreshedItems, err := a.ledger.DeductStock(ctx, itemID, quantity)
	if err != nil {
		return SaleResult{}, err
	}

	// Phase 2: merge-or-create against the current sale history.
	sales, err := a.store.ListSales(ctx)
	if err != nil {
		return SaleResult{}, collaboratorErr("list sales", err)
	}

	key := MergeKey{
		ItemName:      item.Name,
		UnitPrice:     item.UnitPrice,
		EmployeeEmail: employeeEmail,
		Date:          date,
	}

	var sale SaleRecord
	if existing, found := FindMergeTarget(sales, key); found {
		existing.Quantity += quantity
		if err := a.store.UpdateSale(ctx, existing.ID, existing); err != nil {
			return SaleResult{}, collaboratorErr("update sale", err)
		}
		sale = existing
	} else {
		ids := make([]string, len(sales))
		for i, s := range sales {
			ids[i] = s.ID
		}
		sale = SaleRecord{
			ID:            NextID(ids),
			ItemName:      item.Name,
			Quantity:      quantity,
			UnitPrice:     item.UnitPrice,
			EmployeeEmail: employeeEmail,
			Date:          date,
		}
		created, err := a.store.CreateSale(ctx, sale)
		if err != nil {
			return SaleResult{}, collaboratorErr("create sale", err)
		}
		sale = created
	}

	refreshedSales, err := a.store.ListSales(ctx)
	if err != nil {
		return SaleResult{}, collaboratorErr("list sales", err)
	}

	return SaleResult{Sale: sale, Items: refreshedItems, Sales: refreshedSales}, nil
}

// Sales returns the current sale history from the store.
func (a *SaleAggregator) Sales(ctx context.Context) ([]SaleRecord, error) {
	sales, err := a.store.ListSales(ctx)
	if err != nil {
		return nil, collaboratorErr("list sales", err)
	}
	return sales, nil
}
