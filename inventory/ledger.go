/*
ledger.go - Validated stock mutations over the item collection

PURPOSE:
  The StockLedger is the only writer of the item collection. Every mutation
  validates its input before touching the store, conditions its write on the
  previously-read record, and refreshes the snapshot from the store
  afterwards - the store is the source of truth, not the ledger's arithmetic.

CRITICAL INVARIANTS:
  1. stockCount >= 0 always; a deduction that would go below zero is rejected
     with the stock left unchanged (no partial deduction)
  2. unitPrice > 0 for every accepted record
  3. Item names are unique case-insensitively
  4. Item ids form a contiguous "1".."N" run; DeleteItem restores density

CONCURRENCY:
  Two clients can race for the last unit of stock. Every stock mutation is a
  compare-and-swap against the store, retried with a fresh read on conflict
  and bounded by a small retry budget before surfacing
  ErrConcurrentModification. The caller then re-fetches and retries the whole
  intent.

SEE ALSO:
  - idgen.go: NextID and Renumber
  - sales.go: Deducts stock through this ledger before writing sale records
*/
package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// casRetryBudget bounds the optimistic-concurrency retry loop. Exhaustion
// surfaces ErrConcurrentModification rather than spinning.
const casRetryBudget = 3

// StockLedger validates and applies mutations to the item collection.
type StockLedger struct {
	store Store
}

func NewStockLedger(store Store) *StockLedger {
	return &StockLedger{store: store}
}

// Items returns the current item collection from the store.
func (l *StockLedger) Items(ctx context.Context) ([]Item, error) {
	items, err := l.store.ListItems(ctx)
	if err != nil {
		return nil, collaboratorErr("list items", err)
	}
	return items, nil
}

// AddItem validates and appends a new item, allocating the next dense id.
// Returns the created item and the refreshed collection.
func (l *StockLedger) AddItem(ctx context.Context, name string, unitPrice decimal.Decimal, stockCount int) (Item, []Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Item{}, nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if !unitPrice.IsPositive() {
		return Item{}, nil, &ValidationError{Field: "unitPrice", Message: "must be greater than zero"}
	}
	if stockCount < 0 {
		return Item{}, nil, &ValidationError{Field: "stockCount", Message: "must not be negative"}
	}

	// The id lookup and the duplicate check share one snapshot. If the list
	// fails the whole operation fails: allocating from an unknown id space
	// can collide with a live record.
	items, err := l.store.ListItems(ctx)
	if err != nil {
		return Item{}, nil, collaboratorErr("list items", err)
	}
	for _, existing := range items {
		if strings.EqualFold(existing.Name, name) {
			return Item{}, nil, fmt.Errorf("item %q: %w", name, ErrDuplicateName)
		}
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	item := Item{
		ID:         NextID(ids),
		Name:       name,
		UnitPrice:  unitPrice,
		StockCount: stockCount,
	}
	created, err := l.store.CreateItem(ctx, item)
	if err != nil {
		return Item{}, nil, collaboratorErr("create item", err)
	}

	refreshed, err := l.Items(ctx)
	if err != nil {
		return Item{}, nil, err
	}
	return created, refreshed, nil
}

// AdjustPrice replaces an item's unit price.
func (l *StockLedger) AdjustPrice(ctx context.Context, itemID string, newPrice decimal.Decimal) ([]Item, error) {
	if !newPrice.IsPositive() {
		return nil, &ValidationError{Field: "unitPrice", Message: "must be greater than zero"}
	}
	return l.mutateItem(ctx, itemID, func(item Item) (Item, error) {
		item.UnitPrice = newPrice
		return item, nil
	})
}

// AddStock increases an item's stock by a positive integer quantity.
func (l *StockLedger) AddStock(ctx context.Context, itemID string, quantity int) ([]Item, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	return l.mutateItem(ctx, itemID, func(item Item) (Item, error) {
		item.StockCount += quantity
		return item, nil
	})
}

// DeductStock decreases an item's stock, rejecting any deduction that exceeds
// the current count. Stock is left unchanged on rejection.
func (l *StockLedger) DeductStock(ctx context.Context, itemID string, quantity int) ([]Item, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	return l.mutateItem(ctx, itemID, func(item Item) (Item, error) {
		if quantity > item.StockCount {
			return Item{}, &InsufficientStockError{
				ItemName:  item.Name,
				Available: item.StockCount,
				Requested: quantity,
			}
		}
		item.StockCount -= quantity
		return item, nil
	})
}

// DeleteItem removes an item and renumbers the remaining ids back to a dense
// "1".."N" run, persisting every id that changed.
func (l *StockLedger) DeleteItem(ctx context.Context, itemID string) ([]Item, error) {
	items, err := l.store.ListItems(ctx)
	if err != nil {
		return nil, collaboratorErr("list items", err)
	}
	if _, ok := findItem(items, itemID); !ok {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	if err := l.store.DeleteItem(ctx, itemID); err != nil {
		return nil, collaboratorErr("delete item", err)
	}

	remaining, err := l.store.ListItems(ctx)
	if err != nil {
		return nil, collaboratorErr("list items", err)
	}

	// Renumber in ascending numeric order so each shifted record moves into
	// an id slot that has already been vacated.
	assignment := Renumber(remaining)
	olds := make([]string, 0, len(assignment))
	for old := range assignment {
		olds = append(olds, old)
	}
	sort.Slice(olds, func(i, j int) bool { return numericID(olds[i]) < numericID(olds[j]) })

	for _, old := range olds {
		newID := assignment[old]
		// Each id rewrite is a conditional write like every other item
		// mutation: stock deducted by a concurrent sale after the post-delete
		// listing must survive the renumber.
		_, err := l.mutateItem(ctx, old, func(item Item) (Item, error) {
			item.ID = newID
			return item, nil
		})
		if err != nil {
			return nil, err
		}
	}

	return l.Items(ctx)
}

// mutateItem runs the optimistic compare-and-set loop: fresh read, validate,
// conditional write, retry on conflict.
func (l *StockLedger) mutateItem(ctx context.Context, itemID string, mutate func(Item) (Item, error)) ([]Item, error) {
	for attempt := 0; attempt < casRetryBudget; attempt++ {
		items, err := l.store.ListItems(ctx)
		if err != nil {
			return nil, collaboratorErr("list items", err)
		}
		item, ok := findItem(items, itemID)
		if !ok {
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		}

		updated, err := mutate(item)
		if err != nil {
			return nil, err
		}

		err = l.store.CompareAndSwapItem(ctx, item, updated)
		switch {
		case err == nil:
			return l.Items(ctx)
		case errors.Is(err, ErrStoreConflict):
			continue
		case errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
		default:
			return nil, collaboratorErr("update item", err)
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, ErrConcurrentModification)
}

func findItem(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
