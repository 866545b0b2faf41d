/*
store.go - Record-store collaborator interface

PURPOSE:
  Defines the narrow contract between the engine and the external record
  store. Per collection (items, sales, employees) the store exposes list,
  create, update, and delete; each call is all-or-nothing from the engine's
  point of view.

OPTIMISTIC CONCURRENCY:
  Multiple independent clients may operate against the same store with no
  transactional isolation. Every item mutation therefore goes through
  CompareAndSwapItem, conditioned on the previously-read record. A store
  that detects a mismatch returns ErrStoreConflict and the ledger retries
  with a fresh read.

IMPLEMENTATIONS:
  - inventory/store/memory.go: In-memory, for testing/dev
  - store/sqlite/sqlite.go:    Production SQLite (true conditional UPDATE)
  - store/rest/rest.go:        Sheet-style HTTP record store

SEE ALSO:
  - ledger.go: The only writer of items
  - sales.go: The only writer of sales
*/
package inventory

import "context"

// ItemStore persists the item collection.
type ItemStore interface {
	// ListItems returns the current item collection.
	ListItems(ctx context.Context) ([]Item, error)

	// CreateItem appends an item. The id is assigned by the caller before
	// submission.
	CreateItem(ctx context.Context, item Item) (Item, error)

	// UpdateItem replaces the full record keyed by id.
	UpdateItem(ctx context.Context, id string, item Item) error

	// CompareAndSwapItem replaces the record keyed by expected.ID only if the
	// stored stock count and unit price still match the expected record.
	// Returns ErrStoreConflict when the record changed since it was read, and
	// ErrNotFound when it no longer exists.
	CompareAndSwapItem(ctx context.Context, expected, updated Item) error

	// DeleteItem removes the record keyed by id.
	DeleteItem(ctx context.Context, id string) error
}

// SaleStore persists the sale ledger. Sales are never deleted by normal
// operation; merges are full-record updates keyed by id.
type SaleStore interface {
	ListSales(ctx context.Context) ([]SaleRecord, error)
	CreateSale(ctx context.Context, sale SaleRecord) (SaleRecord, error)
	UpdateSale(ctx context.Context, id string, sale SaleRecord) error
}

// EmployeeStore reads the employee directory. The engine never writes it.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// Store is the full record-store collaborator.
type Store interface {
	ItemStore
	SaleStore
	EmployeeStore
}
