// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	items     map[string]inventory.Item
	sales     map[string]inventory.SaleRecord
	employees map[string]inventory.Employee
}

func NewMemory() *Memory {
	return &Memory{
		items:     make(map[string]inventory.Item),
		sales:     make(map[string]inventory.SaleRecord),
		employees: make(map[string]inventory.Employee),
	}
}

// -----------------------------------------------------------------------------
// Items
// -----------------------------------------------------------------------------

func (m *Memory) ListItems(_ context.Context) ([]inventory.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.Item, 0, len(m.items))
	for _, it := range m.items {
		result = append(result, it)
	}
	sortByNumericID(result, func(it inventory.Item) string { return it.ID })
	return result, nil
}

func (m *Memory) CreateItem(_ context.Context, item inventory.Item) (inventory.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = item
	return item, nil
}

func (m *Memory) UpdateItem(_ context.Context, id string, item inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return inventory.ErrNotFound
	}
	// Full-record replace; the id may change during renumbering.
	delete(m.items, id)
	m.items[item.ID] = item
	return nil
}

func (m *Memory) CompareAndSwapItem(_ context.Context, expected, updated inventory.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[expected.ID]
	if !ok {
		return inventory.ErrNotFound
	}
	if current.StockCount != expected.StockCount || !current.UnitPrice.Equal(expected.UnitPrice) {
		return inventory.ErrStoreConflict
	}
	if updated.ID != expected.ID {
		delete(m.items, expected.ID)
	}
	m.items[updated.ID] = updated
	return nil
}

func (m *Memory) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return inventory.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// -----------------------------------------------------------------------------
// Sales
// -----------------------------------------------------------------------------

func (m *Memory) ListSales(_ context.Context) ([]inventory.SaleRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.SaleRecord, 0, len(m.sales))
	for _, s := range m.sales {
		result = append(result, s)
	}
	sortByNumericID(result, func(s inventory.SaleRecord) string { return s.ID })
	return result, nil
}

func (m *Memory) CreateSale(_ context.Context, sale inventory.SaleRecord) (inventory.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales[sale.ID] = sale
	return sale, nil
}

func (m *Memory) UpdateSale(_ context.Context, id string, sale inventory.SaleRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sales[id]; !ok {
		return inventory.ErrNotFound
	}
	delete(m.sales, id)
	m.sales[sale.ID] = sale
	return nil
}

// -----------------------------------------------------------------------------
// Employees
// -----------------------------------------------------------------------------

func (m *Memory) ListEmployees(_ context.Context) ([]inventory.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]inventory.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// SaveEmployee upserts a directory record. Test and dev seeding only; the
// engine itself never writes employees.
func (m *Memory) SaveEmployee(_ context.Context, e inventory.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.Email] = e
	return nil
}

func sortByNumericID[T any](records []T, id func(T) string) {
	sort.Slice(records, func(i, j int) bool {
		return numeric(id(records[i])) < numeric(id(records[j]))
	})
}

func numeric(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return 0
	}
	return n
}
