/*
Package sqlite provides a SQLite-backed implementation of the record store.

PURPOSE:
  Implements inventory.Store using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  items:     id (dense numeric string), name (unique, case-insensitive),
             unit_price (decimal text), stock
  sales:     one row per merge key per day
  employees: read-only directory (email, name, password digest)

OPTIMISTIC CONCURRENCY:
  CompareAndSwapItem is a true conditional write:
  UPDATE ... WHERE id=? AND stock=? AND unit_price=? with a RowsAffected
  check. A zero count distinguishes a vanished row (ErrNotFound) from a
  changed one (ErrStoreConflict).

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  st, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
  ledger := inventory.NewStockLedger(st)

SEE ALSO:
  - inventory/store.go: Interface definition
  - inventory/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

// Store implements inventory.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL COLLATE NOCASE UNIQUE,
		unit_price TEXT NOT NULL,
		stock INTEGER NOT NULL CHECK (stock >= 0)
	);

	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price TEXT NOT NULL,
		employee_email TEXT NOT NULL,
		sale_date TEXT NOT NULL
	);

	-- Merge-target lookup (hot path of RecordSale)
	CREATE INDEX IF NOT EXISTS idx_sales_merge_key
		ON sales(item_name, employee_email, sale_date);

	CREATE TABLE IF NOT EXISTS employees (
		email TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		password_digest TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ITEMS
// =============================================================================

func (s *Store) ListItems(ctx context.Context) ([]inventory.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit_price, stock
		FROM items
		ORDER BY CAST(id AS INTEGER)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []inventory.Item
	for rows.Next() {
		var it inventory.Item
		var price string
		if err := rows.Scan(&it.ID, &it.Name, &price, &it.StockCount); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("item %s: bad unit_price %q: %w", it.ID, price, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *Store) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, unit_price, stock) VALUES (?, ?, ?, ?)`,
		item.ID, item.Name, item.UnitPrice.String(), item.StockCount)
	if err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

func (s *Store) UpdateItem(ctx context.Context, id string, item inventory.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET id = ?, name = ?, unit_price = ?, stock = ? WHERE id = ?`,
		item.ID, item.Name, item.UnitPrice.String(), item.StockCount, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

func (s *Store) CompareAndSwapItem(ctx context.Context, expected, updated inventory.Item) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE items SET id = ?, name = ?, unit_price = ?, stock = ?
		WHERE id = ? AND stock = ? AND unit_price = ?`,
		updated.ID, updated.Name, updated.UnitPrice.String(), updated.StockCount,
		expected.ID, expected.StockCount, expected.UnitPrice.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing matched: the row is gone or its stock changed since the read.
	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM items WHERE id = ?`, expected.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return inventory.ErrNotFound
	}
	return inventory.ErrStoreConflict
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

// =============================================================================
// SALES
// =============================================================================

func (s *Store) ListSales(ctx context.Context) ([]inventory.SaleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_name, quantity, unit_price, employee_email, sale_date
		FROM sales
		ORDER BY CAST(id AS INTEGER)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []inventory.SaleRecord
	for rows.Next() {
		var rec inventory.SaleRecord
		var price, date string
		if err := rows.Scan(&rec.ID, &rec.ItemName, &rec.Quantity, &price, &rec.EmployeeEmail, &date); err != nil {
			return nil, err
		}
		if rec.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sale %s: bad unit_price %q: %w", rec.ID, price, err)
		}
		if rec.Date, err = inventory.ParseDate(date); err != nil {
			return nil, fmt.Errorf("sale %s: bad sale_date %q: %w", rec.ID, date, err)
		}
		sales = append(sales, rec)
	}
	return sales, rows.Err()
}

func (s *Store) CreateSale(ctx context.Context, sale inventory.SaleRecord) (inventory.SaleRecord, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales (id, item_name, quantity, unit_price, employee_email, sale_date)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sale.ID, sale.ItemName, sale.Quantity, sale.UnitPrice.String(),
		sale.EmployeeEmail, sale.Date.String())
	if err != nil {
		return inventory.SaleRecord{}, err
	}
	return sale, nil
}

func (s *Store) UpdateSale(ctx context.Context, id string, sale inventory.SaleRecord) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sales SET id = ?, item_name = ?, quantity = ?, unit_price = ?,
			employee_email = ?, sale_date = ?
		WHERE id = ?`,
		sale.ID, sale.ItemName, sale.Quantity, sale.UnitPrice.String(),
		sale.EmployeeEmail, sale.Date.String(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrNotFound
	}
	return nil
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (s *Store) ListEmployees(ctx context.Context) ([]inventory.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, name, password_digest FROM employees ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []inventory.Employee
	for rows.Next() {
		var e inventory.Employee
		if err := rows.Scan(&e.Email, &e.Name, &e.PasswordDigest); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// SaveEmployee upserts a directory record. Used by seeding; the engine
// itself never writes employees.
func (s *Store) SaveEmployee(ctx context.Context, e inventory.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (email, name, password_digest) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name,
			password_digest = excluded.password_digest`,
		e.Email, e.Name, e.PasswordDigest)
	return err
}
