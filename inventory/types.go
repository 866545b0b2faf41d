/*
Package inventory provides the core inventory and sales reconciliation engine.

PURPOSE:
  This package contains the rules governing how a sale mutates stock, how
  near-duplicate sales on the same day collapse into a single ledger entry,
  how record identifiers stay densely numbered after deletion, and how raw
  sale records are filtered and aggregated into reports and statistics.

KEY CONCEPTS IN THIS FILE (types.go):
  - Item: A stock-keeping entry with name, unit price, and quantity on hand
  - SaleRecord: A ledger entry for sales; merged in place for same-day repeats
  - Employee: Read-only directory record used to resolve emails to names
  - Date: A calendar day (the granularity of the sale ledger)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal for prices to avoid floating-point errors
  2. Dense IDs: Record ids are contiguous numeric strings "1".."N"
  3. Store as truth: In-memory snapshots are refreshed from the store after
     every mutation; computed state is never assumed authoritative

SEE ALSO:
  - ledger.go: Validated stock mutations
  - sales.go: Sale recording and merge-key logic
  - store.go: Record-store collaborator interface
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ITEM - Stock-keeping entry
// =============================================================================

type Item struct {
	ID         string
	Name       string
	UnitPrice  decimal.Decimal
	StockCount int
}

// =============================================================================
// SALE RECORD - One ledger row per merge key per day
// =============================================================================

type SaleRecord struct {
	ID            string
	ItemName      string
	Quantity      int
	UnitPrice     decimal.Decimal
	EmployeeEmail string
	Date          Date
}

// LineTotal returns quantity * unit price at full precision.
func (s SaleRecord) LineTotal() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// =============================================================================
// EMPLOYEE - External directory record, read-only to the engine
// =============================================================================

type Employee struct {
	Email          string
	Name           string
	PasswordDigest string
}

// =============================================================================
// DATE - Calendar day
// =============================================================================

// Date is a day-granular point in time. The sale ledger never needs finer
// resolution: the merge key and the report range both work in whole days.
type Date struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool  { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool  { return d.normalize().After(other.normalize()) }

func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) IsZero() bool { return d.Time.IsZero() }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string { return d.Time.Format(dateLayout) }
