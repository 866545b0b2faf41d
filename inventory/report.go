/*
report.go - Sale history filtering and totals

PURPOSE:
  Pure read-side transformation over fetched snapshots. Filters compose with
  logical AND; totals are computed over the filtered set only, never the
  full history. Ordering of the returned lines is the ledger's natural order
  - sorting is a presentation concern.

SEE ALSO:
  - stats.go: Per-item grouping over the full history
*/
package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// unknownEmployee is the display name for sales whose employee email has no
// directory entry.
const unknownEmployee = "Unknown"

// ReportCriteria restricts the sale history. Zero-valued fields are inactive;
// active filters compose with AND.
type ReportCriteria struct {
	// ItemID restricts to sales whose item name matches the named item,
	// case-insensitively.
	ItemID string

	// EmployeeEmail restricts to sales by that employee.
	EmployeeEmail string

	// From/To restrict to sales with date in [From, To], inclusive. Either
	// bound may be zero for an open end.
	From Date
	To   Date
}

// ReportLine is a sale annotated with its line total and the resolved
// employee display name.
type ReportLine struct {
	SaleRecord
	EmployeeName string
	LineTotal    decimal.Decimal
}

// Report is the filtered sale sequence with its aggregates.
type Report struct {
	Lines         []ReportLine
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

// BuildReport filters and aggregates a sale history snapshot. The item and
// employee snapshots resolve the item filter and the display names.
func BuildReport(items []Item, employees []Employee, sales []SaleRecord, criteria ReportCriteria) (Report, error) {
	itemName := ""
	if criteria.ItemID != "" {
		item, ok := findItem(items, criteria.ItemID)
		if !ok {
			return Report{}, fmt.Errorf("item %s: %w", criteria.ItemID, ErrNotFound)
		}
		itemName = item.Name
	}

	names := employeeNames(employees)

	report := Report{
		Lines:        []ReportLine{},
		TotalRevenue: decimal.Zero,
	}
	for _, sale := range sales {
		if itemName != "" && !strings.EqualFold(sale.ItemName, itemName) {
			continue
		}
		if criteria.EmployeeEmail != "" && sale.EmployeeEmail != criteria.EmployeeEmail {
			continue
		}
		if !criteria.From.IsZero() && sale.Date.Before(criteria.From) {
			continue
		}
		if !criteria.To.IsZero() && sale.Date.After(criteria.To) {
			continue
		}

		line := ReportLine{
			SaleRecord:   sale,
			EmployeeName: names[sale.EmployeeEmail],
			LineTotal:    sale.LineTotal(),
		}
		if line.EmployeeName == "" {
			line.EmployeeName = unknownEmployee
		}
		report.Lines = append(report.Lines, line)
		report.TotalQuantity += sale.Quantity
		report.TotalRevenue = report.TotalRevenue.Add(line.LineTotal)
	}
	return report, nil
}

func employeeNames(employees []Employee) map[string]string {
	names := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.Email] = e.Name
	}
	return names
}

// =============================================================================
// REPORTER - Fetches snapshots and delegates to the pure transformation
// =============================================================================

type Reporter struct {
	store Store
}

func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Build fetches the current snapshots and builds the report.
func (r *Reporter) Build(ctx context.Context, criteria ReportCriteria) (Report, error) {
	items, err := r.store.ListItems(ctx)
	if err != nil {
		return Report{}, collaboratorErr("list items", err)
	}
	employees, err := r.store.ListEmployees(ctx)
	if err != nil {
		return Report{}, collaboratorErr("list employees", err)
	}
	sales, err := r.store.ListSales(ctx)
	if err != nil {
		return Report{}, collaboratorErr("list sales", err)
	}
	return BuildReport(items, employees, sales, criteria)
}
