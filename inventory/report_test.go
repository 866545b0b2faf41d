package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/inventory-engine/inventory"
	memstore "github.com/warp/inventory-engine/inventory/store"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func reportFixture() ([]inventory.Item, []inventory.Employee, []inventory.SaleRecord) {
	items := []inventory.Item{
		{ID: "1", Name: "Aspirin", UnitPrice: price("10.00"), StockCount: 100},
		{ID: "2", Name: "Paracetamol", UnitPrice: price("8.50"), StockCount: 80},
	}
	employees := []inventory.Employee{
		{Email: "alice@example.com", Name: "Alice Demir"},
		{Email: "bob@example.com", Name: "Bob Yilmaz"},
	}
	sales := []inventory.SaleRecord{
		{ID: "1", ItemName: "Aspirin", Quantity: 10, UnitPrice: price("10.00"), EmployeeEmail: "alice@example.com", Date: march(10)},
		{ID: "2", ItemName: "Aspirin", Quantity: 5, UnitPrice: price("10.00"), EmployeeEmail: "bob@example.com", Date: march(11)},
		{ID: "3", ItemName: "Paracetamol", Quantity: 4, UnitPrice: price("8.50"), EmployeeEmail: "alice@example.com", Date: march(12)},
		{ID: "4", ItemName: "Paracetamol", Quantity: 2, UnitPrice: price("8.50"), EmployeeEmail: "carol@example.com", Date: march(14)},
	}
	return items, employees, sales
}

// =============================================================================
// FILTERING
// =============================================================================

func TestBuildReport_NoCriteria_ReturnsEverything(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{})

	require.NoError(t, err)
	require.Len(t, report.Lines, 4)
	assert.Equal(t, 21, report.TotalQuantity)
	assert.Equal(t, "201.00", report.TotalRevenue.StringFixed(2))
}

func TestBuildReport_ItemFilter_MatchesNameCaseInsensitively(t *testing.T) {
	items, employees, sales := reportFixture()
	sales = append(sales, inventory.SaleRecord{
		ID: "5", ItemName: "ASPIRIN", Quantity: 1, UnitPrice: price("10.00"),
		EmployeeEmail: "alice@example.com", Date: march(15),
	})

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{ItemID: "1"})

	require.NoError(t, err)
	require.Len(t, report.Lines, 3, "historical rows with a differently-cased name still count")
	assert.Equal(t, 16, report.TotalQuantity)
	assert.Equal(t, "160.00", report.TotalRevenue.StringFixed(2))
}

func TestBuildReport_UnknownItemFilter_NotFound(t *testing.T) {
	items, employees, sales := reportFixture()

	_, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{ItemID: "99"})

	require.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestBuildReport_EmployeeFilter_ExactEmail(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{
		EmployeeEmail: "alice@example.com",
	})

	require.NoError(t, err)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, 14, report.TotalQuantity)
	assert.Equal(t, "134.00", report.TotalRevenue.StringFixed(2))
}

func TestBuildReport_DateRange_InclusiveBothEnds(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{
		From: march(11),
		To:   march(12),
	})

	require.NoError(t, err)
	require.Len(t, report.Lines, 2)
	assert.Equal(t, "2", report.Lines[0].ID)
	assert.Equal(t, "3", report.Lines[1].ID)
}

func TestBuildReport_OpenEndedDateRange(t *testing.T) {
	items, employees, sales := reportFixture()

	fromOnly, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{From: march(12)})
	require.NoError(t, err)
	assert.Len(t, fromOnly.Lines, 2)

	toOnly, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{To: march(11)})
	require.NoError(t, err)
	assert.Len(t, toOnly.Lines, 2)
}

func TestBuildReport_FiltersComposeWithAND(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{
		ItemID:        "2",
		EmployeeEmail: "alice@example.com",
		From:          march(1),
		To:            march(31),
	})

	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "3", report.Lines[0].ID)
	assert.Equal(t, 4, report.TotalQuantity)
	assert.Equal(t, "34.00", report.TotalRevenue.StringFixed(2))
}

func TestBuildReport_NoMatches_EmptyLinesZeroTotals(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{
		EmployeeEmail: "nobody@example.com",
	})

	require.NoError(t, err)
	assert.NotNil(t, report.Lines)
	assert.Empty(t, report.Lines)
	assert.Equal(t, 0, report.TotalQuantity)
	assert.True(t, report.TotalRevenue.IsZero())
}

// =============================================================================
// ANNOTATION
// =============================================================================

func TestBuildReport_ResolvesEmployeeNames(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{})

	require.NoError(t, err)
	assert.Equal(t, "Alice Demir", report.Lines[0].EmployeeName)
	assert.Equal(t, "Bob Yilmaz", report.Lines[1].EmployeeName)
	assert.Equal(t, "Unknown", report.Lines[3].EmployeeName,
		"missing directory entry falls back to a placeholder, the row is kept")
}

func TestBuildReport_LineTotals(t *testing.T) {
	items, employees, sales := reportFixture()

	report, err := inventory.BuildReport(items, employees, sales, inventory.ReportCriteria{})

	require.NoError(t, err)
	assert.Equal(t, "100.00", report.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "34.00", report.Lines[2].LineTotal.StringFixed(2))
}

// =============================================================================
// REPORTER
// =============================================================================

func TestReporter_Build_UsesLiveSnapshots(t *testing.T) {
	store := memstore.NewMemory()
	ledger := inventory.NewStockLedger(store)
	agg := inventory.NewSaleAggregator(ledger, store)
	ctx := context.Background()

	item := mustAddItem(t, ledger, "Aspirin", "10.00", 100)
	require.NoError(t, store.SaveEmployee(ctx, inventory.Employee{
		Email: "alice@example.com", Name: "Alice Demir",
	}))
	_, err := agg.RecordSale(ctx, item.ID, 10, "alice@example.com", march(10))
	require.NoError(t, err)

	report, err := inventory.NewReporter(store).Build(ctx, inventory.ReportCriteria{ItemID: item.ID})

	require.NoError(t, err)
	require.Len(t, report.Lines, 1)
	assert.Equal(t, "Alice Demir", report.Lines[0].EmployeeName)
	assert.Equal(t, "100.00", report.TotalRevenue.StringFixed(2))
}

func TestReporter_Build_StoreFailureIsCollaboratorError(t *testing.T) {
	broken := &brokenSaleStore{Store: memstore.NewMemory()}

	_, err := inventory.NewReporter(broken).Build(context.Background(), inventory.ReportCriteria{})

	require.ErrorIs(t, err, inventory.ErrCollaborator)
}
