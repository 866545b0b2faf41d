/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Money fields
  travel as strings so clients never see float artifacts.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ItemDTO represents an item in API responses.
type ItemDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Stock     int    `json:"stock"`
}

// AddItemRequest is the request to create an item.
type AddItemRequest struct {
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Stock     int    `json:"stock"`
}

// AdjustPriceRequest replaces an item's unit price.
type AdjustPriceRequest struct {
	UnitPrice string `json:"unit_price"`
}

// AddStockRequest increases an item's stock.
type AddStockRequest struct {
	Quantity int `json:"quantity"`
}

// RecordSaleRequest records a sale against an item. Date defaults to today.
type RecordSaleRequest struct {
	Quantity      int    `json:"quantity"`
	EmployeeEmail string `json:"employee_email"`
	Date          string `json:"date,omitempty"`
}

// SaleDTO represents a sale ledger row, annotated for display.
type SaleDTO struct {
	ID            string `json:"id"`
	ItemName      string `json:"item_name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	LineTotal     string `json:"line_total"`
	EmployeeEmail string `json:"employee_email"`
	EmployeeName  string `json:"employee_name,omitempty"`
	Date          string `json:"date"`
}

// SaleResultDTO carries the refreshed snapshots after a recorded sale.
type SaleResultDTO struct {
	Sale  SaleDTO   `json:"sale"`
	Items []ItemDTO `json:"items"`
	Sales []SaleDTO `json:"sales"`
}

// ReportRequest selects the sale history slice to aggregate. All fields are
// optional and compose with AND.
type ReportRequest struct {
	ItemID        string `json:"item_id,omitempty"`
	EmployeeEmail string `json:"employee_email,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
}

// ReportDTO is the filtered sale sequence with its aggregates.
type ReportDTO struct {
	Lines         []SaleDTO `json:"lines"`
	TotalQuantity int       `json:"total_quantity"`
	TotalRevenue  string    `json:"total_revenue"`
}

// StatsDTO holds the per-item series for charting.
type StatsDTO struct {
	ByItemQuantity map[string]int    `json:"by_item_quantity"`
	ByItemRevenue  map[string]string `json:"by_item_revenue"`
}

// EmployeeDTO represents a directory entry. Password digests never leave the
// server.
type EmployeeDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginRequest is the credential-check request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toItemDTO(it inventory.Item) ItemDTO {
	return ItemDTO{
		ID:        it.ID,
		Name:      it.Name,
		UnitPrice: it.UnitPrice.StringFixed(2),
		Stock:     it.StockCount,
	}
}

func toItemDTOs(items []inventory.Item) []ItemDTO {
	dtos := make([]ItemDTO, len(items))
	for i, it := range items {
		dtos[i] = toItemDTO(it)
	}
	return dtos
}

func toSaleDTO(s inventory.SaleRecord) SaleDTO {
	return SaleDTO{
		ID:            s.ID,
		ItemName:      s.ItemName,
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPrice.StringFixed(2),
		LineTotal:     s.LineTotal().StringFixed(2),
		EmployeeEmail: s.EmployeeEmail,
		Date:          s.Date.String(),
	}
}

func toSaleDTOs(sales []inventory.SaleRecord) []SaleDTO {
	dtos := make([]SaleDTO, len(sales))
	for i, s := range sales {
		dtos[i] = toSaleDTO(s)
	}
	return dtos
}

func toReportLineDTO(line inventory.ReportLine) SaleDTO {
	dto := toSaleDTO(line.SaleRecord)
	dto.EmployeeName = line.EmployeeName
	dto.LineTotal = line.LineTotal.StringFixed(2)
	return dto
}

func toReportDTO(report inventory.Report) ReportDTO {
	lines := make([]SaleDTO, len(report.Lines))
	for i, line := range report.Lines {
		lines[i] = toReportLineDTO(line)
	}
	return ReportDTO{
		Lines:         lines,
		TotalQuantity: report.TotalQuantity,
		TotalRevenue:  report.TotalRevenue.StringFixed(2),
	}
}

func toStatsDTO(summary inventory.Summary) StatsDTO {
	revenues := make(map[string]string, len(summary.ByItemRevenue))
	for name, revenue := range summary.ByItemRevenue {
		revenues[name] = revenue.StringFixed(2)
	}
	return StatsDTO{
		ByItemQuantity: summary.ByItemQuantity,
		ByItemRevenue:  revenues,
	}
}
