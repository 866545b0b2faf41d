/*
handlers.go - HTTP API handlers for the inventory engine

PURPOSE:
  Exposes the inventory and sales engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Items:
    GET    /api/items                List items
    POST   /api/items                Add item
    PUT    /api/items/{id}/price     Adjust unit price
    POST   /api/items/{id}/stock     Add stock
    DELETE /api/items/{id}           Delete item (renumbers ids)
    POST   /api/items/{id}/sales     Record a sale
    GET    /api/items/{id}/sales     Per-item sale history

  Sales & reporting:
    GET    /api/sales                Full sale history
    POST   /api/reports              Filtered report with totals
    GET    /api/stats                Per-item quantity/revenue series

  Directory:
    GET    /api/employees            List employees
    POST   /api/login                Credential check

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Duplicate name, insufficient stock, concurrent modification
  - 502: Record store unavailable
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/warp/inventory-engine/inventory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    inventory.Store
	Ledger   *inventory.StockLedger
	Sales    *inventory.SaleAggregator
	Reporter *inventory.Reporter
	Stats    *inventory.Statistician
}

// NewHandler creates a new handler over the given record store.
func NewHandler(store inventory.Store) *Handler {
	ledger := inventory.NewStockLedger(store)
	return &Handler{
		Store:    store,
		Ledger:   ledger,
		Sales:    inventory.NewSaleAggregator(ledger, store),
		Reporter: inventory.NewReporter(store),
		Stats:    inventory.NewStatistician(store),
	}
}

// =============================================================================
// ITEM HANDLERS
// =============================================================================

// ListItems returns the item collection.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Ledger.Items(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// AddItem creates a new item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_price (use a decimal string)", err)
		return
	}

	item, _, err := h.Ledger.AddItem(r.Context(), req.Name, price, req.Stock)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// AdjustPrice replaces an item's unit price.
func (h *Handler) AdjustPrice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AdjustPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_price (use a decimal string)", err)
		return
	}

	items, err := h.Ledger.AdjustPrice(r.Context(), id, price)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// AddStock increases an item's stock.
func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	items, err := h.Ledger.AddStock(r.Context(), id, req.Quantity)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// DeleteItem removes an item and returns the renumbered collection.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	items, err := h.Ledger.DeleteItem(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// =============================================================================
// SALE HANDLERS
// =============================================================================

// RecordSale deducts stock and folds the sale into the ledger.
func (h *Handler) RecordSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req RecordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var date inventory.Date
	if req.Date != "" {
		var err error
		if date, err = inventory.ParseDate(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	result, err := h.Sales.RecordSale(r.Context(), id, req.Quantity, req.EmployeeEmail, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SaleResultDTO{
		Sale:  toSaleDTO(result.Sale),
		Items: toItemDTOs(result.Items),
		Sales: toSaleDTOs(result.Sales),
	})
}

// ListSales returns the full sale history with employee names resolved.
func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	report, err := h.Reporter.Build(r.Context(), inventory.ReportCriteria{})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	lines := make([]SaleDTO, len(report.Lines))
	for i, line := range report.Lines {
		lines[i] = toReportLineDTO(line)
	}
	writeJSON(w, http.StatusOK, lines)
}

// ItemSales returns one item's sale history, newest day first then highest
// price first. Rows are already merged per (name, price, employee, day).
func (h *Handler) ItemSales(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := h.Reporter.Build(r.Context(), inventory.ReportCriteria{ItemID: id})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	lines := report.Lines
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].Date.Equal(lines[j].Date) {
			return lines[i].Date.After(lines[j].Date)
		}
		return lines[i].UnitPrice.GreaterThan(lines[j].UnitPrice)
	})

	dtos := make([]SaleDTO, len(lines))
	for i, line := range lines {
		dtos[i] = toReportLineDTO(line)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// REPORT & STATS HANDLERS
// =============================================================================

// BuildReport filters the sale history and computes totals over the
// filtered set.
func (h *Handler) BuildReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	criteria := inventory.ReportCriteria{
		ItemID:        req.ItemID,
		EmployeeEmail: req.EmployeeEmail,
	}
	var err error
	if req.From != "" {
		if criteria.From, err = inventory.ParseDate(req.From); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
			return
		}
	}
	if req.To != "" {
		if criteria.To, err = inventory.ParseDate(req.To); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
			return
		}
	}

	report, err := h.Reporter.Build(r.Context(), criteria)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// GetStats returns the per-item quantity and revenue series.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Stats.Summarize(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsDTO(summary))
}

// =============================================================================
// DIRECTORY HANDLERS
// =============================================================================

// ListEmployees returns the directory without password digests.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = EmployeeDTO{Email: e.Email, Name: e.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Login resolves an email and compares the password against the stored
// bcrypt digest. No session is issued; the caller keeps the identity.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "Failed to list employees", err)
		return
	}

	for _, e := range employees {
		if e.Email != req.Email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(e.PasswordDigest), []byte(req.Password)) != nil {
			break
		}
		writeJSON(w, http.StatusOK, EmployeeDTO{Email: e.Email, Name: e.Name})
		return
	}
	writeError(w, http.StatusUnauthorized, "Invalid email or password", nil)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors to HTTP statuses and stable codes.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "internal"

	switch {
	case errors.Is(err, inventory.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, inventory.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, inventory.ErrDuplicateName):
		status, code = http.StatusConflict, "duplicate_name"
	case errors.Is(err, inventory.ErrInsufficientStock):
		status, code = http.StatusConflict, "insufficient_stock"
	case errors.Is(err, inventory.ErrConcurrentModification):
		status, code = http.StatusConflict, "concurrent_modification"
	case errors.Is(err, inventory.ErrCollaborator):
		status, code = http.StatusBadGateway, "store_unavailable"
	}

	writeJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}
