/*
Package rest provides a client for a sheet-style HTTP record store.

PURPOSE:
  Implements inventory.Store against a remote tab-per-collection REST store:

    GET    {base}/tabs/{Tab}          list records
    POST   {base}/tabs/{Tab}          create record
    PUT    {base}/tabs/{Tab}/id/{id}  full-record replace
    DELETE {base}/tabs/{Tab}/id/{id}  delete record

  Each call is all-or-nothing from the engine's point of view. Records are
  flat JSON rows with string-encoded prices, matching how spreadsheet-backed
  stores serialize cells.

TIMEOUTS:
  Every request carries the caller's context and the client enforces an
  overall per-request timeout. On timeout the operation is reported as
  failed without assuming either success or failure of the underlying
  write - the caller must re-fetch before retrying.

OPTIMISTIC CONCURRENCY:
  The transport has no conditional write, so CompareAndSwapItem re-reads the
  record and verifies the stock and price before issuing the PUT. The window
  between verify and PUT is a bounded race this transport cannot close; the
  SQLite store performs a true conditional update.

SEE ALSO:
  - inventory/store.go: Interface definition
  - store/sqlite/sqlite.go: Production local store
*/
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/inventory-engine/inventory"
)

const (
	tabItems     = "Items"
	tabSales     = "Sales"
	tabEmployees = "Employees"

	defaultTimeout = 10 * time.Second
)

// Client implements inventory.Store over a remote record store.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (testing, custom
// transports).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New creates a client for the record store at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// WIRE ROWS - Flat JSON with string-encoded numerics
// =============================================================================

type itemRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Stock     int    `json:"stock"`
}

type saleRow struct {
	ID            string `json:"id"`
	ItemName      string `json:"item_name"`
	Quantity      int    `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	EmployeeEmail string `json:"employee_email"`
	Date          string `json:"date"`
}

type employeeRow struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	PasswordDigest string `json:"password_digest"`
}

func toItemRow(it inventory.Item) itemRow {
	return itemRow{ID: it.ID, Name: it.Name, UnitPrice: it.UnitPrice.String(), Stock: it.StockCount}
}

func (r itemRow) toItem() (inventory.Item, error) {
	price, err := decimal.NewFromString(r.UnitPrice)
	if err != nil {
		return inventory.Item{}, fmt.Errorf("item %s: bad unit_price %q: %w", r.ID, r.UnitPrice, err)
	}
	return inventory.Item{ID: r.ID, Name: r.Name, UnitPrice: price, StockCount: r.Stock}, nil
}

func toSaleRow(s inventory.SaleRecord) saleRow {
	return saleRow{
		ID:            s.ID,
		ItemName:      s.ItemName,
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPrice.String(),
		EmployeeEmail: s.EmployeeEmail,
		Date:          s.Date.String(),
	}
}

func (r saleRow) toSale() (inventory.SaleRecord, error) {
	price, err := decimal.NewFromString(r.UnitPrice)
	if err != nil {
		return inventory.SaleRecord{}, fmt.Errorf("sale %s: bad unit_price %q: %w", r.ID, r.UnitPrice, err)
	}
	date, err := inventory.ParseDate(r.Date)
	if err != nil {
		return inventory.SaleRecord{}, fmt.Errorf("sale %s: bad date %q: %w", r.ID, r.Date, err)
	}
	return inventory.SaleRecord{
		ID:            r.ID,
		ItemName:      r.ItemName,
		Quantity:      r.Quantity,
		UnitPrice:     price,
		EmployeeEmail: r.EmployeeEmail,
		Date:          date,
	}, nil
}

// =============================================================================
// ITEMS
// =============================================================================

func (c *Client) ListItems(ctx context.Context) ([]inventory.Item, error) {
	var rows []itemRow
	if err := c.get(ctx, tabItems, &rows); err != nil {
		return nil, err
	}
	items := make([]inventory.Item, 0, len(rows))
	for _, r := range rows {
		it, err := r.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (c *Client) CreateItem(ctx context.Context, item inventory.Item) (inventory.Item, error) {
	if err := c.send(ctx, http.MethodPost, c.tabURL(tabItems), toItemRow(item)); err != nil {
		return inventory.Item{}, err
	}
	return item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id string, item inventory.Item) error {
	return c.send(ctx, http.MethodPut, c.recordURL(tabItems, id), toItemRow(item))
}

func (c *Client) CompareAndSwapItem(ctx context.Context, expected, updated inventory.Item) error {
	// Verify before write; the transport offers no conditional PUT.
	items, err := c.ListItems(ctx)
	if err != nil {
		return err
	}
	var current *inventory.Item
	for i := range items {
		if items[i].ID == expected.ID {
			current = &items[i]
			break
		}
	}
	if current == nil {
		return inventory.ErrNotFound
	}
	if current.StockCount != expected.StockCount || !current.UnitPrice.Equal(expected.UnitPrice) {
		return inventory.ErrStoreConflict
	}
	return c.send(ctx, http.MethodPut, c.recordURL(tabItems, expected.ID), toItemRow(updated))
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, c.recordURL(tabItems, id), nil)
}

// =============================================================================
// SALES
// =============================================================================

func (c *Client) ListSales(ctx context.Context) ([]inventory.SaleRecord, error) {
	var rows []saleRow
	if err := c.get(ctx, tabSales, &rows); err != nil {
		return nil, err
	}
	sales := make([]inventory.SaleRecord, 0, len(rows))
	for _, r := range rows {
		s, err := r.toSale()
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, nil
}

func (c *Client) CreateSale(ctx context.Context, sale inventory.SaleRecord) (inventory.SaleRecord, error) {
	if err := c.send(ctx, http.MethodPost, c.tabURL(tabSales), toSaleRow(sale)); err != nil {
		return inventory.SaleRecord{}, err
	}
	return sale, nil
}

func (c *Client) UpdateSale(ctx context.Context, id string, sale inventory.SaleRecord) error {
	return c.send(ctx, http.MethodPut, c.recordURL(tabSales, id), toSaleRow(sale))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (c *Client) ListEmployees(ctx context.Context) ([]inventory.Employee, error) {
	var rows []employeeRow
	if err := c.get(ctx, tabEmployees, &rows); err != nil {
		return nil, err
	}
	employees := make([]inventory.Employee, 0, len(rows))
	for _, r := range rows {
		employees = append(employees, inventory.Employee{
			Email:          r.Email,
			Name:           r.Name,
			PasswordDigest: r.PasswordDigest,
		})
	}
	return employees, nil
}

// =============================================================================
// TRANSPORT HELPERS
// =============================================================================

func (c *Client) tabURL(tab string) string {
	return fmt.Sprintf("%s/tabs/%s", c.baseURL, tab)
}

func (c *Client) recordURL(tab, id string) string {
	return fmt.Sprintf("%s/tabs/%s/id/%s", c.baseURL, tab, url.PathEscape(id))
}

func (c *Client) get(ctx context.Context, tab string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tabURL(tab), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", tab, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", tab, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", tab, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, rawURL string, body any) error {
	var payload *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(data)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return inventory.ErrNotFound
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: unexpected status %d", method, rawURL, resp.StatusCode)
	}
	return nil
}
