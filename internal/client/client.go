// Package client talks to the supply-chain API over HTTP and subscribes to its
// push topics over websocket.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"supplychain/internal/auth"
	"supplychain/internal/config"
	"supplychain/internal/forecast"
	"supplychain/internal/inventory"
	"supplychain/internal/models"
	"supplychain/internal/orders"
	"supplychain/internal/store"

	"github.com/gorilla/websocket"
)

// Client handles requests to the supply-chain API
type Client struct {
	httpClient *http.Client
	dialer     *websocket.Dialer
	BaseURL    string
	session    auth.Session
	now        func() time.Time
}

// New creates a client for cfg.BaseURL. A configured token starts an
// already-authenticated session.
func New(cfg config.ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		dialer:     &websocket.Dialer{HandshakeTimeout: timeout},
		BaseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		now:        time.Now,
	}
	if cfg.Token != "" {
		c.session = auth.Session{Token: cfg.Token}
	}
	return c
}

// WithSession returns a copy of the client acting for s
func (c *Client) WithSession(s auth.Session) *Client {
	cp := *c
	cp.session = s
	return &cp
}

// Session returns the session requests are made with
func (c *Client) Session() auth.Session {
	return c.session
}

// Login exchanges credentials for a token and returns the signed-in session.
// The client itself is unchanged; pass the session to WithSession.
func (c *Client) Login(ctx context.Context, username, password string) (auth.Session, error) {
	var token auth.Token
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &token); err != nil {
		return auth.Session{}, err
	}
	return c.session.Login(token), nil
}

// CheckHealth checks if the API is up and running
func (c *Client) CheckHealth(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil, nil)
}

// ListItems returns the items matching criteria. The server applies the same
// filter as inventory.Filter.
func (c *Client) ListItems(ctx context.Context, criteria inventory.Criteria) ([]models.Item, error) {
	q := url.Values{}
	if criteria.SearchTerm != "" {
		q.Set("search", criteria.SearchTerm)
	}
	if criteria.Category != "" {
		q.Set("category", criteria.Category)
	}
	if criteria.Status != "" {
		q.Set("status", string(criteria.Status))
	}
	items := []models.Item{}
	if err := c.do(ctx, http.MethodGet, "/api/items", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := c.do(ctx, http.MethodGet, "/api/items/"+url.PathEscape(id), nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem validates item locally and then creates it. The returned item
// carries the server-assigned id.
func (c *Client) CreateItem(ctx context.Context, item models.Item) (*models.Item, error) {
	if err := models.Validate(&item); err != nil {
		return nil, err
	}
	var created models.Item
	if err := c.do(ctx, http.MethodPost, "/api/items", nil, item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateItem validates item locally and then replaces the stored record
func (c *Client) UpdateItem(ctx context.Context, id string, item models.Item) (*models.Item, error) {
	if err := models.Validate(&item); err != nil {
		return nil, err
	}
	var updated models.Item
	if err := c.do(ctx, http.MethodPut, "/api/items/"+url.PathEscape(id), nil, item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/items/"+url.PathEscape(id), nil, nil, nil)
}

// AdjustItem changes an item's quantity by delta
func (c *Client) AdjustItem(ctx context.Context, id string, adj models.StockAdjustment) (*models.Item, error) {
	if err := models.Validate(&adj); err != nil {
		return nil, err
	}
	var item models.Item
	if err := c.do(ctx, http.MethodPost, "/api/items/"+url.PathEscape(id)+"/adjust", nil, adj, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// LowStock returns every item whose derived status is not in stock
func (c *Client) LowStock(ctx context.Context) ([]models.Item, error) {
	items := []models.Item{}
	if err := c.do(ctx, http.MethodGet, "/api/items/low-stock", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LowStockBelow returns items whose quantity is at or below threshold
func (c *Client) LowStockBelow(ctx context.Context, threshold int) ([]models.Item, error) {
	q := url.Values{"threshold": {strconv.Itoa(threshold)}}
	items := []models.Item{}
	if err := c.do(ctx, http.MethodGet, "/api/items/low-stock", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) StockOverview(ctx context.Context) (*inventory.Summary, error) {
	var summary inventory.Summary
	if err := c.do(ctx, http.MethodGet, "/api/items/stock-overview", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) Restock(ctx context.Context) (*forecast.Advice, error) {
	var advice forecast.Advice
	if err := c.do(ctx, http.MethodGet, "/api/items/restock", nil, nil, &advice); err != nil {
		return nil, err
	}
	return &advice, nil
}

// ListOrders returns the orders matching criteria
func (c *Client) ListOrders(ctx context.Context, criteria orders.Criteria) ([]models.Order, error) {
	q := url.Values{}
	if criteria.SearchTerm != "" {
		q.Set("search", criteria.SearchTerm)
	}
	if criteria.Status != "" {
		q.Set("status", criteria.Status)
	}
	if criteria.Customer != "" {
		q.Set("customer", criteria.Customer)
	}
	list := []models.Order{}
	if err := c.do(ctx, http.MethodGet, "/api/orders", q, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateOrder(ctx context.Context, order models.Order) (*models.Order, error) {
	if err := models.Validate(&order); err != nil {
		return nil, err
	}
	var created models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, order, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id string, order models.Order) (*models.Order, error) {
	if err := models.Validate(&order); err != nil {
		return nil, err
	}
	var updated models.Order
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+url.PathEscape(id), nil, order, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	list := []models.Customer{}
	if err := c.do(ctx, http.MethodGet, "/api/customers", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateCustomer(ctx context.Context, customer models.Customer) (*models.Customer, error) {
	if err := models.Validate(&customer); err != nil {
		return nil, err
	}
	var created models.Customer
	if err := c.do(ctx, http.MethodPost, "/api/customers", nil, customer, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	list := []models.Supplier{}
	if err := c.do(ctx, http.MethodGet, "/api/suppliers", nil, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateSupplier(ctx context.Context, supplier models.Supplier) (*models.Supplier, error) {
	if err := models.Validate(&supplier); err != nil {
		return nil, err
	}
	var created models.Supplier
	if err := c.do(ctx, http.MethodPost, "/api/suppliers", nil, supplier, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DashboardSummary(ctx context.Context) (*store.DashboardSummary, error) {
	var summary store.DashboardSummary
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/summary", nil, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// do sends one request. in is encoded as JSON when non-nil and a 2xx body is
// decoded into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	target := c.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.session.Authenticated(c.now()) {
		req.Header.Set("Authorization", "Bearer "+c.session.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: method, URL: target, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
