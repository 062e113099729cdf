// Package dashboard is the merchant-facing client for the Ghala API: session
// handling, order view-model, payment settings form, chart rendering, and
// section navigation, collapsed into one implementation that front-ends embed.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/ghala-dashboard/internal/domain/analytics"
)

// APIError carries the HTTP status and the server-provided message for a
// failed call. Callers show Message to the user when it is non-empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Order is the wire shape of an order as the API serves it.
type Order struct {
	ID                 string  `json:"id"`
	CustomerName       string  `json:"customer_name"`
	Product            string  `json:"product"`
	Total              float64 `json:"total"`
	Status             string  `json:"status"`
	PaymentMethod      string  `json:"payment_method"`
	Commission         float64 `json:"commission"`
	Timestamp          int64   `json:"timestamp"`
	PaymentProcessedAt int64   `json:"payment_processed_at,omitempty"`
}

// OrderDraft is the editable subset sent on create and update.
type OrderDraft struct {
	CustomerName string  `json:"customer_name"`
	Product      string  `json:"product"`
	Total        float64 `json:"total"`
	Status       string  `json:"status,omitempty"`
}

// Settings is the wire shape of a merchant's payment configuration.
type Settings struct {
	Method         string  `json:"method"`
	Label          string  `json:"label"`
	Provider       string  `json:"provider,omitempty"`
	PhoneNumber    string  `json:"phone_number,omitempty"`
	CardNumber     string  `json:"card_number,omitempty"`
	Expiry         string  `json:"expiry,omitempty"`
	CVV            string  `json:"cvv,omitempty"`
	AccountNumber  string  `json:"account_number,omitempty"`
	BankName       string  `json:"bank_name,omitempty"`
	BranchCode     string  `json:"branch_code,omitempty"`
	CommissionRate float64 `json:"commission_rate,omitempty"`
}

// MethodSchema mirrors the per-method field table the API serves.
type MethodSchema struct {
	RequiredFields []string `json:"required_fields"`
	Providers      []string `json:"providers,omitempty"`
}

// User is the identity payload returned by login.
type User struct {
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	MerchantID string `json:"merchant_id,omitempty"`
}

// LoginResult is the successful login response.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client is a typed HTTP client for the dashboard API. It is safe for
// concurrent use; the token may be swapped while background watchers and
// delayed reloads are in flight.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a Client for the API at baseURL (without the /api suffix).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token, empty when anonymous.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the API base URL the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

// serverMessage pulls the message field out of a failure body, tolerating
// bodies that are not the standard {success, message} shape.
func serverMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}

// Login authenticates and returns the issued token with the user identity.
// The token is not installed on the client; callers decide when to adopt it.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Logout revokes the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/logout", nil, nil)
}

// Orders returns the merchant's orders, newest first.
func (c *Client) Orders(ctx context.Context, merchantID string) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(merchantID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOrder creates an order and returns it as stored.
func (c *Client) CreateOrder(ctx context.Context, merchantID string, draft OrderDraft) (*Order, error) {
	var resp struct {
		Success bool  `json:"success"`
		Order   Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/order/"+url.PathEscape(merchantID), draft, &resp); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// GetOrder fetches a single order for edit pre-fill.
func (c *Client) GetOrder(ctx context.Context, merchantID, orderID string) (*Order, error) {
	var out Order
	err := c.do(ctx, http.MethodGet,
		"/order/"+url.PathEscape(merchantID)+"/"+url.PathEscape(orderID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateOrder rewrites the editable fields of an order.
func (c *Client) UpdateOrder(ctx context.Context, merchantID, orderID string, draft OrderDraft) error {
	return c.do(ctx, http.MethodPut,
		"/order/"+url.PathEscape(merchantID)+"/"+url.PathEscape(orderID), draft, nil)
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, merchantID, orderID string) error {
	return c.do(ctx, http.MethodDelete,
		"/order/"+url.PathEscape(merchantID)+"/"+url.PathEscape(orderID), nil, nil)
}

// SimulatePayment asks the server to re-run payment processing for the order.
// The transition lands asynchronously; see Orders.SimulatePayment for the
// reload strategies built on top.
func (c *Client) SimulatePayment(ctx context.Context, merchantID, orderID string) error {
	return c.do(ctx, http.MethodPost,
		"/simulate-payment/"+url.PathEscape(merchantID)+"/"+url.PathEscape(orderID), nil, nil)
}

// PaymentMethods fetches the method schema table used to build settings forms.
func (c *Client) PaymentMethods(ctx context.Context) (map[string]MethodSchema, error) {
	var out map[string]MethodSchema
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSettings fetches the merchant's payment settings. An unconfigured
// merchant yields a Settings with an empty Method.
func (c *Client) GetSettings(ctx context.Context, merchantID string) (*Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/merchant/"+url.PathEscape(merchantID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveSettings upserts the merchant's payment settings. Validation happens
// server-side; the returned error carries the rejection message.
func (c *Client) SaveSettings(ctx context.Context, merchantID string, s Settings) error {
	return c.do(ctx, http.MethodPost, "/merchant/"+url.PathEscape(merchantID), s, nil)
}

func (c *Client) analyticsRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api"+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: serverMessage(data)}
	}
	return data, nil
}

// OrderSeries fetches the daily order/revenue time series.
func (c *Client) OrderSeries(ctx context.Context, merchantID string) (analytics.Series, error) {
	data, err := c.analyticsRaw(ctx, "/analytics/orders/"+url.PathEscape(merchantID))
	if err != nil {
		return analytics.Series{}, err
	}
	return analytics.DecodeSeries(jx.DecodeBytes(data))
}

// MethodDistribution fetches the payment-method percentage breakdown.
func (c *Client) MethodDistribution(ctx context.Context, merchantID string) (analytics.Distribution, error) {
	data, err := c.analyticsRaw(ctx, "/analytics/payment-methods/"+url.PathEscape(merchantID))
	if err != nil {
		return nil, err
	}
	return analytics.DecodeDistribution(jx.DecodeBytes(data))
}

// StatusDistribution fetches the order-status percentage breakdown.
func (c *Client) StatusDistribution(ctx context.Context, merchantID string) (analytics.Distribution, error) {
	data, err := c.analyticsRaw(ctx, "/analytics/status-distribution/"+url.PathEscape(merchantID))
	if err != nil {
		return nil, err
	}
	return analytics.DecodeDistribution(jx.DecodeBytes(data))
}

// Summary fetches the combined analytics summary for the last days days.
func (c *Client) Summary(ctx context.Context, merchantID string, days int) (*analytics.Summary, error) {
	path := "/analytics/summary/" + url.PathEscape(merchantID)
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	data, err := c.analyticsRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	return analytics.DecodeSummary(jx.DecodeBytes(data))
}
