package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uspizza/loyalty-cli/internal/cache"
	"github.com/uspizza/loyalty-cli/internal/config"
	"github.com/uspizza/loyalty-cli/internal/credstore"
	"github.com/uspizza/loyalty-cli/internal/domain"
	"github.com/uspizza/loyalty-cli/internal/observability"
	"github.com/uspizza/loyalty-cli/internal/pkg/retry"
)

// CredentialStore is the slice of the credential store the client needs.
// Credentials are resolved fresh on every request, never cached here.
type CredentialStore interface {
	Resolve() (credstore.Credential, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

// Client talks to the loyalty platform REST API. All business rules live
// behind the API; the client fetches, decodes, and caches.
type Client struct {
	base    string
	http    *http.Client
	creds   CredentialStore
	cache   *cache.Cache
	logger  *zap.Logger
	metrics observability.Metrics
	retry   config.Retry
}

func New(cfg config.Config, creds CredentialStore, orderCache *cache.Cache, logger *zap.Logger, metrics observability.Metrics) *Client {
	return &Client{
		base:    cfg.APIBaseURL,
		http:    &http.Client{Timeout: cfg.HTTPTimeout},
		creds:   creds,
		cache:   orderCache,
		logger:  logger,
		metrics: metrics,
		retry:   cfg.Retry,
	}
}

// RequestOTP asks the platform to send a one-time code to the phone.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.doJSON(ctx, http.MethodPost, "auth/otp/request", body, nil)
}

type verifyOTPResponse struct {
	Token    string          `json:"token"`
	Customer json.RawMessage `json:"customer"`
}

// VerifyOTP exchanges the code for a bearer token and persists the
// credential the way the mobile app does: token under authToken, the raw
// customer object under customerData.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (domain.Customer, error) {
	body := map[string]string{"phone": phone, "code": code}

	var resp verifyOTPResponse
	if err := c.doJSON(ctx, http.MethodPost, "auth/otp/verify", body, &resp); err != nil {
		return domain.Customer{}, err
	}

	var customer domain.Customer
	if err := json.Unmarshal(resp.Customer, &customer); err != nil {
		return domain.Customer{}, fmt.Errorf("malformed customer payload: %w", err)
	}

	if err := c.creds.Set(credstore.KeyAuthToken, resp.Token); err != nil {
		return domain.Customer{}, err
	}
	if err := c.creds.Set(credstore.KeyCustomerData, string(resp.Customer)); err != nil {
		return domain.Customer{}, err
	}

	c.logger.Info("logged in", zap.String("customer_id", customer.ID))
	return customer, nil
}

// Logout drops the stored credential. The server-side session is opaque
// to the client and is left to expire on its own.
func (c *Client) Logout() error {
	return c.creds.Delete(credstore.KeyAuthToken, credstore.KeyCustomerData)
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := retry.Do(ctx, c.retry, func() error {
		orders = orders[:0]
		return c.doJSON(ctx, http.MethodGet, "order", nil, &orders)
	})
	if err != nil {
		return nil, err
	}
	for i := range orders {
		c.cache.Set(&orders[i])
	}
	return orders, nil
}

func (c *Client) OrderByID(ctx context.Context, id string) (*domain.Order, error) {
	if order, ok := c.cache.Get(id); ok {
		c.metrics.IncCacheHit()
		return order, nil
	}
	c.metrics.IncCacheMiss()

	var order domain.Order
	err := retry.Do(ctx, c.retry, func() error {
		return c.doJSON(ctx, http.MethodGet, "order/"+id, nil, &order)
	})
	if err != nil {
		return nil, err
	}
	c.cache.Set(&order)
	return &order, nil
}

func (c *Client) CheckInStatus(ctx context.Context) (domain.CheckInStatus, error) {
	var st domain.CheckInStatus
	err := retry.Do(ctx, c.retry, func() error {
		return c.doJSON(ctx, http.MethodGet, "checkin/status", nil, &st)
	})
	return st, err
}

// CheckIn performs today's check-in. Not retried: the server decides
// whether a repeat call counts, and a duplicate would blur that.
func (c *Client) CheckIn(ctx context.Context) (domain.CheckInStatus, error) {
	var st domain.CheckInStatus
	err := c.doJSON(ctx, http.MethodPost, "checkin", nil, &st)
	return st, err
}

func (c *Client) Points(ctx context.Context) ([]domain.PointsEntry, error) {
	var entries []domain.PointsEntry
	err := retry.Do(ctx, c.retry, func() error {
		entries = entries[:0]
		return c.doJSON(ctx, http.MethodGet, "points/history", nil, &entries)
	})
	return entries, err
}

func (c *Client) Vouchers(ctx context.Context) ([]domain.Voucher, error) {
	var vouchers []domain.Voucher
	err := retry.Do(ctx, c.retry, func() error {
		vouchers = vouchers[:0]
		return c.doJSON(ctx, http.MethodGet, "voucher", nil, &vouchers)
	})
	return vouchers, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.metrics.ObserveAPI(method, path, resp.StatusCode, msSince(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Path: path}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// newRequest attaches the bearer token read fresh from storage. An absent
// token still produces a request; rejecting it is the server's call.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	cred, err := c.creds.Resolve()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
