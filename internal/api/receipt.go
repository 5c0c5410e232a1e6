package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyPDF marks a 2xx receipt response with a zero-length body. It is
// deliberately distinct from StatusError: a silent server-side render
// failure must not be written out as an empty file.
var ErrEmptyPDF = errors.New("received empty PDF blob")

type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Path, e.Code)
}

// FetchReceiptPDF retrieves the rendered receipt for an order. Failures
// here are terminal for the invocation: no retry, no backoff. The
// customer id comes from storage at call time, same as the token.
func (c *Client) FetchReceiptPDF(ctx context.Context, orderID string) ([]byte, error) {
	cred, err := c.creds.Resolve()
	if err != nil {
		return nil, err
	}

	path := "order/pdf/" + orderID + "/" + cred.CustomerID
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, err
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}
	req.Header.Set("Accept", "application/pdf")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	c.metrics.ObserveAPI(http.MethodGet, "order/pdf", resp.StatusCode, msSince(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Path: path}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		c.logger.Warn("receipt endpoint returned empty body", zap.String("order_id", orderID))
		return nil, ErrEmptyPDF
	}

	c.metrics.ObserveFetch(len(data), msSince(start))
	c.logger.Info("receipt fetched",
		zap.String("order_id", orderID),
		zap.Int("bytes", len(data)),
	)
	return data, nil
}
