package receipt

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/uspizza/loyalty-cli/internal/api"
	"github.com/uspizza/loyalty-cli/internal/domain"
	"github.com/uspizza/loyalty-cli/internal/notify"
	"github.com/uspizza/loyalty-cli/internal/observability"
)

//go:generate mockgen -source internal/receipt/deliverer.go -destination=internal/receipt/deliverer_mock_test.go -package=receipt

type Fetcher interface {
	FetchReceiptPDF(ctx context.Context, orderID string) ([]byte, error)
}

// Document is a fetched receipt on its way to a delivery strategy. It only
// exists between a successful fetch and the strategy call; nothing
// persists it beyond what the strategy itself writes.
type Document struct {
	Data     []byte
	Filename string
	MIME     string
}

// Outcome carries the user-facing success message a strategy produced.
type Outcome struct {
	Message string
}

// Strategy is one of the closed set of delivery mechanisms. A strategy
// never sees a failed or empty fetch; the deliverer filters those first.
type Strategy interface {
	Name() string
	Deliver(ctx context.Context, doc Document) (Outcome, error)
}

// ErrBusy is returned when a delivery is already in flight on this
// deliverer. It is an advisory single-flight guard, not a lock: separate
// deliverers may run concurrently.
var ErrBusy = errors.New("receipt delivery already in progress")

type Deliverer struct {
	fetcher  Fetcher
	strategy Strategy
	notifier notify.Notifier
	prefix   string
	logger   *zap.Logger
	metrics  observability.Metrics

	busy atomic.Bool
}

func NewDeliverer(fetcher Fetcher, strategy Strategy, notifier notify.Notifier, prefix string, logger *zap.Logger, metrics observability.Metrics) *Deliverer {
	return &Deliverer{
		fetcher:  fetcher,
		strategy: strategy,
		notifier: notifier,
		prefix:   prefix,
		logger:   logger,
		metrics:  metrics,
	}
}

type Stats struct {
	FetchMs   float64
	DeliverMs float64
	Bytes     int
}

func (d *Deliverer) Deliver(ctx context.Context, orderID string, order *domain.Order) error {
	_, err := d.DeliverWithStats(ctx, orderID, order)
	return err
}

// DeliverWithStats fetches the receipt and hands it to the strategy.
// The caller always gets feedback: one Preparing notice up front, then
// exactly one Success or Error notice, whatever happens in between.
func (d *Deliverer) DeliverWithStats(ctx context.Context, orderID string, order *domain.Order) (Stats, error) {
	var st Stats

	if !d.busy.CompareAndSwap(false, true) {
		return st, ErrBusy
	}
	defer d.busy.Store(false)

	d.notifier.Preparing("preparing receipt for order " + orderID)

	tFetch := time.Now()
	data, err := d.fetcher.FetchReceiptPDF(ctx, orderID)
	st.FetchMs = msSince(tFetch)
	if err != nil {
		return st, d.fail(orderID, err)
	}
	st.Bytes = len(data)

	doc := Document{
		Data:     data,
		Filename: Filename(d.prefix, order),
		MIME:     "application/pdf",
	}

	tDeliver := time.Now()
	out, err := d.strategy.Deliver(ctx, doc)
	st.DeliverMs = msSince(tDeliver)
	if err != nil {
		d.metrics.ObserveDeliver(d.strategy.Name(), false, st.DeliverMs)
		return st, d.fail(orderID, err)
	}

	d.metrics.ObserveDeliver(d.strategy.Name(), true, st.DeliverMs)
	d.notifier.Success(out.Message)
	d.logger.Info("receipt delivered",
		zap.String("order_id", orderID),
		zap.String("strategy", d.strategy.Name()),
		zap.String("filename", doc.Filename),
		zap.Int("bytes", st.Bytes),
		zap.Float64("fetch_ms", st.FetchMs),
		zap.Float64("deliver_ms", st.DeliverMs),
	)
	return st, nil
}

// fail is the single terminal-error point: log, notify once, pass the
// error back up. Nothing ends in silence.
func (d *Deliverer) fail(orderID string, err error) error {
	d.logger.Error("receipt delivery failed",
		zap.String("order_id", orderID),
		zap.Error(err),
	)
	d.notifier.Error(failureMessage(orderID, err))
	return err
}

func failureMessage(orderID string, err error) string {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, api.ErrEmptyPDF):
		return "received empty PDF blob for order " + orderID
	case errors.As(err, &statusErr):
		return fmt.Sprintf("download failed for order %s: server returned status %d", orderID, statusErr.Code)
	case errors.Is(err, ErrNotSaved):
		return "file was not saved for order " + orderID
	default:
		return "download failed for order " + orderID
	}
}

// Filename derives the suggested receipt filename from the order number,
// falling back to a literal when the order record is absent.
func Filename(prefix string, order *domain.Order) string {
	so := "Order"
	if order != nil && order.OrderSO != "" {
		so = order.OrderSO
	}
	return prefix + "_Receipt_" + so + ".pdf"
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
