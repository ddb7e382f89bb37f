// Package fetcher fetches quotes from many URLs concurrently and normalizes
// every outcome into a quote.Result, preserving input order.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/quote-fetcher/pkg/client"
	"github.com/Sternrassler/quote-fetcher/pkg/logging"
	"github.com/Sternrassler/quote-fetcher/pkg/quote"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -package=fetcher -destination=mock_getter_test.go -source=fetcher.go

// Outcome kinds for quote_results_total.
const (
	kindSuccess   = "success"
	kindStatus    = "status"
	kindTransport = "transport"
	kindParse     = "parse"
)

// Prometheus metrics for quote batches.
var (
	quoteResultsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_results_total",
		Help: "Total quote results by outcome kind",
	}, []string{"kind"})

	quoteBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_batches_total",
		Help: "Total number of quote batches fetched",
	})

	quoteBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_batch_size",
		Help:    "Number of URLs per quote batch",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})

	quoteBatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_batch_duration_seconds",
		Help:    "Wall time until every fetch in a batch settled",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

var (
	errNoResponse = errors.New("no response")
	errNullBody   = errors.New("response body is null")
)

// Getter is the HTTP capability a Fetcher depends on. A returned error means no
// response was obtained.
type Getter interface {
	Get(ctx context.Context, url string) (*client.Response, error)
}

// quoteBody is the wire shape of a quote endpoint response.
type quoteBody struct {
	Message string `json:"message"`
}

// Fetcher fetches and normalizes quotes.
type Fetcher struct {
	getter Getter
	log    logging.Sink
}

// New creates a Fetcher. A nil sink discards logs.
func New(getter Getter, sink logging.Sink) *Fetcher {
	if getter == nil {
		panic("getter cannot be nil")
	}
	if sink == nil {
		sink = logging.Nop()
	}
	return &Fetcher{getter: getter, log: sink}
}

// FetchOne fetches url and normalizes the outcome. It never returns an error:
// transport and decode failures become quote.Failure with the error text, and a
// non-200 status becomes quote.Failure with the body's message.
func (f *Fetcher) FetchOne(ctx context.Context, url string) quote.Result {
	f.log.Debug("Processing URL", map[string]any{"url": url})

	resp, err := f.getter.Get(ctx, url)
	if err != nil {
		return f.fail(url, kindTransport, err)
	}
	if resp == nil {
		return f.fail(url, kindTransport, errNoResponse)
	}

	var body *quoteBody
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return f.fail(url, kindParse, err)
	}
	if body == nil {
		return f.fail(url, kindParse, errNullBody)
	}

	if resp.StatusCode == quote.SuccessStatus {
		quoteResultsTotal.WithLabelValues(kindSuccess).Inc()
		return quote.Success(body.Message)
	}

	quoteResultsTotal.WithLabelValues(kindStatus).Inc()
	return quote.Failure(body.Message)
}

func (f *Fetcher) fail(url, kind string, err error) quote.Result {
	quoteResultsTotal.WithLabelValues(kind).Inc()
	f.log.Error("Error processing URL", map[string]any{
		"url":   url,
		"error": err.Error(),
	})
	return quote.Failure(err.Error())
}

// FetchAll fetches every URL concurrently, with no cap on in-flight requests,
// and returns once all have settled. Result i belongs to urls[i]. Cancelling ctx
// does not abort fetches already started; each one runs until the transport
// returns.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) quote.Batch {
	f.log.Info("Getting quotes", map[string]any{
		"url_count": len(urls),
		"urls":      urls,
	})

	start := time.Now()
	results := make(quote.Batch, len(urls))
	ctx = context.WithoutCancel(ctx)

	var g errgroup.Group
	for i, url := range urls {
		g.Go(func() error {
			results[i] = f.FetchOne(ctx, url)
			return nil
		})
	}
	// Every task returns nil, so Wait only blocks.
	_ = g.Wait()

	quoteBatchesTotal.Inc()
	quoteBatchSize.Observe(float64(len(urls)))
	quoteBatchDuration.Observe(time.Since(start).Seconds())

	return results
}

var defaultFetcher = sync.OnceValue(func() *Fetcher {
	c, err := client.New(client.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return New(c, logging.NewSink(logging.NewLogger("quote-fetcher")))
})

// GetQuotes fetches urls with a shared Fetcher built from client.DefaultConfig
// that logs through the global zerolog logger.
func GetQuotes(ctx context.Context, urls []string) quote.Batch {
	return defaultFetcher().FetchAll(ctx, urls)
}
