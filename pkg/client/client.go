// Package client provides the HTTP capability used to fetch quotes: a single
// GET returning status and body, with metrics and outcome classification.
package client

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for quote HTTP requests.
var (
	quoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_http_requests_total",
		Help: "Total quote HTTP requests by host and status",
	}, []string{"host", "status"})

	quoteRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_http_request_duration_seconds",
		Help:    "Quote HTTP request duration in seconds by host",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"host"})

	quoteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_http_errors_total",
		Help: "Total quote HTTP errors by class",
	}, []string{"class"})
)

// Response is the status and fully read body of a GET.
type Response struct {
	StatusCode int
	Body       []byte
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout bounds a whole request including reading the body
	Timeout time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent: "quote-fetcher/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// Client performs quote GETs.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		config: cfg,
		logger: log.With().Str("component", "quote-client").Logger(),
	}, nil
}

// Get issues a GET for rawURL and returns its status and body. Any failure to
// build the request, reach the server or read the body is returned as an error;
// non-2xx statuses are not errors.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	host := hostLabel(rawURL)

	startTime := time.Now()
	defer func() {
		quoteRequestDuration.WithLabelValues(host).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.countNetworkError(host, err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countNetworkError(host, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countNetworkError(host, err)
		return nil, fmt.Errorf("read body: %w", err)
	}

	quoteRequestsTotal.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()
	if class := c.classifyError(resp, nil); class != ErrorClassNone {
		quoteErrorsTotal.WithLabelValues(string(class)).Inc()
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) countNetworkError(host string, err error) {
	class := c.classifyError(nil, err)
	quoteErrorsTotal.WithLabelValues(string(class)).Inc()

	status := "network_error"
	if IsTimeout(err) {
		status = "timeout"
	}
	quoteRequestsTotal.WithLabelValues(host, status).Inc()
}

// classifyError categorizes an outcome for observability.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		c.logger.Debug().Str("class", string(ErrorClassNetwork)).Msg("Error classified")
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		c.logger.Debug().Str("class", string(ErrorClassClient)).Msg("Error classified")
		return ErrorClassClient
	case resp.StatusCode >= 500:
		c.logger.Debug().Str("class", string(ErrorClassServer)).Msg("Error classified")
		return ErrorClassServer
	default:
		return ErrorClassNone
	}
}

// hostLabel keeps metric cardinality bounded to hosts rather than full URLs.
func hostLabel(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "invalid"
	}
	return u.Host
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
