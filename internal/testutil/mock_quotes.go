// Package testutil provides testing utilities for the quote fetcher.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/Sternrassler/quote-fetcher/pkg/quote"
)

// MockQuoteResponse defines the behavior for a mock quote endpoint response.
type MockQuoteResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockQuoteServer is a configurable mock quote server for testing.
type MockQuoteServer struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockQuoteResponse

	requestCount int
	inFlight     int
	maxInFlight  int
}

// NewMockQuoteServer creates a new mock quote server. Unconfigured paths
// answer 404 with a JSON message.
func NewMockQuoteServer() *MockQuoteServer {
	mock := &MockQuoteServer{
		responses: make(map[string]MockQuoteResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.inFlight++
		if mock.inFlight > mock.maxInFlight {
			mock.maxInFlight = mock.inFlight
		}
		resp, exists := mock.responses[r.URL.Path]
		mock.mu.Unlock()

		defer func() {
			mock.mu.Lock()
			mock.inFlight--
			mock.mu.Unlock()
		}()

		if !exists {
			resp = NewQuoteFailure(http.StatusNotFound, "no quote at "+r.URL.Path)
		}

		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}))

	return mock
}

// URL returns the full URL for path on the mock server.
func (m *MockQuoteServer) URL(path string) string {
	return m.server.URL + path
}

// Close shuts down the mock server.
func (m *MockQuoteServer) Close() {
	m.server.Close()
}

// SetResponse configures the response for a path.
func (m *MockQuoteServer) SetResponse(path string, resp MockQuoteResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// RequestCount returns the number of requests served.
func (m *MockQuoteServer) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// MaxInFlight returns the highest number of requests that were being served at once.
func (m *MockQuoteServer) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// NewQuote creates a 200 response carrying text as the message.
func NewQuote(text string) MockQuoteResponse {
	return MockQuoteResponse{
		StatusCode: quote.SuccessStatus,
		Body:       fmt.Sprintf(`{%q: %q}`, quote.MessageField, text),
	}
}

// NewQuoteFailure creates a non-200 response carrying message.
func NewQuoteFailure(status int, message string) MockQuoteResponse {
	return MockQuoteResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{%q: %q}`, quote.MessageField, message),
	}
}

// NewMalformedResponse creates a 200 response whose body is not JSON.
func NewMalformedResponse() MockQuoteResponse {
	return MockQuoteResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>definitely not json</html>`,
	}
}
