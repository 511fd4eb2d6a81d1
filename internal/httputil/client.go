// Package httputil provides HTTP client abstractions for testability and
// small JSON response helpers shared by the API handlers.
package httputil

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// Client abstracts the HTTP operations the fetch layer needs.
// Use http.DefaultClient via NewStandardClient in production; MockClient in tests.
type Client interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
	// Get issues a GET to the specified URL.
	Get(url string) (*http.Response, error)
}

// StandardClient wraps *http.Client to implement Client.
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a StandardClient wrapping the given http.Client.
// A nil argument falls back to http.DefaultClient.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = http.DefaultClient
	}
	return &StandardClient{Client: c}
}

// Do sends an HTTP request.
func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

// Get issues a GET request.
func (c *StandardClient) Get(url string) (*http.Response, error) {
	return c.Client.Get(url)
}

// MockClient provides a canned-response HTTP client for tests. Responses are
// keyed by URL so a test can serve a whole fake upstream from a map.
type MockClient struct {
	mu         sync.Mutex
	ByURL      map[string]*MockResponse
	Fallback   *MockResponse
	Requests   []*http.Request
	DoFunc     func(req *http.Request) (*http.Response, error)
	DefaultErr error
}

// MockResponse defines a canned HTTP response.
type MockResponse struct {
	StatusCode int
	Body       []byte
	Err        error
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{ByURL: make(map[string]*MockResponse)}
}

// Respond registers a canned response for the exact URL.
func (m *MockClient) Respond(url string, statusCode int, body []byte) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByURL[url] = &MockResponse{StatusCode: statusCode, Body: body}
	return m
}

// RespondErr registers a transport error for the exact URL.
func (m *MockClient) RespondErr(url string, err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ByURL[url] = &MockResponse{Err: err}
	return m
}

// Do records the request and returns the response registered for its URL.
// Unregistered URLs return 404 unless a Fallback or DefaultErr is set.
func (m *MockClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)

	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	if m.DefaultErr != nil {
		return nil, m.DefaultErr
	}

	resp := m.ByURL[req.URL.String()]
	if resp == nil {
		resp = m.Fallback
	}
	if resp == nil {
		resp = &MockResponse{StatusCode: http.StatusNotFound}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &http.Response{
		StatusCode: resp.StatusCode,
		Body:       io.NopCloser(bytes.NewReader(resp.Body)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

// Get issues a GET request through Do.
func (m *MockClient) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return m.Do(req)
}

// RequestCount returns the number of recorded requests.
func (m *MockClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
