// Package api is a thin facade over net/http for RESTful calls against a
// single base URL: JSON requests, multipart file uploads, bearer-token
// header injection, and typed response decoding. It performs no retries,
// no pooling policy of its own, and no recovery - every error is scoped to
// the one operation that produced it.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/netcanis/feat-network/internal/debug"
	"github.com/netcanis/feat-network/internal/validation"
)

// DefaultTimeout bounds each HTTP request. The underlying transport has no
// timeout of its own, so this is the only thing standing between a stuck
// server and a hung call.
const DefaultTimeout = 30 * time.Second

// Client executes HTTP requests against a base URL. Each Client owns its
// bearer token; independent Clients can hold independent credentials.
//
// SuccessStatuses is the set of status codes treated as success. It defaults
// to exactly {200}: historically every other code, 2xx included, has been
// treated as a failure, and callers depend on that. Widen the set per client
// when the target API returns 201/204.
type Client struct {
	BaseURL         string
	Token           string
	HTTP            *http.Client
	UserAgent       string
	SuccessStatuses []int

	skipURLValidation bool // internal flag for testing only
	validatedBaseURL  bool
	validateMu        sync.Mutex
}

var validateBaseURL = validation.ValidateBaseURL

// New creates a Client for the given base URL and bearer token. An empty
// token disables the Authorization header.
func New(baseURL, token string) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	// Allow localhost URLs when FEATNET_TESTING=1 is set (for integration tests)
	skipValidation := os.Getenv("FEATNET_TESTING") == "1"

	return &Client{
		BaseURL:         baseURL,
		Token:           token,
		SuccessStatuses: []int{http.StatusOK},
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		skipURLValidation: skipValidation,
	}
}

// newTestClient creates a client with URL validation disabled for testing.
func newTestClient(baseURL, token string) *Client {
	c := New(baseURL, token)
	c.skipURLValidation = true
	return c
}

// SetTimeout replaces the request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.HTTP.Timeout = d
}

func (c *Client) ensureBaseURLValidated() error {
	if c.skipURLValidation {
		return nil
	}

	c.validateMu.Lock()
	defer c.validateMu.Unlock()

	if c.validatedBaseURL {
		return nil
	}

	if err := validateBaseURL(c.BaseURL); err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}

	c.validatedBaseURL = true
	return nil
}

func (c *Client) isSuccess(statusCode int) bool {
	for _, s := range c.SuccessStatuses {
		if statusCode == s {
			return true
		}
	}
	return false
}

// Request executes the endpoint with an optional JSON body and decodes the
// response into result. body may be a typed struct or nil.
func (c *Client) Request(ctx context.Context, ep Endpoint, body any, result any) error {
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}
	return c.do(ctx, ep, jsonBody, "application/json", result)
}

// RequestValues is Request with an untyped key-value body.
func (c *Client) RequestValues(ctx context.Context, ep Endpoint, params map[string]any, result any) error {
	if params == nil {
		return c.Request(ctx, ep, nil, result)
	}
	return c.Request(ctx, ep, params, result)
}

// UploadFile executes the endpoint with a multipart/form-data body carrying
// the file plus optional extra string fields, and decodes the response into
// result. The endpoint method defaults to POST when unset.
func (c *Client) UploadFile(ctx context.Context, ep Endpoint, file []byte, filename, mimeType string, fields map[string]string, result any) error {
	body, contentType, err := EncodeMultipart(file, filename, mimeType, fields)
	if err != nil {
		return fmt.Errorf("failed to encode multipart body: %w", err)
	}
	if ep.Method == "" {
		ep.Method = http.MethodPost
	}
	return c.do(ctx, ep, body, contentType, result)
}

// do executes a prepared request body and decodes the JSON response.
func (c *Client) do(ctx context.Context, ep Endpoint, body []byte, contentType string, result any) error {
	respBody, _, _, err := c.execute(ctx, ep, body, contentType)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
	}
	return nil
}

// execute performs one HTTP round trip. It returns the response body,
// headers, status code, and any error.
func (c *Client) execute(ctx context.Context, ep Endpoint, body []byte, contentType string) ([]byte, http.Header, int, error) {
	if err := c.ensureBaseURLValidated(); err != nil {
		return nil, nil, 0, err
	}

	url, err := ep.URL(c.BaseURL)
	if err != nil {
		return nil, nil, 0, err
	}

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range ep.Headers {
		req.Header.Set(key, value)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			slog.Debug("request failed", "method", method, "url", url, "error", err)
		}
		return nil, nil, 0, fmt.Errorf("request failed: %w", err)
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	if debug.IsEnabled(ctx) {
		slog.Debug("request complete", "method", method, "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	}

	if !c.isSuccess(resp.StatusCode) {
		return respBody, resp.Header, resp.StatusCode, &APIError{
			StatusCode: resp.StatusCode,
			Body:       sanitizeErrorBody(string(respBody)),
			RequestID:  requestIDFromHeader(resp.Header),
		}
	}

	return respBody, resp.Header, resp.StatusCode, nil
}

// Do performs a request and returns raw response body, headers, and status
// code. This is designed for the raw request command that needs full
// response details.
func (c *Client) Do(ctx context.Context, ep Endpoint, body []byte, contentType string) ([]byte, http.Header, int, error) {
	return c.execute(ctx, ep, body, contentType)
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	if id := header.Get("X-Request-Id"); id != "" {
		return id
	}
	return header.Get("X-Request-ID")
}

// sanitizeErrorBody extracts a safe error message from an API response
// without exposing potentially sensitive data like tokens.
func sanitizeErrorBody(body string) string {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &errResp); err != nil {
		return "API request failed (response body redacted for security)"
	}
	if errResp.Error != "" {
		return errResp.Error
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return "API request failed (response body redacted for security)"
}
