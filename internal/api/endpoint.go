package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint describes one API
// operation (path, method, optional headers and query parameters)
// independent of any base URL. Endpoints are built per call site and the
// With* helpers return copies, so a shared Endpoint is never mutated.
type Endpoint struct {
	Path    string
	Method  string
	Headers map[string]string
	Query   url.Values
}

// NewEndpoint creates an Endpoint with the given method and path.
func NewEndpoint(method, path string) Endpoint {
	return Endpoint{Method: method, Path: path}
}

// WithHeader returns a copy of the endpoint with the header set.
func (e Endpoint) WithHeader(key, value string) Endpoint {
	headers := make(map[string]string, len(e.Headers)+1)
	for k, v := range e.Headers {
		headers[k] = v
	}
	headers[key] = value
	e.Headers = headers
	return e
}

// WithQuery returns a copy of the endpoint with the query parameter added.
func (e Endpoint) WithQuery(key, value string) Endpoint {
	query := make(url.Values, len(e.Query)+1)
	for k, vs := range e.Query {
		query[k] = append([]string(nil), vs...)
	}
	query.Add(key, value)
	e.Query = query
	return e
}

// URL builds the request URL by concatenating baseURL and the endpoint path
// exactly, then appending encoded query parameters. The result is validated
// so malformed inputs fail here rather than deep inside the transport.
func (e Endpoint) URL(baseURL string) (string, error) {
	full := baseURL + e.Path
	if len(e.Query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + e.Query.Encode()
	}
	if _, err := url.ParseRequestURI(full); err != nil {
		return "", fmt.Errorf("malformed request URL %q: %w", full, err)
	}
	return full, nil
}
