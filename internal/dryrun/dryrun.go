// Package dryrun provides dry-run mode for previewing requests without
// sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// maxBodyPreview bounds how much of a request body is echoed back.
const maxBodyPreview = 2048

// Preview describes the request that would have been sent.
type Preview struct {
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     string            `json:"body,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// Write outputs the preview to the writer.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "\n[DRY-RUN] Would send %s %s\n", p.Method, p.URL)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", 39))

	if len(p.Headers) > 0 {
		keys := make([]string, 0, len(p.Headers))
		for k := range p.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", k, p.Headers[k])
		}
		_, _ = fmt.Fprintln(w)
	}

	if p.Body != "" {
		body := p.Body
		if len(body) > maxBodyPreview {
			body = body[:maxBodyPreview] + "... (truncated)"
		}
		_, _ = fmt.Fprintln(w, body)
		_, _ = fmt.Fprintln(w)
	}

	if len(p.Warnings) > 0 {
		_, _ = fmt.Fprintln(w, "Warnings:")
		for _, warning := range p.Warnings {
			_, _ = fmt.Fprintf(w, "  ! %s\n", warning)
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, strings.Repeat("-", 39))
	_, _ = fmt.Fprintln(w, "No request sent (dry-run mode)")
}
