package dryrun

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	ctx := WithDryRun(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	ctx := context.Background()
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDryRun_Disabled(t *testing.T) {
	ctx := WithDryRun(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Method: "POST",
		URL:    "https://api.example.com/api/v1/users",
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-Trace":      "1",
		},
		Body: `{"name":"alice"}`,
	}

	var buf bytes.Buffer
	p.Write(&buf)

	output := buf.String()
	if !strings.Contains(output, "[DRY-RUN] Would send POST https://api.example.com/api/v1/users") {
		t.Errorf("Preview output missing header line:\n%s", output)
	}
	if !strings.Contains(output, "Content-Type: application/json") {
		t.Error("Preview output should contain headers")
	}
	if !strings.Contains(output, `{"name":"alice"}`) {
		t.Error("Preview output should contain the body")
	}
	// Headers are printed in sorted order.
	if strings.Index(output, "Content-Type") > strings.Index(output, "X-Trace") {
		t.Error("headers should be sorted alphabetically")
	}
}

func TestPreview_WriteWithWarnings(t *testing.T) {
	p := &Preview{
		Method:   "DELETE",
		URL:      "https://api.example.com/api/v1/users/42",
		Warnings: []string{"DELETE requests cannot be undone"},
	}

	var buf bytes.Buffer
	p.Write(&buf)

	output := buf.String()
	if !strings.Contains(output, "Warnings:") {
		t.Error("Preview output should contain Warnings section")
	}
	if !strings.Contains(output, "DELETE requests cannot be undone") {
		t.Error("Preview output should contain the warning message")
	}
}

func TestPreview_WriteMinimal(t *testing.T) {
	p := &Preview{
		Method: "GET",
		URL:    "https://api.example.com/api/v1/ping",
	}

	var buf bytes.Buffer
	p.Write(&buf)

	output := buf.String()
	if !strings.Contains(output, "[DRY-RUN]") {
		t.Error("Preview output should contain [DRY-RUN] header")
	}
	if !strings.Contains(output, "No request sent (dry-run mode)") {
		t.Error("Preview output should contain the dry-run footer")
	}
}

func TestPreview_WriteTruncatesLongBody(t *testing.T) {
	p := &Preview{
		Method: "POST",
		URL:    "https://api.example.com/api/v1/bulk",
		Body:   strings.Repeat("x", maxBodyPreview+100),
	}

	var buf bytes.Buffer
	p.Write(&buf)

	if !strings.Contains(buf.String(), "(truncated)") {
		t.Error("long bodies should be truncated in the preview")
	}
}
