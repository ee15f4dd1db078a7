package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodeFromStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ErrorCode
	}{
		{"400 Bad Request", 400, ErrBadRequest},
		{"401 Unauthorized", 401, ErrUnauthorized},
		{"403 Forbidden", 403, ErrForbidden},
		{"404 Not Found", 404, ErrNotFound},
		{"422 Validation", 422, ErrValidation},
		{"429 Rate Limited", 429, ErrRateLimited},
		{"500 Server Error", 500, ErrServerError},
		{"503 Server Error", 503, ErrServerError},
		{"201 Created is unexpected", 201, ErrUnexpectedStatus},
		{"204 No Content is unexpected", 204, ErrUnexpectedStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCodeFromStatus(tt.status); got != tt.want {
				t.Errorf("ErrorCodeFromStatus(%d) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}

func TestStructuredErrorFromError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		if got := StructuredErrorFromError(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("APIError", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", &APIError{StatusCode: 401, Body: "unauthorized", RequestID: "r1"})
		se := StructuredErrorFromError(err)
		if se.Code != ErrUnauthorized {
			t.Errorf("code = %q, want %q", se.Code, ErrUnauthorized)
		}
		if se.Context["status_code"] != 401 {
			t.Errorf("context status_code = %v", se.Context["status_code"])
		}
		if se.Context["request_id"] != "r1" {
			t.Errorf("context request_id = %v", se.Context["request_id"])
		}
		if se.Suggestion == "" {
			t.Error("expected a suggestion for 401")
		}
	})

	t.Run("passthrough", func(t *testing.T) {
		orig := NewStructuredError(ErrValidation, "bad input")
		if got := StructuredErrorFromError(orig); got != orig {
			t.Error("expected existing StructuredError to pass through")
		}
	})

	t.Run("generic", func(t *testing.T) {
		se := StructuredErrorFromError(errors.New("boom"))
		if se.Code != ErrUnknown || se.Message != "boom" {
			t.Errorf("got %+v", se)
		}
	})
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(&APIError{StatusCode: 404}) {
		t.Error("404 APIError should be a not found error")
	}
	if IsNotFoundError(&APIError{StatusCode: 400}) {
		t.Error("400 APIError should not be a not found error")
	}
	if IsNotFoundError(errors.New("not found")) {
		t.Error("plain errors are not APIErrors")
	}
}
