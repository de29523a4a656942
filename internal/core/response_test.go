// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			"validation error",
			NewValidationError("amount", "must be greater than zero"),
			http.StatusBadRequest,
			"VALIDATION_ERROR",
		},
		{
			"forbidden with role",
			NewForbidden("admin"),
			http.StatusForbidden,
			"FORBIDDEN",
		},
		{
			"not found",
			fmt.Errorf("get debtor: %w", ErrNotFound),
			http.StatusNotFound,
			"NOT_FOUND",
		},
		{
			"store unavailable",
			fmt.Errorf("list debtors: %w", ErrStoreUnavailable),
			http.StatusServiceUnavailable,
			"STORE_UNAVAILABLE",
		},
		{
			"duplicate",
			fmt.Errorf("create user: %w", ErrDuplicateKey),
			http.StatusConflict,
			"DUPLICATE",
		},
		{
			"token expired app error",
			TokenExpiredError(),
			http.StatusUnauthorized,
			"TOKEN_EXPIRED",
		},
		{
			"unclassified",
			fmt.Errorf("something broke"),
			http.StatusInternalServerError,
			"INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSONError(rec, tt.err)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}

			var body struct {
				Success bool `json:"success"`
				Error   struct {
					Code  string `json:"code"`
					Field string `json:"field"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}

			if body.Success {
				t.Error("error responses must not claim success")
			}
			if body.Error.Code != tt.code {
				t.Errorf("code: got %q, want %q", body.Error.Code, tt.code)
			}
		})
	}
}

func TestJSONErrorValidationKeepsField(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, NewValidationError("phone_number", "must not be empty"))

	var body struct {
		Error struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}

	if body.Error.Field != "phone_number" {
		t.Errorf("field: got %q, want phone_number", body.Error.Field)
	}
	if body.Error.Message != "must not be empty" {
		t.Errorf("message: got %q", body.Error.Message)
	}
}

func TestServiceUnavailableSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	ServiceUnavailable(rec, "storage temporarily unavailable")

	if got := rec.Header().Get("Retry-After"); got != "5" {
		t.Errorf("Retry-After: got %q, want 5", got)
	}
}
