// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"bearer token", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"scheme only", "Bearer", ""},
		{"extra whitespace", "Bearer   abc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			if got := ExtractToken(req); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		status   int
	}{
		{"admin passes admin gate", "admin", []string{"admin"}, http.StatusOK},
		{"staff passes staff gate", "staff", []string{"staff", "admin"}, http.StatusOK},
		{"viewer blocked from staff gate", "viewer", []string{"staff", "admin"}, http.StatusForbidden},
		{"staff blocked from admin gate", "staff", []string{"admin"}, http.StatusForbidden},
		{"no role is unauthorized", "", []string{"admin"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), UserRoleKey, tt.role)
				req = req.WithContext(ctx)
			}

			rec := httptest.NewRecorder()
			RequireRole(tt.required...)(next).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status: got %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	if GetUserID(ctx) != "" || GetUserRole(ctx) != "" {
		t.Error("empty context should yield empty identity")
	}
	if IsAuthenticated(ctx) {
		t.Error("empty context is not authenticated")
	}

	ctx = context.WithValue(ctx, UserIDKey, "u-1")
	ctx = context.WithValue(ctx, UserRoleKey, "staff")

	if GetUserID(ctx) != "u-1" {
		t.Errorf("user id: got %q", GetUserID(ctx))
	}
	if GetUserRole(ctx) != "staff" {
		t.Errorf("role: got %q", GetUserRole(ctx))
	}
	if !IsAuthenticated(ctx) {
		t.Error("context with user id should be authenticated")
	}
}
