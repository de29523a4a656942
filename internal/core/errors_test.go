// AngelaMos | 2026
// errors_test.go

package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestValidationErrorUnwraps(t *testing.T) {
	err := NewValidationError("amount", "must be greater than zero")

	if !errors.Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}

	ve, ok := AsValidation(fmt.Errorf("record debt: %w", err))
	if !ok {
		t.Fatal("AsValidation should match through wrapping")
	}
	if ve.Field != "amount" {
		t.Errorf("field: got %q, want amount", ve.Field)
	}
}

func TestForbiddenErrorUnwraps(t *testing.T) {
	err := NewForbidden("staff")

	if !errors.Is(err, ErrForbidden) {
		t.Error("ForbiddenError should unwrap to ErrForbidden")
	}

	var fe *ForbiddenError
	if !errors.As(fmt.Errorf("register debtor: %w", err), &fe) {
		t.Fatal("errors.As should match through wrapping")
	}
	if fe.RequiredRole != "staff" {
		t.Errorf("required role: got %q, want staff", fe.RequiredRole)
	}
}

func TestClassifyStoreError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"insufficient resources", &pgconn.PgError{Code: "53300"}, true},
		{"operator intervention", &pgconn.PgError{Code: "57014"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"fk violation", &pgconn.PgError{Code: "23503"}, false},
		{"plain error", errors.New("syntax error"), false},
		{"refused", errors.New("dial tcp: connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := ClassifyStoreError(tt.err)
			got := errors.Is(classified, ErrStoreUnavailable)
			if got != tt.unavailable {
				t.Errorf("unavailable: got %v, want %v (err=%v)",
					got, tt.unavailable, classified)
			}
		})
	}
}

func TestDuplicateAndForeignKeyDetection(t *testing.T) {
	if !IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}) {
		t.Error("23505 should be a duplicate key error")
	}
	if IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 is not a duplicate key error")
	}
	if !IsForeignKeyError(&pgconn.PgError{Code: "23503"}) {
		t.Error("23503 should be a foreign key error")
	}
}
