// AngelaMos | 2026
// entity_test.go

package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debtbook/internal/core"
)

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		valid  bool
	}{
		{"positive integer", "100", true},
		{"two decimal places", "45.50", true},
		{"one decimal place", "45.5", true},
		{"smallest unit", "0.01", true},
		{"zero", "0", false},
		{"zero with scale", "0.00", false},
		{"negative", "-10.00", false},
		{"three decimal places", "10.005", false},
		{"many decimal places", "10.00001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.amount, err)
			}

			err = validateAmount("amount", amount)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, core.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
			}
		})
	}
}

func TestDebtorNormalize(t *testing.T) {
	blank := "   "
	guarantor := "  Jane Doe  "

	debtor := &Debtor{
		Name:           "  John Smith ",
		PhoneNumber:    " 555-0101 ",
		GuarantorName:  &guarantor,
		GuarantorPhone: &blank,
	}

	debtor.Normalize()

	if debtor.Name != "John Smith" {
		t.Errorf("Name: got %q", debtor.Name)
	}
	if debtor.PhoneNumber != "555-0101" {
		t.Errorf("PhoneNumber: got %q", debtor.PhoneNumber)
	}
	if debtor.GuarantorName == nil || *debtor.GuarantorName != "Jane Doe" {
		t.Errorf("GuarantorName: got %v", debtor.GuarantorName)
	}
	if debtor.GuarantorPhone != nil {
		t.Errorf("blank guarantor phone should normalize to nil, got %q",
			*debtor.GuarantorPhone)
	}
}

func TestDebtorValidate(t *testing.T) {
	tests := []struct {
		name   string
		debtor Debtor
		field  string
	}{
		{"missing name", Debtor{PhoneNumber: "555-0101"}, "name"},
		{"missing phone", Debtor{Name: "John"}, "phone_number"},
		{"whitespace name", Debtor{Name: "   ", PhoneNumber: "555-0101"}, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.debtor.Normalize()
			err := tt.debtor.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}

			ve, ok := core.AsValidation(err)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field: got %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestDebtValidate(t *testing.T) {
	debt := &Debt{
		Amount: decimal.RequireFromString("10.00"),
		Reason: "  ",
	}
	debt.Normalize()

	err := debt.Validate()
	if err == nil {
		t.Fatal("expected validation error for blank reason")
	}

	ve, ok := core.AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "reason" {
		t.Errorf("field: got %q, want reason", ve.Field)
	}
}
