// AngelaMos | 2026
// entity.go

package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debtbook/internal/core"
	"github.com/carterperez-dev/debtbook/internal/identity"
)

// Actor is the authenticated caller threaded explicitly into every service
// operation. No ambient session state: the role travels with the call.
type Actor struct {
	ID   string
	Role identity.Role
}

type Debtor struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	PhoneNumber    string     `db:"phone_number"`
	GuarantorName  *string    `db:"guarantor_name"`
	GuarantorPhone *string    `db:"guarantor_phone"`
	CreatedBy      string     `db:"created_by"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

type Debt struct {
	ID           string          `db:"id"`
	DebtorID     string          `db:"debtor_id"`
	Amount       decimal.Decimal `db:"amount"`
	Reason       string          `db:"reason"`
	DateRecorded time.Time       `db:"date_recorded"`
	CreatedBy    string          `db:"created_by"`
	CreatedAt    time.Time       `db:"created_at"`
}

type Payment struct {
	ID        string          `db:"id"`
	DebtorID  string          `db:"debtor_id"`
	Amount    decimal.Decimal `db:"amount"`
	DatePaid  time.Time       `db:"date_paid"`
	CreatedBy string          `db:"created_by"`
	CreatedAt time.Time       `db:"created_at"`
}

// Balance is derived from the debt and payment rows on every read; it is
// never stored, so it cannot drift out of sync with them.
type Balance struct {
	TotalDebt decimal.Decimal `json:"total_debt"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	Balance   decimal.Decimal `json:"balance"`
}

func ZeroBalance() Balance {
	return Balance{
		TotalDebt: decimal.Zero,
		TotalPaid: decimal.Zero,
		Balance:   decimal.Zero,
	}
}

// Normalize trims all text fields and collapses blank optional guarantor
// fields to absent.
func (d *Debtor) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	d.GuarantorName = normalizeOptional(d.GuarantorName)
	d.GuarantorPhone = normalizeOptional(d.GuarantorPhone)
}

func (d *Debtor) Validate() error {
	if d.Name == "" {
		return core.NewValidationError("name", "must not be empty")
	}
	if d.PhoneNumber == "" {
		return core.NewValidationError("phone_number", "must not be empty")
	}
	return nil
}

func (d *Debt) Normalize() {
	d.Reason = strings.TrimSpace(d.Reason)
}

func (d *Debt) Validate() error {
	if err := validateAmount("amount", d.Amount); err != nil {
		return err
	}
	if d.Reason == "" {
		return core.NewValidationError("reason", "must not be empty")
	}
	return nil
}

func (p *Payment) Validate() error {
	return validateAmount("amount", p.Amount)
}

// validateAmount enforces the two store invariants on money columns:
// strictly positive and at most two fractional digits. Exponent() is
// negative for fractional decimals, so -2 is the finest allowed scale.
func validateAmount(field string, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return core.NewValidationError(field, "must be greater than zero")
	}
	if amount.Exponent() < -2 {
		return core.NewValidationError(
			field,
			"must have at most 2 decimal places",
		)
	}
	return nil
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
