// AngelaMos | 2026
// dto.go

package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type RegisterDebtorRequest struct {
	Name           string  `json:"name"            validate:"required,max=255"`
	PhoneNumber    string  `json:"phone_number"    validate:"required,max=32"`
	GuarantorName  *string `json:"guarantor_name"  validate:"omitempty,max=255"`
	GuarantorPhone *string `json:"guarantor_phone" validate:"omitempty,max=32"`
}

type UpdateDebtorRequest struct {
	Name           string  `json:"name"            validate:"required,max=255"`
	PhoneNumber    string  `json:"phone_number"    validate:"required,max=32"`
	GuarantorName  *string `json:"guarantor_name"  validate:"omitempty,max=255"`
	GuarantorPhone *string `json:"guarantor_phone" validate:"omitempty,max=32"`
}

type RecordDebtRequest struct {
	Amount       decimal.Decimal `json:"amount"        validate:"required"`
	Reason       string          `json:"reason"        validate:"required,max=500"`
	DateRecorded *time.Time      `json:"date_recorded" validate:"omitempty"`
}

type RecordPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"    validate:"required"`
	DatePaid *time.Time      `json:"date_paid" validate:"omitempty"`
}

type DebtorResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PhoneNumber    string    `json:"phone_number"`
	GuarantorName  *string   `json:"guarantor_name,omitempty"`
	GuarantorPhone *string   `json:"guarantor_phone,omitempty"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type DebtorWithBalanceResponse struct {
	DebtorResponse
	Balance Balance `json:"balance"`
}

type DebtResponse struct {
	ID           string          `json:"id"`
	DebtorID     string          `json:"debtor_id"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	DateRecorded time.Time       `json:"date_recorded"`
	CreatedBy    string          `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PaymentResponse struct {
	ID        string          `json:"id"`
	DebtorID  string          `json:"debtor_id"`
	Amount    decimal.Decimal `json:"amount"`
	DatePaid  time.Time       `json:"date_paid"`
	CreatedBy string          `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// DebtorHistoryResponse is the full view of one debtor: identity fields,
// derived balance, and both transaction lists newest first.
type DebtorHistoryResponse struct {
	Debtor   DebtorResponse    `json:"debtor"`
	Balance  Balance           `json:"balance"`
	Debts    []DebtResponse    `json:"debts"`
	Payments []PaymentResponse `json:"payments"`
}

// SearchResponse reports a miss as found=false with an empty body rather
// than an error; not finding a debtor is an ordinary outcome of a lookup.
type SearchResponse struct {
	Found  bool                   `json:"found"`
	Result *DebtorHistoryResponse `json:"result,omitempty"`
}

// PaymentRecordedResponse carries the payment together with the balance
// after it was applied. OverpaymentWarning is advisory: the payment is
// stored either way.
type PaymentRecordedResponse struct {
	Payment            PaymentResponse `json:"payment"`
	Balance            Balance         `json:"balance"`
	OverpaymentWarning bool            `json:"overpayment_warning"`
}

func ToDebtorResponse(d *Debtor) DebtorResponse {
	return DebtorResponse{
		ID:             d.ID,
		Name:           d.Name,
		PhoneNumber:    d.PhoneNumber,
		GuarantorName:  d.GuarantorName,
		GuarantorPhone: d.GuarantorPhone,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func ToDebtResponse(d *Debt) DebtResponse {
	return DebtResponse{
		ID:           d.ID,
		DebtorID:     d.DebtorID,
		Amount:       d.Amount,
		Reason:       d.Reason,
		DateRecorded: d.DateRecorded,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
	}
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		DebtorID:  p.DebtorID,
		Amount:    p.Amount,
		DatePaid:  p.DatePaid,
		CreatedBy: p.CreatedBy,
		CreatedAt: p.CreatedAt,
	}
}

func ToDebtResponseList(debts []Debt) []DebtResponse {
	responses := make([]DebtResponse, len(debts))
	for i := range debts {
		responses[i] = ToDebtResponse(&debts[i])
	}
	return responses
}

func ToPaymentResponseList(payments []Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
