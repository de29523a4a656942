// AngelaMos | 2026
// service.go

package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/debtbook/internal/core"
	"github.com/carterperez-dev/debtbook/internal/identity"
)

type Service struct {
	repo   Repository
	engine *Engine
}

func NewService(repo Repository, engine *Engine) *Service {
	return &Service{
		repo:   repo,
		engine: engine,
	}
}

// ListDebtors returns every debtor with its derived balance. Readable by
// any authenticated role.
func (s *Service) ListDebtors(
	ctx context.Context,
	actor Actor,
) ([]DebtorWithBalanceResponse, error) {
	debtors, err := s.repo.ListDebtors(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(debtors))
	for i := range debtors {
		ids[i] = debtors[i].ID
	}

	balances, err := s.engine.ComputeBalances(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]DebtorWithBalanceResponse, len(debtors))
	for i := range debtors {
		responses[i] = DebtorWithBalanceResponse{
			DebtorResponse: ToDebtorResponse(&debtors[i]),
			Balance:        balances[debtors[i].ID],
		}
	}

	return responses, nil
}

// SearchDebtor looks up a single debtor by case-insensitive substring of
// name or phone number. A miss is a normal outcome and returns (nil, nil);
// it is never surfaced as an error.
func (s *Service) SearchDebtor(
	ctx context.Context,
	actor Actor,
	query string,
) (*DebtorHistoryResponse, error) {
	debtor, err := s.repo.SearchDebtor(ctx, query)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return s.debtorHistory(ctx, debtor)
}

func (s *Service) GetDebtor(
	ctx context.Context,
	actor Actor,
	id string,
) (*DebtorHistoryResponse, error) {
	debtor, err := s.repo.GetDebtorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.debtorHistory(ctx, debtor)
}

func (s *Service) RegisterDebtor(
	ctx context.Context,
	actor Actor,
	req RegisterDebtorRequest,
) (*DebtorResponse, error) {
	if !actor.Role.CanWrite() {
		return nil, core.NewForbidden(string(identity.RoleStaff))
	}

	debtor := &Debtor{
		ID:             uuid.New().String(),
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		GuarantorName:  req.GuarantorName,
		GuarantorPhone: req.GuarantorPhone,
		CreatedBy:      actor.ID,
	}

	if err := s.repo.CreateDebtor(ctx, debtor); err != nil {
		return nil, err
	}

	slog.Info("debtor registered",
		"debtor_id", debtor.ID,
		"actor_id", actor.ID,
	)

	resp := ToDebtorResponse(debtor)
	return &resp, nil
}

func (s *Service) UpdateDebtor(
	ctx context.Context,
	actor Actor,
	id string,
	req UpdateDebtorRequest,
) (*DebtorResponse, error) {
	if !actor.Role.CanWrite() {
		return nil, core.NewForbidden(string(identity.RoleStaff))
	}

	debtor := &Debtor{
		ID:             id,
		Name:           req.Name,
		PhoneNumber:    req.PhoneNumber,
		GuarantorName:  req.GuarantorName,
		GuarantorPhone: req.GuarantorPhone,
	}

	if err := s.repo.UpdateDebtor(ctx, debtor); err != nil {
		return nil, err
	}

	resp := ToDebtorResponse(debtor)
	return &resp, nil
}

// RecordDebt appends a debt entry against an existing debtor. The amount
// is validated at the store boundary; an unknown debtor id comes back as a
// validation error, not a 404, since the id is caller input.
func (s *Service) RecordDebt(
	ctx context.Context,
	actor Actor,
	debtorID string,
	req RecordDebtRequest,
) (*DebtResponse, error) {
	if !actor.Role.CanWrite() {
		return nil, core.NewForbidden(string(identity.RoleStaff))
	}

	debt := &Debt{
		ID:           uuid.New().String(),
		DebtorID:     debtorID,
		Amount:       req.Amount,
		Reason:       req.Reason,
		DateRecorded: orNow(req.DateRecorded),
		CreatedBy:    actor.ID,
	}

	if err := s.repo.CreateDebt(ctx, debt); err != nil {
		return nil, err
	}

	slog.Info("debt recorded",
		"debtor_id", debtorID,
		"debt_id", debt.ID,
		"amount", debt.Amount.String(),
		"actor_id", actor.ID,
	)

	resp := ToDebtResponse(debt)
	return &resp, nil
}

// RecordPayment appends a payment and reports the balance after it was
// applied. A payment larger than the outstanding balance is stored anyway
// and flagged with an advisory overpayment warning; the ledger records
// what happened, it does not referee it.
func (s *Service) RecordPayment(
	ctx context.Context,
	actor Actor,
	debtorID string,
	req RecordPaymentRequest,
) (*PaymentRecordedResponse, error) {
	if !actor.Role.CanWrite() {
		return nil, core.NewForbidden(string(identity.RoleStaff))
	}

	exists, err := s.repo.DebtorExists(ctx, debtorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, core.NewValidationError("debtor_id", "debtor does not exist")
	}

	before, err := s.engine.ComputeBalance(ctx, debtorID)
	if err != nil {
		return nil, err
	}

	payment := &Payment{
		ID:        uuid.New().String(),
		DebtorID:  debtorID,
		Amount:    req.Amount,
		DatePaid:  orNow(req.DatePaid),
		CreatedBy: actor.ID,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	overpaid := payment.Amount.GreaterThan(before.Balance)
	if overpaid {
		slog.Warn("payment exceeds outstanding balance",
			"debtor_id", debtorID,
			"payment_id", payment.ID,
			"amount", payment.Amount.String(),
			"balance", before.Balance.String(),
			"actor_id", actor.ID,
		)
	}

	after, err := s.engine.ComputeBalance(ctx, debtorID)
	if err != nil {
		return nil, err
	}

	return &PaymentRecordedResponse{
		Payment:            ToPaymentResponse(payment),
		Balance:            after,
		OverpaymentWarning: overpaid,
	}, nil
}

// DeleteDebtor removes a debtor and its full history. Admin only; the
// cascade is atomic, so a failure leaves the history intact.
func (s *Service) DeleteDebtor(
	ctx context.Context,
	actor Actor,
	id string,
) error {
	if !actor.Role.CanDelete() {
		return core.NewForbidden(string(identity.RoleAdmin))
	}

	if err := s.repo.DeleteDebtor(ctx, id); err != nil {
		return err
	}

	slog.Info("debtor deleted",
		"debtor_id", id,
		"actor_id", actor.ID,
	)

	return nil
}

func (s *Service) CountDebtors(ctx context.Context) (int, error) {
	return s.repo.CountDebtors(ctx)
}

func (s *Service) debtorHistory(
	ctx context.Context,
	debtor *Debtor,
) (*DebtorHistoryResponse, error) {
	balance, err := s.engine.ComputeBalance(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}

	debts, err := s.repo.ListDebtsByDebtor(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPaymentsByDebtor(ctx, debtor.ID)
	if err != nil {
		return nil, err
	}

	return &DebtorHistoryResponse{
		Debtor:   ToDebtorResponse(debtor),
		Balance:  balance,
		Debts:    ToDebtResponseList(debts),
		Payments: ToPaymentResponseList(payments),
	}, nil
}

func orNow(t *time.Time) time.Time {
	if t != nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
