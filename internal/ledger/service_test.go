// AngelaMos | 2026
// service_test.go

package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debtbook/internal/core"
	"github.com/carterperez-dev/debtbook/internal/identity"
)

type fakeRepo struct {
	debtors  map[string]*Debtor
	debts    []Debt
	payments []Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{debtors: map[string]*Debtor{}}
}

func (f *fakeRepo) CreateDebtor(_ context.Context, debtor *Debtor) error {
	debtor.Normalize()
	if err := debtor.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	debtor.CreatedAt = now
	debtor.UpdatedAt = now
	stored := *debtor
	f.debtors[debtor.ID] = &stored
	return nil
}

func (f *fakeRepo) UpdateDebtor(_ context.Context, debtor *Debtor) error {
	debtor.Normalize()
	if err := debtor.Validate(); err != nil {
		return err
	}
	existing, ok := f.debtors[debtor.ID]
	if !ok {
		return fmt.Errorf("update debtor: %w", core.ErrNotFound)
	}
	debtor.CreatedBy = existing.CreatedBy
	debtor.CreatedAt = existing.CreatedAt
	debtor.UpdatedAt = time.Now().UTC()
	stored := *debtor
	f.debtors[debtor.ID] = &stored
	return nil
}

func (f *fakeRepo) GetDebtorByID(_ context.Context, id string) (*Debtor, error) {
	debtor, ok := f.debtors[id]
	if !ok {
		return nil, fmt.Errorf("get debtor: %w", core.ErrNotFound)
	}
	copied := *debtor
	return &copied, nil
}

func (f *fakeRepo) DeleteDebtor(_ context.Context, id string) error {
	if _, ok := f.debtors[id]; !ok {
		return fmt.Errorf("delete debtor: %w", core.ErrNotFound)
	}
	delete(f.debtors, id)

	kept := f.debts[:0]
	for _, d := range f.debts {
		if d.DebtorID != id {
			kept = append(kept, d)
		}
	}
	f.debts = kept

	keptPayments := f.payments[:0]
	for _, p := range f.payments {
		if p.DebtorID != id {
			keptPayments = append(keptPayments, p)
		}
	}
	f.payments = keptPayments
	return nil
}

func (f *fakeRepo) ListDebtors(_ context.Context) ([]Debtor, error) {
	debtors := make([]Debtor, 0, len(f.debtors))
	for _, d := range f.debtors {
		debtors = append(debtors, *d)
	}
	sort.Slice(debtors, func(i, j int) bool {
		a, b := strings.ToLower(debtors[i].Name), strings.ToLower(debtors[j].Name)
		if a != b {
			return a < b
		}
		return debtors[i].ID < debtors[j].ID
	})
	return debtors, nil
}

func (f *fakeRepo) SearchDebtor(_ context.Context, query string) (*Debtor, error) {
	needle := strings.ToLower(strings.TrimSpace(query))

	var best *Debtor
	for _, d := range f.debtors {
		if !strings.Contains(strings.ToLower(d.Name), needle) &&
			!strings.Contains(strings.ToLower(d.PhoneNumber), needle) {
			continue
		}
		if best == nil || d.ID < best.ID {
			best = d
		}
	}

	if best == nil {
		return nil, fmt.Errorf("search debtor: %w", core.ErrNotFound)
	}
	copied := *best
	return &copied, nil
}

func (f *fakeRepo) DebtorExists(_ context.Context, id string) (bool, error) {
	_, ok := f.debtors[id]
	return ok, nil
}

func (f *fakeRepo) CountDebtors(_ context.Context) (int, error) {
	return len(f.debtors), nil
}

func (f *fakeRepo) CreateDebt(_ context.Context, debt *Debt) error {
	debt.Normalize()
	if err := debt.Validate(); err != nil {
		return err
	}
	if _, ok := f.debtors[debt.DebtorID]; !ok {
		return core.NewValidationError("debtor_id", "debtor does not exist")
	}
	debt.CreatedAt = time.Now().UTC()
	f.debts = append(f.debts, *debt)
	return nil
}

func (f *fakeRepo) CreatePayment(_ context.Context, payment *Payment) error {
	if err := payment.Validate(); err != nil {
		return err
	}
	if _, ok := f.debtors[payment.DebtorID]; !ok {
		return core.NewValidationError("debtor_id", "debtor does not exist")
	}
	payment.CreatedAt = time.Now().UTC()
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeRepo) ListDebtsByDebtor(
	_ context.Context,
	debtorID string,
) ([]Debt, error) {
	var debts []Debt
	for _, d := range f.debts {
		if d.DebtorID == debtorID {
			debts = append(debts, d)
		}
	}
	sort.Slice(debts, func(i, j int) bool {
		return debts[i].DateRecorded.After(debts[j].DateRecorded)
	})
	return debts, nil
}

func (f *fakeRepo) ListPaymentsByDebtor(
	_ context.Context,
	debtorID string,
) ([]Payment, error) {
	var payments []Payment
	for _, p := range f.payments {
		if p.DebtorID == debtorID {
			payments = append(payments, p)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].DatePaid.After(payments[j].DatePaid)
	})
	return payments, nil
}

func (f *fakeRepo) SumDebts(
	_ context.Context,
	debtorIDs []string,
) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{}
	for _, id := range debtorIDs {
		for _, d := range f.debts {
			if d.DebtorID == id {
				sums[id] = sums[id].Add(d.Amount)
			}
		}
	}
	return sums, nil
}

func (f *fakeRepo) SumPayments(
	_ context.Context,
	debtorIDs []string,
) (map[string]decimal.Decimal, error) {
	sums := map[string]decimal.Decimal{}
	for _, id := range debtorIDs {
		for _, p := range f.payments {
			if p.DebtorID == id {
				sums[id] = sums[id].Add(p.Amount)
			}
		}
	}
	return sums, nil
}

var _ Repository = (*fakeRepo)(nil)

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, NewEngine(repo)), repo
}

var (
	viewerActor = Actor{ID: "u-viewer", Role: identity.RoleViewer}
	staffActor  = Actor{ID: "u-staff", Role: identity.RoleStaff}
	adminActor  = Actor{ID: "u-admin", Role: identity.RoleAdmin}
)

func seedDebtor(t *testing.T, svc *Service, name, phone string) string {
	t.Helper()
	debtor, err := svc.RegisterDebtor(
		context.Background(),
		staffActor,
		RegisterDebtorRequest{Name: name, PhoneNumber: phone},
	)
	if err != nil {
		t.Fatalf("seed debtor: %v", err)
	}
	return debtor.ID
}

func seedDebt(t *testing.T, svc *Service, debtorID, amount, reason string) {
	t.Helper()
	_, err := svc.RecordDebt(
		context.Background(),
		staffActor,
		debtorID,
		RecordDebtRequest{
			Amount: decimal.RequireFromString(amount),
			Reason: reason,
		},
	)
	if err != nil {
		t.Fatalf("seed debt: %v", err)
	}
}

func TestViewerCannotWrite(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")

	amount := decimal.RequireFromString("10.00")

	tests := []struct {
		name string
		op   func() error
	}{
		{"register debtor", func() error {
			_, err := svc.RegisterDebtor(ctx, viewerActor, RegisterDebtorRequest{
				Name:        "Jane Doe",
				PhoneNumber: "555-0102",
			})
			return err
		}},
		{"update debtor", func() error {
			_, err := svc.UpdateDebtor(ctx, viewerActor, debtorID,
				UpdateDebtorRequest{Name: "John S", PhoneNumber: "555-0101"})
			return err
		}},
		{"record debt", func() error {
			_, err := svc.RecordDebt(ctx, viewerActor, debtorID,
				RecordDebtRequest{Amount: amount, Reason: "groceries"})
			return err
		}},
		{"record payment", func() error {
			_, err := svc.RecordPayment(ctx, viewerActor, debtorID,
				RecordPaymentRequest{Amount: amount})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if err == nil {
				t.Fatal("expected forbidden error")
			}

			var forbidden *core.ForbiddenError
			if !errors.As(err, &forbidden) {
				t.Fatalf("expected ForbiddenError, got %v", err)
			}
			if forbidden.RequiredRole != "staff" {
				t.Errorf("required role: got %q, want staff",
					forbidden.RequiredRole)
			}
		})
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")

	for _, actor := range []Actor{viewerActor, staffActor} {
		t.Run(string(actor.Role), func(t *testing.T) {
			err := svc.DeleteDebtor(ctx, actor, debtorID)
			if err == nil {
				t.Fatal("expected forbidden error")
			}

			var forbidden *core.ForbiddenError
			if !errors.As(err, &forbidden) {
				t.Fatalf("expected ForbiddenError, got %v", err)
			}
			if forbidden.RequiredRole != "admin" {
				t.Errorf("required role: got %q, want admin",
					forbidden.RequiredRole)
			}
		})
	}

	if err := svc.DeleteDebtor(ctx, adminActor, debtorID); err != nil {
		t.Fatalf("admin delete should succeed: %v", err)
	}
}

func TestDeleteDebtorCascades(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")
	seedDebt(t, svc, debtorID, "50.00", "groceries")
	if _, err := svc.RecordPayment(ctx, staffActor, debtorID,
		RecordPaymentRequest{Amount: decimal.RequireFromString("20.00")},
	); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	if err := svc.DeleteDebtor(ctx, adminActor, debtorID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(repo.debts) != 0 || len(repo.payments) != 0 {
		t.Errorf("cascade left %d debts, %d payments",
			len(repo.debts), len(repo.payments))
	}

	_, err := svc.GetDebtor(ctx, viewerActor, debtorID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRecordPaymentOverpaymentWarning(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")
	seedDebt(t, svc, debtorID, "50.00", "groceries")
	seedDebt(t, svc, debtorID, "25.50", "fuel")

	result, err := svc.RecordPayment(ctx, staffActor, debtorID,
		RecordPaymentRequest{Amount: decimal.RequireFromString("30.00")})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if result.OverpaymentWarning {
		t.Error("payment below balance should not warn")
	}
	assertDecimal(t, "balance after", result.Balance.Balance, "45.50")

	result, err = svc.RecordPayment(ctx, staffActor, debtorID,
		RecordPaymentRequest{Amount: decimal.RequireFromString("100.00")})
	if err != nil {
		t.Fatalf("record overpayment: %v", err)
	}
	if !result.OverpaymentWarning {
		t.Error("payment above balance should warn")
	}
	assertDecimal(t, "balance after overpayment", result.Balance.Balance, "-54.50")
}

func TestRecordPaymentUnknownDebtor(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RecordPayment(
		context.Background(),
		staffActor,
		"no-such-debtor",
		RecordPaymentRequest{Amount: decimal.RequireFromString("10.00")},
	)
	if err == nil {
		t.Fatal("expected validation error")
	}

	ve, ok := core.AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "debtor_id" {
		t.Errorf("field: got %q, want debtor_id", ve.Field)
	}
}

func TestSearchDebtorMissIsNotAnError(t *testing.T) {
	svc, _ := newTestService()
	seedDebtor(t, svc, "John Smith", "555-0101")

	result, err := svc.SearchDebtor(context.Background(), viewerActor, "zzz")
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if result != nil {
		t.Errorf("expected nil result on miss, got %+v", result)
	}
}

func TestSearchDebtorMatchesNameAndPhone(t *testing.T) {
	svc, _ := newTestService()
	seedDebtor(t, svc, "John Smith", "555-0101")

	byName, err := svc.SearchDebtor(context.Background(), viewerActor, "john")
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if byName == nil {
		t.Fatal("expected match on name substring")
	}

	byPhone, err := svc.SearchDebtor(context.Background(), viewerActor, "0101")
	if err != nil {
		t.Fatalf("search by phone: %v", err)
	}
	if byPhone == nil {
		t.Fatal("expected match on phone substring")
	}
}

func TestSearchDebtorTieBreaksOnID(t *testing.T) {
	svc, repo := newTestService()

	for _, id := range []string{"b-2", "a-1"} {
		repo.debtors[id] = &Debtor{
			ID:          id,
			Name:        "John Smith",
			PhoneNumber: "555-010" + id[:1],
		}
	}

	result, err := svc.SearchDebtor(context.Background(), viewerActor, "smith")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result == nil {
		t.Fatal("expected a match")
	}
	if result.Debtor.ID != "a-1" {
		t.Errorf("tie-break: got %s, want a-1", result.Debtor.ID)
	}
}

func TestListDebtorsWithBalances(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	bID := seedDebtor(t, svc, "Bob", "555-0202")
	aID := seedDebtor(t, svc, "alice", "555-0201")
	seedDebt(t, svc, bID, "40.00", "rent")

	debtors, err := svc.ListDebtors(ctx, viewerActor)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(debtors) != 2 {
		t.Fatalf("expected 2 debtors, got %d", len(debtors))
	}

	if debtors[0].ID != aID || debtors[1].ID != bID {
		t.Errorf("expected case-insensitive name order, got %s, %s",
			debtors[0].Name, debtors[1].Name)
	}

	assertDecimal(t, "alice balance", debtors[0].Balance.Balance, "0")
	assertDecimal(t, "bob balance", debtors[1].Balance.Balance, "40.00")
}

func TestGetDebtorHistory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	debtorID := seedDebtor(t, svc, "John Smith", "555-0101")
	seedDebt(t, svc, debtorID, "50.00", "groceries")
	if _, err := svc.RecordPayment(ctx, staffActor, debtorID,
		RecordPaymentRequest{Amount: decimal.RequireFromString("15.00")},
	); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	history, err := svc.GetDebtor(ctx, viewerActor, debtorID)
	if err != nil {
		t.Fatalf("get debtor: %v", err)
	}

	if len(history.Debts) != 1 || len(history.Payments) != 1 {
		t.Fatalf("expected 1 debt and 1 payment, got %d and %d",
			len(history.Debts), len(history.Payments))
	}
	if history.Debts[0].CreatedBy != staffActor.ID {
		t.Errorf("debt created_by: got %s, want %s",
			history.Debts[0].CreatedBy, staffActor.ID)
	}
	assertDecimal(t, "balance", history.Balance.Balance, "35.00")
}
