// AngelaMos | 2026
// repository.go

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/debtbook/internal/core"
)

type Repository interface {
	CreateDebtor(ctx context.Context, debtor *Debtor) error
	UpdateDebtor(ctx context.Context, debtor *Debtor) error
	GetDebtorByID(ctx context.Context, id string) (*Debtor, error)
	DeleteDebtor(ctx context.Context, id string) error
	ListDebtors(ctx context.Context) ([]Debtor, error)
	SearchDebtor(ctx context.Context, query string) (*Debtor, error)
	DebtorExists(ctx context.Context, id string) (bool, error)
	CountDebtors(ctx context.Context) (int, error)

	CreateDebt(ctx context.Context, debt *Debt) error
	CreatePayment(ctx context.Context, payment *Payment) error
	ListDebtsByDebtor(ctx context.Context, debtorID string) ([]Debt, error)
	ListPaymentsByDebtor(ctx context.Context, debtorID string) ([]Payment, error)

	AggregateSource
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// CreateDebtor normalizes and validates at the store boundary: nothing
// reaches a ledger table without passing these checks.
func (r *repository) CreateDebtor(ctx context.Context, debtor *Debtor) error {
	debtor.Normalize()
	if err := debtor.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO debtors
			(id, name, phone_number, guarantor_name, guarantor_phone, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, debtor, query,
		debtor.ID,
		debtor.Name,
		debtor.PhoneNumber,
		debtor.GuarantorName,
		debtor.GuarantorPhone,
		debtor.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("create debtor: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) UpdateDebtor(ctx context.Context, debtor *Debtor) error {
	debtor.Normalize()
	if err := debtor.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE debtors
		SET name = $2,
		    phone_number = $3,
		    guarantor_name = $4,
		    guarantor_phone = $5,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING created_by, created_at, updated_at`

	err := r.db.GetContext(ctx, debtor, query,
		debtor.ID,
		debtor.Name,
		debtor.PhoneNumber,
		debtor.GuarantorName,
		debtor.GuarantorPhone,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update debtor: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update debtor: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) GetDebtorByID(
	ctx context.Context,
	id string,
) (*Debtor, error) {
	query := `
		SELECT id, name, phone_number, guarantor_name, guarantor_phone,
		       created_by, created_at, updated_at
		FROM debtors
		WHERE id = $1`

	var debtor Debtor
	err := r.db.GetContext(ctx, &debtor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get debtor: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get debtor: %w", core.ClassifyStoreError(err))
	}

	return &debtor, nil
}

// DeleteDebtor removes the debtor and every debt and payment row under it
// in one transaction. The schema cascades on delete as well; the explicit
// deletes keep the cascade visible and atomic from the application side.
func (r *repository) DeleteDebtor(ctx context.Context, id string) error {
	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM payments WHERE debtor_id = $1`, id)
		if err != nil {
			return fmt.Errorf(
				"delete payments: %w",
				core.ClassifyStoreError(err),
			)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM debts WHERE debtor_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete debts: %w", core.ClassifyStoreError(err))
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM debtors WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete debtor: %w", core.ClassifyStoreError(err))
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete debtor: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete debtor: %w", core.ErrNotFound)
		}

		return nil
	})
}

func (r *repository) ListDebtors(ctx context.Context) ([]Debtor, error) {
	query := `
		SELECT id, name, phone_number, guarantor_name, guarantor_phone,
		       created_by, created_at, updated_at
		FROM debtors
		ORDER BY LOWER(name) ASC, id ASC`

	debtors := []Debtor{}
	if err := r.db.SelectContext(ctx, &debtors, query); err != nil {
		return nil, fmt.Errorf("list debtors: %w", core.ClassifyStoreError(err))
	}

	return debtors, nil
}

// SearchDebtor matches a case-insensitive substring against name or phone
// number. Multiple matches tie-break on the smallest id so the same query
// always lands on the same debtor.
func (r *repository) SearchDebtor(
	ctx context.Context,
	query string,
) (*Debtor, error) {
	sqlQuery := `
		SELECT id, name, phone_number, guarantor_name, guarantor_phone,
		       created_by, created_at, updated_at
		FROM debtors
		WHERE name ILIKE $1 OR phone_number ILIKE $1
		ORDER BY id ASC
		LIMIT 1`

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"

	var debtor Debtor
	err := r.db.GetContext(ctx, &debtor, sqlQuery, pattern)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("search debtor: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("search debtor: %w", core.ClassifyStoreError(err))
	}

	return &debtor, nil
}

func (r *repository) DebtorExists(
	ctx context.Context,
	id string,
) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM debtors WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf(
			"check debtor exists: %w",
			core.ClassifyStoreError(err),
		)
	}

	return exists, nil
}

func (r *repository) CountDebtors(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM debtors`)
	if err != nil {
		return 0, fmt.Errorf("count debtors: %w", core.ClassifyStoreError(err))
	}

	return count, nil
}

func (r *repository) CreateDebt(ctx context.Context, debt *Debt) error {
	debt.Normalize()
	if err := debt.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO debts (id, debtor_id, amount, reason, date_recorded, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, debt, query,
		debt.ID,
		debt.DebtorID,
		debt.Amount,
		debt.Reason,
		debt.DateRecorded,
		debt.CreatedBy,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return core.NewValidationError("debtor_id", "debtor does not exist")
		}
		return fmt.Errorf("create debt: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) CreatePayment(
	ctx context.Context,
	payment *Payment,
) error {
	if err := payment.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO payments (id, debtor_id, amount, date_paid, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, payment, query,
		payment.ID,
		payment.DebtorID,
		payment.Amount,
		payment.DatePaid,
		payment.CreatedBy,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return core.NewValidationError("debtor_id", "debtor does not exist")
		}
		return fmt.Errorf("create payment: %w", core.ClassifyStoreError(err))
	}

	return nil
}

func (r *repository) ListDebtsByDebtor(
	ctx context.Context,
	debtorID string,
) ([]Debt, error) {
	query := `
		SELECT id, debtor_id, amount, reason, date_recorded, created_by, created_at
		FROM debts
		WHERE debtor_id = $1
		ORDER BY date_recorded DESC, created_at DESC`

	debts := []Debt{}
	if err := r.db.SelectContext(ctx, &debts, query, debtorID); err != nil {
		return nil, fmt.Errorf("list debts: %w", core.ClassifyStoreError(err))
	}

	return debts, nil
}

func (r *repository) ListPaymentsByDebtor(
	ctx context.Context,
	debtorID string,
) ([]Payment, error) {
	query := `
		SELECT id, debtor_id, amount, date_paid, created_by, created_at
		FROM payments
		WHERE debtor_id = $1
		ORDER BY date_paid DESC, created_at DESC`

	payments := []Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, debtorID); err != nil {
		return nil, fmt.Errorf("list payments: %w", core.ClassifyStoreError(err))
	}

	return payments, nil
}

// SumDebts aggregates debt totals for a batch of debtors in one query.
func (r *repository) SumDebts(
	ctx context.Context,
	debtorIDs []string,
) (map[string]decimal.Decimal, error) {
	return r.sumByDebtor(ctx, "debts", debtorIDs)
}

// SumPayments aggregates payment totals for a batch of debtors in one query.
func (r *repository) SumPayments(
	ctx context.Context,
	debtorIDs []string,
) (map[string]decimal.Decimal, error) {
	return r.sumByDebtor(ctx, "payments", debtorIDs)
}

func (r *repository) sumByDebtor(
	ctx context.Context,
	table string,
	debtorIDs []string,
) (map[string]decimal.Decimal, error) {
	sums := make(map[string]decimal.Decimal, len(debtorIDs))
	if len(debtorIDs) == 0 {
		return sums, nil
	}

	// table is one of two compile-time constants, never caller input.
	query, args, err := sqlx.In(fmt.Sprintf(`
		SELECT debtor_id, SUM(amount) AS total
		FROM %s
		WHERE debtor_id IN (?)
		GROUP BY debtor_id`, table), debtorIDs)
	if err != nil {
		return nil, fmt.Errorf("sum %s: %w", table, err)
	}

	query = r.db.Rebind(query)

	rows := []struct {
		DebtorID string          `db:"debtor_id"`
		Total    decimal.Decimal `db:"total"`
	}{}

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum %s: %w", table, core.ClassifyStoreError(err))
	}

	for _, row := range rows {
		sums[row.DebtorID] = row.Total
	}

	return sums, nil
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
