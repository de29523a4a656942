// AngelaMos | 2026
// balance.go

package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// AggregateSource supplies per-debtor sums over the debt and payment rows.
// Each call covers a batch of debtor ids in a single query; debtors with no
// rows are simply absent from the returned map.
type AggregateSource interface {
	SumDebts(ctx context.Context, debtorIDs []string) (map[string]decimal.Decimal, error)
	SumPayments(ctx context.Context, debtorIDs []string) (map[string]decimal.Decimal, error)
}

// Engine derives balances from ledger rows on demand. Nothing is cached or
// persisted: a balance read always reflects the rows at the moment of the
// query.
type Engine struct {
	source AggregateSource
}

func NewEngine(source AggregateSource) *Engine {
	return &Engine{source: source}
}

func (e *Engine) ComputeBalance(
	ctx context.Context,
	debtorID string,
) (Balance, error) {
	balances, err := e.ComputeBalances(ctx, []string{debtorID})
	if err != nil {
		return Balance{}, err
	}
	return balances[debtorID], nil
}

// ComputeBalances resolves balances for a batch of debtors with two
// aggregate queries regardless of batch size. A debtor with no debts and
// no payments gets an all-zero balance.
func (e *Engine) ComputeBalances(
	ctx context.Context,
	debtorIDs []string,
) (map[string]Balance, error) {
	balances := make(map[string]Balance, len(debtorIDs))
	for _, id := range debtorIDs {
		balances[id] = ZeroBalance()
	}

	if len(debtorIDs) == 0 {
		return balances, nil
	}

	debts, err := e.source.SumDebts(ctx, debtorIDs)
	if err != nil {
		return nil, fmt.Errorf("summing debts: %w", err)
	}

	payments, err := e.source.SumPayments(ctx, debtorIDs)
	if err != nil {
		return nil, fmt.Errorf("summing payments: %w", err)
	}

	for id := range balances {
		totalDebt := decimal.Zero
		if sum, ok := debts[id]; ok {
			totalDebt = sum
		}

		totalPaid := decimal.Zero
		if sum, ok := payments[id]; ok {
			totalPaid = sum
		}

		balances[id] = Balance{
			TotalDebt: totalDebt,
			TotalPaid: totalPaid,
			Balance:   totalDebt.Sub(totalPaid),
		}
	}

	return balances, nil
}
