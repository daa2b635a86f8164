package service

import (
	"context"
	"fmt"

	"infraspend/database"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BudgetSummary holds the derived figures of a budget.
type BudgetSummary struct {
	Budget           decimal.Decimal `json:"budget"`
	TotalExpenditure decimal.Decimal `json:"total_expenditure"`
	Remaining        decimal.Decimal `json:"remaining"`
	Utilization      int64           `json:"utilization"`
}

// Summarize derives remaining and utilization from a budget and what was spent.
// Remaining may be negative. Utilization is the rounded percentage, 0 for a zero budget.
func Summarize(budget, total decimal.Decimal) BudgetSummary {
	s := BudgetSummary{
		Budget:           budget,
		TotalExpenditure: total,
		Remaining:        budget.Sub(total),
	}
	if budget.IsPositive() {
		s.Utilization = total.Mul(hundred).Div(budget).Round(0).IntPart()
	}
	return s
}

// BudgetAggregator keeps projects.total_expenditure equal to the sum of the
// project's approved expenditures.
type BudgetAggregator struct{}

// Recompute sums the approved amounts of a project and stores the total. It
// must run in the same transaction as the mutation that triggered it. The
// project row is locked first, so recomputations of one project never
// interleave.
func (BudgetAggregator) Recompute(ctx context.Context, tx *database.Store, projectID uint) (decimal.Decimal, error) {
	if err := lockProject(ctx, tx, projectID); err != nil {
		return decimal.Zero, err
	}
	amounts, err := tx.ApprovedAmounts(ctx, projectID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load approved amounts: %w", err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	if err := tx.SetProjectTotal(ctx, projectID, total); err != nil {
		return decimal.Zero, fmt.Errorf("store project total: %w", err)
	}
	return total, nil
}
