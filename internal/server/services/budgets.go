package services

import (
	"context"
	"strings"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
)

// BudgetRecalculator keeps every budget's derived spent value equal to the
// sum of the owner's active expenses in the budget's category.
type BudgetRecalculator struct {
	budgets  budgets.Repository
	expenses expenses.Repository
	logger   logging.Logger
}

func NewBudgetRecalculator(budgetRepo budgets.Repository, expenseRepo expenses.Repository, logger logging.Logger) *BudgetRecalculator {
	return &BudgetRecalculator{budgets: budgetRepo, expenses: expenseRepo, logger: logger}
}

// RecalculateAllForOwner recomputes spent for every active budget of the
// owner. Unchanged budgets are left untouched so their synced flag survives;
// only budgets whose spent actually moved are rewritten (and thereby marked
// unsynced for the next sync run).
func (r *BudgetRecalculator) RecalculateAllForOwner(ctx context.Context, userID string) error {
	budgetList, err := r.budgets.GetAllActive(ctx, userID)
	if err != nil {
		return err
	}
	if len(budgetList) == 0 {
		return nil
	}

	expenseList, err := r.expenses.GetAllActive(ctx, userID)
	if err != nil {
		return err
	}

	spentByCategory := map[string]float64{}
	for _, e := range expenseList {
		spentByCategory[strings.ToLower(e.Category)] += e.Amount
	}

	for _, b := range budgetList {
		spent := spentByCategory[strings.ToLower(b.Category)]
		if spent == b.Spent {
			continue
		}
		if err := r.budgets.UpdateSpent(ctx, b.ID, spent); err != nil {
			return err
		}
	}
	return nil
}

// Trigger runs a recalculation and only logs on failure. Expense CRUD calls
// it after every mutation; a failed recalculation must not fail the mutation
// that already committed.
func (r *BudgetRecalculator) Trigger(ctx context.Context, userID string) {
	if err := r.RecalculateAllForOwner(ctx, userID); err != nil {
		r.logger.Error(ctx, "budget recalculation failed", "user_id", userID, "error", err)
	}
}
