package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/models"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
)

// RecordService implements CRUD over the record store. Every mutation leaves
// the touched record unsynced; the synchronizer picks it up later. Expense
// and budget mutations additionally trigger a best-effort budget spent
// recalculation for the owner.
type RecordService struct {
	incomes  incomes.Repository
	expenses expenses.Repository
	budgets  budgets.Repository
	goals    goals.Repository
	recalc   *BudgetRecalculator
	logger   logging.Logger
}

func NewRecordService(
	incomeRepo incomes.Repository,
	expenseRepo expenses.Repository,
	budgetRepo budgets.Repository,
	goalRepo goals.Repository,
	recalc *BudgetRecalculator,
	logger logging.Logger,
) *RecordService {
	return &RecordService{
		incomes:  incomeRepo,
		expenses: expenseRepo,
		budgets:  budgetRepo,
		goals:    goalRepo,
		recalc:   recalc,
		logger:   logger,
	}
}

// matchEnum returns the canonical spelling from the allowed set, matched
// case-insensitively. Unlike normalizeEnum it keeps the display casing used
// in the record store.
func matchEnum(value string, allowed []string, field string) (string, error) {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(value), a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q not allowed", common.ErrInvalidRecord, field, value)
}

// Incomes

func (s *RecordService) CreateIncome(ctx context.Context, userID string, in models.Income) (*models.Income, error) {
	if err := requireField(in.Source, "source"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := models.Income{
		ID:          uuid.NewString(),
		UserID:      userID,
		Amount:      in.Amount,
		Source:      strings.TrimSpace(in.Source),
		Date:        date,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.incomes.Create(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RecordService) UpdateIncome(ctx context.Context, userID, id string, in models.Income) (*models.Income, error) {
	rec, err := s.ownedIncome(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := requireField(in.Source, "source"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	rec.Amount = in.Amount
	rec.Source = strings.TrimSpace(in.Source)
	rec.Date = date
	rec.Description = in.Description
	rec.UpdatedAt = time.Now().UTC()
	if err := s.incomes.Update(ctx, rec); err != nil {
		return nil, err
	}
	rec.Synced = false
	return rec, nil
}

func (s *RecordService) ListIncomes(ctx context.Context, userID string) ([]models.Income, error) {
	return s.incomes.GetAllActive(ctx, userID)
}

func (s *RecordService) DeleteIncome(ctx context.Context, userID, id string) error {
	if _, err := s.ownedIncome(ctx, userID, id); err != nil {
		return err
	}
	return s.incomes.SoftDelete(ctx, id)
}

func (s *RecordService) ownedIncome(ctx context.Context, userID, id string) (*models.Income, error) {
	rec, err := s.incomes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID || rec.Deleted {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

// Expenses

func (s *RecordService) CreateExpense(ctx context.Context, userID string, in models.Expense) (*models.Expense, error) {
	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	category, err := matchEnum(in.Category, models.ExpenseCategories, "category")
	if err != nil {
		return nil, err
	}
	method, err := matchEnum(in.PaymentMethod, models.PaymentMethods, "payment method")
	if err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := models.Expense{
		ID:            uuid.NewString(),
		UserID:        userID,
		Amount:        in.Amount,
		Category:      category,
		Date:          date,
		PaymentMethod: method,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.expenses.Create(ctx, &rec); err != nil {
		return nil, err
	}
	s.recalc.Trigger(ctx, userID)
	return &rec, nil
}

func (s *RecordService) UpdateExpense(ctx context.Context, userID, id string, in models.Expense) (*models.Expense, error) {
	rec, err := s.ownedExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	category, err := matchEnum(in.Category, models.ExpenseCategories, "category")
	if err != nil {
		return nil, err
	}
	method, err := matchEnum(in.PaymentMethod, models.PaymentMethods, "payment method")
	if err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	rec.Amount = in.Amount
	rec.Category = category
	rec.Date = date
	rec.PaymentMethod = method
	rec.Notes = in.Notes
	rec.UpdatedAt = time.Now().UTC()
	if err := s.expenses.Update(ctx, rec); err != nil {
		return nil, err
	}
	rec.Synced = false
	s.recalc.Trigger(ctx, userID)
	return rec, nil
}

func (s *RecordService) ListExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.expenses.GetAllActive(ctx, userID)
}

func (s *RecordService) DeleteExpense(ctx context.Context, userID, id string) error {
	if _, err := s.ownedExpense(ctx, userID, id); err != nil {
		return err
	}
	if err := s.expenses.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.recalc.Trigger(ctx, userID)
	return nil
}

func (s *RecordService) ownedExpense(ctx context.Context, userID, id string) (*models.Expense, error) {
	rec, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID || rec.Deleted {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

// Budgets

func (s *RecordService) CreateBudget(ctx context.Context, userID string, in models.Budget) (*models.Budget, error) {
	if err := requireField(in.Name, "name"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	category, err := matchEnum(in.Category, models.ExpenseCategories, "category")
	if err != nil {
		return nil, err
	}
	duration, err := matchEnum(in.Duration, models.BudgetDurations, "duration")
	if err != nil {
		return nil, err
	}
	threshold := in.Threshold
	if threshold == 0 {
		threshold = 80
	}
	if threshold < 0 || threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %v out of range", common.ErrInvalidRecord, threshold)
	}

	now := time.Now().UTC()
	rec := models.Budget{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Category:  category,
		Amount:    in.Amount,
		Spent:     in.Spent,
		Duration:  duration,
		Threshold: threshold,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.budgets.Create(ctx, &rec); err != nil {
		return nil, err
	}
	// The seeded spent value is immediately reconciled against actual
	// expenses in the category.
	s.recalc.Trigger(ctx, userID)
	return &rec, nil
}

func (s *RecordService) UpdateBudget(ctx context.Context, userID, id string, in models.Budget) (*models.Budget, error) {
	rec, err := s.ownedBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := requireField(in.Name, "name"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.Amount, "amount"); err != nil {
		return nil, err
	}
	category, err := matchEnum(in.Category, models.ExpenseCategories, "category")
	if err != nil {
		return nil, err
	}
	duration, err := matchEnum(in.Duration, models.BudgetDurations, "duration")
	if err != nil {
		return nil, err
	}
	if in.Threshold < 0 || in.Threshold > 100 {
		return nil, fmt.Errorf("%w: threshold %v out of range", common.ErrInvalidRecord, in.Threshold)
	}

	rec.Name = strings.TrimSpace(in.Name)
	rec.Category = category
	rec.Amount = in.Amount
	rec.Duration = duration
	rec.Threshold = in.Threshold
	rec.UpdatedAt = time.Now().UTC()
	if err := s.budgets.Update(ctx, rec); err != nil {
		return nil, err
	}
	rec.Synced = false
	s.recalc.Trigger(ctx, userID)
	return rec, nil
}

func (s *RecordService) ListBudgets(ctx context.Context, userID string) ([]models.Budget, error) {
	return s.budgets.GetAllActive(ctx, userID)
}

func (s *RecordService) DeleteBudget(ctx context.Context, userID, id string) error {
	if _, err := s.ownedBudget(ctx, userID, id); err != nil {
		return err
	}
	return s.budgets.SoftDelete(ctx, id)
}

func (s *RecordService) ownedBudget(ctx context.Context, userID, id string) (*models.Budget, error) {
	rec, err := s.budgets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID || rec.Deleted {
		return nil, common.ErrNotFound
	}
	return rec, nil
}

// Savings goals

func (s *RecordService) CreateGoal(ctx context.Context, userID string, in models.SavingsGoal) (*models.SavingsGoal, error) {
	if err := requireField(in.Name, "name"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.TargetAmount, "target amount"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.CurrentContribution, "current contribution"); err != nil {
		return nil, err
	}
	priority, err := matchEnum(in.Priority, models.GoalPriorities, "priority")
	if err != nil {
		return nil, err
	}
	deadline, err := normalizeDate(in.Deadline)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := models.SavingsGoal{
		ID:                  uuid.NewString(),
		UserID:              userID,
		Name:                strings.TrimSpace(in.Name),
		TargetAmount:        in.TargetAmount,
		CurrentContribution: in.CurrentContribution,
		Deadline:            deadline,
		Priority:            priority,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.goals.Create(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RecordService) UpdateGoal(ctx context.Context, userID, id string, in models.SavingsGoal) (*models.SavingsGoal, error) {
	rec, err := s.ownedGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := requireField(in.Name, "name"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.TargetAmount, "target amount"); err != nil {
		return nil, err
	}
	if err := requireNonNegative(in.CurrentContribution, "current contribution"); err != nil {
		return nil, err
	}
	priority, err := matchEnum(in.Priority, models.GoalPriorities, "priority")
	if err != nil {
		return nil, err
	}
	deadline, err := normalizeDate(in.Deadline)
	if err != nil {
		return nil, err
	}

	rec.Name = strings.TrimSpace(in.Name)
	rec.TargetAmount = in.TargetAmount
	rec.CurrentContribution = in.CurrentContribution
	rec.Deadline = deadline
	rec.Priority = priority
	rec.UpdatedAt = time.Now().UTC()
	if err := s.goals.Update(ctx, rec); err != nil {
		return nil, err
	}
	rec.Synced = false
	return rec, nil
}

func (s *RecordService) ListGoals(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	return s.goals.GetAllActive(ctx, userID)
}

func (s *RecordService) DeleteGoal(ctx context.Context, userID, id string) error {
	if _, err := s.ownedGoal(ctx, userID, id); err != nil {
		return err
	}
	return s.goals.SoftDelete(ctx, id)
}

func (s *RecordService) ownedGoal(ctx context.Context, userID, id string) (*models.SavingsGoal, error) {
	rec, err := s.goals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID || rec.Deleted {
		return nil, common.ErrNotFound
	}
	return rec, nil
}
