package services

import (
	"context"
	"sync"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/server/models"
)

// In-memory fakes for the record-store repositories. They preserve
// insertion order so tests see deterministic sync batches.

type fakeIncomeRepo struct {
	mu      sync.Mutex
	records []*models.Income

	findErr error
	markErr error
}

func (f *fakeIncomeRepo) Create(ctx context.Context, rec *models.Income) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeIncomeRepo) Update(ctx context.Context, rec *models.Income) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == rec.ID && !r.Deleted {
			cp := *rec
			cp.Synced = false
			f.records[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeIncomeRepo) GetByID(ctx context.Context, id string) (*models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeIncomeRepo) GetAllActive(ctx context.Context, userID string) ([]models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Income
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeIncomeRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			r.Deleted = true
			r.Synced = false
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeIncomeRepo) FindUnsynced(ctx context.Context, userID string) ([]models.Income, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Income
	for _, r := range f.records {
		if r.UserID == userID && !r.Synced {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeIncomeRepo) MarkSynced(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	for _, r := range f.records {
		if r.ID == id {
			r.Synced = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeIncomeRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeIncomeRepo) CountActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeIncomeRepo) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted && !r.Synced {
			n++
		}
	}
	return n, nil
}

func (f *fakeIncomeRepo) CountTombstoned(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && r.Deleted {
			n++
		}
	}
	return n, nil
}

type fakeExpenseRepo struct {
	mu      sync.Mutex
	records []*models.Expense

	findErr error
}

func (f *fakeExpenseRepo) Create(ctx context.Context, rec *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeExpenseRepo) Update(ctx context.Context, rec *models.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == rec.ID && !r.Deleted {
			cp := *rec
			cp.Synced = false
			f.records[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeExpenseRepo) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeExpenseRepo) GetAllActive(ctx context.Context, userID string) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Expense
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			r.Deleted = true
			r.Synced = false
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeExpenseRepo) FindUnsynced(ctx context.Context, userID string) ([]models.Expense, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Expense
	for _, r := range f.records {
		if r.UserID == userID && !r.Synced {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeExpenseRepo) MarkSynced(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Synced = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeExpenseRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeExpenseRepo) CountActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeExpenseRepo) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted && !r.Synced {
			n++
		}
	}
	return n, nil
}

func (f *fakeExpenseRepo) CountTombstoned(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && r.Deleted {
			n++
		}
	}
	return n, nil
}

type fakeBudgetRepo struct {
	mu      sync.Mutex
	records []*models.Budget

	findErr  error
	spentErr error
}

func (f *fakeBudgetRepo) Create(ctx context.Context, rec *models.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeBudgetRepo) Update(ctx context.Context, rec *models.Budget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == rec.ID && !r.Deleted {
			cp := *rec
			cp.Synced = false
			f.records[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeBudgetRepo) GetByID(ctx context.Context, id string) (*models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeBudgetRepo) GetAllActive(ctx context.Context, userID string) ([]models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Budget
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			r.Deleted = true
			r.Synced = false
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeBudgetRepo) FindUnsynced(ctx context.Context, userID string) ([]models.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Budget
	for _, r := range f.records {
		if r.UserID == userID && !r.Synced {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeBudgetRepo) MarkSynced(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Synced = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeBudgetRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeBudgetRepo) CountActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeBudgetRepo) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted && !r.Synced {
			n++
		}
	}
	return n, nil
}

func (f *fakeBudgetRepo) CountTombstoned(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && r.Deleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeBudgetRepo) UpdateSpent(ctx context.Context, id string, spent float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.spentErr != nil {
		return f.spentErr
	}
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			r.Spent = spent
			r.Synced = false
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeGoalRepo struct {
	mu      sync.Mutex
	records []*models.SavingsGoal

	findErr error
}

func (f *fakeGoalRepo) Create(ctx context.Context, rec *models.SavingsGoal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rec
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeGoalRepo) Update(ctx context.Context, rec *models.SavingsGoal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == rec.ID && !r.Deleted {
			cp := *rec
			cp.Synced = false
			f.records[i] = &cp
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeGoalRepo) GetByID(ctx context.Context, id string) (*models.SavingsGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeGoalRepo) GetAllActive(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SavingsGoal
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id && !r.Deleted {
			r.Deleted = true
			r.Synced = false
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeGoalRepo) FindUnsynced(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.SavingsGoal
	for _, r := range f.records {
		if r.UserID == userID && !r.Synced {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeGoalRepo) MarkSynced(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.ID == id {
			r.Synced = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeGoalRepo) HardDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeGoalRepo) CountActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeGoalRepo) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && !r.Deleted && !r.Synced {
			n++
		}
	}
	return n, nil
}

func (f *fakeGoalRepo) CountTombstoned(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.records {
		if r.UserID == userID && r.Deleted {
			n++
		}
	}
	return n, nil
}
