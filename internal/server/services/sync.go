// Package services holds the business logic of the finance tracker: the
// synchronizer that reconciles the record store with the secondary
// analytical store, the budget recalculation engine, record CRUD, reports
// and settings.
package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/models"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
	"github.com/fintrack/fintrack/internal/server/secondary"
)

// SyncService reconciles the record store with the secondary store.
//
// Each per-entity routine drains the owner's unsynced records: valid active
// records are upserted and flagged synced, tombstones are deleted remotely
// and then purged locally. Invalid records are quarantined (skipped and
// logged, left unsynced) without failing the batch; any secondary-store or
// record-store failure aborts the routine, leaving records pushed so far
// committed and the rest unsynced for the next run.
type SyncService struct {
	incomes  incomes.Repository
	expenses expenses.Repository
	budgets  budgets.Repository
	goals    goals.Repository
	adapter  secondary.Adapter
	logger   logging.Logger
}

func NewSyncService(
	incomeRepo incomes.Repository,
	expenseRepo expenses.Repository,
	budgetRepo budgets.Repository,
	goalRepo goals.Repository,
	adapter secondary.Adapter,
	logger logging.Logger,
) *SyncService {
	return &SyncService{
		incomes:  incomeRepo,
		expenses: expenseRepo,
		budgets:  budgetRepo,
		goals:    goalRepo,
		adapter:  adapter,
		logger:   logger,
	}
}

func (s *SyncService) SyncIncomes(ctx context.Context, userID string) models.SyncResult {
	records, err := s.incomes.FindUnsynced(ctx, userID)
	if err != nil {
		return failResult("failed to load unsynced incomes", err, 0)
	}
	if len(records) == 0 {
		return okResult("incomes", 0, 0)
	}

	conn, err := s.adapter.Acquire(ctx)
	if err != nil {
		return failResult("failed to connect to secondary store", err, 0)
	}
	defer conn.Close()

	pushed, removed := 0, 0
	for _, rec := range records {
		row, err := incomeRow(rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping invalid income", "id", rec.ID, "error", err)
			continue
		}
		if rec.Deleted {
			if err := conn.DeleteIncome(ctx, rec.ID); err != nil {
				return failResult("failed to propagate income deletion", err, pushed)
			}
			if err := s.incomes.HardDelete(ctx, rec.ID); err != nil {
				return failResult("failed to purge income tombstone", err, pushed)
			}
			removed++
			continue
		}
		if err := conn.UpsertIncome(ctx, row); err != nil {
			return failResult("failed to push income", err, pushed)
		}
		if err := s.incomes.MarkSynced(ctx, rec.ID); err != nil {
			return failResult("failed to flag income as synced", err, pushed)
		}
		pushed++
	}

	return okResult("incomes", pushed, removed)
}

func (s *SyncService) SyncExpenses(ctx context.Context, userID string) models.SyncResult {
	records, err := s.expenses.FindUnsynced(ctx, userID)
	if err != nil {
		return failResult("failed to load unsynced expenses", err, 0)
	}
	if len(records) == 0 {
		return okResult("expenses", 0, 0)
	}

	conn, err := s.adapter.Acquire(ctx)
	if err != nil {
		return failResult("failed to connect to secondary store", err, 0)
	}
	defer conn.Close()

	pushed, removed := 0, 0
	for _, rec := range records {
		row, err := expenseRow(rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping invalid expense", "id", rec.ID, "error", err)
			continue
		}
		if rec.Deleted {
			if err := conn.DeleteExpense(ctx, rec.ID); err != nil {
				return failResult("failed to propagate expense deletion", err, pushed)
			}
			if err := s.expenses.HardDelete(ctx, rec.ID); err != nil {
				return failResult("failed to purge expense tombstone", err, pushed)
			}
			removed++
			continue
		}
		if err := conn.UpsertExpense(ctx, row); err != nil {
			return failResult("failed to push expense", err, pushed)
		}
		if err := s.expenses.MarkSynced(ctx, rec.ID); err != nil {
			return failResult("failed to flag expense as synced", err, pushed)
		}
		pushed++
	}

	return okResult("expenses", pushed, removed)
}

func (s *SyncService) SyncBudgets(ctx context.Context, userID string) models.SyncResult {
	records, err := s.budgets.FindUnsynced(ctx, userID)
	if err != nil {
		return failResult("failed to load unsynced budgets", err, 0)
	}
	if len(records) == 0 {
		return okResult("budgets", 0, 0)
	}

	conn, err := s.adapter.Acquire(ctx)
	if err != nil {
		return failResult("failed to connect to secondary store", err, 0)
	}
	defer conn.Close()

	pushed, removed := 0, 0
	for _, rec := range records {
		row, err := budgetRow(rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping invalid budget", "id", rec.ID, "error", err)
			continue
		}
		if rec.Deleted {
			if err := conn.DeleteBudget(ctx, rec.ID); err != nil {
				return failResult("failed to propagate budget deletion", err, pushed)
			}
			if err := s.budgets.HardDelete(ctx, rec.ID); err != nil {
				return failResult("failed to purge budget tombstone", err, pushed)
			}
			removed++
			continue
		}
		if err := conn.UpsertBudget(ctx, row); err != nil {
			return failResult("failed to push budget", err, pushed)
		}
		if err := s.budgets.MarkSynced(ctx, rec.ID); err != nil {
			return failResult("failed to flag budget as synced", err, pushed)
		}
		pushed++
	}

	return okResult("budgets", pushed, removed)
}

func (s *SyncService) SyncGoals(ctx context.Context, userID string) models.SyncResult {
	records, err := s.goals.FindUnsynced(ctx, userID)
	if err != nil {
		return failResult("failed to load unsynced savings goals", err, 0)
	}
	if len(records) == 0 {
		return okResult("savings goals", 0, 0)
	}

	conn, err := s.adapter.Acquire(ctx)
	if err != nil {
		return failResult("failed to connect to secondary store", err, 0)
	}
	defer conn.Close()

	pushed, removed := 0, 0
	for _, rec := range records {
		row, err := goalRow(rec)
		if err != nil {
			s.logger.Warn(ctx, "skipping invalid savings goal", "id", rec.ID, "error", err)
			continue
		}
		if rec.Deleted {
			if err := conn.DeleteGoal(ctx, rec.ID); err != nil {
				return failResult("failed to propagate savings goal deletion", err, pushed)
			}
			if err := s.goals.HardDelete(ctx, rec.ID); err != nil {
				return failResult("failed to purge savings goal tombstone", err, pushed)
			}
			removed++
			continue
		}
		if err := conn.UpsertGoal(ctx, row); err != nil {
			return failResult("failed to push savings goal", err, pushed)
		}
		if err := s.goals.MarkSynced(ctx, rec.ID); err != nil {
			return failResult("failed to flag savings goal as synced", err, pushed)
		}
		pushed++
	}

	return okResult("savings goals", pushed, removed)
}

// SyncAll fans out the four per-entity routines concurrently and joins on
// all of them. They touch disjoint record types and disjoint secondary
// tables, so no serialization between them is needed. Entity types that
// succeed keep their committed state even when others fail; the aggregate
// message names every failed type with its reason.
func (s *SyncService) SyncAll(ctx context.Context, userID string) models.SyncResult {
	routines := []struct {
		entity string
		fn     func(context.Context, string) models.SyncResult
	}{
		{"incomes", s.SyncIncomes},
		{"expenses", s.SyncExpenses},
		{"budgets", s.SyncBudgets},
		{"savings goals", s.SyncGoals},
	}

	results := make([]models.SyncResult, len(routines))

	var wg sync.WaitGroup
	for i, r := range routines {
		wg.Add(1)
		go func(i int, fn func(context.Context, string) models.SyncResult) {
			defer wg.Done()
			results[i] = fn(ctx, userID)
		}(i, r.fn)
	}
	wg.Wait()

	total := 0
	var errs error
	for i, r := range routines {
		total += results[i].SyncedCount
		if !results[i].Success {
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", r.entity, results[i].Message))
		}
	}

	if errs != nil {
		return models.SyncResult{
			Success:     false,
			Message:     "sync failed for " + errs.Error(),
			SyncedCount: total,
		}
	}
	return models.SyncResult{
		Success:     true,
		Message:     fmt.Sprintf("sync completed, %d records pushed", total),
		SyncedCount: total,
	}
}

// counters is the subset of every record repository used by Status.
type counters interface {
	CountActive(ctx context.Context, userID string) (int, error)
	CountUnsyncedActive(ctx context.Context, userID string) (int, error)
	CountTombstoned(ctx context.Context, userID string) (int, error)
}

// Status reports per-entity and aggregate sync counters for one owner. It
// reads only the record store; the secondary store is never touched, so the
// report stays available while the secondary store is down.
func (s *SyncService) Status(ctx context.Context, userID string) (*models.SyncStatus, error) {
	status := &models.SyncStatus{}

	var err error
	if status.Incomes, err = entityStatus(ctx, s.incomes, userID); err != nil {
		return nil, err
	}
	if status.Expenses, err = entityStatus(ctx, s.expenses, userID); err != nil {
		return nil, err
	}
	if status.Budgets, err = entityStatus(ctx, s.budgets, userID); err != nil {
		return nil, err
	}
	if status.SavingsGoals, err = entityStatus(ctx, s.goals, userID); err != nil {
		return nil, err
	}

	status.Aggregate()
	return status, nil
}

func entityStatus(ctx context.Context, c counters, userID string) (models.EntityStatus, error) {
	var st models.EntityStatus

	total, err := c.CountActive(ctx, userID)
	if err != nil {
		return st, fmt.Errorf("failed to count records: %w", err)
	}
	unsynced, err := c.CountUnsyncedActive(ctx, userID)
	if err != nil {
		return st, fmt.Errorf("failed to count unsynced records: %w", err)
	}
	tombstoned, err := c.CountTombstoned(ctx, userID)
	if err != nil {
		return st, fmt.Errorf("failed to count tombstones: %w", err)
	}

	return models.EntityStatus{
		Total:           total,
		Synced:          total - unsynced,
		Unsynced:        unsynced,
		PendingDeletion: tombstoned,
	}, nil
}

func okResult(entity string, pushed, removed int) models.SyncResult {
	msg := fmt.Sprintf("sync completed: %d %s pushed", pushed, entity)
	if removed > 0 {
		msg += fmt.Sprintf(", %d deletions propagated", removed)
	}
	return models.SyncResult{Success: true, Message: msg, SyncedCount: pushed}
}

func failResult(msg string, err error, pushed int) models.SyncResult {
	return models.SyncResult{
		Success:     false,
		Message:     fmt.Sprintf("%s: %v", msg, err),
		SyncedCount: pushed,
	}
}
