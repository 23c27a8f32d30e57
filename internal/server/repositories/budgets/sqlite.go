package budgets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/dbx"
	"github.com/fintrack/fintrack/internal/server/models"
)

// SQLiteRepository implements Repository over a dbx.DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, budget *models.Budget) error {
	query := `INSERT INTO budgets (id, user_id, name, category, amount, spent, duration, threshold, synced, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		budget.ID, budget.UserID, budget.Name, budget.Category, budget.Amount, budget.Spent,
		budget.Duration, budget.Threshold,
		budget.CreatedAt.UTC().Format(time.RFC3339Nano), budget.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, budget *models.Budget) error {
	query := `UPDATE budgets SET name=?, category=?, amount=?, spent=?, duration=?, threshold=?, synced=0, updated_at=?
		WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query,
		budget.Name, budget.Category, budget.Amount, budget.Spent, budget.Duration, budget.Threshold,
		budget.UpdatedAt.UTC().Format(time.RFC3339Nano), budget.ID)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) UpdateSpent(ctx context.Context, id string, spent float64) error {
	query := `UPDATE budgets SET spent=?, synced=0, updated_at=? WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, spent, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to update budget spent: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Budget, error) {
	query := `SELECT id, user_id, name, category, amount, spent, duration, threshold, synced, deleted, created_at, updated_at
		FROM budgets WHERE id=? AND deleted=0`
	budget, err := scanBudget(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select budget: %w", err)
	}
	return budget, nil
}

func (r *SQLiteRepository) GetAllActive(ctx context.Context, userID string) ([]models.Budget, error) {
	query := `SELECT id, user_id, name, category, amount, spent, duration, threshold, synced, deleted, created_at, updated_at
		FROM budgets WHERE user_id=? AND deleted=0 ORDER BY created_at DESC`
	return r.selectBudgets(ctx, query, userID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE budgets SET deleted=1, synced=0, updated_at=? WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) FindUnsynced(ctx context.Context, userID string) ([]models.Budget, error) {
	query := `SELECT id, user_id, name, category, amount, spent, duration, threshold, synced, deleted, created_at, updated_at
		FROM budgets WHERE user_id=? AND synced=0`
	return r.selectBudgets(ctx, query, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET synced=1 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark budget synced: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to purge budget: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) CountActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id=? AND deleted=0`, userID)
}

func (r *SQLiteRepository) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id=? AND deleted=0 AND synced=0`, userID)
}

func (r *SQLiteRepository) CountTombstoned(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM budgets WHERE user_id=? AND deleted=1`, userID)
}

func (r *SQLiteRepository) count(ctx context.Context, query string, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) selectBudgets(ctx context.Context, query string, args ...any) ([]models.Budget, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select budgets: %w", err)
	}
	defer rows.Close()

	var result []models.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *budget)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (*models.Budget, error) {
	var budget models.Budget
	var createdAt, updatedAt string
	if err := row.Scan(&budget.ID, &budget.UserID, &budget.Name, &budget.Category,
		&budget.Amount, &budget.Spent, &budget.Duration, &budget.Threshold,
		&budget.Synced, &budget.Deleted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if budget.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if budget.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &budget, nil
}

func requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
