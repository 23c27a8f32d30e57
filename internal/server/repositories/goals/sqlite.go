package goals

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

func (r *SQLiteRepository) Create(ctx context.Context, goal *models.SavingsGoal) error {
	query := `INSERT INTO savings_goals (id, user_id, name, target_amount, current_contribution, deadline, priority, synced, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		goal.ID, goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentContribution,
		goal.Deadline, goal.Priority,
		goal.CreatedAt.UTC().Format(time.RFC3339Nano), goal.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert savings goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, goal *models.SavingsGoal) error {
	query := `UPDATE savings_goals SET name=?, target_amount=?, current_contribution=?, deadline=?, priority=?, synced=0, updated_at=?
		WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query,
		goal.Name, goal.TargetAmount, goal.CurrentContribution, goal.Deadline, goal.Priority,
		goal.UpdatedAt.UTC().Format(time.RFC3339Nano), goal.ID)
	if err != nil {
		return fmt.Errorf("failed to update savings goal: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.SavingsGoal, error) {
	query := `SELECT id, user_id, name, target_amount, current_contribution, deadline, priority, synced, deleted, created_at, updated_at
		FROM savings_goals WHERE id=? AND deleted=0`
	goal, err := scanGoal(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select savings goal: %w", err)
	}
	return goal, nil
}

func (r *SQLiteRepository) GetAllActive(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	query := `SELECT id, user_id, name, target_amount, current_contribution, deadline, priority, synced, deleted, created_at, updated_at
		FROM savings_goals WHERE user_id=? AND deleted=0 ORDER BY created_at DESC`
	return r.selectGoals(ctx, query, userID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE savings_goals SET deleted=1, synced=0, updated_at=? WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to delete savings goal: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) FindUnsynced(ctx context.Context, userID string) ([]models.SavingsGoal, error) {
	query := `SELECT id, user_id, name, target_amount, current_contribution, deadline, priority, synced, deleted, created_at, updated_at
		FROM savings_goals WHERE user_id=? AND synced=0`
	return r.selectGoals(ctx, query, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE savings_goals SET synced=1 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark savings goal synced: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to purge savings goal: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) CountActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM savings_goals WHERE user_id=? AND deleted=0`, userID)
}

func (r *SQLiteRepository) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM savings_goals WHERE user_id=? AND deleted=0 AND synced=0`, userID)
}

func (r *SQLiteRepository) CountTombstoned(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM savings_goals WHERE user_id=? AND deleted=1`, userID)
}

func (r *SQLiteRepository) count(ctx context.Context, query string, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count savings goals: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) selectGoals(ctx context.Context, query string, args ...any) ([]models.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select savings goals: %w", err)
	}
	defer rows.Close()

	var result []models.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	var createdAt, updatedAt string
	if err := row.Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.TargetAmount,
		&goal.CurrentContribution, &goal.Deadline, &goal.Priority,
		&goal.Synced, &goal.Deleted, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if goal.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if goal.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &goal, nil
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
