package incomes

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

func (r *SQLiteRepository) Create(ctx context.Context, income *models.Income) error {
	query := `INSERT INTO incomes (id, user_id, amount, source, income_date, description, synced, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		income.ID, income.UserID, income.Amount, income.Source, income.Date, income.Description,
		income.CreatedAt.UTC().Format(time.RFC3339Nano), income.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert income: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, income *models.Income) error {
	query := `UPDATE incomes SET amount=?, source=?, income_date=?, description=?, synced=0, updated_at=?
		WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query,
		income.Amount, income.Source, income.Date, income.Description,
		income.UpdatedAt.UTC().Format(time.RFC3339Nano), income.ID)
	if err != nil {
		return fmt.Errorf("failed to update income: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Income, error) {
	query := `SELECT id, user_id, amount, source, income_date, description, synced, deleted, created_at, updated_at
		FROM incomes WHERE id=? AND deleted=0`
	income, err := scanIncome(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select income: %w", err)
	}
	return income, nil
}

func (r *SQLiteRepository) GetAllActive(ctx context.Context, userID string) ([]models.Income, error) {
	query := `SELECT id, user_id, amount, source, income_date, description, synced, deleted, created_at, updated_at
		FROM incomes WHERE user_id=? AND deleted=0 ORDER BY income_date DESC`
	return r.selectIncomes(ctx, query, userID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE incomes SET deleted=1, synced=0, updated_at=? WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to delete income: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) FindUnsynced(ctx context.Context, userID string) ([]models.Income, error) {
	query := `SELECT id, user_id, amount, source, income_date, description, synced, deleted, created_at, updated_at
		FROM incomes WHERE user_id=? AND synced=0`
	return r.selectIncomes(ctx, query, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE incomes SET synced=1 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark income synced: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to purge income: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) CountActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id=? AND deleted=0`, userID)
}

func (r *SQLiteRepository) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id=? AND deleted=0 AND synced=0`, userID)
}

func (r *SQLiteRepository) CountTombstoned(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM incomes WHERE user_id=? AND deleted=1`, userID)
}

func (r *SQLiteRepository) count(ctx context.Context, query string, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count incomes: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) selectIncomes(ctx context.Context, query string, args ...any) ([]models.Income, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select incomes: %w", err)
	}
	defer rows.Close()

	var result []models.Income
	for rows.Next() {
		income, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *income)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncome(row rowScanner) (*models.Income, error) {
	var income models.Income
	var createdAt, updatedAt string
	if err := row.Scan(&income.ID, &income.UserID, &income.Amount, &income.Source,
		&income.Date, &income.Description, &income.Synced, &income.Deleted,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if income.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if income.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &income, nil
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
