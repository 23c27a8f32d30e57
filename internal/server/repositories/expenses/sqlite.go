package expenses

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

func (r *SQLiteRepository) Create(ctx context.Context, expense *models.Expense) error {
	query := `INSERT INTO expenses (id, user_id, amount, category, expense_date, payment_method, notes, synced, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		expense.ID, expense.UserID, expense.Amount, expense.Category, expense.Date,
		expense.PaymentMethod, expense.Notes,
		expense.CreatedAt.UTC().Format(time.RFC3339Nano), expense.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, expense *models.Expense) error {
	query := `UPDATE expenses SET amount=?, category=?, expense_date=?, payment_method=?, notes=?, synced=0, updated_at=?
		WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query,
		expense.Amount, expense.Category, expense.Date, expense.PaymentMethod, expense.Notes,
		expense.UpdatedAt.UTC().Format(time.RFC3339Nano), expense.ID)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT id, user_id, amount, category, expense_date, payment_method, notes, synced, deleted, created_at, updated_at
		FROM expenses WHERE id=? AND deleted=0`
	expense, err := scanExpense(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select expense: %w", err)
	}
	return expense, nil
}

func (r *SQLiteRepository) GetAllActive(ctx context.Context, userID string) ([]models.Expense, error) {
	query := `SELECT id, user_id, amount, category, expense_date, payment_method, notes, synced, deleted, created_at, updated_at
		FROM expenses WHERE user_id=? AND deleted=0 ORDER BY expense_date DESC`
	return r.selectExpenses(ctx, query, userID)
}

func (r *SQLiteRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE expenses SET deleted=1, synced=0, updated_at=? WHERE id=? AND deleted=0`
	res, err := r.db.ExecContext(ctx, query, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) FindUnsynced(ctx context.Context, userID string) ([]models.Expense, error) {
	query := `SELECT id, user_id, amount, category, expense_date, payment_method, notes, synced, deleted, created_at, updated_at
		FROM expenses WHERE user_id=? AND synced=0`
	return r.selectExpenses(ctx, query, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE expenses SET synced=1 WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark expense synced: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) HardDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to purge expense: %w", err)
	}
	return requireOneRow(res)
}

func (r *SQLiteRepository) CountActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id=? AND deleted=0`, userID)
}

func (r *SQLiteRepository) CountUnsyncedActive(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id=? AND deleted=0 AND synced=0`, userID)
}

func (r *SQLiteRepository) CountTombstoned(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM expenses WHERE user_id=? AND deleted=1`, userID)
}

func (r *SQLiteRepository) count(ctx context.Context, query string, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) selectExpenses(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	var expense models.Expense
	var createdAt, updatedAt string
	if err := row.Scan(&expense.ID, &expense.UserID, &expense.Amount, &expense.Category,
		&expense.Date, &expense.PaymentMethod, &expense.Notes, &expense.Synced, &expense.Deleted,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if expense.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at: %w", err)
	}
	if expense.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("bad updated_at: %w", err)
	}
	return &expense, nil
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
