package secondary

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/fintrack/fintrack/internal/server/secondary/migrations"
)

// Postgres implements Adapter over a pgx connection pool.
//
// Acquire checks a dedicated connection out of the pool with a short
// exponential backoff, so one transient network hiccup does not fail a whole
// sync call. Every statement on the returned Conn is bounded by opTimeout;
// an expired deadline surfaces as an ordinary error and aborts the caller's
// batch.
type Postgres struct {
	db        *sql.DB
	opTimeout time.Duration
}

func NewPostgres(dsn string, opTimeout time.Duration) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("secondary db open error: %w", err)
	}
	return &Postgres{db: db, opTimeout: opTimeout}, nil
}

func (p *Postgres) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, p.db, "."); err != nil {
		return err
	}

	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }

func (p *Postgres) Acquire(ctx context.Context) (Conn, error) {
	var conn *sql.Conn

	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := p.db.Conn(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to acquire secondary store connection: %w", err)
	}

	return &pgConn{conn: conn, opTimeout: p.opTimeout}, nil
}

type pgConn struct {
	conn      *sql.Conn
	opTimeout time.Duration
}

func (c *pgConn) Close() error { return c.conn.Close() }

func (c *pgConn) exec(ctx context.Context, query string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if _, err := c.conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("secondary store error: %w", err)
	}
	return nil
}

func (c *pgConn) UpsertIncome(ctx context.Context, row IncomeRow) error {
	query := `
		INSERT INTO incomes (record_id, user_id, amount, source, income_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (record_id)
		DO UPDATE SET
			amount = EXCLUDED.amount,
			source = EXCLUDED.source,
			income_date = EXCLUDED.income_date,
			description = EXCLUDED.description
	`
	return c.exec(ctx, query, row.RecordID, row.UserID, row.Amount, row.Source, row.Date, row.Description)
}

func (c *pgConn) DeleteIncome(ctx context.Context, recordID string) error {
	return c.exec(ctx, `DELETE FROM incomes WHERE record_id = $1`, recordID)
}

func (c *pgConn) UpsertExpense(ctx context.Context, row ExpenseRow) error {
	query := `
		INSERT INTO expenses (record_id, user_id, amount, category, expense_date, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (record_id)
		DO UPDATE SET
			amount = EXCLUDED.amount,
			category = EXCLUDED.category,
			expense_date = EXCLUDED.expense_date,
			payment_method = EXCLUDED.payment_method,
			notes = EXCLUDED.notes
	`
	return c.exec(ctx, query, row.RecordID, row.UserID, row.Amount, row.Category, row.Date, row.PaymentMethod, row.Notes)
}

func (c *pgConn) DeleteExpense(ctx context.Context, recordID string) error {
	return c.exec(ctx, `DELETE FROM expenses WHERE record_id = $1`, recordID)
}

func (c *pgConn) UpsertBudget(ctx context.Context, row BudgetRow) error {
	query := `
		INSERT INTO budgets (record_id, user_id, name, category, amount, spent, duration, threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (record_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			amount = EXCLUDED.amount,
			spent = EXCLUDED.spent,
			duration = EXCLUDED.duration,
			threshold = EXCLUDED.threshold
	`
	return c.exec(ctx, query, row.RecordID, row.UserID, row.Name, row.Category, row.Amount, row.Spent, row.Duration, row.Threshold)
}

func (c *pgConn) DeleteBudget(ctx context.Context, recordID string) error {
	return c.exec(ctx, `DELETE FROM budgets WHERE record_id = $1`, recordID)
}

func (c *pgConn) UpsertGoal(ctx context.Context, row GoalRow) error {
	query := `
		INSERT INTO savings_goals (record_id, user_id, name, target_amount, current_contribution, deadline, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (record_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			target_amount = EXCLUDED.target_amount,
			current_contribution = EXCLUDED.current_contribution,
			deadline = EXCLUDED.deadline,
			priority = EXCLUDED.priority
	`
	return c.exec(ctx, query, row.RecordID, row.UserID, row.Name, row.TargetAmount, row.CurrentContribution, row.Deadline, row.Priority)
}

func (c *pgConn) DeleteGoal(ctx context.Context, recordID string) error {
	return c.exec(ctx, `DELETE FROM savings_goals WHERE record_id = $1`, recordID)
}

func (c *pgConn) ExpenseTotalsByCategory(ctx context.Context, userID string) ([]CategoryTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	query := `
		SELECT category, SUM(amount) AS total
		FROM expenses
		WHERE user_id = $1
		GROUP BY category
		ORDER BY total DESC
	`
	rows, err := c.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("secondary store error: %w", err)
	}
	defer rows.Close()

	var result []CategoryTotal
	for rows.Next() {
		var t CategoryTotal
		if err := rows.Scan(&t.Category, &t.Total); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (c *pgConn) BudgetVsActual(ctx context.Context, userID string) ([]BudgetActual, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	query := `
		SELECT b.category, b.amount AS budgeted, COALESCE(e.total_spent, 0) AS spent
		FROM budgets b
		LEFT JOIN (
			SELECT category, SUM(amount) AS total_spent
			FROM expenses
			WHERE user_id = $1
			GROUP BY category
		) e ON b.category = e.category
		WHERE b.user_id = $1
	`
	rows, err := c.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("secondary store error: %w", err)
	}
	defer rows.Close()

	var result []BudgetActual
	for rows.Next() {
		var b BudgetActual
		if err := rows.Scan(&b.Category, &b.Budgeted, &b.Spent); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (c *pgConn) MonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	query := `
		SELECT months.month,
		       COALESCE(i.total_income, 0) AS income,
		       COALESCE(e.total_expenses, 0) AS expenses
		FROM (
			SELECT DISTINCT to_char(expense_date, 'YYYY-MM') AS month FROM expenses WHERE user_id = $1
			UNION
			SELECT DISTINCT to_char(income_date, 'YYYY-MM') AS month FROM incomes WHERE user_id = $1
		) months
		LEFT JOIN (
			SELECT to_char(income_date, 'YYYY-MM') AS month, SUM(amount) AS total_income
			FROM incomes WHERE user_id = $1 GROUP BY 1
		) i ON months.month = i.month
		LEFT JOIN (
			SELECT to_char(expense_date, 'YYYY-MM') AS month, SUM(amount) AS total_expenses
			FROM expenses WHERE user_id = $1 GROUP BY 1
		) e ON months.month = e.month
		ORDER BY months.month
	`
	rows, err := c.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("secondary store error: %w", err)
	}
	defer rows.Close()

	var result []MonthlyTotal
	for rows.Next() {
		var m MonthlyTotal
		if err := rows.Scan(&m.Month, &m.Income, &m.Expenses); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

func (c *pgConn) Goals(ctx context.Context, userID string) ([]GoalRow, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	query := `
		SELECT record_id, user_id, name, target_amount, current_contribution, deadline, priority
		FROM savings_goals
		WHERE user_id = $1
		ORDER BY name
	`
	rows, err := c.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("secondary store error: %w", err)
	}
	defer rows.Close()

	var result []GoalRow
	for rows.Next() {
		var g GoalRow
		if err := rows.Scan(&g.RecordID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentContribution, &g.Deadline, &g.Priority); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}
