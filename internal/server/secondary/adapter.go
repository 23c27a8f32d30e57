// Package secondary manages access to the secondary analytical store: a
// relational mirror of the record store used for reporting and as a durable
// replica. The synchronizer pushes idempotent upserts and deletions keyed by
// the record-store ID; the reporting gateway runs read-only aggregates.
package secondary

import "context"

// Adapter hands out connections to the secondary store. Two implementations
// exist: Postgres for production and Stub (in-memory) for tests and for
// running without a secondary store. The implementation is chosen at
// construction time.
type Adapter interface {
	// Acquire returns a connection owned exclusively by the caller. The
	// caller must Close it on every exit path.
	Acquire(ctx context.Context) (Conn, error)
}

// Conn is one exclusively-owned connection. All writes auto-commit; no
// transaction spans multiple records. Upserts are idempotent: applying the
// same row twice leaves the store unchanged.
type Conn interface {
	UpsertIncome(ctx context.Context, row IncomeRow) error
	DeleteIncome(ctx context.Context, recordID string) error

	UpsertExpense(ctx context.Context, row ExpenseRow) error
	DeleteExpense(ctx context.Context, recordID string) error

	UpsertBudget(ctx context.Context, row BudgetRow) error
	DeleteBudget(ctx context.Context, recordID string) error

	UpsertGoal(ctx context.Context, row GoalRow) error
	DeleteGoal(ctx context.Context, recordID string) error

	// Read-only aggregates for the reporting gateway.
	ExpenseTotalsByCategory(ctx context.Context, userID string) ([]CategoryTotal, error)
	BudgetVsActual(ctx context.Context, userID string) ([]BudgetActual, error)
	MonthlyTotals(ctx context.Context, userID string) ([]MonthlyTotal, error)
	Goals(ctx context.Context, userID string) ([]GoalRow, error)

	Close() error
}

// IncomeRow is a normalized income record as stored in the secondary store.
// Dates are canonical YYYY-MM-DD strings; enums are lower-cased.
type IncomeRow struct {
	RecordID    string
	UserID      string
	Amount      float64
	Source      string
	Date        string
	Description string
}

type ExpenseRow struct {
	RecordID      string
	UserID        string
	Amount        float64
	Category      string
	Date          string
	PaymentMethod string
	Notes         string
}

type BudgetRow struct {
	RecordID  string
	UserID    string
	Name      string
	Category  string
	Amount    float64
	Spent     float64
	Duration  string
	Threshold float64
}

type GoalRow struct {
	RecordID            string
	UserID              string
	Name                string
	TargetAmount        float64
	CurrentContribution float64
	Deadline            string
	Priority            string
}

// CategoryTotal is the summed expense amount for one category.
type CategoryTotal struct {
	Category string
	Total    float64
}

// BudgetActual pairs a budgeted amount with the actual spend per category.
type BudgetActual struct {
	Category string
	Budgeted float64
	Spent    float64
}

// MonthlyTotal aggregates income and expenses for one calendar month.
// Month is a YYYY-MM key.
type MonthlyTotal struct {
	Month    string
	Income   float64
	Expenses float64
}
