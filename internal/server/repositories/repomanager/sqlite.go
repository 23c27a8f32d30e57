package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/fintrack/fintrack/internal/server/migrations"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
	"github.com/fintrack/fintrack/internal/server/repositories/users"
)

// SQLiteRepositoryManager binds all record-store repositories to one SQLite
// database.
type SQLiteRepositoryManager struct {
	db       *sql.DB
	incomes  incomes.Repository
	expenses expenses.Repository
	budgets  budgets.Repository
	goals    goals.Repository
	users    users.Repository
}

func (m *SQLiteRepositoryManager) Conn() *sql.DB { return m.db }

func (m *SQLiteRepositoryManager) Close() error { return m.db.Close() }

func (m *SQLiteRepositoryManager) Incomes() incomes.Repository { return m.incomes }

func (m *SQLiteRepositoryManager) Expenses() expenses.Repository { return m.expenses }

func (m *SQLiteRepositoryManager) Budgets() budgets.Repository { return m.budgets }

func (m *SQLiteRepositoryManager) Goals() goals.Repository { return m.goals }

func (m *SQLiteRepositoryManager) Users() users.Repository { return m.users }

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, m.db, "."); err != nil {
		return err
	}

	return nil
}

func NewSQLiteRepositoryManager(dsn string) (RepositoryManager, error) {

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := &SQLiteRepositoryManager{
		db:       db,
		incomes:  incomes.NewSQLiteRepository(db),
		expenses: expenses.NewSQLiteRepository(db),
		budgets:  budgets.NewSQLiteRepository(db),
		goals:    goals.NewSQLiteRepository(db),
		users:    users.NewSQLiteRepository(db),
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
