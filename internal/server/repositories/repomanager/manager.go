// Package repomanager wires the record-store repositories to one database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
	"github.com/fintrack/fintrack/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Conn() *sql.DB
	Close() error
	Incomes() incomes.Repository
	Expenses() expenses.Repository
	Budgets() budgets.Repository
	Goals() goals.Repository
	Users() users.Repository
}
