// Package httpapi exposes the application over HTTP: routing, auth
// middleware and thin JSON handlers delegating to the services.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/config"
	"github.com/fintrack/fintrack/internal/server/services"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	users     *services.UserService
	records   *services.RecordService
	sync      *services.SyncService
	reports   *services.ReportService
	settings  *services.SettingsService
	jwtSecret []byte
	logger    logging.Logger
}

func NewServer(
	userSvc *services.UserService,
	recordSvc *services.RecordService,
	syncSvc *services.SyncService,
	reportSvc *services.ReportService,
	settingsSvc *services.SettingsService,
	cfg *config.Config,
	logger logging.Logger,
) *Server {
	return &Server{
		users:     userSvc,
		records:   recordSvc,
		sync:      syncSvc,
		reports:   reportSvc,
		settings:  settingsSvc,
		jwtSecret: []byte(cfg.SecretKey),
		logger:    logger,
	}
}

// Router builds the full route table. Everything except /api/auth/* goes
// through the bearer-token middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/auth/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)

	api.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	api.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	api.HandleFunc("/incomes/{id}", s.handleUpdateIncome).Methods(http.MethodPut)
	api.HandleFunc("/incomes/{id}", s.handleDeleteIncome).Methods(http.MethodDelete)

	api.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/{id}", s.handleUpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", s.handleDeleteExpense).Methods(http.MethodDelete)

	api.HandleFunc("/budgets", s.handleListBudgets).Methods(http.MethodGet)
	api.HandleFunc("/budgets", s.handleCreateBudget).Methods(http.MethodPost)
	api.HandleFunc("/budgets/{id}", s.handleUpdateBudget).Methods(http.MethodPut)
	api.HandleFunc("/budgets/{id}", s.handleDeleteBudget).Methods(http.MethodDelete)

	api.HandleFunc("/savings-goals", s.handleListGoals).Methods(http.MethodGet)
	api.HandleFunc("/savings-goals", s.handleCreateGoal).Methods(http.MethodPost)
	api.HandleFunc("/savings-goals/{id}", s.handleUpdateGoal).Methods(http.MethodPut)
	api.HandleFunc("/savings-goals/{id}", s.handleDeleteGoal).Methods(http.MethodDelete)

	api.HandleFunc("/sync/status", s.handleSyncStatus).Methods(http.MethodGet)
	api.HandleFunc("/sync/incomes", s.handleSyncIncomes).Methods(http.MethodPost)
	api.HandleFunc("/sync/expenses", s.handleSyncExpenses).Methods(http.MethodPost)
	api.HandleFunc("/sync/budgets", s.handleSyncBudgets).Methods(http.MethodPost)
	api.HandleFunc("/sync/goals", s.handleSyncGoals).Methods(http.MethodPost)
	api.HandleFunc("/sync/all", s.handleSyncAll).Methods(http.MethodPost)

	api.HandleFunc("/reports/expenses-by-category", s.handleExpensesByCategory).Methods(http.MethodGet)
	api.HandleFunc("/reports/budget-adherence", s.handleBudgetAdherence).Methods(http.MethodGet)
	api.HandleFunc("/reports/savings-trends", s.handleSavingsTrend).Methods(http.MethodGet)
	api.HandleFunc("/reports/goals-progress", s.handleGoalProgress).Methods(http.MethodGet)
	api.HandleFunc("/reports/forecast", s.handleForecast).Methods(http.MethodGet)

	api.HandleFunc("/settings/export", s.handleExport).Methods(http.MethodGet)
	api.HandleFunc("/settings/import", s.handleImport).Methods(http.MethodPost)
	api.HandleFunc("/settings/backup", s.handleBackup).Methods(http.MethodPost)

	return r
}
