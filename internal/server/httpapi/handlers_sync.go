package httpapi

import (
	"context"
	"net/http"

	"github.com/fintrack/fintrack/internal/server/models"
)

// writeSyncResult renders a sync result; failed runs map to HTTP 500 with
// the result body intact so clients still see partial progress.
func writeSyncResult(w http.ResponseWriter, result models.SyncResult) {
	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (s *Server) handleSyncIncomes(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.sync.SyncIncomes)
}

func (s *Server) handleSyncExpenses(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.sync.SyncExpenses)
}

func (s *Server) handleSyncBudgets(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.sync.SyncBudgets)
}

func (s *Server) handleSyncGoals(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.sync.SyncGoals)
}

func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	s.runSync(w, r, s.sync.SyncAll)
}

func (s *Server) runSync(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) models.SyncResult) {
	result := fn(r.Context(), userID(r))
	if !result.Success {
		s.logger.Error(r.Context(), "sync run failed", "message", result.Message)
	}
	writeSyncResult(w, result)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.sync.Status(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
