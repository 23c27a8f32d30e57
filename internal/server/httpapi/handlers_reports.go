package httpapi

import "net/http"

func (s *Server) handleExpensesByCategory(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.ExpensesByCategory(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleBudgetAdherence(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.BudgetAdherence(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSavingsTrend(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.SavingsTrend(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.GoalProgress(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	items, err := s.reports.Forecast(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
