package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fintrack/fintrack/internal/server/services"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.settings.Export(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "finance_backup_"+time.Now().Format("2006-01-02")+".json"))
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap services.ExportSnapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	imported, err := s.settings.Import(r.Context(), userID(r), &snap)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Successfully imported %d items.", imported),
	})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	key, err := s.settings.Backup(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}
