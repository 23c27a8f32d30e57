package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/server/models"
)

func TestWriteSyncResult_FailureMapsTo500(t *testing.T) {
	rr := httptest.NewRecorder()
	writeSyncResult(rr, models.SyncResult{Success: false, Message: "boom", SyncedCount: 2})

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var got models.SyncResult
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	// Partial progress must survive in the body.
	if got.SyncedCount != 2 || got.Message != "boom" {
		t.Fatalf("body lost result detail: %+v", got)
	}
}

func TestWriteSyncResult_Success(t *testing.T) {
	rr := httptest.NewRecorder()
	writeSyncResult(rr, models.SyncResult{Success: true, Message: "ok"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestWriteServiceError_Mapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{common.ErrInvalidRecord, http.StatusBadRequest},
		{fmt.Errorf("%w: bad date", common.ErrInvalidRecord), http.StatusBadRequest},
		{common.ErrNotFound, http.StatusNotFound},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrUnauthorized, http.StatusUnauthorized},
		{common.ErrUserAlreadyExists, http.StatusConflict},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rr := httptest.NewRecorder()
		writeServiceError(rr, tt.err)
		if rr.Code != tt.code {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.code, rr.Code)
		}
	}
}
