package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"

	"bingetrack/handlers"
	"bingetrack/models"
	"bingetrack/services/users"
	"bingetrack/services/watchlog"
)

func newWatchLogHandler(t *testing.T) (*handlers.WatchLogHandler, string) {
	t.Helper()
	dir := t.TempDir()

	svc, err := watchlog.NewService(filepath.Join(dir, "watchlog.db"))
	if err != nil {
		t.Fatalf("failed to create watch log service: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	userSvc, err := users.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create users service: %v", err)
	}

	return handlers.NewWatchLogHandler(svc, userSvc), models.DefaultUserID
}

func TestWatchLogMarkAndList(t *testing.T) {
	h, userID := newWatchLogHandler(t)

	payload, _ := json.Marshal(map[string]any{"season": 1, "episode": 2})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/shows/100/watchlog", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": userID, "showID": "100"})
	rec := httptest.NewRecorder()
	h.Mark(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	reqList := httptest.NewRequest(http.MethodGet, "/api/users/"+userID+"/shows/100/watchlog", nil)
	reqList = mux.SetURLVars(reqList, map[string]string{"userID": userID, "showID": "100"})
	recList := httptest.NewRecorder()
	h.List(recList, reqList)

	if recList.Code != http.StatusOK {
		t.Fatalf("expected list status 200, got %d", recList.Code)
	}

	var entries []models.WatchedEntry
	if err := json.Unmarshal(recList.Body.Bytes(), &entries); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if len(entries) != 1 || entries[0].Season != 1 || entries[0].Episode != 2 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestWatchLogMarkRejectsBadPosition(t *testing.T) {
	h, userID := newWatchLogHandler(t)

	payload, _ := json.Marshal(map[string]any{"season": 0, "episode": 2})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/shows/100/watchlog", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"userID": userID, "showID": "100"})
	rec := httptest.NewRecorder()
	h.Mark(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestWatchLogUnmarkRequiresConfirmation(t *testing.T) {
	h, userID := newWatchLogHandler(t)

	mark, _ := json.Marshal(map[string]any{"season": 1, "episode": 1})
	req := httptest.NewRequest(http.MethodPost, "/api/users/"+userID+"/shows/100/watchlog", bytes.NewReader(mark))
	req = mux.SetURLVars(req, map[string]string{"userID": userID, "showID": "100"})
	rec := httptest.NewRecorder()
	h.Mark(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("failed to seed watch log: %d", rec.Code)
	}

	unmark, _ := json.Marshal(map[string]any{"season": 1, "episode": 1, "confirmed": false})
	reqUnmark := httptest.NewRequest(http.MethodDelete, "/api/users/"+userID+"/shows/100/watchlog", bytes.NewReader(unmark))
	reqUnmark = mux.SetURLVars(reqUnmark, map[string]string{"userID": userID, "showID": "100"})
	recUnmark := httptest.NewRecorder()
	h.Unmark(recUnmark, reqUnmark)

	if recUnmark.Code != http.StatusConflict {
		t.Fatalf("expected status 409 without confirmation, got %d", recUnmark.Code)
	}

	confirmed, _ := json.Marshal(map[string]any{"season": 1, "episode": 1, "confirmed": true})
	reqConfirmed := httptest.NewRequest(http.MethodDelete, "/api/users/"+userID+"/shows/100/watchlog", bytes.NewReader(confirmed))
	reqConfirmed = mux.SetURLVars(reqConfirmed, map[string]string{"userID": userID, "showID": "100"})
	recConfirmed := httptest.NewRecorder()
	h.Unmark(recConfirmed, reqConfirmed)

	if recConfirmed.Code != http.StatusNoContent {
		t.Fatalf("expected status 204 with confirmation, got %d", recConfirmed.Code)
	}
}

func TestWatchLogUnknownUserRejected(t *testing.T) {
	h, _ := newWatchLogHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/ghost/shows/100/watchlog", nil)
	req = mux.SetURLVars(req, map[string]string{"userID": "ghost", "showID": "100"})
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown user, got %d", rec.Code)
	}
}
