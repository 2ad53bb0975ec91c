package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrOrderNotFound", orderdomain.ErrOrderNotFound, http.StatusNotFound},
		{"ErrSessionNotFound", orderdomain.ErrSessionNotFound, http.StatusNotFound},
		{"ErrMenuEntryNotFound", menudomain.ErrMenuEntryNotFound, http.StatusNotFound},
		{"ErrSlotOccupied", orderdomain.ErrSlotOccupied, http.StatusConflict},
		{"ErrDuplicateID", orderdomain.ErrDuplicateID, http.StatusConflict},
		{"ErrOrderSettled", orderdomain.ErrOrderSettled, http.StatusConflict},
		{"ErrMenuEntryAlreadyExists", menudomain.ErrMenuEntryAlreadyExists, http.StatusConflict},
		{"ErrEmptyOrder", orderdomain.ErrEmptyOrder, http.StatusUnprocessableEntity},
		{"ErrInvalidSlot", orderdomain.ErrInvalidSlot, http.StatusUnprocessableEntity},
		{"ErrUnknownMenuEntry", orderdomain.ErrUnknownMenuEntry, http.StatusUnprocessableEntity},
		{"ErrInvalidMenuEntry", menudomain.ErrInvalidMenuEntry, http.StatusUnprocessableEntity},
		{"ErrSessionBusy", orderdomain.ErrSessionBusy, http.StatusLocked},
		{"ErrStorageFailure", orderdomain.ErrStorageFailure, http.StatusServiceUnavailable},
		{"wrapped ErrOrderNotFound", fmt.Errorf("discard 17: %w", orderdomain.ErrOrderNotFound), http.StatusNotFound},
		{"wrapped ErrInvalidSlot", fmt.Errorf("%w: dine-in 9 outside 1..6", orderdomain.ErrInvalidSlot), http.StatusUnprocessableEntity},
		{"storage wrapping a sentinel-free cause", fmt.Errorf("%w: list: %w", orderdomain.ErrStorageFailure, errors.New("conn reset")), http.StatusServiceUnavailable},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, orderdomain.ErrOrderNotFound)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	if _, ok := body["error"]; !ok {
		t.Fatal("response body missing 'error' key")
	}
}

func TestWriteError_ContentType(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, orderdomain.ErrOrderNotFound)

	ct := w.Header().Get("Content-Type")
	if ct == "" {
		t.Fatal("Content-Type header not set")
	}
}
