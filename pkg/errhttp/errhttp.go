// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to mapErrorToStatus for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/tablepos/pkg/httpx"
	"github.com/ghuser/tablepos/pkg/telemetry"
	menudomain "github.com/ghuser/tablepos/services/menu/domain"
	orderdomain "github.com/ghuser/tablepos/services/order/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors; 5xx errors
// are reported to Sentry.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		telemetry.CaptureError(err)
	}
	httpx.JSONError(w, status, err.Error())
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound),
		errors.Is(err, orderdomain.ErrSessionNotFound),
		errors.Is(err, menudomain.ErrMenuEntryNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, orderdomain.ErrSlotOccupied),
		errors.Is(err, orderdomain.ErrDuplicateID),
		errors.Is(err, orderdomain.ErrOrderSettled),
		errors.Is(err, menudomain.ErrMenuEntryAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, orderdomain.ErrEmptyOrder),
		errors.Is(err, orderdomain.ErrInvalidSlot),
		errors.Is(err, orderdomain.ErrUnknownMenuEntry),
		errors.Is(err, menudomain.ErrInvalidMenuEntry):
		return http.StatusUnprocessableEntity // 422
	case errors.Is(err, orderdomain.ErrSessionBusy):
		return http.StatusLocked // 423
	case errors.Is(err, orderdomain.ErrStorageFailure):
		return http.StatusServiceUnavailable // 503
	default:
		return http.StatusInternalServerError // 500
	}
}
