package httptransport

import (
	"errors"
	"log/slog"
	"net/http"

	"surveyinsights/internal/httpx"
	"surveyinsights/internal/service"
	"surveyinsights/internal/storage"
)

// writeError maps service and storage errors onto status codes. Causes of 5xx
// responses are logged and hidden from the client.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized):
		httpx.Error(w, http.StatusForbidden, "not authorized for the requested survey")
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, storage.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrSessionClosed),
		errors.Is(err, service.ErrSurveyClosed):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, storage.ErrUserExist):
		httpx.Error(w, http.StatusConflict, "user already exists")
	case errors.Is(err, storage.ErrConflict):
		httpx.Error(w, http.StatusConflict, "conflict")
	case errors.Is(err, service.PasswordIncorrect),
		errors.Is(err, service.TokenIncorrect):
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrInvalidAnswer),
		errors.Is(err, service.ErrInvalidSurvey),
		errors.Is(err, service.ErrInvalidQuestion),
		errors.Is(err, service.ErrSurveyScheduleInvalid),
		errors.Is(err, service.ErrSurveyIDRequired),
		errors.Is(err, service.ErrCredentialsRequired):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error(op+" failed", "err", err)
		httpx.Error(w, http.StatusInternalServerError, "internal error")
	}
}
