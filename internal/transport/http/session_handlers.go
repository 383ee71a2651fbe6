package httptransport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/httpx"
)

// ResponseServices covers the public respondent flow and the owner-side
// correction of completed responses.
type ResponseServices interface {
	Start(ctx context.Context, payload domains.SessionStart) (domains.IncompleteSurveyResponse, error)
	RecordAnswer(ctx context.Context, sessionID string, submission domains.AnswerSubmission) (domains.IncompleteSurveyResponse, error)
	Complete(ctx context.Context, sessionID string, payload domains.SessionComplete) (domains.SurveyResponse, error)
	Abandon(ctx context.Context, sessionID string) (domains.IncompleteSurveyResponse, error)
	DeleteCompleted(ctx context.Context, user domains.Questioner, responseID string) error
	CorrectCompleted(ctx context.Context, user domains.Questioner, responseID string, correction domains.ResponseCorrection) (domains.SurveyResponse, error)
}

type SessionHandlers struct {
	service ResponseServices
}

func NewSessionHandlers(service ResponseServices) *SessionHandlers {
	return &SessionHandlers{service: service}
}

func (h *SessionHandlers) Start(w http.ResponseWriter, r *http.Request) {
	payload, err := httpx.ReadBody[domains.SessionStart](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.service.Start(r.Context(), payload)
	if err != nil {
		writeError(w, "start session", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, session)
}

func (h *SessionHandlers) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	submission, err := httpx.ReadBody[domains.AnswerSubmission](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.service.RecordAnswer(r.Context(), sessionID, submission)
	if err != nil {
		writeError(w, "record answer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

func (h *SessionHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	payload, err := httpx.ReadBody[domains.SessionComplete](r)
	if err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	completed, err := h.service.Complete(r.Context(), sessionID, payload)
	if err != nil {
		writeError(w, "complete session", err)
		return
	}
	httpx.JSON(w, http.StatusOK, completed)
}

func (h *SessionHandlers) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	session, err := h.service.Abandon(r.Context(), sessionID)
	if err != nil {
		writeError(w, "abandon session", err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

func (h *SessionHandlers) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	responseID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCompleted(r.Context(), user, responseID); err != nil {
		writeError(w, "delete response", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandlers) CorrectResponse(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	responseID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	correction, err := httpx.ReadBody[domains.ResponseCorrection](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.service.CorrectCompleted(r.Context(), user, responseID, correction)
	if err != nil {
		writeError(w, "correct response", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}
