package httptransport

import (
	"context"
	"net/http"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/httpx"
)

type QuestionHandlers struct {
	service QuestionServices
}

type QuestionServices interface {
	CreateQuestion(ctx context.Context, user domains.Questioner, payload domains.QuestionCreate) (domains.Question, error)
	AddVersion(ctx context.Context, user domains.Questioner, questionID string, version domains.QuestionVersion) (domains.Question, error)
	GetQuestion(ctx context.Context, user domains.Questioner, questionID string) (domains.Question, error)
}

func NewQuestionHandlers(service QuestionServices) *QuestionHandlers {
	return &QuestionHandlers{service: service}
}

func (h *QuestionHandlers) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	payload, err := httpx.ReadBody[domains.QuestionCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.service.CreateQuestion(r.Context(), user, payload)
	if err != nil {
		writeError(w, "create question", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuestionHandlers) AddVersion(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	questionID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	version, err := httpx.ReadBody[domains.QuestionVersion](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	q, err := h.service.AddVersion(r.Context(), user, questionID, version)
	if err != nil {
		writeError(w, "add question version", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuestionHandlers) GetQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	questionID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	q, err := h.service.GetQuestion(r.Context(), user, questionID)
	if err != nil {
		writeError(w, "get question", err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}
