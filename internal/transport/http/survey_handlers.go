package httptransport

import (
	"context"
	"net/http"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/httpx"
)

type SurveyHandlers struct {
	service SurveyServices
}

type SurveyServices interface {
	CreateSurvey(ctx context.Context, user domains.Questioner, payload domains.SurveyCreate) (domains.Survey, error)
	ListSurveys(ctx context.Context, user domains.Questioner) ([]domains.Survey, error)
	GetSurvey(ctx context.Context, user domains.Questioner, surveyID string) (domains.Survey, error)
	UpdateSurvey(ctx context.Context, user domains.Questioner, surveyID string, update domains.SurveyUpdate) (domains.Survey, error)
	PublishSurvey(ctx context.Context, user domains.Questioner, surveyID string) (domains.Survey, error)
}

func NewSurveyHandlers(service SurveyServices) *SurveyHandlers {
	return &SurveyHandlers{service: service}
}

func (h *SurveyHandlers) CreateSurvey(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	payload, err := httpx.ReadBody[domains.SurveyCreate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateSurvey(r.Context(), user, payload)
	if err != nil {
		writeError(w, "create survey", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *SurveyHandlers) ListSurveys(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveys, err := h.service.ListSurveys(r.Context(), user)
	if err != nil {
		writeError(w, "list surveys", err)
		return
	}
	if surveys == nil {
		surveys = []domains.Survey{}
	}
	httpx.JSON(w, http.StatusOK, surveys)
}

func (h *SurveyHandlers) GetSurvey(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	survey, err := h.service.GetSurvey(r.Context(), user, surveyID)
	if err != nil {
		writeError(w, "get survey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

func (h *SurveyHandlers) UpdateSurvey(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	update, err := httpx.ReadBody[domains.SurveyUpdate](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	survey, err := h.service.UpdateSurvey(r.Context(), user, surveyID, update)
	if err != nil {
		writeError(w, "update survey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}

func (h *SurveyHandlers) PublishSurvey(w http.ResponseWriter, r *http.Request) {
	user, ok := httpx.QuestionerFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	surveyID, ok := httpx.GetId(w, r)
	if !ok {
		return
	}
	survey, err := h.service.PublishSurvey(r.Context(), user, surveyID)
	if err != nil {
		writeError(w, "publish survey", err)
		return
	}
	httpx.JSON(w, http.StatusOK, survey)
}
