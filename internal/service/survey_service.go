package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/google/uuid"
)

type SurveyService struct {
	provider SurveyProvider
	now      func() time.Time
}

func NewSurveyService(provider SurveyProvider) *SurveyService {
	return &SurveyService{
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (h *SurveyService) CreateSurvey(ctx context.Context, user domains.Questioner, payload domains.SurveyCreate) (domains.Survey, error) {
	now := h.now()
	survey := domains.Survey{
		ID:           uuid.NewString(),
		OwnerID:      user.Id,
		Title:        strings.TrimSpace(payload.Title),
		Description:  payload.Description,
		Published:    payload.Published,
		TagIDs:       payload.TagIDs,
		QuestionIDs:  payload.QuestionIDs,
		InviteeCount: payload.InviteeCount,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if payload.EndDate != nil {
		end := payload.EndDate.UTC()
		survey.EndDate = &end
	}
	if err := h.validate(survey); err != nil {
		return domains.Survey{}, err
	}

	created, err := h.provider.SaveSurvey(ctx, survey)
	if err != nil {
		slog.Error("save survey", "owner_id", user.Id, "err", err)
		return domains.Survey{}, fmt.Errorf("save survey: %w", err)
	}
	slog.Info("survey created", "survey_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

func (h *SurveyService) ListSurveys(ctx context.Context, user domains.Questioner) ([]domains.Survey, error) {
	owner := user.Id
	if user.IsAdmin() {
		owner = ""
	}
	surveys, err := h.provider.ListSurveys(ctx, owner)
	if err != nil {
		slog.Error("list surveys", "user_id", user.Id, "err", err)
		return nil, err
	}
	return surveys, nil
}

func (h *SurveyService) GetSurvey(ctx context.Context, user domains.Questioner, surveyID string) (domains.Survey, error) {
	survey, err := h.provider.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if !user.IsAdmin() && survey.OwnerID != user.Id {
		// other owners' surveys are reported as missing
		return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
	}
	return survey, nil
}

func (h *SurveyService) UpdateSurvey(ctx context.Context, user domains.Questioner, surveyID string, update domains.SurveyUpdate) (domains.Survey, error) {
	current, err := h.GetSurvey(ctx, user, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if !update.HasChanges() {
		return current, nil
	}
	next := update.Apply(current)
	if err := h.validate(next); err != nil {
		return domains.Survey{}, err
	}
	next.UpdatedAt = h.now()

	updated, err := h.provider.UpdateSurvey(ctx, next)
	if err != nil {
		slog.Error("update survey", "survey_id", surveyID, "err", err)
		return domains.Survey{}, err
	}
	return updated, nil
}

func (h *SurveyService) PublishSurvey(ctx context.Context, user domains.Questioner, surveyID string) (domains.Survey, error) {
	published := true
	return h.UpdateSurvey(ctx, user, surveyID, domains.SurveyUpdate{Published: &published})
}

func (h *SurveyService) validate(s domains.Survey) error {
	if s.Title == "" {
		return ErrInvalidSurvey
	}
	if s.InviteeCount != nil && *s.InviteeCount < 0 {
		return errors.New("invitee count must not be negative")
	}
	if s.Published && s.EndDate != nil && !s.EndDate.After(h.now()) {
		return ErrSurveyScheduleInvalid
	}
	return nil
}
