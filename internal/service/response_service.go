package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveyinsights/internal/analytics"
	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/google/uuid"
)

// ResponseService drives a respondent's session from start to completion and
// lets survey owners correct completed responses.
type ResponseService struct {
	surveys   SurveyProvider
	responses ResponseProvider
	now       func() time.Time
}

func NewResponseService(surveys SurveyProvider, responses ResponseProvider) *ResponseService {
	return &ResponseService{
		surveys:   surveys,
		responses: responses,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start resumes the respondent's open session or creates one. An abandoned
// session is reopened. A respondent who already completed the survey gets
// ErrSessionClosed.
func (s *ResponseService) Start(ctx context.Context, payload domains.SessionStart) (domains.IncompleteSurveyResponse, error) {
	survey, err := s.activeSurvey(ctx, payload.SurveyID)
	if err != nil {
		return domains.IncompleteSurveyResponse{}, err
	}

	respondent := strings.TrimSpace(payload.RespondentID)
	if respondent == "" {
		respondent = uuid.NewString()
	}

	done, err := s.responses.HasCompleted(ctx, survey.ID, respondent)
	if err != nil {
		slog.Error("check completed response", "survey_id", survey.ID, "respondent_id", respondent, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	if done {
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("respondent %s already completed survey %s: %w",
			respondent, survey.ID, ErrSessionClosed)
	}

	existing, err := s.responses.FindOpenSession(ctx, survey.ID, respondent)
	switch {
	case err == nil:
		return s.resume(ctx, existing)
	case !errors.Is(err, storage.ErrNotFound):
		slog.Error("find open session", "survey_id", survey.ID, "respondent_id", respondent, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}

	now := s.now()
	created, err := s.responses.CreateSession(ctx, domains.IncompleteSurveyResponse{
		ID:            uuid.NewString(),
		SurveyID:      survey.ID,
		RespondentID:  respondent,
		Responses:     domains.Answers{},
		Metadata:      payload.Metadata,
		StartedAt:     now,
		LastUpdatedAt: now,
	})
	if errors.Is(err, storage.ErrConflict) {
		// a concurrent start for the same respondent won the insert
		existing, err = s.responses.FindOpenSession(ctx, survey.ID, respondent)
		if err != nil {
			return domains.IncompleteSurveyResponse{}, err
		}
		return s.resume(ctx, existing)
	}
	if err != nil {
		slog.Error("create session", "survey_id", survey.ID, "respondent_id", respondent, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	return created, nil
}

func (s *ResponseService) resume(ctx context.Context, session domains.IncompleteSurveyResponse) (domains.IncompleteSurveyResponse, error) {
	if !session.Abandoned() {
		return session, nil
	}
	reopened, err := s.responses.SetAbandoned(ctx, session.ID, false, s.now())
	if err != nil {
		slog.Error("reopen session", "session_id", session.ID, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	return reopened, nil
}

// RecordAnswer stores one answer, replacing an earlier answer to the same question.
func (s *ResponseService) RecordAnswer(ctx context.Context, sessionID string, submission domains.AnswerSubmission) (domains.IncompleteSurveyResponse, error) {
	if err := validateAnswer(submission.QuestionID, submission.Value, submission.TimeSpent); err != nil {
		return domains.IncompleteSurveyResponse{}, err
	}
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return domains.IncompleteSurveyResponse{}, err
	}
	survey, err := s.activeSurvey(ctx, session.SurveyID)
	if err != nil {
		return domains.IncompleteSurveyResponse{}, err
	}
	if len(survey.QuestionIDs) > 0 && !containsID(survey.QuestionIDs, submission.QuestionID) {
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("question %s is not part of survey %s: %w",
			submission.QuestionID, survey.ID, ErrInvalidAnswer)
	}

	answers := session.Responses.Upsert(domains.Answer{
		QuestionID: submission.QuestionID,
		Value:      submission.Value,
		SectionID:  submission.SectionID,
		TimeSpent:  submission.TimeSpent,
	})
	updated, err := s.responses.SaveSessionAnswers(ctx, session.ID, answers, s.now())
	if err != nil {
		slog.Error("save answers", "session_id", session.ID, "question_id", submission.QuestionID, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	return updated, nil
}

// Complete promotes the session to a completed response. Progress and
// engagement are computed from the answers and the session's duration.
func (s *ResponseService) Complete(ctx context.Context, sessionID string, payload domains.SessionComplete) (domains.SurveyResponse, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return domains.SurveyResponse{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, session.SurveyID)
	if err != nil {
		slog.Error("load survey for completion", "survey_id", session.SurveyID, "err", err)
		return domains.SurveyResponse{}, err
	}

	end := s.now()
	start := session.StartedAt
	seconds := end.Sub(start).Seconds()
	if seconds < 0 {
		seconds = 0
	}
	answered := session.Responses.Answered()
	engagement := analytics.SessionEngagement(answered, len(survey.QuestionIDs), seconds)

	completed := domains.SurveyResponse{
		ID:              uuid.NewString(),
		SurveyID:        session.SurveyID,
		RespondentID:    session.RespondentID,
		Responses:       session.Responses,
		Completed:       true,
		StartTime:       &start,
		EndTime:         &end,
		CompletionTime:  &seconds,
		Progress:        analytics.SessionProgress(answered, len(survey.QuestionIDs)),
		EngagementScore: &engagement,
		Metadata:        mergeMetadata(session.Metadata, payload.Metadata),
		CreatedAt:       end,
		UpdatedAt:       end,
	}

	stored, err := s.responses.Promote(ctx, session.ID, completed)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.SurveyResponse{}, ErrSessionNotFound
		}
		if errors.Is(err, storage.ErrConflict) {
			return domains.SurveyResponse{}, fmt.Errorf("respondent %s already completed survey %s: %w",
				session.RespondentID, session.SurveyID, ErrSessionClosed)
		}
		slog.Error("promote session", "session_id", session.ID, "survey_id", session.SurveyID, "err", err)
		return domains.SurveyResponse{}, err
	}
	slog.Info("response completed", "survey_id", stored.SurveyID, "response_id", stored.ID, "progress", stored.Progress)
	return stored, nil
}

func (s *ResponseService) Abandon(ctx context.Context, sessionID string) (domains.IncompleteSurveyResponse, error) {
	session, err := s.openSession(ctx, sessionID)
	if err != nil {
		return domains.IncompleteSurveyResponse{}, err
	}
	updated, err := s.responses.SetAbandoned(ctx, session.ID, true, s.now())
	if err != nil {
		slog.Error("abandon session", "session_id", session.ID, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	return updated, nil
}

// AbandonStale flags open sessions idle for longer than idle.
func (s *ResponseService) AbandonStale(ctx context.Context, idle time.Duration) (int64, error) {
	n, err := s.responses.AbandonStale(ctx, s.now().Add(-idle))
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *ResponseService) DeleteCompleted(ctx context.Context, user domains.Questioner, responseID string) error {
	if _, err := s.ownedResponse(ctx, user, responseID); err != nil {
		return err
	}
	if err := s.responses.DeleteCompleted(ctx, responseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrResponseNotFound
		}
		slog.Error("delete response", "response_id", responseID, "err", err)
		return err
	}
	slog.Info("response deleted", "response_id", responseID, "user_id", user.Id)
	return nil
}

// CorrectCompleted replaces the answers of a completed response and recomputes
// its progress and engagement.
func (s *ResponseService) CorrectCompleted(ctx context.Context, user domains.Questioner, responseID string, correction domains.ResponseCorrection) (domains.SurveyResponse, error) {
	if correction.Responses == nil {
		return domains.SurveyResponse{}, fmt.Errorf("responses are required: %w", ErrInvalidAnswer)
	}
	for _, a := range correction.Responses {
		if err := validateAnswer(a.QuestionID, a.Value, a.TimeSpent); err != nil {
			return domains.SurveyResponse{}, err
		}
	}
	r, err := s.ownedResponse(ctx, user, responseID)
	if err != nil {
		return domains.SurveyResponse{}, err
	}
	survey, err := s.surveys.GetSurveyByID(ctx, r.SurveyID)
	if err != nil {
		return domains.SurveyResponse{}, err
	}

	answers := domains.Answers{}
	for _, a := range correction.Responses {
		answers = answers.Upsert(a)
	}
	answered := answers.Answered()
	seconds, _ := r.CompletionSeconds()
	engagement := analytics.SessionEngagement(answered, len(survey.QuestionIDs), seconds)

	r.Responses = answers
	r.Progress = analytics.SessionProgress(answered, len(survey.QuestionIDs))
	r.EngagementScore = &engagement
	r.UpdatedAt = s.now()

	updated, err := s.responses.UpdateCompleted(ctx, r)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.SurveyResponse{}, ErrResponseNotFound
		}
		slog.Error("correct response", "response_id", responseID, "err", err)
		return domains.SurveyResponse{}, err
	}
	return updated, nil
}

func (s *ResponseService) ownedResponse(ctx context.Context, user domains.Questioner, responseID string) (domains.SurveyResponse, error) {
	r, err := s.responses.GetCompleted(ctx, responseID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.SurveyResponse{}, ErrResponseNotFound
		}
		return domains.SurveyResponse{}, err
	}
	if user.IsAdmin() {
		return r, nil
	}
	survey, err := s.surveys.GetSurveyByID(ctx, r.SurveyID)
	if err != nil {
		return domains.SurveyResponse{}, err
	}
	if survey.OwnerID != user.Id {
		return domains.SurveyResponse{}, ErrNotAuthorized
	}
	return r, nil
}

func (s *ResponseService) activeSurvey(ctx context.Context, surveyID string) (domains.Survey, error) {
	if strings.TrimSpace(surveyID) == "" {
		return domains.Survey{}, ErrSurveyIDRequired
	}
	survey, err := s.surveys.GetSurveyByID(ctx, surveyID)
	if err != nil {
		return domains.Survey{}, err
	}
	if !survey.IsActive(s.now()) {
		return domains.Survey{}, ErrSurveyClosed
	}
	return survey, nil
}

func (s *ResponseService) openSession(ctx context.Context, sessionID string) (domains.IncompleteSurveyResponse, error) {
	session, err := s.responses.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domains.IncompleteSurveyResponse{}, ErrSessionNotFound
		}
		slog.Error("get session", "session_id", sessionID, "err", err)
		return domains.IncompleteSurveyResponse{}, err
	}
	if !session.Open() {
		return domains.IncompleteSurveyResponse{}, ErrSessionClosed
	}
	return session, nil
}

func validateAnswer(questionID string, value any, timeSpent *float64) error {
	if strings.TrimSpace(questionID) == "" {
		return fmt.Errorf("question id is required: %w", ErrInvalidAnswer)
	}
	if timeSpent != nil && *timeSpent < 0 {
		return fmt.Errorf("time spent is negative: %w", ErrInvalidAnswer)
	}
	switch value.(type) {
	case nil, string, bool, float64, []any, map[string]any:
		return nil
	}
	return fmt.Errorf("unsupported answer type %T: %w", value, ErrInvalidAnswer)
}

func mergeMetadata(base, extra map[string]any) map[string]any {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
