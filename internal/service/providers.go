package service

import (
	"context"
	"time"

	"surveyinsights/internal/domains"
)

type AuthProvider interface {
	SaveUser(ctx context.Context, passHash string, user domains.Questioner) (domains.Questioner, error)
	GetUserByEmail(ctx context.Context, email string) (domains.Questioner, error)
	GetUserByID(ctx context.Context, id string) (domains.Questioner, error)
}

type SurveyProvider interface {
	SaveSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error)
	UpdateSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error)
	GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error)
	ListSurveys(ctx context.Context, ownerID string) ([]domains.Survey, error)
}

type QuestionProvider interface {
	SaveQuestion(ctx context.Context, q domains.Question) (domains.Question, error)
	UpdateQuestion(ctx context.Context, q domains.Question) (domains.Question, error)
	GetQuestionByID(ctx context.Context, id string) (domains.Question, error)
	GetQuestionsByIDs(ctx context.Context, ids []string) ([]domains.Question, error)
}

type ResponseProvider interface {
	ListCompleted(ctx context.Context, filter domains.ResponseFilter) ([]domains.SurveyResponse, error)
	ListIncomplete(ctx context.Context, filter domains.ResponseFilter) ([]domains.IncompleteSurveyResponse, error)
	FindOpenSession(ctx context.Context, surveyID, respondentID string) (domains.IncompleteSurveyResponse, error)
	GetSession(ctx context.Context, id string) (domains.IncompleteSurveyResponse, error)
	CreateSession(ctx context.Context, session domains.IncompleteSurveyResponse) (domains.IncompleteSurveyResponse, error)
	SaveSessionAnswers(ctx context.Context, id string, answers domains.Answers, at time.Time) (domains.IncompleteSurveyResponse, error)
	SetAbandoned(ctx context.Context, id string, abandoned bool, at time.Time) (domains.IncompleteSurveyResponse, error)
	AbandonStale(ctx context.Context, before time.Time) (int64, error)
	HasCompleted(ctx context.Context, surveyID, respondentID string) (bool, error)
	Promote(ctx context.Context, sessionID string, completed domains.SurveyResponse) (domains.SurveyResponse, error)
	GetCompleted(ctx context.Context, id string) (domains.SurveyResponse, error)
	UpdateCompleted(ctx context.Context, r domains.SurveyResponse) (domains.SurveyResponse, error)
	DeleteCompleted(ctx context.Context, id string) error
}
