package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"surveyinsights/internal/analytics"
	"surveyinsights/internal/config"
	"surveyinsights/internal/domains"
	"surveyinsights/internal/service"
	"surveyinsights/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-secret"

type stubAccounts struct{}

func (stubAccounts) GetUserByID(_ context.Context, id string) (domains.Questioner, error) {
	switch id {
	case "u1":
		return domains.Questioner{Id: "u1", Email: "u1@example.com", Password: "hash"}, nil
	case "admin":
		return domains.Questioner{Id: "admin", Role: domains.RoleAdmin}, nil
	}
	return domains.Questioner{}, storage.ErrNotFound
}

type stubAnalytics struct {
	lastCriteria analytics.Criteria
	lastUser     domains.Questioner
}

func (s *stubAnalytics) KPIs(_ context.Context, user domains.Questioner, c analytics.Criteria) (analytics.KPISummary, error) {
	s.lastUser, s.lastCriteria = user, c
	for _, id := range c.SurveyIDs {
		if id == "foreign" {
			return analytics.KPISummary{}, service.ErrNotAuthorized
		}
		if id == "broken" {
			return analytics.KPISummary{}, fmt.Errorf("list: %w", context.DeadlineExceeded)
		}
	}
	return analytics.KPISummary{TotalCount: 3, CompletionRate: 67}, nil
}

func (s *stubAnalytics) QuestionPerformance(context.Context, domains.Questioner, analytics.Criteria) ([]analytics.QuestionPerformance, error) {
	return nil, nil
}

func (s *stubAnalytics) Trends(_ context.Context, _ domains.Questioner, c analytics.Criteria) ([]analytics.TrendPoint, error) {
	return analytics.Trend(nil, nil, c.Days, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)), nil
}

func (s *stubAnalytics) Summary(context.Context, domains.Questioner, analytics.Criteria) (analytics.AdminSummary, error) {
	return analytics.AdminSummary{TotalSurveys: 1}, nil
}

func (s *stubAnalytics) Dashboard(_ context.Context, _ domains.Questioner, c analytics.Criteria) (analytics.Dashboard, error) {
	return analytics.Dashboard{Criteria: c}, nil
}

type stubResponses struct {
	answers []domains.AnswerSubmission
}

func (s *stubResponses) Start(_ context.Context, p domains.SessionStart) (domains.IncompleteSurveyResponse, error) {
	if p.SurveyID == "closed" {
		return domains.IncompleteSurveyResponse{}, service.ErrSurveyClosed
	}
	return domains.IncompleteSurveyResponse{ID: "sess-1", SurveyID: p.SurveyID, RespondentID: "r"}, nil
}

func (s *stubResponses) RecordAnswer(_ context.Context, id string, a domains.AnswerSubmission) (domains.IncompleteSurveyResponse, error) {
	if id != "sess-1" {
		return domains.IncompleteSurveyResponse{}, service.ErrSessionNotFound
	}
	if a.QuestionID == "" {
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("question id is required: %w", service.ErrInvalidAnswer)
	}
	s.answers = append(s.answers, a)
	return domains.IncompleteSurveyResponse{ID: id}, nil
}

func (s *stubResponses) Complete(_ context.Context, id string, _ domains.SessionComplete) (domains.SurveyResponse, error) {
	if id != "sess-1" {
		return domains.SurveyResponse{}, service.ErrSessionNotFound
	}
	return domains.SurveyResponse{ID: "resp-1", Completed: true}, nil
}

func (s *stubResponses) Abandon(_ context.Context, id string) (domains.IncompleteSurveyResponse, error) {
	return domains.IncompleteSurveyResponse{}, service.ErrSessionClosed
}

func (s *stubResponses) DeleteCompleted(_ context.Context, user domains.Questioner, id string) error {
	if !user.IsAdmin() {
		return service.ErrNotAuthorized
	}
	return nil
}

func (s *stubResponses) CorrectCompleted(_ context.Context, _ domains.Questioner, id string, c domains.ResponseCorrection) (domains.SurveyResponse, error) {
	return domains.SurveyResponse{ID: id, Responses: domains.Answers(c.Responses)}, nil
}

func newTestRouter(t *testing.T, burst int) (*mux.Router, *stubAnalytics, *stubResponses) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = testSecret
	cfg.Server.SubmitRate = 0.001
	cfg.Server.SubmitBurst = burst

	stats := &stubAnalytics{}
	responses := &stubResponses{}
	router := Router(Services{
		Auth:      service.NewAuthService(nil, testSecret),
		Analytics: stats,
		Responses: responses,
		Accounts:  stubAccounts{},
	}, cfg)
	return router, stats, responses
}

func accessToken(t *testing.T, sub string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "exp": time.Now().Add(time.Hour).Unix(), "type": "access",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func do(router http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.1:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AnalyticsRequiresAuth(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)

	rec := do(router, http.MethodGet, "/api/analytics/kpis", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/api/analytics/kpis", accessToken(t, "ghost"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_KPIs(t *testing.T) {
	router, stats, _ := newTestRouter(t, 10)
	token := accessToken(t, "u1")

	rec := do(router, http.MethodGet, "/api/analytics/kpis?surveyId=s1,s2&excludeAbandoned=true", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var kpis analytics.KPISummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &kpis))
	assert.Equal(t, 3, kpis.TotalCount)
	assert.Equal(t, 67, kpis.CompletionRate)
	assert.Equal(t, []string{"s1", "s2"}, stats.lastCriteria.SurveyIDs)
	assert.True(t, stats.lastCriteria.ExcludeAbandoned)
	assert.Equal(t, "u1", stats.lastUser.Id)
	assert.Empty(t, stats.lastUser.Password)

	rec = do(router, http.MethodGet, "/api/analytics/kpis?surveyId=foreign", token, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodGet, "/api/analytics/kpis?surveyId=broken", token, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "deadline")

	rec = do(router, http.MethodGet, "/api/analytics/kpis?from=nope", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_TrendsAndQuestions(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)
	token := accessToken(t, "u1")

	rec := do(router, http.MethodGet, "/api/analytics/trends?days=3", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var trend []analytics.TrendPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	assert.Len(t, trend, 3)

	rec = do(router, http.MethodGet, "/api/analytics/questions", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_SessionFlow(t *testing.T) {
	router, _, responses := newTestRouter(t, 10)

	rec := do(router, http.MethodPost, "/api/sessions", "", `{"survey_id":"s1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sess-1"`)

	rec = do(router, http.MethodPost, "/api/sessions", "", `{"survey_id":"closed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodPost, "/api/sessions/sess-1/answers", "", `{"question_id":"q1","answer":["a","b"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, responses.answers, 1)
	assert.Equal(t, []any{"a", "b"}, responses.answers[0].Value)

	rec = do(router, http.MethodPost, "/api/sessions/sess-1/answers", "", `{"answer":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPost, "/api/sessions/other/answers", "", `{"question_id":"q1","answer":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(router, http.MethodPost, "/api/sessions/sess-1/complete", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPost, "/api/sessions/sess-1/abandon", "", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_SessionsAreRateLimited(t *testing.T) {
	router, _, _ := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(router, http.MethodPost, "/api/sessions", "", `{"survey_id":"s1"}`).Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
}

func TestRouter_ResponseAdministration(t *testing.T) {
	router, _, _ := newTestRouter(t, 10)

	rec := do(router, http.MethodDelete, "/api/responses/r1", accessToken(t, "u1"), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, http.MethodDelete, "/api/responses/r1", accessToken(t, "admin"), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodPut, "/api/responses/r1", accessToken(t, "admin"), `{"responses":{"not":"a list"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, http.MethodPut, "/api/responses/r1", accessToken(t, "admin"), `{"responses":[{"question_id":"q1","answer":3}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"question_id":"q1"`)
}
