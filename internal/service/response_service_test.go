package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponseFixture(t *testing.T) (*ResponseService, *memStore, *time.Time) {
	t.Helper()
	store := newMemStore()
	store.surveys["s1"] = domains.Survey{ID: "s1", OwnerID: "u1", Title: "Onboarding", Published: true,
		QuestionIDs: []string{"q1", "q2"}}
	store.surveys["draft"] = domains.Survey{ID: "draft", OwnerID: "u1", Title: "Draft"}

	clock := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	svc := NewResponseService(store, store)
	svc.now = func() time.Time { return clock }
	return svc, store, &clock
}

func TestResponseService_StartFindsOrCreates(t *testing.T) {
	svc, store, _ := newResponseFixture(t)
	ctx := context.Background()

	first, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "alice"})
	require.NoError(t, err)
	again, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, store.incomplete, 1)

	anon, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1"})
	require.NoError(t, err)
	assert.NotEmpty(t, anon.RespondentID)
	assert.NotEqual(t, first.ID, anon.ID)
}

func TestResponseService_StartRejectsInactiveSurvey(t *testing.T) {
	svc, _, _ := newResponseFixture(t)
	ctx := context.Background()

	_, err := svc.Start(ctx, domains.SessionStart{SurveyID: "draft"})
	assert.ErrorIs(t, err, ErrSurveyClosed)

	_, err = svc.Start(ctx, domains.SessionStart{SurveyID: "missing"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.Start(ctx, domains.SessionStart{})
	assert.ErrorIs(t, err, ErrSurveyIDRequired)
}

func TestResponseService_RecordAnswerUpserts(t *testing.T) {
	svc, _, _ := newResponseFixture(t)
	ctx := context.Background()
	session, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "alice"})
	require.NoError(t, err)

	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: 3.0})
	require.NoError(t, err)
	updated, err := svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: 5.0})
	require.NoError(t, err)
	require.Len(t, updated.Responses, 1)
	assert.Equal(t, 5.0, updated.Responses[0].Value)

	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q9", Value: "x"})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{Value: "x"})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: struct{}{}})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
	_, err = svc.RecordAnswer(ctx, "nope", domains.AnswerSubmission{QuestionID: "q1", Value: 1.0})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResponseService_CompletePromotesAtomically(t *testing.T) {
	svc, store, clock := newResponseFixture(t)
	ctx := context.Background()
	session, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "alice", Metadata: map[string]any{"source": "email"}})
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: 4.0})
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Minute)
	completed, err := svc.Complete(ctx, session.ID, domains.SessionComplete{Metadata: map[string]any{"device": "mobile"}})
	require.NoError(t, err)

	assert.True(t, completed.Completed)
	require.NotNil(t, completed.CompletionTime)
	assert.Equal(t, 120.0, *completed.CompletionTime)
	assert.Equal(t, 50, completed.Progress)
	require.NotNil(t, completed.EngagementScore)
	// 0.6 * 1/2 + 0.4 * pacing(120s per answer)
	assert.InDelta(t, 66.7, *completed.EngagementScore, 0.01)
	assert.Equal(t, map[string]any{"source": "email", "device": "mobile"}, completed.Metadata)
	assert.Empty(t, store.incomplete)
	assert.Len(t, store.completed, 1)

	_, err = svc.Complete(ctx, session.ID, domains.SessionComplete{})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestResponseService_CompletedRespondentCannotRestart(t *testing.T) {
	svc, store, _ := newResponseFixture(t)
	ctx := context.Background()
	session, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "carol"})
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: 1.0})
	require.NoError(t, err)
	first, err := svc.Complete(ctx, session.ID, domains.SessionComplete{})
	require.NoError(t, err)

	_, err = svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "carol"})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, store.incomplete)

	// a second session that slipped past the check must not overwrite the record
	store.incomplete["late"] = domains.IncompleteSurveyResponse{ID: "late", SurveyID: "s1", RespondentID: "carol",
		Responses: domains.Answers{{QuestionID: "q1", Value: 5.0}}, StartedAt: first.CreatedAt}
	_, err = svc.Complete(ctx, "late", domains.SessionComplete{})
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, store.completed, 1)
	assert.Equal(t, 1.0, store.completed[first.ID].Responses[0].Value)
	assert.Contains(t, store.incomplete, "late")
}

func TestResponseService_AbandonAndResume(t *testing.T) {
	svc, _, clock := newResponseFixture(t)
	ctx := context.Background()
	session, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "bob"})
	require.NoError(t, err)

	abandoned, err := svc.Abandon(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, abandoned.Abandoned())

	_, err = svc.RecordAnswer(ctx, session.ID, domains.AnswerSubmission{QuestionID: "q1", Value: 1.0})
	assert.ErrorIs(t, err, ErrSessionClosed)

	*clock = clock.Add(time.Hour)
	resumed, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, resumed.ID)
	assert.False(t, resumed.Abandoned())
}

func TestResponseService_AbandonStale(t *testing.T) {
	svc, store, clock := newResponseFixture(t)
	ctx := context.Background()
	_, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "old"})
	require.NoError(t, err)

	*clock = clock.Add(3 * time.Hour)
	fresh, err := svc.Start(ctx, domains.SessionStart{SurveyID: "s1", RespondentID: "new"})
	require.NoError(t, err)

	n, err := svc.AbandonStale(ctx, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, store.incomplete[fresh.ID].Abandoned())
}

func TestResponseService_AdminCorrection(t *testing.T) {
	svc, store, _ := newResponseFixture(t)
	ctx := context.Background()
	store.completed["r1"] = domains.SurveyResponse{ID: "r1", SurveyID: "s1", RespondentID: "a", Completed: true,
		CompletionTime: ptr(60.0), Responses: domains.Answers{{QuestionID: "q1", Value: 2.0}}}

	_, err := svc.CorrectCompleted(ctx, domains.Questioner{Id: "u2"}, "r1", domains.ResponseCorrection{Responses: []domains.Answer{}})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	corrected, err := svc.CorrectCompleted(ctx, domains.Questioner{Id: "u1"}, "r1", domains.ResponseCorrection{
		Responses: []domains.Answer{{QuestionID: "q1", Value: 4.0}, {QuestionID: "q2", Value: "Yes"}},
	})
	require.NoError(t, err)
	assert.Len(t, corrected.Responses, 2)
	assert.Equal(t, 100, corrected.Progress)

	err = svc.DeleteCompleted(ctx, domains.Questioner{Id: "u2"}, "r1")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	require.NoError(t, svc.DeleteCompleted(ctx, domains.Questioner{Id: "root", Role: domains.RoleAdmin}, "r1"))
	assert.ErrorIs(t, svc.DeleteCompleted(ctx, domains.Questioner{Id: "u1"}, "r1"), ErrResponseNotFound)
}

func TestResponseService_CorrectionRejectsMalformedBody(t *testing.T) {
	svc, store, _ := newResponseFixture(t)
	ctx := context.Background()
	original := domains.SurveyResponse{ID: "r1", SurveyID: "s1", RespondentID: "a", Completed: true, Progress: 100,
		Responses: domains.Answers{{QuestionID: "q1", Value: 2.0}, {QuestionID: "q2", Value: "No"}}}
	store.completed["r1"] = original

	var wrongShape domains.ResponseCorrection
	assert.Error(t, json.Unmarshal([]byte(`{"responses":"oops"}`), &wrongShape))

	var empty domains.ResponseCorrection
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	_, err := svc.CorrectCompleted(ctx, domains.Questioner{Id: "u1"}, "r1", empty)
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	assert.Equal(t, original, store.completed["r1"])
}
