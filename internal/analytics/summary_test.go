package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"surveyinsights/internal/domains"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 1, 0)
	surveys := []domains.Survey{
		{ID: "open", Published: true},
		{ID: "scheduled", Published: true, EndDate: &future},
		{ID: "expired", Published: true, EndDate: &past},
		{ID: "draft"},
	}
	completed := []domains.SurveyResponse{{SurveyID: "open"}, {SurveyID: "expired"}, {SurveyID: "elsewhere"}}
	incomplete := []domains.IncompleteSurveyResponse{{SurveyID: "open"}, {SurveyID: "elsewhere"}}

	got := Summarize(surveys, completed, incomplete, now)
	assert.Equal(t, AdminSummary{
		TotalSurveys:        4,
		ActiveSurveys:       2,
		TotalResponses:      3,
		CompletedResponses:  2,
		IncompleteResponses: 1,
		CompletionRate:      67,
	}, got)

	assert.Equal(t, AdminSummary{}, Summarize(nil, nil, nil, now))
}
