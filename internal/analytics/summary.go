package analytics

import (
	"time"

	"surveyinsights/internal/domains"
)

type AdminSummary struct {
	TotalSurveys        int `json:"total_surveys"`
	ActiveSurveys       int `json:"active_surveys"`
	TotalResponses      int `json:"total_responses"`
	CompletedResponses  int `json:"completed_responses"`
	IncompleteResponses int `json:"incomplete_responses"`
	CompletionRate      int `json:"completion_rate"`
}

// Summarize counts surveys and the responses that belong to them.
func Summarize(surveys []domains.Survey, completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse, now time.Time) AdminSummary {
	ids := make(map[string]struct{}, len(surveys))
	summary := AdminSummary{TotalSurveys: len(surveys)}
	for _, s := range surveys {
		ids[s.ID] = struct{}{}
		if s.IsActive(now) {
			summary.ActiveSurveys++
		}
	}
	for _, r := range completed {
		if _, ok := ids[r.SurveyID]; ok {
			summary.CompletedResponses++
		}
	}
	for _, r := range incomplete {
		if _, ok := ids[r.SurveyID]; ok {
			summary.IncompleteResponses++
		}
	}
	summary.TotalResponses = summary.CompletedResponses + summary.IncompleteResponses
	summary.CompletionRate = percent(summary.CompletedResponses, summary.TotalResponses)
	return summary
}

// Dashboard bundles every dashboard metric for one criteria set.
type Dashboard struct {
	Criteria  Criteria              `json:"criteria"`
	KPIs      KPISummary            `json:"kpis"`
	Questions []QuestionPerformance `json:"questions"`
	Trend     []TrendPoint          `json:"trend"`
	Summary   AdminSummary          `json:"summary"`
}
