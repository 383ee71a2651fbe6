package analytics

import (
	"surveyinsights/internal/domains"
)

// Completion times outside (0, MaxCompletionSeconds) are treated as outliers by
// every completion-time metric.
const MaxCompletionSeconds = 7200

// ResponseAggregator computes scalar KPIs over a pre-filtered response set.
type ResponseAggregator struct {
	completed  []domains.SurveyResponse
	incomplete []domains.IncompleteSurveyResponse
}

func NewResponseAggregator(completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse) *ResponseAggregator {
	return &ResponseAggregator{completed: completed, incomplete: incomplete}
}

type KPISummary struct {
	TotalCount                   int     `json:"total_count"`
	CompletedCount               int     `json:"completed_count"`
	IncompleteCount              int     `json:"incomplete_count"`
	CompletionRate               int     `json:"completion_rate"`
	AverageEngagementScore       float64 `json:"average_engagement_score"`
	AverageCompletionTimeMinutes float64 `json:"average_completion_time_minutes"`
	ParticipationRate            *int    `json:"participation_rate"`
	InsufficientData             bool    `json:"insufficient_data"`
}

func (a *ResponseAggregator) TotalCount() int {
	return len(a.completed) + len(a.incomplete)
}

func (a *ResponseAggregator) CompletionRate() int {
	return percent(len(a.completed), a.TotalCount())
}

// AverageEngagementScore averages the records that carry a score; records
// without one are left out of both sums.
func (a *ResponseAggregator) AverageEngagementScore() float64 {
	var sum float64
	var n int
	for _, r := range a.completed {
		if r.EngagementScore != nil {
			sum += *r.EngagementScore
			n++
		}
	}
	for _, r := range a.incomplete {
		if r.EngagementScore != nil {
			sum += *r.EngagementScore
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n))
}

func (a *ResponseAggregator) AverageCompletionTimeMinutes() float64 {
	var sum float64
	var n int
	for _, r := range a.completed {
		seconds, ok := completionSeconds(r)
		if !ok {
			continue
		}
		sum += seconds
		n++
	}
	if n == 0 {
		return 0
	}
	return round1(sum / float64(n) / 60)
}

// ParticipationRate needs the number of invited respondents; without it there
// is no denominator and the second result is false.
func (a *ResponseAggregator) ParticipationRate(invitees int) (int, bool) {
	if invitees <= 0 {
		return 0, false
	}
	rate := percent(a.TotalCount(), invitees)
	if rate > 100 {
		rate = 100
	}
	return rate, true
}

func (a *ResponseAggregator) KPIs(invitees *int) KPISummary {
	summary := KPISummary{
		TotalCount:                   a.TotalCount(),
		CompletedCount:               len(a.completed),
		IncompleteCount:              len(a.incomplete),
		CompletionRate:               a.CompletionRate(),
		AverageEngagementScore:       a.AverageEngagementScore(),
		AverageCompletionTimeMinutes: a.AverageCompletionTimeMinutes(),
	}
	if invitees != nil {
		if rate, ok := a.ParticipationRate(*invitees); ok {
			summary.ParticipationRate = &rate
		}
	}
	summary.InsufficientData = summary.TotalCount == 0
	return summary
}

// completionSeconds applies the outlier window to a completed response's duration.
func completionSeconds(r domains.SurveyResponse) (float64, bool) {
	seconds, ok := r.CompletionSeconds()
	if !ok || seconds <= 0 || seconds >= MaxCompletionSeconds {
		return 0, false
	}
	return seconds, true
}

// InviteeCount sums the invitee counts of the surveys; nil when any survey
// lacks one.
func InviteeCount(surveys []domains.Survey) *int {
	if len(surveys) == 0 {
		return nil
	}
	total := 0
	for _, s := range surveys {
		if s.InviteeCount == nil {
			return nil
		}
		total += *s.InviteeCount
	}
	return &total
}
