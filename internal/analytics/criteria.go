// Package analytics turns completed and in-progress survey responses into the
// metrics shown on the dashboard. Every function here is a pure computation over
// already-fetched records; fetching belongs to the storage providers.
package analytics

import (
	"time"

	"surveyinsights/internal/domains"
)

const DefaultTrendDays = 7

// Criteria selects the surveys, questions and time range a dashboard request covers.
// Empty lists do not restrict.
type Criteria struct {
	SurveyIDs        []string   `json:"survey_ids,omitempty"`
	TagIDs           []string   `json:"tag_ids,omitempty"`
	QuestionIDs      []string   `json:"question_ids,omitempty"`
	From             *time.Time `json:"from,omitempty"`
	To               *time.Time `json:"to,omitempty"`
	Days             int        `json:"days,omitempty"`
	ExcludeAbandoned bool       `json:"exclude_abandoned,omitempty"`
}

func (c Criteria) TrendDays() int {
	if c.Days <= 0 {
		return DefaultTrendDays
	}
	return c.Days
}

// ScopeSurveys keeps the surveys named by SurveyIDs that carry at least one of TagIDs.
func (c Criteria) ScopeSurveys(surveys []domains.Survey) []domains.Survey {
	ids := toSet(c.SurveyIDs)
	out := make([]domains.Survey, 0, len(surveys))
	for _, s := range surveys {
		if len(ids) > 0 {
			if _, ok := ids[s.ID]; !ok {
				continue
			}
		}
		if len(c.TagIDs) > 0 && !hasAnyTag(s, c.TagIDs) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c Criteria) inRange(t time.Time) bool {
	if c.From != nil && t.Before(*c.From) {
		return false
	}
	if c.To != nil && t.After(*c.To) {
		return false
	}
	return true
}

func (c Criteria) MatchCompleted(r domains.SurveyResponse) bool {
	if !contains(c.SurveyIDs, r.SurveyID) {
		return false
	}
	return c.inRange(r.CreatedAt)
}

func (c Criteria) MatchIncomplete(r domains.IncompleteSurveyResponse) bool {
	if !contains(c.SurveyIDs, r.SurveyID) {
		return false
	}
	if c.ExcludeAbandoned && r.Abandoned() {
		return false
	}
	return c.inRange(r.StartedAt)
}

func (c Criteria) WantsQuestion(questionID string) bool {
	return contains(c.QuestionIDs, questionID)
}

func (c Criteria) FilterCompleted(responses []domains.SurveyResponse) []domains.SurveyResponse {
	out := make([]domains.SurveyResponse, 0, len(responses))
	for _, r := range responses {
		if c.MatchCompleted(r) {
			out = append(out, r)
		}
	}
	return out
}

func (c Criteria) FilterIncomplete(responses []domains.IncompleteSurveyResponse) []domains.IncompleteSurveyResponse {
	out := make([]domains.IncompleteSurveyResponse, 0, len(responses))
	for _, r := range responses {
		if c.MatchIncomplete(r) {
			out = append(out, r)
		}
	}
	return out
}

// DropPromoted removes in-progress sessions that already have a completed
// response for the same survey and respondent, so an interrupted promotion is
// not counted twice.
func DropPromoted(completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse) []domains.IncompleteSurveyResponse {
	done := make(map[sessionKey]struct{}, len(completed))
	for _, r := range completed {
		if r.RespondentID == "" {
			continue
		}
		done[sessionKey{r.SurveyID, r.RespondentID}] = struct{}{}
	}
	if len(done) == 0 {
		return incomplete
	}
	out := make([]domains.IncompleteSurveyResponse, 0, len(incomplete))
	for _, r := range incomplete {
		if _, ok := done[sessionKey{r.SurveyID, r.RespondentID}]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SurveyIDs lists the ids of the given surveys in order.
func SurveyIDs(surveys []domains.Survey) []string {
	ids := make([]string, 0, len(surveys))
	for _, s := range surveys {
		ids = append(ids, s.ID)
	}
	return ids
}

type sessionKey struct {
	surveyID     string
	respondentID string
}

func hasAnyTag(s domains.Survey, tags []string) bool {
	for _, t := range tags {
		if s.HasTag(t) {
			return true
		}
	}
	return false
}

// contains treats an empty list as "everything".
func contains(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}
