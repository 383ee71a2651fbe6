package domains

import (
	"encoding/json"
	"time"
)

// Answer is one answered question inside a response document. Value holds a
// string, number, bool, list, object or nil.
type Answer struct {
	QuestionID string   `json:"question_id" bson:"questionId"`
	Value      any      `json:"answer" bson:"answer"`
	SectionID  *string  `json:"section_id,omitempty" bson:"sectionId,omitempty"`
	TimeSpent  *float64 `json:"time_spent,omitempty" bson:"timeSpent,omitempty"`
}

// Answers decodes leniently: a non-array value decodes to an empty list and
// elements that are not answer objects are dropped.
type Answers []Answer

func (a *Answers) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*a = Answers{}
		return nil
	}
	out := make(Answers, 0, len(items))
	for _, item := range items {
		var answer Answer
		if err := json.Unmarshal(item, &answer); err != nil {
			continue
		}
		out = append(out, answer)
	}
	*a = out
	return nil
}

// Upsert replaces the answer for the same question or appends it.
func (a Answers) Upsert(answer Answer) Answers {
	for i := range a {
		if a[i].QuestionID == answer.QuestionID {
			out := make(Answers, len(a))
			copy(out, a)
			out[i] = answer
			return out
		}
	}
	out := make(Answers, 0, len(a)+1)
	out = append(out, a...)
	return append(out, answer)
}

// Answered counts entries carrying a non-empty value.
func (a Answers) Answered() int {
	n := 0
	for _, answer := range a {
		if !IsEmptyAnswer(answer.Value) {
			n++
		}
	}
	return n
}

func IsEmptyAnswer(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

type SurveyResponse struct {
	ID              string         `json:"id" bson:"_id"`
	SurveyID        string         `json:"survey_id" bson:"surveyId"`
	RespondentID    string         `json:"respondent_id" bson:"respondentId"`
	Responses       Answers        `json:"responses" bson:"responses"`
	Completed       bool           `json:"completed" bson:"completed"`
	StartTime       *time.Time     `json:"start_time,omitempty" bson:"startTime,omitempty"`
	EndTime         *time.Time     `json:"end_time,omitempty" bson:"endTime,omitempty"`
	CompletionTime  *float64       `json:"completion_time,omitempty" bson:"completionTime,omitempty"`
	Progress        int            `json:"progress" bson:"progress"`
	EngagementScore *float64       `json:"engagement_score,omitempty" bson:"engagementScore,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updated_at" bson:"updatedAt"`
}

// CompletionSeconds returns the stored completion time, or the span between
// StartTime and EndTime for records written without it.
func (r SurveyResponse) CompletionSeconds() (float64, bool) {
	if r.CompletionTime != nil {
		return *r.CompletionTime, true
	}
	if r.StartTime != nil && r.EndTime != nil {
		return r.EndTime.Sub(*r.StartTime).Seconds(), true
	}
	return 0, false
}

type IncompleteSurveyResponse struct {
	ID              string         `json:"id" bson:"_id"`
	SurveyID        string         `json:"survey_id" bson:"surveyId"`
	RespondentID    string         `json:"respondent_id" bson:"respondentId"`
	Responses       Answers        `json:"responses" bson:"responses"`
	IsCompleted     bool           `json:"is_completed" bson:"isCompleted"`
	IsAbandoned     *bool          `json:"is_abandoned,omitempty" bson:"isAbandoned,omitempty"`
	EngagementScore *float64       `json:"engagement_score,omitempty" bson:"engagementScore,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	StartedAt       time.Time      `json:"started_at" bson:"startedAt"`
	LastUpdatedAt   time.Time      `json:"last_updated_at" bson:"lastUpdatedAt"`
}

func (r IncompleteSurveyResponse) Abandoned() bool {
	return r.IsAbandoned != nil && *r.IsAbandoned
}

// Open reports whether answers may still be recorded on the session.
func (r IncompleteSurveyResponse) Open() bool {
	return !r.IsCompleted && !r.Abandoned()
}

type SessionStart struct {
	SurveyID     string         `json:"survey_id"`
	RespondentID string         `json:"respondent_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type AnswerSubmission struct {
	QuestionID string   `json:"question_id"`
	Value      any      `json:"answer"`
	SectionID  *string  `json:"section_id,omitempty"`
	TimeSpent  *float64 `json:"time_spent,omitempty"`
}

type SessionComplete struct {
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ResponseCorrection is a request body, so its answers decode strictly: a
// non-list value is an error and an absent field stays nil.
type ResponseCorrection struct {
	Responses []Answer `json:"responses"`
}

// ResponseFilter is the storage-side narrowing applied before analytics
// filtering. An empty SurveyIDs list matches nothing.
type ResponseFilter struct {
	SurveyIDs []string
	From      *time.Time
	To        *time.Time
}
