package analytics

import (
	"time"

	"surveyinsights/internal/domains"
)

func ptr[T any](v T) *T {
	return &v
}

func completedWith(surveyID string, seconds float64, answers ...domains.Answer) domains.SurveyResponse {
	return domains.SurveyResponse{
		ID:             "r-" + surveyID,
		SurveyID:       surveyID,
		Responses:      answers,
		Completed:      true,
		CompletionTime: ptr(seconds),
		Progress:       100,
		CreatedAt:      time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}
}

func answer(questionID string, value any) domains.Answer {
	return domains.Answer{QuestionID: questionID, Value: value}
}
