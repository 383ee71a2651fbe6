package analytics

import (
	"fmt"
	"strings"

	"surveyinsights/internal/domains"
)

// Extractor pulls one candidate value out of a source. Empty results fall through.
type Extractor[S any] struct {
	Name    string
	Extract func(S) string
}

// Resolver tries its extractors in priority order and returns the first
// non-empty value together with the extractor's name.
type Resolver[S any] []Extractor[S]

func (r Resolver[S]) Resolve(src S) (string, string, bool) {
	for _, e := range r {
		if v := strings.TrimSpace(e.Extract(src)); v != "" {
			return v, e.Name, true
		}
	}
	return "", "", false
}

func currentVersion(q domains.Question) domains.QuestionVersion {
	v, _ := q.Current()
	return v
}

var QuestionTextResolver = Resolver[domains.Question]{
	{Name: "version.questionText", Extract: func(q domains.Question) string { return currentVersion(q).QuestionText }},
	{Name: "text", Extract: func(q domains.Question) string { return q.Text }},
	{Name: "question", Extract: func(q domains.Question) string { return q.Question }},
	{Name: "title", Extract: func(q domains.Question) string { return q.Title }},
}

var QuestionTypeResolver = Resolver[domains.Question]{
	{Name: "version.type", Extract: func(q domains.Question) string { return currentVersion(q).Type }},
	{Name: "version.questionType", Extract: func(q domains.Question) string { return currentVersion(q).QuestionType }},
	{Name: "version.inputType", Extract: func(q domains.Question) string { return currentVersion(q).InputType }},
	{Name: "version.answerType", Extract: func(q domains.Question) string { return currentVersion(q).AnswerType }},
}

const (
	TypeLikert         = "likert"
	TypeMultipleChoice = "multiple_choice"
	TypeOpenText       = "open_text"
	TypeUnknown        = "unknown"
)

var typeBuckets = []struct {
	bucket  string
	markers []string
}{
	{TypeLikert, []string{"likert", "rating", "scale"}},
	{TypeMultipleChoice, []string{"multiple", "checkbox", "select"}},
	{TypeOpenText, []string{"text", "open", "input"}},
}

// NormalizeType maps a raw question type onto a canonical bucket.
func NormalizeType(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	for _, b := range typeBuckets {
		for _, m := range b.markers {
			if strings.Contains(lower, m) {
				return b.bucket, true
			}
		}
	}
	return "", false
}

// ResolveText returns the display text of a question, synthesizing one when
// nothing in the reference data names it.
func ResolveText(id string, q *domains.Question) string {
	if q != nil {
		if text, _, ok := QuestionTextResolver.Resolve(*q); ok {
			return text
		}
	}
	return fmt.Sprintf("Question %s", id)
}

// ResolveType returns the canonical type from reference data, or false when the
// caller has to infer it from the answers.
func ResolveType(q *domains.Question) (string, bool) {
	if q == nil {
		return "", false
	}
	raw, _, ok := QuestionTypeResolver.Resolve(*q)
	if !ok {
		return "", false
	}
	return NormalizeType(raw)
}
