package domains

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAnswers_UnmarshalJSONLenient(t *testing.T) {
	var r SurveyResponse
	require.NoError(t, json.Unmarshal([]byte(`{"survey_id":"s1","responses":{"q1":"oops"}}`), &r))
	assert.Equal(t, "s1", r.SurveyID)
	assert.Empty(t, r.Responses)

	require.NoError(t, json.Unmarshal([]byte(`{"responses":[{"question_id":"q1","answer":4},"junk",{"question_id":"q2","answer":["a","b"]}]}`), &r))
	require.Len(t, r.Responses, 2)
	assert.Equal(t, 4.0, r.Responses[0].Value)
	assert.Equal(t, []any{"a", "b"}, r.Responses[1].Value)
}

func TestAnswers_UnmarshalBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"surveyId": "s1",
		"responses": bson.A{
			bson.M{"questionId": "q1", "answer": int32(5)},
			"junk",
			bson.M{"questionId": "q2", "answer": bson.A{"x", "y"}},
			bson.M{"questionId": "q3", "answer": bson.M{"k": "v"}},
		},
	})
	require.NoError(t, err)

	var r SurveyResponse
	require.NoError(t, bson.Unmarshal(raw, &r))
	require.Len(t, r.Responses, 3)
	assert.Equal(t, 5.0, r.Responses[0].Value)
	assert.Equal(t, []any{"x", "y"}, r.Responses[1].Value)
	assert.Equal(t, map[string]any{"k": "v"}, r.Responses[2].Value)

	malformed, err := bson.Marshal(bson.M{"surveyId": "s1", "responses": "not-a-list"})
	require.NoError(t, err)
	var m IncompleteSurveyResponse
	require.NoError(t, bson.Unmarshal(malformed, &m))
	assert.Empty(t, m.Responses)
}

func TestAnswers_Upsert(t *testing.T) {
	base := Answers{{QuestionID: "q1", Value: "a"}}

	replaced := base.Upsert(Answer{QuestionID: "q1", Value: "b"})
	require.Len(t, replaced, 1)
	assert.Equal(t, "b", replaced[0].Value)
	assert.Equal(t, "a", base[0].Value)

	appended := replaced.Upsert(Answer{QuestionID: "q2", Value: 3.0})
	assert.Len(t, appended, 2)
	assert.Equal(t, 2, appended.Answered())
	assert.Equal(t, 1, Answers{{QuestionID: "q1"}, {QuestionID: "q2", Value: "x"}}.Answered())
}

func TestQuestion_Current(t *testing.T) {
	idx := 0
	q := Question{Versions: []QuestionVersion{{QuestionText: "v1"}, {QuestionText: "v2"}}}
	v, ok := q.Current()
	require.True(t, ok)
	assert.Equal(t, "v2", v.QuestionText)

	q.CurrentVersion = &idx
	v, _ = q.Current()
	assert.Equal(t, "v1", v.QuestionText)

	_, ok = Question{}.Current()
	assert.False(t, ok)
}

func TestSurvey_IsActive(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, Survey{}.IsActive(now))
	assert.True(t, Survey{Published: true}.IsActive(now))
	assert.True(t, Survey{Published: true, EndDate: &future}.IsActive(now))
	assert.False(t, Survey{Published: true, EndDate: &past}.IsActive(now))
}

func TestSurveyResponse_CompletionSeconds(t *testing.T) {
	start := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)

	s, ok := SurveyResponse{StartTime: &start, EndTime: &end}.CompletionSeconds()
	assert.True(t, ok)
	assert.Equal(t, 90.0, s)

	stored := 42.0
	s, _ = SurveyResponse{CompletionTime: &stored, StartTime: &start, EndTime: &end}.CompletionSeconds()
	assert.Equal(t, 42.0, s)

	_, ok = SurveyResponse{}.CompletionSeconds()
	assert.False(t, ok)
}
