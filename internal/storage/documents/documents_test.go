package documents

import (
	"testing"
	"time"

	"surveyinsights/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestRangeFilter(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	q := rangeFilter("createdAt", domains.ResponseFilter{SurveyIDs: []string{"s1"}})
	assert.Equal(t, bson.M{"surveyId": bson.M{"$in": []string{"s1"}}}, q)

	q = rangeFilter("startedAt", domains.ResponseFilter{SurveyIDs: []string{"s1"}, From: &from, To: &to})
	assert.Equal(t, bson.M{"$gte": from, "$lte": to}, q["startedAt"])
}

func TestToDocument(t *testing.T) {
	engagement := 80.0
	doc, err := toDocument(domains.SurveyResponse{
		ID:              "r1",
		SurveyID:        "s1",
		RespondentID:    "u1",
		Responses:       domains.Answers{{QuestionID: "q1", Value: "Yes"}},
		Completed:       true,
		EngagementScore: &engagement,
	})
	require.NoError(t, err)

	assert.Equal(t, "r1", doc["_id"])
	assert.Equal(t, "s1", doc["surveyId"])
	assert.Equal(t, 80.0, doc["engagementScore"])
	assert.NotContains(t, doc, "completionTime")
}

func TestOrderedKeys(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "surveyId", Value: 1}, {Key: "respondentId", Value: 1}}, orderedKeys("surveyId", "respondentId"))
}

func TestRequiredIndexes_OneOpenSessionPerRespondent(t *testing.T) {
	var open *collectionIndex
	for _, idx := range requiredIndexes() {
		idx := idx
		if idx.collection == incompleteCollection && assert.ObjectsAreEqual(orderedKeys("surveyId", "respondentId"), idx.model.Keys) {
			open = &idx
		}
	}
	require.NotNil(t, open)
	require.NotNil(t, open.model.Options)
	require.NotNil(t, open.model.Options.Unique)
	assert.True(t, *open.model.Options.Unique)
	assert.Equal(t, bson.M{"isCompleted": false}, open.model.Options.PartialFilterExpression)

	// the partial filter only matches sessions that store the flag explicitly
	raw, err := bson.Marshal(domains.IncompleteSurveyResponse{ID: "sess-1", SurveyID: "s1", RespondentID: "r1"})
	require.NoError(t, err)
	flag, err := bson.Raw(raw).LookupErr("isCompleted")
	require.NoError(t, err)
	assert.False(t, flag.Boolean())
}
