package documents

import (
	"context"
	"fmt"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResponseStore struct {
	completed  *mongo.Collection
	incomplete *mongo.Collection
}

// rangeFilter builds the survey-id and date-range filter for one collection.
func rangeFilter(field string, filter domains.ResponseFilter) bson.M {
	query := bson.M{"surveyId": bson.M{"$in": filter.SurveyIDs}}
	bounds := bson.M{}
	if filter.From != nil {
		bounds["$gte"] = *filter.From
	}
	if filter.To != nil {
		bounds["$lte"] = *filter.To
	}
	if len(bounds) > 0 {
		query[field] = bounds
	}
	return query
}

func (s *ResponseStore) ListCompleted(ctx context.Context, filter domains.ResponseFilter) ([]domains.SurveyResponse, error) {
	if len(filter.SurveyIDs) == 0 {
		return nil, nil
	}
	cur, err := s.completed.Find(ctx, rangeFilter("createdAt", filter))
	if err != nil {
		return nil, fmt.Errorf("list completed responses: %w", err)
	}
	var out []domains.SurveyResponse
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list completed responses: %w", err)
	}
	return out, nil
}

func (s *ResponseStore) ListIncomplete(ctx context.Context, filter domains.ResponseFilter) ([]domains.IncompleteSurveyResponse, error) {
	if len(filter.SurveyIDs) == 0 {
		return nil, nil
	}
	cur, err := s.incomplete.Find(ctx, rangeFilter("startedAt", filter))
	if err != nil {
		return nil, fmt.Errorf("list incomplete responses: %w", err)
	}
	var out []domains.IncompleteSurveyResponse
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list incomplete responses: %w", err)
	}
	return out, nil
}

func (s *ResponseStore) FindOpenSession(ctx context.Context, surveyID, respondentID string) (domains.IncompleteSurveyResponse, error) {
	filter := bson.M{"surveyId": surveyID, "respondentId": respondentID, "isCompleted": bson.M{"$ne": true}}
	var r domains.IncompleteSurveyResponse
	if err := s.incomplete.FindOne(ctx, filter).Decode(&r); err != nil {
		return domains.IncompleteSurveyResponse{}, notFound("find session", err)
	}
	return r, nil
}

func (s *ResponseStore) GetSession(ctx context.Context, id string) (domains.IncompleteSurveyResponse, error) {
	var r domains.IncompleteSurveyResponse
	if err := s.incomplete.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return domains.IncompleteSurveyResponse{}, notFound("get session", err)
	}
	return r, nil
}

func (s *ResponseStore) CreateSession(ctx context.Context, session domains.IncompleteSurveyResponse) (domains.IncompleteSurveyResponse, error) {
	if session.Responses == nil {
		session.Responses = domains.Answers{}
	}
	if _, err := s.incomplete.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domains.IncompleteSurveyResponse{}, fmt.Errorf("create session: %w", storage.ErrConflict)
		}
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (s *ResponseStore) SaveSessionAnswers(ctx context.Context, id string, answers domains.Answers, at time.Time) (domains.IncompleteSurveyResponse, error) {
	if answers == nil {
		answers = domains.Answers{}
	}
	return s.updateSession(ctx, "save answers", id, bson.M{"responses": answers, "lastUpdatedAt": at})
}

func (s *ResponseStore) SetAbandoned(ctx context.Context, id string, abandoned bool, at time.Time) (domains.IncompleteSurveyResponse, error) {
	return s.updateSession(ctx, "set abandoned", id, bson.M{"isAbandoned": abandoned, "lastUpdatedAt": at})
}

func (s *ResponseStore) updateSession(ctx context.Context, op, id string, set bson.M) (domains.IncompleteSurveyResponse, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var r domains.IncompleteSurveyResponse
	if err := s.incomplete.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&r); err != nil {
		return domains.IncompleteSurveyResponse{}, notFound(op, err)
	}
	return r, nil
}

func (s *ResponseStore) AbandonStale(ctx context.Context, before time.Time) (int64, error) {
	filter := bson.M{
		"isCompleted":   bson.M{"$ne": true},
		"lastUpdatedAt": bson.M{"$lt": before},
		"$or": bson.A{
			bson.M{"isAbandoned": bson.M{"$exists": false}},
			bson.M{"isAbandoned": false},
		},
	}
	res, err := s.incomplete.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"isAbandoned": true}})
	if err != nil {
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	return res.ModifiedCount, nil
}

func (s *ResponseStore) HasCompleted(ctx context.Context, surveyID, respondentID string) (bool, error) {
	n, err := s.completed.CountDocuments(ctx, bson.M{"surveyId": surveyID, "respondentId": respondentID},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check completed response: %w", err)
	}
	return n > 0, nil
}

// Promote upserts the completed response keyed on survey and respondent, then
// removes the session. An existing completed response is left untouched and
// reported as storage.ErrConflict, keeping the session. A crash between the
// two steps leaves a session that readers drop as promoted.
func (s *ResponseStore) Promote(ctx context.Context, sessionID string, completed domains.SurveyResponse) (domains.SurveyResponse, error) {
	if _, err := s.GetSession(ctx, sessionID); err != nil {
		return domains.SurveyResponse{}, err
	}

	doc, err := toDocument(completed)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("encode completed response: %w", err)
	}
	key := bson.M{"surveyId": completed.SurveyID, "respondentId": completed.RespondentID}
	delete(doc, "surveyId")
	delete(doc, "respondentId")

	res, err := s.completed.UpdateOne(ctx, key, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("upsert completed response: %w", err)
	}
	if res.UpsertedCount == 0 {
		return domains.SurveyResponse{}, fmt.Errorf("upsert completed response: %w", storage.ErrConflict)
	}

	var stored domains.SurveyResponse
	if err := s.completed.FindOne(ctx, key).Decode(&stored); err != nil {
		return domains.SurveyResponse{}, notFound("load completed response", err)
	}

	if _, err := s.incomplete.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("delete session: %w", err)
	}
	return stored, nil
}

func (s *ResponseStore) GetCompleted(ctx context.Context, id string) (domains.SurveyResponse, error) {
	var r domains.SurveyResponse
	if err := s.completed.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return domains.SurveyResponse{}, notFound("get response", err)
	}
	return r, nil
}

func (s *ResponseStore) UpdateCompleted(ctx context.Context, r domains.SurveyResponse) (domains.SurveyResponse, error) {
	responses := r.Responses
	if responses == nil {
		responses = domains.Answers{}
	}
	set := bson.M{
		"responses":       responses,
		"progress":        r.Progress,
		"engagementScore": r.EngagementScore,
		"updatedAt":       r.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domains.SurveyResponse
	if err := s.completed.FindOneAndUpdate(ctx, bson.M{"_id": r.ID}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return domains.SurveyResponse{}, notFound("update response", err)
	}
	return updated, nil
}

func (s *ResponseStore) DeleteCompleted(ctx context.Context, id string) error {
	res, err := s.completed.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete response: %w", storage.ErrNotFound)
	}
	return nil
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
