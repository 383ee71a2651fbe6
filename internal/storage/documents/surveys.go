package documents

import (
	"context"
	"fmt"

	"surveyinsights/internal/domains"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SurveyStore struct {
	col *mongo.Collection
}

func (s *SurveyStore) SaveSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error) {
	if _, err := s.col.InsertOne(ctx, survey); err != nil {
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	return survey, nil
}

func (s *SurveyStore) UpdateSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error) {
	update := bson.M{"$set": bson.M{
		"title":        survey.Title,
		"description":  survey.Description,
		"published":    survey.Published,
		"endDate":      survey.EndDate,
		"tagIds":       survey.TagIDs,
		"questionIds":  survey.QuestionIDs,
		"inviteeCount": survey.InviteeCount,
		"updatedAt":    survey.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domains.Survey
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": survey.ID}, update, opts).Decode(&updated); err != nil {
		return domains.Survey{}, notFound("update survey", err)
	}
	return updated, nil
}

func (s *SurveyStore) GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error) {
	var survey domains.Survey
	if err := s.col.FindOne(ctx, bson.M{"_id": surveyID}).Decode(&survey); err != nil {
		return domains.Survey{}, notFound("get survey", err)
	}
	return survey, nil
}

func (s *SurveyStore) ListSurveys(ctx context.Context, ownerID string) ([]domains.Survey, error) {
	filter := bson.M{}
	if ownerID != "" {
		filter["ownerId"] = ownerID
	}
	cur, err := s.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	var surveys []domains.Survey
	if err := cur.All(ctx, &surveys); err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return surveys, nil
}
