package documents

import (
	"context"
	"fmt"

	"surveyinsights/internal/domains"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuestionStore struct {
	col *mongo.Collection
}

func (s *QuestionStore) SaveQuestion(ctx context.Context, q domains.Question) (domains.Question, error) {
	if _, err := s.col.InsertOne(ctx, q); err != nil {
		return domains.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return q, nil
}

func (s *QuestionStore) UpdateQuestion(ctx context.Context, q domains.Question) (domains.Question, error) {
	update := bson.M{"$set": bson.M{
		"versions":       q.Versions,
		"currentVersion": q.CurrentVersion,
		"text":           q.Text,
		"question":       q.Question,
		"title":          q.Title,
		"updatedAt":      q.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated domains.Question
	if err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": q.ID}, update, opts).Decode(&updated); err != nil {
		return domains.Question{}, notFound("update question", err)
	}
	return updated, nil
}

func (s *QuestionStore) GetQuestionByID(ctx context.Context, id string) (domains.Question, error) {
	var q domains.Question
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return domains.Question{}, notFound("get question", err)
	}
	return q, nil
}

func (s *QuestionStore) GetQuestionsByIDs(ctx context.Context, ids []string) ([]domains.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	var questions []domains.Question
	if err := cur.All(ctx, &questions); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
