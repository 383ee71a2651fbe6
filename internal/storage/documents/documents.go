// Package documents implements the storage contracts on MongoDB. Responses
// are stored as whole documents the way survey tooling writes them, so
// readers stay lenient about their shape.
package documents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"surveyinsights/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection   = "questioners"
	surveysCollection    = "surveys"
	questionsCollection  = "questions"
	completedCollection  = "surveyResponses"
	incompleteCollection = "incompleteSurveyResponses"
)

type Stores struct {
	AuthStore     *AuthStore
	SurveyStore   *SurveyStore
	QuestionStore *QuestionStore
	ResponseStore *ResponseStore
}

func New(db *mongo.Database) *Stores {
	return &Stores{
		AuthStore:     &AuthStore{col: db.Collection(accountsCollection)},
		SurveyStore:   &SurveyStore{col: db.Collection(surveysCollection)},
		QuestionStore: &QuestionStore{col: db.Collection(questionsCollection)},
		ResponseStore: &ResponseStore{
			completed:  db.Collection(completedCollection),
			incomplete: db.Collection(incompleteCollection),
		},
	}
}

// Connect opens a client and pings the deployment.
func Connect(uri, database string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	slog.Info("connected to MongoDB", "database", database)
	return client, client.Database(database), nil
}

type collectionIndex struct {
	collection string
	model      mongo.IndexModel
}

// requiredIndexes lists the keys the stores rely on. A respondent has at most
// one open session per survey and at most one completed response.
func requiredIndexes() []collectionIndex {
	return []collectionIndex{
		{accountsCollection, mongo.IndexModel{Keys: orderedKeys("email"), Options: options.Index().SetUnique(true)}},
		{completedCollection, mongo.IndexModel{Keys: orderedKeys("surveyId", "respondentId"), Options: options.Index().SetUnique(true)}},
		{incompleteCollection, mongo.IndexModel{
			Keys: orderedKeys("surveyId", "respondentId"),
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isCompleted": false}),
		}},
		{incompleteCollection, mongo.IndexModel{Keys: orderedKeys("surveyId", "startedAt")}},
		{completedCollection, mongo.IndexModel{Keys: orderedKeys("surveyId", "createdAt")}},
	}
}

// EnsureIndexes creates the indexes from requiredIndexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range requiredIndexes() {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.collection, err)
		}
	}
	return nil
}

func notFound(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func orderedKeys(fields ...string) bson.D {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return keys
}
