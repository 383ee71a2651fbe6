package documents

import (
	"context"
	"fmt"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuthStore struct {
	col *mongo.Collection
}

func (s *AuthStore) SaveUser(ctx context.Context, passHash string, user domains.Questioner) (domains.Questioner, error) {
	user.Password = passHash
	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domains.Questioner{}, storage.ErrUserExist
		}
		return domains.Questioner{}, fmt.Errorf("insert account: %w", err)
	}
	return user, nil
}

func (s *AuthStore) GetUserByEmail(ctx context.Context, email string) (domains.Questioner, error) {
	var user domains.Questioner
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return domains.Questioner{}, notFound("get account", err)
	}
	return user, nil
}

func (s *AuthStore) GetUserByID(ctx context.Context, id string) (domains.Questioner, error) {
	var user domains.Questioner
	if err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return domains.Questioner{}, notFound("get account", err)
	}
	return user, nil
}
