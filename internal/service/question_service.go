package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/google/uuid"
)

type QuestionService struct {
	provider QuestionProvider
	now      func() time.Time
}

func NewQuestionService(provider QuestionProvider) *QuestionService {
	return &QuestionService{
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (q *QuestionService) CreateQuestion(ctx context.Context, user domains.Questioner, payload domains.QuestionCreate) (domains.Question, error) {
	text := strings.TrimSpace(payload.Version.QuestionText)
	if text == "" {
		text = strings.TrimSpace(payload.Text)
	}
	if text == "" {
		return domains.Question{}, ErrInvalidQuestion
	}
	payload.Version.QuestionText = text

	now := q.now()
	current := 0
	question := domains.Question{
		ID:             uuid.NewString(),
		OwnerID:        user.Id,
		Versions:       []domains.QuestionVersion{payload.Version},
		CurrentVersion: &current,
		Text:           strings.TrimSpace(payload.Text),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	saved, err := q.provider.SaveQuestion(ctx, question)
	if err != nil {
		slog.Error("save question", "owner_id", user.Id, "err", err)
		return domains.Question{}, fmt.Errorf("save question: %w", err)
	}
	return saved, nil
}

// AddVersion appends a version and makes it current. Earlier versions stay so
// historical answers keep their wording.
func (q *QuestionService) AddVersion(ctx context.Context, user domains.Questioner, questionID string, version domains.QuestionVersion) (domains.Question, error) {
	if strings.TrimSpace(version.QuestionText) == "" {
		return domains.Question{}, ErrInvalidQuestion
	}
	question, err := q.GetQuestion(ctx, user, questionID)
	if err != nil {
		return domains.Question{}, err
	}

	question.Versions = append(question.Versions, version)
	current := len(question.Versions) - 1
	question.CurrentVersion = &current
	question.UpdatedAt = q.now()

	updated, err := q.provider.UpdateQuestion(ctx, question)
	if err != nil {
		slog.Error("add question version", "question_id", questionID, "err", err)
		return domains.Question{}, err
	}
	return updated, nil
}

func (q *QuestionService) GetQuestion(ctx context.Context, user domains.Questioner, questionID string) (domains.Question, error) {
	question, err := q.provider.GetQuestionByID(ctx, questionID)
	if err != nil {
		return domains.Question{}, err
	}
	if !user.IsAdmin() && question.OwnerID != user.Id {
		return domains.Question{}, fmt.Errorf("get question: %w", storage.ErrNotFound)
	}
	return question, nil
}
