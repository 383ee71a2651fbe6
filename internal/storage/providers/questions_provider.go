package providers

import (
	"context"
	"errors"
	"fmt"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionProvider struct {
	db *pgxpool.Pool
}

func NewQuestionProvider(db *pgxpool.Pool) *QuestionProvider {
	return &QuestionProvider{db: db}
}

const questionColumns = `
	id, owner_id, versions, current_version, text, question, title, created_at, updated_at`

func (p QuestionProvider) SaveQuestion(ctx context.Context, q domains.Question) (domains.Question, error) {
	const query = `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING` + questionColumns

	rows, err := p.db.Query(ctx, query,
		q.ID, q.OwnerID, versionsOrEmpty(q.Versions), q.CurrentVersion,
		q.Text, q.Question, q.Title, q.CreatedAt, q.UpdatedAt)
	if err != nil {
		return domains.Question{}, fmt.Errorf("insert question: %w", err)
	}
	saved, err := pgx.CollectOneRow(rows, scanQuestion)
	if err != nil {
		return domains.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return saved, nil
}

func (p QuestionProvider) UpdateQuestion(ctx context.Context, q domains.Question) (domains.Question, error) {
	const query = `
		UPDATE questions
		SET versions = $2, current_version = $3, text = $4, question = $5, title = $6, updated_at = $7
		WHERE id = $1
		RETURNING` + questionColumns

	rows, err := p.db.Query(ctx, query,
		q.ID, versionsOrEmpty(q.Versions), q.CurrentVersion, q.Text, q.Question, q.Title, q.UpdatedAt)
	if err != nil {
		return domains.Question{}, fmt.Errorf("update question: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, scanQuestion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Question{}, fmt.Errorf("update question: %w", storage.ErrNotFound)
		}
		return domains.Question{}, fmt.Errorf("update question: %w", err)
	}
	return updated, nil
}

func (p QuestionProvider) GetQuestionByID(ctx context.Context, id string) (domains.Question, error) {
	rows, err := p.db.Query(ctx, `SELECT`+questionColumns+` FROM questions WHERE id = $1`, id)
	if err != nil {
		return domains.Question{}, fmt.Errorf("get question: %w", err)
	}
	q, err := pgx.CollectOneRow(rows, scanQuestion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Question{}, fmt.Errorf("get question: %w", storage.ErrNotFound)
		}
		return domains.Question{}, fmt.Errorf("get question: %w", err)
	}
	return q, nil
}

// GetQuestionsByIDs skips ids with no stored question.
func (p QuestionProvider) GetQuestionsByIDs(ctx context.Context, ids []string) ([]domains.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.db.Query(ctx, `SELECT`+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	questions, err := pgx.CollectRows(rows, scanQuestion)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func scanQuestion(row pgx.CollectableRow) (domains.Question, error) {
	var q domains.Question
	err := row.Scan(
		&q.ID,
		&q.OwnerID,
		&q.Versions,
		&q.CurrentVersion,
		&q.Text,
		&q.Question,
		&q.Title,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	return q, err
}

func versionsOrEmpty(v []domains.QuestionVersion) []domains.QuestionVersion {
	if v == nil {
		return []domains.QuestionVersion{}
	}
	return v
}
