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

type SurveyProvider struct {
	db *pgxpool.Pool
}

func NewSurveyProvider(db *pgxpool.Pool) *SurveyProvider {
	return &SurveyProvider{
		db: db,
	}
}

const surveyColumns = `
	id, owner_id, title, description, published, end_date,
	tag_ids, question_ids, invitee_count, created_at, updated_at`

func (s SurveyProvider) SaveSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error) {
	const insertSurvey = `
		INSERT INTO surveys (` + surveyColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING` + surveyColumns

	rows, err := s.db.Query(ctx, insertSurvey,
		survey.ID,
		survey.OwnerID,
		survey.Title,
		survey.Description,
		survey.Published,
		survey.EndDate,
		nonNil(survey.TagIDs),
		nonNil(survey.QuestionIDs),
		survey.InviteeCount,
		survey.CreatedAt,
		survey.UpdatedAt,
	)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, scanSurvey)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	return created, nil
}

func (s SurveyProvider) UpdateSurvey(ctx context.Context, survey domains.Survey) (domains.Survey, error) {
	const query = `
		UPDATE surveys
		SET title = $2, description = $3, published = $4, end_date = $5,
		    tag_ids = $6, question_ids = $7, invitee_count = $8, updated_at = $9
		WHERE id = $1
		RETURNING` + surveyColumns

	rows, err := s.db.Query(ctx, query,
		survey.ID,
		survey.Title,
		survey.Description,
		survey.Published,
		survey.EndDate,
		nonNil(survey.TagIDs),
		nonNil(survey.QuestionIDs),
		survey.InviteeCount,
		survey.UpdatedAt,
	)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, scanSurvey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("update survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}
	return updated, nil
}

func (s SurveyProvider) GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error) {
	rows, err := s.db.Query(ctx, `SELECT`+surveyColumns+` FROM surveys WHERE id = $1`, surveyID)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	survey, err := pgx.CollectOneRow(rows, scanSurvey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	return survey, nil
}

// ListSurveys returns the surveys of one owner, or every survey when ownerID is empty.
func (s SurveyProvider) ListSurveys(ctx context.Context, ownerID string) ([]domains.Survey, error) {
	query := `SELECT` + surveyColumns + ` FROM surveys`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	surveys, err := pgx.CollectRows(rows, scanSurvey)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return surveys, nil
}

func scanSurvey(row pgx.CollectableRow) (domains.Survey, error) {
	var s domains.Survey
	err := row.Scan(
		&s.ID,
		&s.OwnerID,
		&s.Title,
		&s.Description,
		&s.Published,
		&s.EndDate,
		&s.TagIDs,
		&s.QuestionIDs,
		&s.InviteeCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
