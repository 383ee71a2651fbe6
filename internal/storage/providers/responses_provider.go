package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponseProvider struct {
	db *pgxpool.Pool
}

func NewResponseProvider(db *pgxpool.Pool) *ResponseProvider {
	return &ResponseProvider{db: db}
}

const completedColumns = `
	id, survey_id, respondent_id, responses, completed, start_time, end_time,
	completion_time, progress, engagement_score, metadata, created_at, updated_at`

const incompleteColumns = `
	id, survey_id, respondent_id, responses, is_completed, is_abandoned,
	engagement_score, metadata, started_at, last_updated_at`

func (p ResponseProvider) ListCompleted(ctx context.Context, filter domains.ResponseFilter) ([]domains.SurveyResponse, error) {
	if len(filter.SurveyIDs) == 0 {
		return nil, nil
	}
	where, args := rangeClause("created_at", filter)
	rows, err := p.db.Query(ctx, `SELECT`+completedColumns+` FROM survey_responses WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list completed responses: %w", err)
	}
	responses, err := pgx.CollectRows(rows, scanCompleted)
	if err != nil {
		return nil, fmt.Errorf("list completed responses: %w", err)
	}
	return responses, nil
}

func (p ResponseProvider) ListIncomplete(ctx context.Context, filter domains.ResponseFilter) ([]domains.IncompleteSurveyResponse, error) {
	if len(filter.SurveyIDs) == 0 {
		return nil, nil
	}
	where, args := rangeClause("started_at", filter)
	rows, err := p.db.Query(ctx, `SELECT`+incompleteColumns+` FROM incomplete_survey_responses WHERE `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list incomplete responses: %w", err)
	}
	responses, err := pgx.CollectRows(rows, scanIncomplete)
	if err != nil {
		return nil, fmt.Errorf("list incomplete responses: %w", err)
	}
	return responses, nil
}

func rangeClause(column string, filter domains.ResponseFilter) (string, []any) {
	clauses := []string{"survey_id = ANY($1)"}
	args := []any{filter.SurveyIDs}
	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

// FindOpenSession returns the non-completed session of a respondent, abandoned or not.
func (p ResponseProvider) FindOpenSession(ctx context.Context, surveyID, respondentID string) (domains.IncompleteSurveyResponse, error) {
	const query = `SELECT` + incompleteColumns + `
		FROM incomplete_survey_responses
		WHERE survey_id = $1 AND respondent_id = $2 AND NOT is_completed`
	return p.oneIncomplete(ctx, "find session", query, surveyID, respondentID)
}

func (p ResponseProvider) GetSession(ctx context.Context, id string) (domains.IncompleteSurveyResponse, error) {
	return p.oneIncomplete(ctx, "get session",
		`SELECT`+incompleteColumns+` FROM incomplete_survey_responses WHERE id = $1`, id)
}

func (p ResponseProvider) CreateSession(ctx context.Context, session domains.IncompleteSurveyResponse) (domains.IncompleteSurveyResponse, error) {
	const query = `
		INSERT INTO incomplete_survey_responses (` + incompleteColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING` + incompleteColumns

	created, err := p.oneIncomplete(ctx, "create session", query,
		session.ID,
		session.SurveyID,
		session.RespondentID,
		answersOrEmpty(session.Responses),
		session.IsCompleted,
		session.IsAbandoned,
		session.EngagementScore,
		session.Metadata,
		session.StartedAt,
		session.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domains.IncompleteSurveyResponse{}, fmt.Errorf("create session: %w", storage.ErrConflict)
		}
		return domains.IncompleteSurveyResponse{}, err
	}
	return created, nil
}

func (p ResponseProvider) SaveSessionAnswers(ctx context.Context, id string, answers domains.Answers, at time.Time) (domains.IncompleteSurveyResponse, error) {
	const query = `
		UPDATE incomplete_survey_responses
		SET responses = $2, last_updated_at = $3
		WHERE id = $1
		RETURNING` + incompleteColumns
	return p.oneIncomplete(ctx, "save answers", query, id, answersOrEmpty(answers), at)
}

func (p ResponseProvider) SetAbandoned(ctx context.Context, id string, abandoned bool, at time.Time) (domains.IncompleteSurveyResponse, error) {
	const query = `
		UPDATE incomplete_survey_responses
		SET is_abandoned = $2, last_updated_at = $3
		WHERE id = $1
		RETURNING` + incompleteColumns
	return p.oneIncomplete(ctx, "set abandoned", query, id, abandoned, at)
}

// AbandonStale flags open sessions not touched since before.
func (p ResponseProvider) AbandonStale(ctx context.Context, before time.Time) (int64, error) {
	const query = `
		UPDATE incomplete_survey_responses
		SET is_abandoned = true
		WHERE NOT is_completed
		  AND (is_abandoned IS NULL OR NOT is_abandoned)
		  AND last_updated_at < $1`
	tag, err := p.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("abandon stale sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p ResponseProvider) HasCompleted(ctx context.Context, surveyID, respondentID string) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM survey_responses WHERE survey_id = $1 AND respondent_id = $2)`,
		surveyID, respondentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check completed response: %w", err)
	}
	return exists, nil
}

// Promote stores the completed response and removes the session in one
// transaction. When the respondent already completed the survey nothing
// changes and storage.ErrConflict is returned.
func (p ResponseProvider) Promote(ctx context.Context, sessionID string, completed domains.SurveyResponse) (domains.SurveyResponse, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("begin promote tx: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM incomplete_survey_responses WHERE id = $1`, sessionID)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domains.SurveyResponse{}, fmt.Errorf("delete session: %w", storage.ErrNotFound)
	}

	const insert = `
		INSERT INTO survey_responses (` + completedColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (survey_id, respondent_id) DO NOTHING`
	inserted, err := tx.Exec(ctx, insert,
		completed.ID,
		completed.SurveyID,
		completed.RespondentID,
		answersOrEmpty(completed.Responses),
		completed.Completed,
		completed.StartTime,
		completed.EndTime,
		completed.CompletionTime,
		completed.Progress,
		completed.EngagementScore,
		completed.Metadata,
		completed.CreatedAt,
		completed.UpdatedAt,
	)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("insert completed response: %w", err)
	}
	if inserted.RowsAffected() == 0 {
		return domains.SurveyResponse{}, fmt.Errorf("insert completed response: %w", storage.ErrConflict)
	}

	rows, err := tx.Query(ctx, `SELECT`+completedColumns+` FROM survey_responses WHERE id = $1`, completed.ID)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("load completed response: %w", err)
	}
	stored, err := pgx.CollectOneRow(rows, scanCompleted)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("load completed response: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("commit promote: %w", err)
	}
	return stored, nil
}

func (p ResponseProvider) GetCompleted(ctx context.Context, id string) (domains.SurveyResponse, error) {
	rows, err := p.db.Query(ctx, `SELECT`+completedColumns+` FROM survey_responses WHERE id = $1`, id)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("get response: %w", err)
	}
	r, err := pgx.CollectOneRow(rows, scanCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.SurveyResponse{}, fmt.Errorf("get response: %w", storage.ErrNotFound)
		}
		return domains.SurveyResponse{}, fmt.Errorf("get response: %w", err)
	}
	return r, nil
}

func (p ResponseProvider) UpdateCompleted(ctx context.Context, r domains.SurveyResponse) (domains.SurveyResponse, error) {
	const query = `
		UPDATE survey_responses
		SET responses = $2, progress = $3, engagement_score = $4, updated_at = $5
		WHERE id = $1
		RETURNING` + completedColumns
	rows, err := p.db.Query(ctx, query, r.ID, answersOrEmpty(r.Responses), r.Progress, r.EngagementScore, r.UpdatedAt)
	if err != nil {
		return domains.SurveyResponse{}, fmt.Errorf("update response: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, scanCompleted)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.SurveyResponse{}, fmt.Errorf("update response: %w", storage.ErrNotFound)
		}
		return domains.SurveyResponse{}, fmt.Errorf("update response: %w", err)
	}
	return updated, nil
}

func (p ResponseProvider) DeleteCompleted(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM survey_responses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete response: %w", storage.ErrNotFound)
	}
	return nil
}

func (p ResponseProvider) oneIncomplete(ctx context.Context, op, query string, args ...any) (domains.IncompleteSurveyResponse, error) {
	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	r, err := pgx.CollectOneRow(rows, scanIncomplete)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.IncompleteSurveyResponse{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return domains.IncompleteSurveyResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

func scanCompleted(row pgx.CollectableRow) (domains.SurveyResponse, error) {
	var r domains.SurveyResponse
	err := row.Scan(
		&r.ID,
		&r.SurveyID,
		&r.RespondentID,
		&r.Responses,
		&r.Completed,
		&r.StartTime,
		&r.EndTime,
		&r.CompletionTime,
		&r.Progress,
		&r.EngagementScore,
		&r.Metadata,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}

func scanIncomplete(row pgx.CollectableRow) (domains.IncompleteSurveyResponse, error) {
	var r domains.IncompleteSurveyResponse
	err := row.Scan(
		&r.ID,
		&r.SurveyID,
		&r.RespondentID,
		&r.Responses,
		&r.IsCompleted,
		&r.IsAbandoned,
		&r.EngagementScore,
		&r.Metadata,
		&r.StartedAt,
		&r.LastUpdatedAt,
	)
	return r, err
}

func answersOrEmpty(a domains.Answers) domains.Answers {
	if a == nil {
		return domains.Answers{}
	}
	return a
}
