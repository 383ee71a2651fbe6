package providers

import (
	"context"
	"errors"
	"fmt"

	"surveyinsights/internal/domains"
	"surveyinsights/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthProvider struct {
	db *pgxpool.Pool
}

func NewAuthProvider(pg *pgxpool.Pool) *AuthProvider {
	return &AuthProvider{
		db: pg,
	}
}

const selectAccount = `SELECT id, full_name, email, passhash, role, created_at FROM accounts`

func (s *AuthProvider) SaveUser(ctx context.Context, passHash string, user domains.Questioner) (domains.Questioner, error) {
	row, err := s.db.Query(ctx,
		`INSERT INTO accounts (id, full_name, email, passhash, role, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id, full_name, email, passhash, role, created_at`,
		user.Id, user.FullName, user.Email, passHash, user.Role, user.CreatedAt)
	if err != nil {
		return domains.Questioner{}, fmt.Errorf("insert account: %w", err)
	}
	saved, err := pgx.CollectOneRow(row, scanQuestioner)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domains.Questioner{}, storage.ErrUserExist
		}
		return domains.Questioner{}, fmt.Errorf("insert account: %w", err)
	}
	return saved, nil
}

func (s *AuthProvider) GetUserByEmail(ctx context.Context, email string) (domains.Questioner, error) {
	return s.getUser(ctx, selectAccount+` WHERE lower(email) = lower($1)`, email)
}

func (s *AuthProvider) GetUserByID(ctx context.Context, id string) (domains.Questioner, error) {
	return s.getUser(ctx, selectAccount+` WHERE id = $1`, id)
}

func (s *AuthProvider) getUser(ctx context.Context, query string, arg any) (domains.Questioner, error) {
	row, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return domains.Questioner{}, fmt.Errorf("get account: %w", err)
	}
	user, err := pgx.CollectOneRow(row, scanQuestioner)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Questioner{}, fmt.Errorf("get account: %w", storage.ErrNotFound)
		}
		return domains.Questioner{}, fmt.Errorf("get account: %w", err)
	}
	return user, nil
}

func scanQuestioner(row pgx.CollectableRow) (domains.Questioner, error) {
	var q domains.Questioner
	err := row.Scan(&q.Id, &q.FullName, &q.Email, &q.Password, &q.Role, &q.CreatedAt)
	return q, err
}
