package providers

import "github.com/jackc/pgx/v5/pgxpool"

// uniqueViolation is the SQLSTATE Postgres reports for a duplicate key.
const uniqueViolation = "23505"

type Providers struct {
	AuthProvider     *AuthProvider
	SurveyProvider   *SurveyProvider
	QuestionProvider *QuestionProvider
	ResponseProvider *ResponseProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		AuthProvider:     NewAuthProvider(db),
		SurveyProvider:   NewSurveyProvider(db),
		QuestionProvider: NewQuestionProvider(db),
		ResponseProvider: NewResponseProvider(db),
	}
}
