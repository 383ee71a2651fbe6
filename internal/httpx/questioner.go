package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"surveyinsights/internal/domains"

	"github.com/gorilla/mux"
)

const questionerContextKey contextKey = "questioner"

type QuestionerProvider interface {
	GetUserByID(ctx context.Context, id string) (domains.Questioner, error)
}

// Questioner loads the account behind the authenticated subject. It must run
// after Protected.
func Questioner(provider QuestionerProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub, ok := UserIdFromContext(r.Context())
			if !ok {
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			user, err := provider.GetUserByID(r.Context(), sub)
			if err != nil {
				slog.Warn("load questioner", "user_id", sub, "err", err)
				Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			user.Password = ""
			next.ServeHTTP(w, r.WithContext(WithQuestioner(r.Context(), user)))
		})
	}
}

func WithQuestioner(ctx context.Context, user domains.Questioner) context.Context {
	return context.WithValue(ctx, questionerContextKey, user)
}

func QuestionerFromContext(ctx context.Context) (domains.Questioner, bool) {
	user, ok := ctx.Value(questionerContextKey).(domains.Questioner)
	return user, ok
}
