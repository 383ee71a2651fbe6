package httptransport

import (
	"net/http"

	"surveyinsights/internal/config"
	"surveyinsights/internal/httpx"

	"github.com/gorilla/mux"
)

type Services struct {
	Auth      AuthServices
	Surveys   SurveyServices
	Questions QuestionServices
	Analytics AnalyticsServices
	Responses ResponseServices
	Accounts  httpx.QuestionerProvider
}

func Router(svc Services, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	authHandler := NewAuthHandlers(svc.Auth)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/register", authHandler.RegisterQuestioner).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	sessionHandler := NewSessionHandlers(svc.Responses)
	sessions := api.PathPrefix("/sessions").Subrouter()
	sessions.Use(httpx.NewRateLimiter(cfg.Server.SubmitRate, cfg.Server.SubmitBurst).Middleware())
	sessions.HandleFunc("", sessionHandler.Start).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/answers", sessionHandler.RecordAnswer).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/complete", sessionHandler.Complete).Methods(http.MethodPost)
	sessions.HandleFunc("/{id}/abandon", sessionHandler.Abandon).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(httpx.Protected(cfg.JWT.Secret), httpx.Questioner(svc.Accounts))

	surveyHandler := NewSurveyHandlers(svc.Surveys)
	protected.HandleFunc("/surveys", surveyHandler.CreateSurvey).Methods(http.MethodPost)
	protected.HandleFunc("/surveys", surveyHandler.ListSurveys).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}", surveyHandler.GetSurvey).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}", surveyHandler.UpdateSurvey).Methods(http.MethodPut)
	protected.HandleFunc("/surveys/{id}/publish", surveyHandler.PublishSurvey).Methods(http.MethodPost)

	questionHandler := NewQuestionHandlers(svc.Questions)
	protected.HandleFunc("/questions", questionHandler.CreateQuestion).Methods(http.MethodPost)
	protected.HandleFunc("/questions/{id}", questionHandler.GetQuestion).Methods(http.MethodGet)
	protected.HandleFunc("/questions/{id}/versions", questionHandler.AddVersion).Methods(http.MethodPost)

	analyticsHandler := NewAnalyticsHandlers(svc.Analytics)
	stats := protected.PathPrefix("/analytics").Subrouter()
	stats.HandleFunc("/kpis", analyticsHandler.KPIs()).Methods(http.MethodGet)
	stats.HandleFunc("/questions", analyticsHandler.Questions()).Methods(http.MethodGet)
	stats.HandleFunc("/trends", analyticsHandler.Trends()).Methods(http.MethodGet)
	stats.HandleFunc("/summary", analyticsHandler.Summary()).Methods(http.MethodGet)
	stats.HandleFunc("/dashboard", analyticsHandler.Dashboard()).Methods(http.MethodGet)

	protected.HandleFunc("/responses/{id}", sessionHandler.DeleteResponse).Methods(http.MethodDelete)
	protected.HandleFunc("/responses/{id}", sessionHandler.CorrectResponse).Methods(http.MethodPut)

	return router
}
