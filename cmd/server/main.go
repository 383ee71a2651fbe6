package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"surveyinsights/internal/config"
	"surveyinsights/internal/scheduler"
	"surveyinsights/internal/server"
	"surveyinsights/internal/service"
	"surveyinsights/internal/storage"
	"surveyinsights/internal/storage/documents"
	"surveyinsights/internal/storage/providers"
	httptransport "surveyinsights/internal/transport/http"
)

type backend struct {
	auth      service.AuthProvider
	surveys   service.SurveyProvider
	questions service.QuestionProvider
	responses service.ResponseProvider
	close     func()
}

func main() {
	cfg := config.MustLoad()
	slog.SetDefault(setupLogger(cfg.Env, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer store.close()

	authService := service.NewAuthService(store.auth, cfg.JWT.Secret)
	responseService := service.NewResponseService(store.surveys, store.responses)
	analyticsService := service.NewAnalyticsService(store.surveys, store.questions, store.responses, cfg.Analytics.TrendDays)

	scheduler.NewAbandonmentScheduler(responseService, cfg.Analytics.SweepInterval, cfg.Analytics.AbandonAfter).Start(ctx)

	router := httptransport.Router(httptransport.Services{
		Auth:      authService,
		Surveys:   service.NewSurveyService(store.surveys),
		Questions: service.NewQuestionService(store.questions),
		Analytics: analyticsService,
		Responses: responseService,
		Accounts:  store.auth,
	}, cfg)

	if err := server.Start(ctx, ":"+cfg.Server.Port, cfg.Server.AllowedOrigins, router); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openStorage(ctx context.Context, cfg config.StorageConfig) (*backend, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		client, db, err := documents.Connect(cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := documents.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		stores := documents.New(db)
		return &backend{
			auth:      stores.AuthStore,
			surveys:   stores.SurveyStore,
			questions: stores.QuestionStore,
			responses: stores.ResponseStore,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					slog.Error("disconnect mongo", "err", err)
				}
			},
		}, nil
	default:
		db, err := storage.InitDB(cfg.DatabaseUrl)
		if err != nil {
			return nil, err
		}
		all := providers.New(db)
		return &backend{
			auth:      all.AuthProvider,
			surveys:   all.SurveyProvider,
			questions: all.QuestionProvider,
			responses: all.ResponseProvider,
			close:     db.Close,
		}, nil
	}
}

func setupLogger(env, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if env == "local" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
