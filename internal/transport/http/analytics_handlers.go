package httptransport

import (
	"context"
	"net/http"

	"surveyinsights/internal/analytics"
	"surveyinsights/internal/domains"
	"surveyinsights/internal/httpx"
)

type AnalyticsHandlers struct {
	service AnalyticsServices
}

type AnalyticsServices interface {
	KPIs(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.KPISummary, error)
	QuestionPerformance(ctx context.Context, user domains.Questioner, c analytics.Criteria) ([]analytics.QuestionPerformance, error)
	Trends(ctx context.Context, user domains.Questioner, c analytics.Criteria) ([]analytics.TrendPoint, error)
	Summary(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.AdminSummary, error)
	Dashboard(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.Dashboard, error)
}

func NewAnalyticsHandlers(service AnalyticsServices) *AnalyticsHandlers {
	return &AnalyticsHandlers{service: service}
}

// analyticsHandler adapts one analytics operation to an HTTP handler that
// parses the filter criteria from the query string.
func analyticsHandler[T any](op string, fetch func(ctx context.Context, user domains.Questioner, c analytics.Criteria) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := httpx.QuestionerFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		criteria, err := httpx.ParseCriteria(r.URL.Query())
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err := fetch(r.Context(), user, criteria)
		if err != nil {
			writeError(w, op, err)
			return
		}
		httpx.JSON(w, http.StatusOK, result)
	}
}

func (h *AnalyticsHandlers) KPIs() http.HandlerFunc {
	return analyticsHandler("kpis", h.service.KPIs)
}

func (h *AnalyticsHandlers) Questions() http.HandlerFunc {
	return analyticsHandler("question performance", func(ctx context.Context, user domains.Questioner, c analytics.Criteria) ([]analytics.QuestionPerformance, error) {
		out, err := h.service.QuestionPerformance(ctx, user, c)
		if out == nil && err == nil {
			out = []analytics.QuestionPerformance{}
		}
		return out, err
	})
}

func (h *AnalyticsHandlers) Trends() http.HandlerFunc {
	return analyticsHandler("trends", h.service.Trends)
}

func (h *AnalyticsHandlers) Summary() http.HandlerFunc {
	return analyticsHandler("summary", h.service.Summary)
}

func (h *AnalyticsHandlers) Dashboard() http.HandlerFunc {
	return analyticsHandler("dashboard", h.service.Dashboard)
}
