package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"surveyinsights/internal/analytics"
	"surveyinsights/internal/domains"
)

// AnalyticsService loads the records a dashboard request covers and runs the
// aggregators over them. Nothing is cached between requests.
type AnalyticsService struct {
	surveys   SurveyProvider
	questions QuestionProvider
	responses ResponseProvider
	trendDays int
	now       func() time.Time
}

func NewAnalyticsService(surveys SurveyProvider, questions QuestionProvider, responses ResponseProvider, trendDays int) *AnalyticsService {
	if trendDays <= 0 {
		trendDays = analytics.DefaultTrendDays
	}
	return &AnalyticsService{
		surveys:   surveys,
		questions: questions,
		responses: responses,
		trendDays: trendDays,
		now:       time.Now,
	}
}

type analyticsScope struct {
	surveys    []domains.Survey
	completed  []domains.SurveyResponse
	incomplete []domains.IncompleteSurveyResponse
}

// VisibleSurveys returns every survey for admins and the caller's own otherwise.
func (s *AnalyticsService) VisibleSurveys(ctx context.Context, user domains.Questioner) ([]domains.Survey, error) {
	owner := user.Id
	if user.IsAdmin() {
		owner = ""
	}
	surveys, err := s.surveys.ListSurveys(ctx, owner)
	if err != nil {
		slog.Error("list visible surveys", "user_id", user.Id, "err", err)
		return nil, fmt.Errorf("list visible surveys: %w", err)
	}
	return surveys, nil
}

func (s *AnalyticsService) load(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analyticsScope, error) {
	visible, err := s.VisibleSurveys(ctx, user)
	if err != nil {
		return analyticsScope{}, err
	}

	known := make(map[string]struct{}, len(visible))
	for _, survey := range visible {
		known[survey.ID] = struct{}{}
	}
	for _, id := range c.SurveyIDs {
		if _, ok := known[id]; !ok {
			return analyticsScope{}, fmt.Errorf("survey %s: %w", id, ErrNotAuthorized)
		}
	}

	scoped := c.ScopeSurveys(visible)
	if len(scoped) == 0 {
		return analyticsScope{}, nil
	}

	// Completed responses are read without the date range so a session whose
	// promotion landed outside the window is still recognised as promoted.
	filter := domains.ResponseFilter{SurveyIDs: analytics.SurveyIDs(scoped), From: c.From, To: c.To}
	completed, err := s.responses.ListCompleted(ctx, domains.ResponseFilter{SurveyIDs: filter.SurveyIDs})
	if err != nil {
		slog.Error("list completed responses", "surveys", filter.SurveyIDs, "err", err)
		return analyticsScope{}, err
	}
	incomplete, err := s.responses.ListIncomplete(ctx, filter)
	if err != nil {
		slog.Error("list incomplete responses", "surveys", filter.SurveyIDs, "err", err)
		return analyticsScope{}, err
	}

	incomplete = c.FilterIncomplete(analytics.DropPromoted(completed, incomplete))
	completed = c.FilterCompleted(completed)

	return analyticsScope{surveys: scoped, completed: completed, incomplete: incomplete}, nil
}

func (s *AnalyticsService) KPIs(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.KPISummary, error) {
	sc, err := s.load(ctx, user, c)
	if err != nil {
		return analytics.KPISummary{}, err
	}
	return s.kpis(sc), nil
}

func (s *AnalyticsService) QuestionPerformance(ctx context.Context, user domains.Questioner, c analytics.Criteria) ([]analytics.QuestionPerformance, error) {
	sc, err := s.load(ctx, user, c)
	if err != nil {
		return nil, err
	}
	return s.questionPerformance(ctx, sc, c)
}

func (s *AnalyticsService) Trends(ctx context.Context, user domains.Questioner, c analytics.Criteria) ([]analytics.TrendPoint, error) {
	sc, err := s.load(ctx, user, c)
	if err != nil {
		return nil, err
	}
	return s.trend(sc, c), nil
}

func (s *AnalyticsService) Summary(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.AdminSummary, error) {
	sc, err := s.load(ctx, user, c)
	if err != nil {
		return analytics.AdminSummary{}, err
	}
	return analytics.Summarize(sc.surveys, sc.completed, sc.incomplete, s.now()), nil
}

// Dashboard computes every metric from a single load of the records.
func (s *AnalyticsService) Dashboard(ctx context.Context, user domains.Questioner, c analytics.Criteria) (analytics.Dashboard, error) {
	sc, err := s.load(ctx, user, c)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	questions, err := s.questionPerformance(ctx, sc, c)
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return analytics.Dashboard{
		Criteria:  c,
		KPIs:      s.kpis(sc),
		Questions: questions,
		Trend:     s.trend(sc, c),
		Summary:   analytics.Summarize(sc.surveys, sc.completed, sc.incomplete, s.now()),
	}, nil
}

func (s *AnalyticsService) kpis(sc analyticsScope) analytics.KPISummary {
	return analytics.NewResponseAggregator(sc.completed, sc.incomplete).KPIs(analytics.InviteeCount(sc.surveys))
}

func (s *AnalyticsService) questionPerformance(ctx context.Context, sc analyticsScope, c analytics.Criteria) ([]analytics.QuestionPerformance, error) {
	ids := analytics.QuestionIDs(sc.completed, sc.incomplete)
	var wanted []string
	for _, id := range ids {
		if c.WantsQuestion(id) {
			wanted = append(wanted, id)
		}
	}
	questions, err := s.questions.GetQuestionsByIDs(ctx, wanted)
	if err != nil {
		slog.Error("load questions", "count", len(wanted), "err", err)
		return nil, err
	}
	return analytics.NewQuestionPerformanceAggregator(questions, c).Aggregate(sc.completed, sc.incomplete), nil
}

func (s *AnalyticsService) trend(sc analyticsScope, c analytics.Criteria) []analytics.TrendPoint {
	days := c.Days
	if days <= 0 {
		days = s.trendDays
	}
	return analytics.Trend(sc.completed, sc.incomplete, days, s.now())
}
