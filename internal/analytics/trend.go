package analytics

import (
	"time"

	"surveyinsights/internal/domains"
)

const dayLayout = "2006-01-02"

type TrendPoint struct {
	Date                 string  `json:"date"`
	Responses            int     `json:"responses"`
	Completions          int     `json:"completions"`
	AvgCompletionMinutes float64 `json:"avg_completion_minutes"`
}

type trendBucket struct {
	point   TrendPoint
	timeSum float64
	timeN   int
}

// Trend buckets responses into one entry per UTC calendar day for the window of
// days ending at now, inclusive. Records outside the window are dropped.
func Trend(completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse, days int, now time.Time) []TrendPoint {
	if days <= 0 {
		days = DefaultTrendDays
	}
	today := now.UTC().Truncate(24 * time.Hour)
	buckets := make([]*trendBucket, days)
	index := make(map[string]*trendBucket, days)
	for i := 0; i < days; i++ {
		day := today.AddDate(0, 0, i-days+1).Format(dayLayout)
		b := &trendBucket{point: TrendPoint{Date: day}}
		buckets[i] = b
		index[day] = b
	}

	for _, r := range completed {
		b, ok := index[r.CreatedAt.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		b.point.Responses++
		b.point.Completions++
		if seconds, ok := completionSeconds(r); ok {
			b.timeSum += seconds
			b.timeN++
		}
	}
	for _, r := range incomplete {
		b, ok := index[r.StartedAt.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		b.point.Responses++
		if r.IsCompleted {
			b.point.Completions++
		}
	}

	out := make([]TrendPoint, 0, days)
	for _, b := range buckets {
		if b.timeN > 0 {
			b.point.AvgCompletionMinutes = round1(b.timeSum / float64(b.timeN) / 60)
		}
		out = append(out, b.point)
	}
	return out
}
