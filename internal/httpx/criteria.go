package httpx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"surveyinsights/internal/analytics"
)

const dateLayout = "2006-01-02"

// ParseCriteria reads the analytics filters from the query string. List
// parameters may repeat or carry comma-separated values. A date-only "to"
// covers the whole day.
func ParseCriteria(q url.Values) (analytics.Criteria, error) {
	c := analytics.Criteria{
		SurveyIDs:   listParam(q, "surveyId"),
		TagIDs:      listParam(q, "tagId"),
		QuestionIDs: listParam(q, "questionId"),
	}

	if raw := q.Get("from"); raw != "" {
		from, _, err := parseTime(raw)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("from: %w", err)
		}
		c.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, dateOnly, err := parseTime(raw)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("to: %w", err)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		c.To = &to
	}
	if c.From != nil && c.To != nil && c.To.Before(*c.From) {
		return analytics.Criteria{}, fmt.Errorf("to is before from")
	}

	if raw := q.Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > 366 {
			return analytics.Criteria{}, fmt.Errorf("days must be between 1 and 366")
		}
		c.Days = days
	}
	if raw := q.Get("excludeAbandoned"); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			return analytics.Criteria{}, fmt.Errorf("excludeAbandoned: %w", err)
		}
		c.ExcludeAbandoned = exclude
	}
	return c, nil
}

func listParam(q url.Values, name string) []string {
	var out []string
	for _, raw := range q[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseTime(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", raw)
	}
	return t, true, nil
}
