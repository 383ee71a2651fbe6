package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"surveyinsights/internal/domains"
)

// numericValue reports answers that carry a number. Numeric-looking strings are
// not scores.
func numericValue(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// answerKey renders an answer value as the distribution key. Empty answers
// report false and count as skips.
func answerKey(v any) (string, bool) {
	if domains.IsEmptyAnswer(v) {
		return "", false
	}
	if f, ok := numericValue(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case []string:
		return strings.Join(t, ","), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if key, ok := answerKey(item); ok {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, ","), true
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v), true
	}
	return string(encoded), true
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return roundInt(float64(part) / float64(whole) * 100)
}
