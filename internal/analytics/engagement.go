package analytics

import "math"

const (
	answeredWeight = 0.6
	pacingWeight   = 0.4

	minSecondsPerAnswer = 5.0
	maxSecondsPerAnswer = 90.0
)

// SessionEngagement scores a finished session 0-100 from how much of the survey
// was answered and how plausible the pace was.
// Engagement = 0.6 * answeredRatio + 0.4 * pacing
func SessionEngagement(answered, expected int, completionSeconds float64) float64 {
	if answered <= 0 {
		return 0
	}
	if expected < answered {
		expected = answered
	}
	ratio := float64(answered) / float64(expected)
	score := answeredWeight*ratio + pacingWeight*pacing(completionSeconds/float64(answered))
	return round1(clamp(score, 0, 1) * 100)
}

// pacing is 1 inside the plausible per-answer window and decays outside it.
func pacing(perAnswer float64) float64 {
	switch {
	case perAnswer <= 0:
		return 0
	case perAnswer < minSecondsPerAnswer:
		return perAnswer / minSecondsPerAnswer
	case perAnswer <= maxSecondsPerAnswer:
		return 1
	default:
		return math.Max(0, 1-(perAnswer-maxSecondsPerAnswer)/(maxSecondsPerAnswer*4))
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// SessionProgress is the answered share of the survey's questions as a whole
// percentage. A survey that lists no questions counts as fully answered.
func SessionProgress(answered, expected int) int {
	if expected <= 0 {
		return 100
	}
	if answered > expected {
		answered = expected
	}
	return percent(answered, expected)
}
