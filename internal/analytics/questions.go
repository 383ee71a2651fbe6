package analytics

import (
	"sort"

	"surveyinsights/internal/domains"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"

	QualityHigh   = "high"
	QualityMedium = "medium"
	QualityLow    = "low"

	// Per-question timing is rarely recorded upstream; without it the time
	// spent is reported as this placeholder and flagged as estimated.
	estimatedSecondsPerQuestion = 30
)

type AnswerShare struct {
	Value      string `json:"value"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type QuestionPerformance struct {
	QuestionID      string        `json:"question_id"`
	QuestionText    string        `json:"question_text"`
	QuestionType    string        `json:"question_type"`
	ResponseCount   int           `json:"response_count"`
	AverageScore    float64       `json:"average_score"`
	Sentiment       string        `json:"sentiment"`
	Answers         []AnswerShare `json:"answers"`
	AvgTimeSpent    float64       `json:"avg_time_spent"`
	SkipRate        int           `json:"skip_rate"`
	CompletionRate  int           `json:"completion_rate"`
	EngagementScore int           `json:"engagement_score"`
	ResponseQuality string        `json:"response_quality"`
	// TimeEstimated marks AvgTimeSpent as a placeholder because no answer
	// carried a measured time.
	TimeEstimated bool `json:"time_estimated"`
	// EngagementEstimated marks EngagementScore as derived from the mean
	// score rather than measured.
	EngagementEstimated bool `json:"engagement_estimated"`
}

type questionStats struct {
	id         string
	responses  int
	skips      int
	counts     map[string]int
	totalScore float64
	scoreCount int
	timeSum    float64
	timeCount  int
}

func (s *questionStats) add(a domains.Answer) {
	if a.TimeSpent != nil && *a.TimeSpent > 0 {
		s.timeSum += *a.TimeSpent
		s.timeCount++
	}
	key, ok := answerKey(a.Value)
	if !ok {
		s.skips++
		return
	}
	s.responses++
	s.counts[key]++
	if score, ok := numericValue(a.Value); ok {
		s.totalScore += score
		s.scoreCount++
	}
}

// QuestionPerformanceAggregator builds per-question performance records.
type QuestionPerformanceAggregator struct {
	questions map[string]domains.Question
	criteria  Criteria
}

func NewQuestionPerformanceAggregator(questions []domains.Question, criteria Criteria) *QuestionPerformanceAggregator {
	index := make(map[string]domains.Question, len(questions))
	for _, q := range questions {
		index[q.ID] = q
	}
	return &QuestionPerformanceAggregator{questions: index, criteria: criteria}
}

// QuestionIDs lists every question referenced by the responses, in first-seen order.
func QuestionIDs(completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse) []string {
	seen := make(map[string]struct{})
	var ids []string
	visit := func(answers domains.Answers) {
		for _, a := range answers {
			if _, ok := seen[a.QuestionID]; ok || a.QuestionID == "" {
				continue
			}
			seen[a.QuestionID] = struct{}{}
			ids = append(ids, a.QuestionID)
		}
	}
	for _, r := range completed {
		visit(r.Responses)
	}
	for _, r := range incomplete {
		visit(r.Responses)
	}
	return ids
}

func (p *QuestionPerformanceAggregator) Aggregate(completed []domains.SurveyResponse, incomplete []domains.IncompleteSurveyResponse) []QuestionPerformance {
	stats := make(map[string]*questionStats)
	var order []string
	collect := func(answers domains.Answers) {
		for _, a := range answers {
			if a.QuestionID == "" || !p.criteria.WantsQuestion(a.QuestionID) {
				continue
			}
			st, ok := stats[a.QuestionID]
			if !ok {
				st = &questionStats{id: a.QuestionID, counts: make(map[string]int)}
				stats[a.QuestionID] = st
				order = append(order, a.QuestionID)
			}
			st.add(a)
		}
	}
	for _, r := range completed {
		collect(r.Responses)
	}
	for _, r := range incomplete {
		collect(r.Responses)
	}

	out := make([]QuestionPerformance, 0, len(order))
	for _, id := range order {
		out = append(out, p.build(stats[id]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ResponseCount != out[j].ResponseCount {
			return out[i].ResponseCount > out[j].ResponseCount
		}
		return out[i].QuestionID < out[j].QuestionID
	})
	return out
}

func (p *QuestionPerformanceAggregator) build(st *questionStats) QuestionPerformance {
	var ref *domains.Question
	if q, ok := p.questions[st.id]; ok {
		ref = &q
	}

	qType, ok := ResolveType(ref)
	if !ok {
		qType = InferType(st.counts)
	}

	perf := QuestionPerformance{
		QuestionID:    st.id,
		QuestionText:  ResolveText(st.id, ref),
		QuestionType:  qType,
		ResponseCount: st.responses,
		Sentiment:     SentimentNeutral,
		Answers:       Distribution(st.counts, st.responses),
	}
	if st.scoreCount > 0 {
		perf.AverageScore = round1(st.totalScore / float64(st.scoreCount))
		perf.Sentiment = Sentiment(perf.AverageScore)
	}

	perf.SkipRate = percent(st.skips, st.responses+st.skips)
	perf.CompletionRate = 100 - perf.SkipRate
	if st.timeCount > 0 {
		perf.AvgTimeSpent = round1(st.timeSum / float64(st.timeCount))
	} else {
		perf.AvgTimeSpent = estimatedSecondsPerQuestion
		perf.TimeEstimated = true
	}
	perf.EngagementScore = roundInt(75 + perf.AverageScore*5)
	perf.EngagementEstimated = true
	if perf.EngagementScore > 100 {
		perf.EngagementScore = 100
	}
	perf.ResponseQuality = ResponseQuality(perf.EngagementScore, perf.CompletionRate)
	return perf
}

func Sentiment(averageScore float64) string {
	switch {
	case averageScore >= 4:
		return SentimentPositive
	case averageScore <= 2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func ResponseQuality(engagement, completionRate int) string {
	switch {
	case engagement > 85 && completionRate > 95:
		return QualityHigh
	case engagement < 60 || completionRate < 80:
		return QualityLow
	default:
		return QualityMedium
	}
}

// InferType guesses a question type from the shape of its collected answers.
func InferType(counts map[string]int) string {
	if len(counts) == 0 {
		return TypeUnknown
	}
	allNumeric, smallScale := true, true
	for value := range counts {
		n, ok := parseNumber(value)
		if !ok {
			allNumeric = false
			break
		}
		if n > 7 {
			smallScale = false
		}
	}
	switch {
	case allNumeric && smallScale && len(counts) <= 7:
		return TypeLikert
	case !allNumeric:
		return TypeMultipleChoice
	case len(counts) > 10:
		return TypeOpenText
	default:
		return TypeUnknown
	}
}

// Distribution formats value counts as shares of total, sorted numerically when
// every value is a number and lexicographically otherwise.
func Distribution(counts map[string]int, total int) []AnswerShare {
	shares := make([]AnswerShare, 0, len(counts))
	numeric := true
	for value, count := range counts {
		if _, ok := parseNumber(value); !ok {
			numeric = false
		}
		shares = append(shares, AnswerShare{Value: value, Count: count, Percentage: percent(count, total)})
	}
	sort.Slice(shares, func(i, j int) bool {
		if numeric {
			a, _ := parseNumber(shares[i].Value)
			b, _ := parseNumber(shares[j].Value)
			if a != b {
				return a < b
			}
		}
		return shares[i].Value < shares[j].Value
	})
	return shares
}
