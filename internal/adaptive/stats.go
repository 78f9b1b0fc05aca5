package adaptive

import (
	"math"
	"sort"

	"lms-quiz-service/internal/domain"
)

// GeneralTopic buckets attempts that carry no topic.
const GeneralTopic = "General"

// TopicAverages averages graded attempt scores per topic.
func TopicAverages(attempts []domain.Attempt) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, a := range attempts {
		if !a.Graded() {
			continue
		}
		topic := a.TopicName
		if topic == "" {
			topic = GeneralTopic
		}
		sums[topic] += float64(*a.Score)
		counts[topic]++
	}
	out := make(map[string]float64, len(sums))
	for topic, sum := range sums {
		out[topic] = sum / float64(counts[topic])
	}
	return out
}

// OverallAverage averages graded attempt scores, 0 when nothing is graded.
func OverallAverage(attempts []domain.Attempt) float64 {
	var sum float64
	n := 0
	for _, a := range attempts {
		if a.Graded() {
			sum += float64(*a.Score)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Progression lists graded scores in input order for trend charts.
func Progression(attempts []domain.Attempt) []domain.ProgressPoint {
	out := make([]domain.ProgressPoint, 0, len(attempts))
	for _, a := range attempts {
		if a.Graded() {
			out = append(out, domain.ProgressPoint{Date: a.CreatedAt, Score: *a.Score})
		}
	}
	return out
}

// BuildStats assembles the dashboard summary from chronologically ordered attempts.
func BuildStats(attempts []domain.Attempt) domain.StudentStats {
	topics := TopicAverages(attempts)
	overall := OverallAverage(attempts)
	class := Classify(topics)

	performance := make([]domain.TopicPerformance, 0, len(topics))
	for topic, avg := range topics {
		performance = append(performance, domain.TopicPerformance{Topic: topic, AvgScore: Round(avg)})
	}
	sort.Slice(performance, func(i, j int) bool { return performance[i].Topic < performance[j].Topic })

	stats := domain.StudentStats{
		TotalAttempts:    len(attempts),
		AverageScore:     Round(overall),
		Level:            LevelFor(overall),
		NextDifficulty:   RecommendDifficulty(overall),
		Strengths:        class.Strengths,
		Weaknesses:       class.Weaknesses,
		TopicPerformance: performance,
		Progression:      Progression(attempts),
	}
	if len(class.Weaknesses) > 0 {
		stats.WeakTopic = class.Weaknesses[0]
	}
	return stats
}

// Round rounds a clamped average half-up to an integer percentage.
func Round(avg float64) int {
	return int(math.Floor(Clamp(avg) + 0.5))
}
