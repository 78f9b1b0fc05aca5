// Package adaptive turns score averages into strengths, weaknesses and a
// recommended difficulty tier.
package adaptive

import (
	"math"
	"sort"
	"strings"

	"lms-quiz-service/internal/domain"
)

// Band cut points: Beginner < 40 <= Intermediate < 75 <= Advanced.
const (
	IntermediateFloor = 40.0
	AdvancedFloor     = 75.0
)

// Clamp bounds an average into [0,100]. NaN becomes 0.
func Clamp(avg float64) float64 {
	switch {
	case math.IsNaN(avg), avg < 0:
		return 0
	case avg > 100:
		return 100
	default:
		return avg
	}
}

// LevelFor returns the performance band of avg.
func LevelFor(avg float64) domain.Level {
	avg = Clamp(avg)
	switch {
	case avg >= AdvancedFloor:
		return domain.LevelAdvanced
	case avg >= IntermediateFloor:
		return domain.LevelIntermediate
	default:
		return domain.LevelBeginner
	}
}

// RecommendDifficulty maps the overall average to the next difficulty tier.
func RecommendDifficulty(avg float64) domain.Difficulty {
	switch LevelFor(avg) {
	case domain.LevelAdvanced:
		return domain.DifficultyHard
	case domain.LevelIntermediate:
		return domain.DifficultyMedium
	default:
		return domain.DifficultyEasy
	}
}

// IsRecommended reports whether a quiz of the given difficulty matches the
// recommended tier. Quizzes without a difficulty count as Medium.
func IsRecommended(quiz, recommended domain.Difficulty) bool {
	if quiz == "" {
		quiz = domain.DifficultyMedium
	}
	return strings.EqualFold(string(quiz), string(recommended))
}

// Classify buckets topics: strengths best first, weaknesses worst first.
func Classify(topicAverages map[string]float64) domain.Classification {
	type entry struct {
		topic string
		avg   float64
	}
	var strong, weak []entry
	for topic, raw := range topicAverages {
		avg := Clamp(raw)
		switch LevelFor(avg) {
		case domain.LevelAdvanced:
			strong = append(strong, entry{topic, avg})
		case domain.LevelBeginner:
			weak = append(weak, entry{topic, avg})
		}
	}

	sort.Slice(strong, func(i, j int) bool {
		if strong[i].avg != strong[j].avg {
			return strong[i].avg > strong[j].avg
		}
		return strong[i].topic < strong[j].topic
	})
	sort.Slice(weak, func(i, j int) bool {
		if weak[i].avg != weak[j].avg {
			return weak[i].avg < weak[j].avg
		}
		return weak[i].topic < weak[j].topic
	})

	out := domain.Classification{
		Strengths:  make([]string, 0, len(strong)),
		Weaknesses: make([]string, 0, len(weak)),
	}
	for _, e := range strong {
		out.Strengths = append(out.Strengths, e.topic)
	}
	for _, e := range weak {
		out.Weaknesses = append(out.Weaknesses, e.topic)
	}
	return out
}
