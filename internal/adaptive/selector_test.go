package adaptive

import (
	"math"
	"reflect"
	"testing"

	"lms-quiz-service/internal/domain"
)

func TestClassifyBands(t *testing.T) {
	got := Classify(map[string]float64{
		"Algebra":  80,
		"Geometry": 35,
		"Calculus": 55,
	})
	if !reflect.DeepEqual(got.Strengths, []string{"Algebra"}) {
		t.Fatalf("unexpected strengths %v", got.Strengths)
	}
	if !reflect.DeepEqual(got.Weaknesses, []string{"Geometry"}) {
		t.Fatalf("unexpected weaknesses %v", got.Weaknesses)
	}
}

func TestClassifyOrderingAndCutPoints(t *testing.T) {
	got := Classify(map[string]float64{
		"a": 75, "b": 99, "c": 74.9,
		"d": 40, "e": 39.9, "f": 0, "g": 0,
	})
	if !reflect.DeepEqual(got.Strengths, []string{"b", "a"}) {
		t.Fatalf("strengths should be best first, got %v", got.Strengths)
	}
	if !reflect.DeepEqual(got.Weaknesses, []string{"f", "g", "e"}) {
		t.Fatalf("weaknesses should be worst first, got %v", got.Weaknesses)
	}
}

func TestClassifyEmpty(t *testing.T) {
	got := Classify(nil)
	if got.Strengths == nil || got.Weaknesses == nil {
		t.Fatalf("expected empty, non-nil buckets")
	}
}

func TestClassifyClampsOutOfRangeAverages(t *testing.T) {
	got := Classify(map[string]float64{
		"over":  150,
		"under": -5,
		"nan":   math.NaN(),
		"mid":   60,
	})
	if !reflect.DeepEqual(got.Strengths, []string{"over"}) {
		t.Fatalf("averages above 100 should count as 100, got %v", got.Strengths)
	}
	if !reflect.DeepEqual(got.Weaknesses, []string{"nan", "under"}) {
		t.Fatalf("negative and NaN averages should count as 0, got %v", got.Weaknesses)
	}
}

func TestRecommendDifficulty(t *testing.T) {
	cases := []struct {
		avg  float64
		want domain.Difficulty
	}{
		{80, domain.DifficultyHard},
		{75, domain.DifficultyHard},
		{50, domain.DifficultyMedium},
		{40, domain.DifficultyMedium},
		{10, domain.DifficultyEasy},
		{-20, domain.DifficultyEasy},
		{250, domain.DifficultyHard},
		{math.NaN(), domain.DifficultyEasy},
	}
	for _, tc := range cases {
		if got := RecommendDifficulty(tc.avg); got != tc.want {
			t.Fatalf("RecommendDifficulty(%v) = %s, want %s", tc.avg, got, tc.want)
		}
	}
}

func TestIsRecommended(t *testing.T) {
	if !IsRecommended("", domain.DifficultyMedium) {
		t.Fatalf("missing difficulty should count as Medium")
	}
	if !IsRecommended("hard", domain.DifficultyHard) {
		t.Fatalf("difficulty match should ignore case")
	}
	if IsRecommended(domain.DifficultyEasy, domain.DifficultyHard) {
		t.Fatalf("different tiers must not match")
	}
}
