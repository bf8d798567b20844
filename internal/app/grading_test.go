package app

import (
	"testing"

	"livequiz-service/internal/domain"
)

func TestGradeMultipleChoice(t *testing.T) {
	q := domain.Question{
		ID:           "q1",
		Kind:         domain.KindMultipleChoice,
		Options:      []string{"3", "4", "5"},
		CorrectIndex: 2,
	}

	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"exact int", 2, true},
		{"json float", float64(2), true},
		{"numeric string", "2", true},
		{"wrong index", 1, false},
		{"out of range", 7, false},
		{"fractional float", 2.5, false},
		{"non-numeric string", "two", false},
		{"nil", nil, false},
		{"map", map[string]any{"a": "b"}, false},
	}
	for _, tc := range cases {
		if got := Grade(q, tc.value); got != tc.want {
			t.Fatalf("%s: Grade=%v want %v", tc.name, got, tc.want)
		}
	}
}

func TestGradeFillBlankNormalizes(t *testing.T) {
	q := domain.Question{ID: "q1", Kind: domain.KindFillBlank, Expected: "H2O"}

	if !Grade(q, " h2o ") {
		t.Fatalf("expected trimmed case-folded match to be correct")
	}
	if Grade(q, "CO2") {
		t.Fatalf("expected wrong answer to be incorrect")
	}
	if Grade(q, 42) {
		t.Fatalf("expected numeric value to miss a textual answer")
	}
	if Grade(q, []any{"H2O"}) {
		t.Fatalf("expected wrong-shaped value to be incorrect, not an error")
	}
}

func TestGradeMatchAllOrNothing(t *testing.T) {
	q := domain.Question{
		ID:   "q1",
		Kind: domain.KindMatch,
		Pairs: []domain.MatchPair{
			{Item: "A", Target: "1"},
			{Item: "B", Target: "2"},
		},
	}

	if !Grade(q, map[string]string{"A": "1", "B": "2"}) {
		t.Fatalf("expected complete correct mapping to be correct")
	}
	if !Grade(q, map[string]any{"A": "1", "B": "2"}) {
		t.Fatalf("expected JSON-decoded mapping to be correct")
	}
	if Grade(q, map[string]string{"A": "1", "B": "1"}) {
		t.Fatalf("expected one mismatched pair to fail the whole question")
	}
	if Grade(q, map[string]string{"A": "1"}) {
		t.Fatalf("expected missing entry to be incorrect")
	}
	if Grade(q, map[string]string{"A": "1", "B": "2", "C": "3"}) {
		t.Fatalf("expected extra entry to be incorrect")
	}
	if Grade(q, map[string]any{"A": "1", "B": 2}) {
		t.Fatalf("expected non-string target to be incorrect")
	}
	if Grade(q, "A=1,B=2") {
		t.Fatalf("expected non-mapping value to be incorrect")
	}
}

func TestGradeIsPure(t *testing.T) {
	q := domain.Question{
		ID:           "q1",
		Kind:         domain.KindMultipleChoice,
		Options:      []string{"a", "b"},
		CorrectIndex: 0,
	}
	first := Grade(q, 0)
	for i := 0; i < 100; i++ {
		if Grade(q, 0) != first {
			t.Fatalf("grade changed between identical calls")
		}
	}
}
