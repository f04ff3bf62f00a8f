package service

import (
	"quizgen_backend/internal/model"
	"testing"
)

func TestFallbackGenerator_Questions(t *testing.T) {
	var g FallbackGenerator

	first := g.Questions(3)
	second := g.Questions(3)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("expected 3 questions per batch, got %d and %d", len(first), len(second))
	}

	for i := range first {
		a, b := first[i], second[i]
		if a.Text != b.Text || a.CorrectAnswer != b.CorrectAnswer || a.Type != b.Type || a.Difficulty != b.Difficulty {
			t.Fatalf("batches differ at %d: %+v vs %+v", i, a, b)
		}
		if len(a.Options) != 4 || a.Options[0] != b.Options[0] {
			t.Fatalf("unexpected options at %d: %v vs %v", i, a.Options, b.Options)
		}
		if a.Type != model.QuestionTheory || a.CorrectAnswer != "A" || a.Difficulty != model.DefaultDifficulty {
			t.Fatalf("unexpected fallback question: %+v", a)
		}
	}

	first[0].Options[0] = "mutated"
	first[0].Tags[0] = "mutated"
	if second[0].Options[0] == "mutated" || second[0].Tags[0] == "mutated" {
		t.Fatal("batches share option or tag storage")
	}
	if g.Questions(1)[0].Options[0] == "mutated" {
		t.Fatal("mutation leaked into later batches")
	}
}

func TestFallbackGenerator_NonPositiveCount(t *testing.T) {
	var g FallbackGenerator
	if qs := g.Questions(0); qs == nil || len(qs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", qs)
	}
	if qs := g.Questions(-2); len(qs) != 0 {
		t.Fatalf("expected empty slice, got %d", len(qs))
	}
}
