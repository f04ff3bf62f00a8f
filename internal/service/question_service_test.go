package service

import (
	"context"
	"errors"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/util"
	"testing"
)

func newQuestionService(t *testing.T) *QuestionService {
	t.Helper()
	return NewQuestionService(repository.NewQuestionRepository(newTestDB(t)), nil)
}

func TestQuestionService_CreateAndGet(t *testing.T) {
	s := newQuestionService(t)

	q, err := s.Create(QuestionInput{
		Text:          "  What is a slice?  ",
		Type:          "code",
		CorrectAnswer: "B",
		Tags:          []string{"Go", "Go", ""},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.ID == 0 || q.Text != "What is a slice?" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if q.Type != model.QuestionCode || q.Difficulty != model.DefaultDifficulty {
		t.Errorf("type/difficulty = %s/%s", q.Type, q.Difficulty)
	}
	if len(q.Tags) != 1 || q.Options == nil {
		t.Errorf("tags/options = %v/%v", q.Tags, q.Options)
	}

	got, err := s.Get(q.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CorrectAnswer != "B" {
		t.Errorf("correct answer = %q", got.CorrectAnswer)
	}

	if _, err := s.Get(999); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestQuestionService_CreateRejectsMissingFields(t *testing.T) {
	s := newQuestionService(t)
	for _, in := range []QuestionInput{
		{CorrectAnswer: "A"},
		{Text: "Q", CorrectAnswer: "   "},
	} {
		if _, err := s.Create(in); !errors.Is(err, util.ErrInvalidRequest) {
			t.Fatalf("input %+v: err = %v", in, err)
		}
	}
}

func TestQuestionService_ListFilters(t *testing.T) {
	s := newQuestionService(t)
	inputs := []QuestionInput{
		{Text: "Q1", CorrectAnswer: "A", Tags: []string{"Go"}, Difficulty: "JUNIOR"},
		{Text: "Q2", CorrectAnswer: "A", Tags: []string{"Go", "SQL"}, Difficulty: "SENIOR"},
		{Text: "Q3", CorrectAnswer: "A", Tags: []string{"GoLang"}, Difficulty: "SENIOR"},
	}
	if _, err := s.CreateBatch(inputs); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		tag, difficulty string
		want            []string
	}{
		{"", "", []string{"Q1", "Q2", "Q3"}},
		{"Go", "", []string{"Q1", "Q2"}},
		{"", "senior", []string{"Q2", "Q3"}},
		{"Go", "SENIOR", []string{"Q2"}},
		{"Rust", "", nil},
	}
	for _, tt := range tests {
		qs, err := s.List(tt.tag, tt.difficulty)
		if err != nil {
			t.Fatal(err)
		}
		if len(qs) != len(tt.want) {
			t.Fatalf("List(%q, %q) returned %d questions, want %d", tt.tag, tt.difficulty, len(qs), len(tt.want))
		}
		for i, q := range qs {
			if q.Text != tt.want[i] {
				t.Errorf("List(%q, %q)[%d] = %q, want %q", tt.tag, tt.difficulty, i, q.Text, tt.want[i])
			}
		}
	}

	tags, err := s.Tags()
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 3 || tags[0] != "Go" || tags[1] != "GoLang" || tags[2] != "SQL" {
		t.Errorf("tags = %v", tags)
	}
}

func TestQuestionService_CreateBatchIsAllOrNothing(t *testing.T) {
	s := newQuestionService(t)

	_, err := s.CreateBatch([]QuestionInput{
		{Text: "Q1", CorrectAnswer: "A"},
		{Text: "", CorrectAnswer: "A"},
	})
	if !errors.Is(err, util.ErrInvalidRequest) {
		t.Fatalf("err = %v", err)
	}
	if n, _ := s.QuestionRepo.Count(); n != 0 {
		t.Fatalf("expected no stored questions, got %d", n)
	}

	if _, err := s.CreateBatch(nil); !errors.Is(err, util.ErrInvalidRequest) {
		t.Fatalf("empty batch err = %v", err)
	}
}

func TestQuestionService_UpdateAndDelete(t *testing.T) {
	s := newQuestionService(t)
	q, err := s.Create(QuestionInput{Text: "Q1", CorrectAnswer: "A"})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := s.Update(context.Background(), q.ID, QuestionInput{Text: "Q1 edited", CorrectAnswer: "C", Difficulty: "MIDDLE"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != q.ID {
		t.Fatalf("identity not kept: %+v", updated)
	}

	got, _ := s.Get(q.ID)
	if got.Text != "Q1 edited" || got.CorrectAnswer != "C" || got.Difficulty != "MIDDLE" {
		t.Fatalf("unexpected stored question: %+v", got)
	}

	if _, err := s.Update(context.Background(), 999, QuestionInput{Text: "x", CorrectAnswer: "A"}); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("update missing err = %v", err)
	}

	if err := s.Delete(context.Background(), q.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(context.Background(), q.ID); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
}
