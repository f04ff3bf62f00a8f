package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/util"
	"strings"
	"testing"
	"time"
)

// memoryStore 按调用顺序分配 ID
type memoryStore struct {
	nextID    uint
	questions []model.Question
	quizzes   []*model.Quiz
}

func (s *memoryStore) SaveQuestions(qs []model.Question) ([]model.Question, error) {
	out := make([]model.Question, len(qs))
	for i, q := range qs {
		s.nextID++
		q.ID = s.nextID
		out[i] = q
	}
	s.questions = append(s.questions, out...)
	return out, nil
}

func (s *memoryStore) SaveQuiz(q *model.Quiz) (*model.Quiz, error) {
	s.nextID++
	q.ID = s.nextID
	s.quizzes = append(s.quizzes, q)
	return q, nil
}

func TestGenerate_ProviderSuccess(t *testing.T) {
	p := newFakeProvider(t, http.StatusOK, completionBody(t, "Sure! "+questionsContent(4)))
	g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())
	store := &memoryStore{}

	quiz, source, err := g.Generate(context.Background(), Direct(store), GenerateRequest{
		Tags: []string{"Go", "Concurrency"}, Difficulty: "MIDDLE", QuestionCount: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != SourceAI {
		t.Errorf("source = %s", source)
	}
	if len(quiz.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(quiz.Questions))
	}
	for _, q := range quiz.Questions {
		if q.ID == 0 {
			t.Fatal("question saved without id")
		}
		if strings.HasPrefix(q.Text, "Placeholder") {
			t.Fatal("expected provider questions, got fallback")
		}
	}
	if quiz.Title != "Quiz: Go, Concurrency" {
		t.Errorf("title = %q", quiz.Title)
	}
	if !strings.Contains(quiz.Description, "Go, Concurrency") {
		t.Errorf("description = %q", quiz.Description)
	}
	if quiz.Difficulty != "MIDDLE" || quiz.TimeLimit != 30 {
		t.Errorf("difficulty/time limit = %q/%d", quiz.Difficulty, quiz.TimeLimit)
	}
	if len(quiz.Tags) != 2 {
		t.Errorf("tags = %v", quiz.Tags)
	}

	prompt := p.requests[0].Messages[0].Content
	if prompt != BuildQuizPrompt([]string{"Go", "Concurrency"}, "MIDDLE", 4) {
		t.Error("provider did not receive the built prompt")
	}
}

func TestGenerate_ProviderUnreachableUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewQuizGenerator(NewAIService(config.AIConfig{BaseURL: url, Timeout: time.Second}), testQuizConfig())
	quiz, source, err := g.Generate(context.Background(), Direct(&memoryStore{}), GenerateRequest{
		Tags: []string{"Go"}, Difficulty: "JUNIOR", QuestionCount: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != SourceFallback {
		t.Errorf("source = %s", source)
	}
	if len(quiz.Questions) != 3 {
		t.Fatalf("expected 3 fallback questions, got %d", len(quiz.Questions))
	}
	for _, q := range quiz.Questions {
		if !strings.HasPrefix(q.Text, "Placeholder") {
			t.Fatalf("expected fallback question, got %q", q.Text)
		}
	}
}

func TestGenerate_EnvelopeErrorUsesFallback(t *testing.T) {
	p := newFakeProvider(t, http.StatusOK, `{"error":{"message":"rate limited"}}`)
	g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())

	quiz, _, err := g.Generate(context.Background(), Direct(&memoryStore{}), GenerateRequest{
		Tags: []string{"Go"}, Difficulty: "JUNIOR", QuestionCount: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].CorrectAnswer != "A" {
		t.Fatalf("expected fallback quiz, got %+v", quiz.Questions)
	}
}

func TestGenerateQuestions_Sources(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		raw     bool
		source  QuestionSource
		count   int
	}{
		{"clean", http.StatusOK, questionsContent(2), false, SourceAI, 2},
		{"extra items kept", http.StatusOK, questionsContent(5), false, SourceAI, 5},
		{"all items malformed", http.StatusOK, `{"questions":["a","b"]}`, false, SourceFallback, 2},
		{"empty questions", http.StatusOK, `{"questions":[]}`, false, SourceFallback, 2},
		{"no choices", http.StatusOK, `{"choices":[]}`, true, SourceFallback, 2},
		{"server error", http.StatusInternalServerError, `oops`, true, SourceFallback, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := tt.content
			if !tt.raw {
				body = completionBody(t, tt.content)
			}
			p := newFakeProvider(t, tt.status, body)
			g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())

			qs, source := g.GenerateQuestions(context.Background(), GenerateRequest{
				Tags: []string{"Go"}, Difficulty: "JUNIOR", QuestionCount: 2,
			})
			if source != tt.source || len(qs) != tt.count {
				t.Fatalf("got %d questions from %s, want %d from %s", len(qs), source, tt.count, tt.source)
			}
		})
	}
}

func TestGenerate_InvalidRequestsNeverCallProvider(t *testing.T) {
	tests := []struct {
		name string
		req  GenerateRequest
		want error
	}{
		{"nil tags", GenerateRequest{QuestionCount: 3}, util.ErrEmptyTags},
		{"blank tags", GenerateRequest{Tags: []string{" ", ""}, QuestionCount: 3}, util.ErrEmptyTags},
		{"zero count", GenerateRequest{Tags: []string{"Go"}}, util.ErrInvalidQuestionCount},
		{"negative count", GenerateRequest{Tags: []string{"Go"}, QuestionCount: -1}, util.ErrInvalidQuestionCount},
		{"too many", GenerateRequest{Tags: []string{"Go"}, QuestionCount: 21}, util.ErrTooManyQuestions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider(t, http.StatusOK, completionBody(t, questionsContent(1)))
			g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())
			store := &memoryStore{}

			_, _, err := g.Generate(context.Background(), Direct(store), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !util.IsValidationError(err) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if p.Calls() != 0 {
				t.Fatalf("provider called %d times", p.Calls())
			}
			if len(store.questions) != 0 || len(store.quizzes) != 0 {
				t.Fatal("nothing should be persisted")
			}
		})
	}
}

func TestNormalize_DefaultsDifficulty(t *testing.T) {
	g := NewQuizGenerator(nil, testQuizConfig())
	req, err := g.Normalize(GenerateRequest{Tags: []string{"Go", "Go", " SQL "}, QuestionCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if req.Difficulty != "JUNIOR" {
		t.Errorf("difficulty = %q", req.Difficulty)
	}
	if len(req.Tags) != 2 || req.Tags[1] != "SQL" {
		t.Errorf("tags = %v", req.Tags)
	}
}

func TestGenerate_PersistsThroughRepository(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewQuizRepository(db)
	p := newFakeProvider(t, http.StatusOK, completionBody(t, questionsContent(3)))
	g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())

	quiz, _, err := g.Generate(context.Background(), InTransaction(repo), GenerateRequest{
		Tags: []string{"Go"}, Difficulty: "JUNIOR", QuestionCount: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := repo.FindByID(quiz.ID)
	if err != nil {
		t.Fatalf("find quiz: %v", err)
	}
	if len(stored.Questions) != 3 {
		t.Fatalf("expected 3 stored questions, got %d", len(stored.Questions))
	}
	for i, q := range stored.Questions {
		if q.ID != quiz.Questions[i].ID {
			t.Fatalf("question order changed at %d", i)
		}
	}
}

func TestGenerate_RunnerErrorIsReturned(t *testing.T) {
	p := newFakeProvider(t, http.StatusOK, completionBody(t, questionsContent(1)))
	g := NewQuizGenerator(NewAIService(p.aiConfig()), testQuizConfig())
	boom := errors.New("tx begin failed")

	quiz, source, err := g.Generate(context.Background(), func(func(QuizStore) error) error { return boom }, GenerateRequest{
		Tags: []string{"Go"}, QuestionCount: 1,
	})
	if !errors.Is(err, boom) || quiz != nil {
		t.Fatalf("quiz=%v err=%v", quiz, err)
	}
	if source != SourceAI {
		t.Errorf("source = %s", source)
	}
}
