package service

import (
	"encoding/json"
	"quizgen_backend/internal/model"
	"testing"
)

func TestParseCompletion_ExtractsObjectFromProse(t *testing.T) {
	content := `here is your quiz: {"questions":[{"text":"Q1","type":"CODE","options":["a","b","c","d"],"correctAnswer":"B","explanation":"e","tags":["Go"],"difficulty":"MIDDLE"}]} thanks`
	body := []byte(completionBody(t, content))

	parsed, err := ParseCompletion(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(parsed.Questions))
	}
	q := parsed.Questions[0]
	if q.Text != "Q1" || q.Type != model.QuestionCode || q.CorrectAnswer != "B" || q.Difficulty != "MIDDLE" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if len(q.Options) != 4 || q.Options[1] != "b" {
		t.Fatalf("unexpected options: %v", q.Options)
	}
}

func TestParseCompletion_UnknownTypeBecomesTheory(t *testing.T) {
	content := `{"questions":[{"text":"Describe channels","type":"ESSAY","correctAnswer":"A"}]}`
	parsed, err := ParseCompletion([]byte(completionBody(t, content)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := parsed.Questions[0].Type; got != model.QuestionTheory {
		t.Fatalf("expected THEORY, got %s", got)
	}
}

func TestParseCompletion_Failures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason FailureReason
	}{
		{"not json", `<html>bad gateway</html>`, FailureMalformedEnvelope},
		{"error envelope", `{"error":{"message":"rate limited"}}`, FailureProviderError},
		{"string error", `{"error":"quota exceeded"}`, FailureProviderError},
		{"no choices", `{"choices":[]}`, FailureNoChoices},
		{"content not json", completionBody(t, "sorry, I cannot help"), FailureMalformedContent},
		{"questions missing", completionBody(t, `{"items":[]}`), FailureMalformedContent},
		{"questions not array", completionBody(t, `{"questions":{"text":"x"}}`), FailureMalformedContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCompletion([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := ReasonOf(err); got != tt.reason {
				t.Fatalf("expected reason %s, got %s (%v)", tt.reason, got, err)
			}
		})
	}
}

func TestParseCompletion_SkipsNonObjectItems(t *testing.T) {
	content := `{"questions":["just text", 42, {"text":"kept"}, null]}`
	parsed, err := ParseCompletion([]byte(completionBody(t, content)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Questions) != 1 || parsed.Questions[0].Text != "kept" {
		t.Fatalf("expected only the object item, got %+v", parsed.Questions)
	}
	if len(parsed.Skipped) != 3 {
		t.Fatalf("expected 3 skipped items, got %d", len(parsed.Skipped))
	}
	if parsed.Skipped[0].Index != 0 || parsed.Skipped[2].Index != 3 {
		t.Fatalf("unexpected skip indexes: %+v", parsed.Skipped)
	}
}

func TestCoerceQuestion_Defaults(t *testing.T) {
	q, err := CoerceQuestion(json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "" || q.CorrectAnswer != "" || q.Explanation != "" {
		t.Fatalf("expected empty text fields, got %+v", q)
	}
	if q.Type != model.QuestionTheory {
		t.Fatalf("expected THEORY, got %s", q.Type)
	}
	if q.Difficulty != model.DefaultDifficulty {
		t.Fatalf("expected default difficulty, got %q", q.Difficulty)
	}
	if q.Options == nil || len(q.Options) != 0 || q.Tags == nil || len(q.Tags) != 0 {
		t.Fatalf("expected empty non-nil lists, got %v %v", q.Options, q.Tags)
	}
}

func TestCoerceQuestion_ScalarCoercion(t *testing.T) {
	raw := json.RawMessage(`{"text":12,"type":"code","options":[1,true,"x",{"a":1}],"correctAnswer":3,"tags":"Go","difficulty":null}`)
	q, err := CoerceQuestion(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Text != "12" {
		t.Errorf("text: got %q", q.Text)
	}
	if q.Type != model.QuestionCode {
		t.Errorf("type: got %s", q.Type)
	}
	want := []string{"1", "true", "x", ""}
	if len(q.Options) != len(want) {
		t.Fatalf("options: got %v", q.Options)
	}
	for i := range want {
		if q.Options[i] != want[i] {
			t.Errorf("option %d: got %q want %q", i, q.Options[i], want[i])
		}
	}
	if q.CorrectAnswer != "3" {
		t.Errorf("correctAnswer: got %q", q.CorrectAnswer)
	}
	if len(q.Tags) != 0 {
		t.Errorf("tags: expected empty for non-array, got %v", q.Tags)
	}
	if q.Difficulty != model.DefaultDifficulty {
		t.Errorf("difficulty: got %q", q.Difficulty)
	}
}

func TestCoerceQuestion_DedupsTags(t *testing.T) {
	q, err := CoerceQuestion(json.RawMessage(`{"tags":["Go","Go"," ","Channels"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Tags) != 2 || q.Tags[0] != "Go" || q.Tags[1] != "Channels" {
		t.Fatalf("unexpected tags: %v", q.Tags)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bare object", `{"questions":[]}`, `{"questions":[]}`},
		{"code fence", "```json\n{\"questions\":[]}\n```", `{"questions":[]}`},
		{"prose braces first", `Use {curly} braces: {"questions":[{"text":"a }"}]}`, `{"questions":[{"text":"a }"}]}`},
		{"prefers questions object", `{"note":"x"} {"questions":[]}`, `{"questions":[]}`},
		{"first parseable object", `{"note":"x"} and {"other":1}`, `{"note":"x"}`},
		{"unparseable falls back to first and last", `start { "a": 1, } end`, `{ "a": 1, }`},
		{"no braces", `no json here`, `no json here`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.content); got != tt.want {
				t.Fatalf("ExtractJSON(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}
