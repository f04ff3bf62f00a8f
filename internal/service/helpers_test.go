package service

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"quizgen_backend/internal/config"
	"quizgen_backend/pkg/database"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// fakeProvider 记录收到的请求并返回固定响应
type fakeProvider struct {
	srv    *httptest.Server
	status int
	body   string

	mu       sync.Mutex
	calls    int
	requests []ChatCompletionRequest
	headers  []http.Header
}

func newFakeProvider(t *testing.T, status int, body string) *fakeProvider {
	t.Helper()
	p := &fakeProvider{status: status, body: body}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req ChatCompletionRequest
		_ = json.Unmarshal(raw, &req)

		p.mu.Lock()
		p.calls++
		p.requests = append(p.requests, req)
		p.headers = append(p.headers, r.Header.Clone())
		p.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(p.status)
		io.WriteString(w, p.body)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakeProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvider) aiConfig() config.AIConfig {
	return config.AIConfig{
		BaseURL: p.srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	}
}

func completionBody(t *testing.T, content string) string {
	t.Helper()
	b, err := json.Marshal(map[string]interface{}{
		"choices": []interface{}{
			map[string]interface{}{
				"message": map[string]string{"role": "assistant", "content": content},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func questionsContent(n int) string {
	items := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, map[string]interface{}{
			"text":          "What does a goroutine do?",
			"type":          "THEORY",
			"options":       []string{"Runs concurrently", "Blocks", "Panics", "Exits"},
			"correctAnswer": "A",
			"explanation":   "Goroutines run concurrently.",
			"tags":          []string{"Go", "Concurrency"},
			"difficulty":    "JUNIOR",
		})
	}
	b, _ := json.Marshal(map[string]interface{}{"questions": items})
	return string(b)
}

func testQuizConfig() config.QuizConfig {
	return config.QuizConfig{TimeLimit: 30, DefaultDifficulty: "JUNIOR", MaxQuestionCount: 20}
}
