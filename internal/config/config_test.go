package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	exports := filepath.Join(dir, "exports")
	body = strings.ReplaceAll(body, "$EXPORTS", filepath.ToSlash(exports))
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
storage:
  local_path: $EXPORTS
ai:
  model: test-model
`)

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.Mode != "debug" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.AI.Model != "test-model" || cfg.AI.Timeout != 60*time.Second || cfg.AI.MaxTokens != 4000 {
		t.Errorf("ai = %+v", cfg.AI)
	}
	if cfg.Quiz.TimeLimit != 30 || cfg.Quiz.DefaultDifficulty != "JUNIOR" || cfg.Quiz.MaxQuestionCount != 50 {
		t.Errorf("quiz = %+v", cfg.Quiz)
	}
	if cfg.Redis.TTL != 10*time.Minute || cfg.Events.Exchange != "quiz.events" {
		t.Errorf("redis/events = %+v/%+v", cfg.Redis, cfg.Events)
	}
	if _, err := os.Stat(cfg.Storage.LocalPath); err != nil {
		t.Errorf("local storage path not created: %v", err)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, `
storage:
  local_path: $EXPORTS
ai:
  model: from-file
`)
	t.Setenv("AI_MODEL", "from-env")
	t.Setenv("AI_API_KEY", "sk-test")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AI.Model != "from-env" || cfg.AI.APIKey != "sk-test" {
		t.Errorf("ai = %+v", cfg.AI)
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"short secret in release", "server:\n  mode: release\njwt:\n  secret: short\nstorage:\n  local_path: $EXPORTS\n", "JWT secret is too short"},
		{"non-positive max count", "quiz:\n  max_question_count: 0\nstorage:\n  local_path: $EXPORTS\n", "max_question_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}

	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
