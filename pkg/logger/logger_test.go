package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"quizgen_backend/internal/config"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		mode, level string
		want        zapcore.Level
	}{
		{"debug", "", zap.DebugLevel},
		{"release", "", zap.InfoLevel},
		{"debug", "warn", zap.WarnLevel},
		{"release", "bogus", zap.InfoLevel},
	}
	for _, tt := range tests {
		cfg := &config.Config{Server: config.ServerConfig{Mode: tt.mode}, Log: config.LogConfig{Level: tt.level}}
		if got := parseLevel(cfg); got != tt.want {
			t.Errorf("parseLevel(%q, %q) = %v, want %v", tt.mode, tt.level, got, tt.want)
		}
	}
}

func TestInitLogger_WritesFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	file := filepath.Join(t.TempDir(), "app.log")
	InitLogger(&config.Config{
		Server: config.ServerConfig{Mode: "release"},
		Log:    config.LogConfig{File: file, MaxSizeMB: 1},
	})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinLogger())
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	_ = Log.Sync()

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"path":"/missing"`) || !strings.Contains(out, `"status":404`) || !strings.Contains(out, `"service":"quizgen"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}
