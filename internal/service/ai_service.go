package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"quizgen_backend/internal/config"
	"quizgen_backend/pkg/logger"
	"quizgen_backend/pkg/monitoring"
	"quizgen_backend/pkg/tracing"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	defaultMaxTokens   = 4000
	defaultTemperature = 0.7
	defaultTopP        = 0.9
	defaultAITimeout   = 60 * time.Second
)

// FailureReason 生成链路中导致回退的原因
type FailureReason string

const (
	FailureNetwork           FailureReason = "network"
	FailureTimeout           FailureReason = "timeout"
	FailureHTTPStatus        FailureReason = "http_status"
	FailureMalformedEnvelope FailureReason = "malformed_envelope"
	FailureProviderError     FailureReason = "provider_error"
	FailureNoChoices         FailureReason = "no_choices"
	FailureMalformedContent  FailureReason = "malformed_content"
	FailureNoQuestions       FailureReason = "no_questions"
)

// GenerationError 携带失败原因的错误
type GenerationError struct {
	Reason FailureReason
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func newGenerationError(reason FailureReason, format string, args ...interface{}) *GenerationError {
	return &GenerationError{Reason: reason, Err: fmt.Errorf(format, args...)}
}

// ReasonOf 非 GenerationError 的错误归类为 malformed_content
func ReasonOf(err error) FailureReason {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Reason
	}
	return FailureMalformedContent
}

// Completer 发送提示词并返回服务端原始响应体
type Completer interface {
	Complete(ctx context.Context, prompt string) ([]byte, error)
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	TopP        float64         `json:"top_p"`
}

type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	s := &AIService{}
	s.UpdateConfig(cfg)
	return s
}

// UpdateConfig 配置热更新时替换模型、密钥与采样参数
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.TopP <= 0 {
		cfg.TopP = defaultTopP
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAITimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: cfg.Timeout}
}

func (s *AIService) snapshot() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

// Complete 2xx 时返回原始响应体，其余情况返回 *GenerationError，不重试
func (s *AIService) Complete(ctx context.Context, prompt string) ([]byte, error) {
	cfg, client := s.snapshot()

	ctx, span := tracing.Tracer.Start(ctx, "ai.complete")
	defer span.End()
	span.SetAttributes(attribute.String("ai.model", cfg.Model))

	body, err := s.do(ctx, cfg, client, prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(ReasonOf(err)))
		return nil, err
	}
	return body, nil
}

func (s *AIService) do(ctx context.Context, cfg config.AIConfig, client *http.Client, prompt string) ([]byte, error) {
	reqBody := ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    []AIChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, newGenerationError(FailureNetwork, "encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, newGenerationError(FailureNetwork, "build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	if cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", cfg.Referer)
	}
	if cfg.Title != "" {
		req.Header.Set("X-Title", cfg.Title)
	}

	logger.Log.Info("Sending completion request", zap.String("model", cfg.Model), zap.Int("prompt_len", len(prompt)))

	start := time.Now()
	resp, err := client.Do(req)
	monitoring.ProviderLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		reason := classifyTransportError(err)
		logger.Log.Warn("Completion request failed", zap.String("reason", string(reason)), zap.Error(err))
		return nil, &GenerationError{Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		reason := classifyTransportError(err)
		logger.Log.Warn("Reading completion response failed", zap.String("reason", string(reason)), zap.Error(err))
		return nil, &GenerationError{Reason: reason, Err: err}
	}

	logger.Log.Info("Completion response received", zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg, ok := envelopeErrorMessage(body); ok {
			return nil, newGenerationError(FailureProviderError, "status %d: %s", resp.StatusCode, msg)
		}
		return nil, newGenerationError(FailureHTTPStatus, "status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func classifyTransportError(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureNetwork
}

type ConnectionStatus struct {
	OK       bool          `json:"ok"`
	Model    string        `json:"model"`
	BaseURL  string        `json:"baseUrl"`
	APIKey   string        `json:"apiKey"` // SET / MISSING
	Reason   FailureReason `json:"reason,omitempty"`
	Error    string        `json:"error,omitempty"`
	Preview  string        `json:"preview,omitempty"`
	Duration string        `json:"duration"`
}

// CheckConnection 发送一个极短的提示词检查服务是否可用
func (s *AIService) CheckConnection(ctx context.Context) ConnectionStatus {
	cfg, _ := s.snapshot()
	status := ConnectionStatus{
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
		APIKey:  "MISSING",
	}
	if cfg.APIKey != "" {
		status.APIKey = "SET"
	}

	start := time.Now()
	body, err := s.Complete(ctx, "Reply with just OK")
	status.Duration = time.Since(start).String()
	if err != nil {
		status.Reason = ReasonOf(err)
		status.Error = err.Error()
		logger.Log.Warn("Provider connection check failed", zap.Error(err))
		return status
	}

	status.OK = true
	status.Preview = truncate(string(body), 100)
	logger.Log.Info("Provider connection check succeeded", zap.String("model", cfg.Model))
	return status
}

// truncate 按字节截断，回退到 rune 边界
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
