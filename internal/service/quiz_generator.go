package service

import (
	"context"
	"errors"
	"fmt"
	"quizgen_backend/internal/config"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/util"
	"quizgen_backend/pkg/logger"
	"quizgen_backend/pkg/monitoring"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type GenerateRequest struct {
	Tags          []string `json:"tags" validate:"required,min=1"`
	Difficulty    string   `json:"difficulty"`
	QuestionCount int      `json:"questionCount" validate:"gt=0"`
}

type QuestionSource string

const (
	SourceAI       QuestionSource = "ai"
	SourceFallback QuestionSource = "fallback"
)

// QuizStore 题目与测验的持久化协作者
type QuizStore interface {
	SaveQuestions(questions []model.Question) ([]model.Question, error)
	SaveQuiz(quiz *model.Quiz) (*model.Quiz, error)
}

// StoreRunner 决定两次写入的原子性，fn 返回错误时应回滚
type StoreRunner func(fn func(store QuizStore) error) error

// Direct 不开事务，直接写 store
func Direct(store QuizStore) StoreRunner {
	return func(fn func(QuizStore) error) error { return fn(store) }
}

type QuizGenerator struct {
	AI       Completer
	Fallback FallbackGenerator
	Config   config.QuizConfig
	validate *validator.Validate
}

func NewQuizGenerator(ai Completer, cfg config.QuizConfig) *QuizGenerator {
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = 30
	}
	if cfg.DefaultDifficulty == "" {
		cfg.DefaultDifficulty = model.DefaultDifficulty
	}
	return &QuizGenerator{
		AI:       ai,
		Config:   cfg,
		validate: validator.New(),
	}
}

// Normalize 校验请求并补全默认值，在任何网络调用之前执行
func (g *QuizGenerator) Normalize(req GenerateRequest) (GenerateRequest, error) {
	req.Tags = model.TagSet(req.Tags)
	req.Difficulty = strings.TrimSpace(req.Difficulty)

	if err := g.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Tags":
				return req, util.ErrEmptyTags
			case "QuestionCount":
				return req, util.ErrInvalidQuestionCount
			}
		}
		return req, fmt.Errorf("%w: %v", util.ErrInvalidRequest, err)
	}

	if g.Config.MaxQuestionCount > 0 && req.QuestionCount > g.Config.MaxQuestionCount {
		return req, fmt.Errorf("%w: %d > %d", util.ErrTooManyQuestions, req.QuestionCount, g.Config.MaxQuestionCount)
	}

	if req.Difficulty == "" {
		req.Difficulty = g.Config.DefaultDifficulty
	}
	return req, nil
}

// GenerateQuestions 从服务端获取题目，任何失败或零可用题目都改用占位题目，从不返回错误
func (g *QuizGenerator) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]model.Question, QuestionSource) {
	logger.Log.Info("Generating questions",
		zap.Strings("tags", req.Tags),
		zap.String("difficulty", req.Difficulty),
		zap.Int("count", req.QuestionCount),
	)

	questions, err := g.fromProvider(ctx, req)
	if err != nil {
		logFallback(err, req.QuestionCount)
		monitoring.QuizGenerations.WithLabelValues(string(SourceFallback)).Inc()
		return g.Fallback.Questions(req.QuestionCount), SourceFallback
	}

	logger.Log.Info("Successfully parsed questions", zap.Int("count", len(questions)))
	monitoring.QuizGenerations.WithLabelValues(string(SourceAI)).Inc()
	return questions, SourceAI
}

func (g *QuizGenerator) fromProvider(ctx context.Context, req GenerateRequest) ([]model.Question, error) {
	prompt := BuildQuizPrompt(req.Tags, req.Difficulty, req.QuestionCount)

	body, err := g.AI.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseCompletion(body)
	if err != nil {
		return nil, err
	}

	for _, s := range parsed.Skipped {
		logger.Log.Warn("Skipping malformed question", zap.Int("index", s.Index), zap.String("reason", s.Reason))
	}
	monitoring.SkippedQuestions.Add(float64(len(parsed.Skipped)))

	if len(parsed.Questions) == 0 {
		return nil, newGenerationError(FailureNoQuestions, "0 usable questions, %d skipped", len(parsed.Skipped))
	}
	return parsed.Questions, nil
}

func logFallback(err error, count int) {
	reason := ReasonOf(err)
	fields := []zap.Field{zap.String("reason", string(reason)), zap.Int("count", count), zap.Error(err)}

	switch reason {
	case FailureNetwork, FailureTimeout, FailureHTTPStatus:
		logger.Log.Warn("Provider unavailable, using fallback questions", fields...)
	case FailureProviderError:
		logger.Log.Warn("Provider returned an error, using fallback questions", fields...)
	case FailureMalformedEnvelope, FailureNoChoices, FailureMalformedContent:
		logger.Log.Warn("Malformed provider payload, using fallback questions", fields...)
	case FailureNoQuestions:
		logger.Log.Warn("No usable questions after validation, using fallback questions", fields...)
	default:
		logger.Log.Error("Unclassified generation failure, using fallback questions", fields...)
	}
	monitoring.ProviderFailures.WithLabelValues(string(reason)).Inc()
}

// Persist 先批量保存题目，再保存引用这些题目的测验
func (g *QuizGenerator) Persist(store QuizStore, req GenerateRequest, questions []model.Question) (*model.Quiz, error) {
	saved, err := store.SaveQuestions(questions)
	if err != nil {
		return nil, fmt.Errorf("save questions: %w", err)
	}

	joined := strings.Join(req.Tags, ", ")
	quiz := &model.Quiz{
		Title:       "Quiz: " + joined,
		Description: fmt.Sprintf("Automatically generated %s quiz on %s", req.Difficulty, joined),
		Questions:   saved,
		Tags:        model.TagSet(req.Tags),
		Difficulty:  req.Difficulty,
		TimeLimit:   g.Config.TimeLimit,
	}

	quiz, err = store.SaveQuiz(quiz)
	if err != nil {
		return nil, fmt.Errorf("save quiz: %w", err)
	}

	logger.Log.Info("Successfully created quiz", zap.Uint("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// Generate 校验、生成并通过 run 持久化。服务端调用在 run 之外完成，
// 事务只覆盖题目与测验的写入
func (g *QuizGenerator) Generate(ctx context.Context, run StoreRunner, req GenerateRequest) (*model.Quiz, QuestionSource, error) {
	req, err := g.Normalize(req)
	if err != nil {
		logger.Log.Warn("Rejected generate request", zap.Error(err))
		return nil, "", err
	}

	questions, source := g.GenerateQuestions(ctx, req)

	var quiz *model.Quiz
	err = run(func(store QuizStore) error {
		var perr error
		quiz, perr = g.Persist(store, req, questions)
		return perr
	})
	if err != nil {
		return nil, source, err
	}
	return quiz, source, nil
}
