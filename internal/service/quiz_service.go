package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/util"
	"quizgen_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuizService struct {
	QuizRepo   *repository.QuizRepository
	ResultRepo *repository.QuizResultRepository
	Generator  *QuizGenerator
	Evaluator  Evaluator
	Cache      QuizCache
	Storage    *StorageService
	Events     EventPublisher
}

func NewQuizService(
	quizRepo *repository.QuizRepository,
	resultRepo *repository.QuizResultRepository,
	generator *QuizGenerator,
	storage *StorageService,
	cache QuizCache,
	events EventPublisher,
) *QuizService {
	if cache == nil {
		cache = noQuizCache{}
	}
	if events == nil {
		events = NopEventPublisher{}
	}
	return &QuizService{
		QuizRepo:   quizRepo,
		ResultRepo: resultRepo,
		Generator:  generator,
		Storage:    storage,
		Cache:      cache,
		Events:     events,
	}
}

// SubmitRequest 针对已保存测验的作答
type SubmitRequest struct {
	Answers       AnswerSheet `json:"answers"`
	AttemptNumber int         `json:"attemptNumber"`
}

// AdHocSubmission 客户端持有测验数据时的作答
type AdHocSubmission struct {
	Answers  AnswerSheet `json:"answers"`
	QuizData QuizData    `json:"quizData"`
}

type ExportResult struct {
	QuizID uint   `json:"quizId"`
	Key    string `json:"key"`
	URL    string `json:"url"`
	Size   int    `json:"size"`
}

// InTransaction 题目与测验在同一事务中写入
func InTransaction(repo *repository.QuizRepository) StoreRunner {
	return func(fn func(QuizStore) error) error {
		return repo.Transaction(func(tx *repository.QuizRepository) error { return fn(tx) })
	}
}

func (s *QuizService) GenerateQuiz(ctx context.Context, req GenerateRequest) (*model.Quiz, error) {
	quiz, source, err := s.Generator.Generate(ctx, InTransaction(s.QuizRepo), req)
	if err != nil {
		return nil, err
	}

	publishEvent(s.Events, EventQuizGenerated, map[string]interface{}{
		"quizId":     quiz.ID,
		"source":     source,
		"tags":       quiz.Tags,
		"difficulty": quiz.Difficulty,
		"questions":  len(quiz.Questions),
	})
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id uint) (*model.Quiz, error) {
	if quiz, ok := s.Cache.Get(ctx, id); ok {
		return quiz, nil
	}

	quiz, err := s.loadQuiz(id)
	if err != nil {
		return nil, err
	}
	s.Cache.Set(ctx, quiz)
	return quiz, nil
}

func (s *QuizService) loadQuiz(id uint) (*model.Quiz, error) {
	quiz, err := s.QuizRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return quiz, err
}

func (s *QuizService) ListQuizzes() ([]model.Quiz, error) {
	return s.QuizRepo.FindAll()
}

func (s *QuizService) DeleteQuiz(ctx context.Context, id uint) error {
	if err := s.QuizRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrQuizNotFound
		}
		return err
	}

	s.Cache.Delete(ctx, id)
	logger.Log.Info("Quiz deleted", zap.Uint("quiz_id", id))
	publishEvent(s.Events, EventQuizDeleted, map[string]interface{}{"quizId": id})
	return nil
}

// ExportQuiz 将测验写成 JSON 文档上传到存储
func (s *QuizService) ExportQuiz(ctx context.Context, id uint) (*ExportResult, error) {
	quiz, err := s.GetQuiz(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode quiz: %w", err)
	}

	key := fmt.Sprintf("quizzes/quiz-%d-%s.json", quiz.ID, uuid.NewString())
	url, err := s.Storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), util.MimeJSON)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Quiz exported", zap.Uint("quiz_id", quiz.ID), zap.String("key", key))
	return &ExportResult{QuizID: quiz.ID, Key: key, URL: url, Size: len(data)}, nil
}

// SubmitQuiz 对已保存的测验评分并保存结果，答案以数据库为准不走缓存
func (s *QuizService) SubmitQuiz(ctx context.Context, quizID uint, userID *uint, req SubmitRequest) (*model.QuizResult, error) {
	quiz, err := s.loadQuiz(quizID)
	if err != nil {
		return nil, err
	}

	result := s.Evaluator.EvaluateQuiz(quiz, req.Answers)
	result.UserID = userID
	if req.AttemptNumber > 0 {
		result.AttemptNumber = req.AttemptNumber
	}

	if err := s.ResultRepo.Create(result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	publishEvent(s.Events, EventResultRecorded, map[string]interface{}{
		"resultId": result.ID,
		"quizId":   quizID,
		"userId":   userID,
		"score":    result.Score,
		"total":    result.TotalQuestions,
	})
	return result, nil
}

// EvaluateAdHoc 结果不保存
func (s *QuizService) EvaluateAdHoc(sub AdHocSubmission) *model.QuizResult {
	return s.Evaluator.EvaluateRaw(sub.QuizData, sub.Answers)
}
