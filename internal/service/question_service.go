package service

import (
	"context"
	"errors"
	"fmt"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/util"
	"quizgen_backend/pkg/logger"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionInput 手工录入题目的请求体
type QuestionInput struct {
	Text          string   `json:"text" validate:"required"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
	Tags          []string `json:"tags"`
	Difficulty    string   `json:"difficulty"`
}

type QuestionService struct {
	QuestionRepo *repository.QuestionRepository
	// Cache 与 QuizService 共用，题目变更后清掉引用它的测验
	Cache    QuizCache
	validate *validator.Validate
}

func NewQuestionService(questionRepo *repository.QuestionRepository, cache QuizCache) *QuestionService {
	if cache == nil {
		cache = noQuizCache{}
	}
	return &QuestionService{QuestionRepo: questionRepo, Cache: cache, validate: validator.New()}
}

func (s *QuestionService) toModel(in QuestionInput) (model.Question, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.CorrectAnswer = strings.TrimSpace(in.CorrectAnswer)
	if err := s.validate.Struct(in); err != nil {
		return model.Question{}, fmt.Errorf("%w: %v", util.ErrInvalidRequest, err)
	}

	difficulty := strings.TrimSpace(in.Difficulty)
	if difficulty == "" {
		difficulty = model.DefaultDifficulty
	}
	options := in.Options
	if options == nil {
		options = []string{}
	}
	return model.Question{
		Text:          in.Text,
		Type:          model.ParseQuestionType(in.Type),
		Options:       options,
		CorrectAnswer: in.CorrectAnswer,
		Explanation:   in.Explanation,
		Tags:          model.TagSet(in.Tags),
		Difficulty:    difficulty,
	}, nil
}

// List tag 与 difficulty 同时给出时取交集
func (s *QuestionService) List(tag, difficulty string) ([]model.Question, error) {
	tag = strings.TrimSpace(tag)
	difficulty = strings.TrimSpace(difficulty)

	switch {
	case tag == "" && difficulty == "":
		return s.QuestionRepo.FindAll()
	case difficulty == "":
		return s.QuestionRepo.FindByTag(tag)
	case tag == "":
		return s.QuestionRepo.FindByDifficulty(difficulty)
	}

	byTag, err := s.QuestionRepo.FindByTag(tag)
	if err != nil {
		return nil, err
	}
	out := make([]model.Question, 0, len(byTag))
	for _, q := range byTag {
		if strings.EqualFold(q.Difficulty, difficulty) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *QuestionService) Get(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	return q, err
}

func (s *QuestionService) Create(in QuestionInput) (*model.Question, error) {
	q, err := s.toModel(in)
	if err != nil {
		return nil, err
	}
	if err := s.QuestionRepo.Create(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateBatch 任一题目不合法时整批拒绝
func (s *QuestionService) CreateBatch(inputs []QuestionInput) ([]model.Question, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: empty batch", util.ErrInvalidRequest)
	}

	questions := make([]model.Question, 0, len(inputs))
	for i, in := range inputs {
		q, err := s.toModel(in)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
	}

	if err := s.QuestionRepo.DB.Transaction(func(tx *gorm.DB) error {
		return repository.NewQuestionRepository(tx).CreateBatch(questions)
	}); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *QuestionService) Update(ctx context.Context, id uint, in QuestionInput) (*model.Question, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	q, err := s.toModel(in)
	if err != nil {
		return nil, err
	}
	q.BaseModel = existing.BaseModel

	if err := s.QuestionRepo.Update(&q); err != nil {
		return nil, err
	}
	s.invalidateQuizzes(ctx, id)
	return &q, nil
}

func (s *QuestionService) Delete(ctx context.Context, id uint) error {
	err := s.QuestionRepo.Delete(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuestionNotFound
	}
	if err != nil {
		return err
	}
	s.invalidateQuizzes(ctx, id)
	return nil
}

// invalidateQuizzes 缓存中的测验带有题目副本和答案
func (s *QuestionService) invalidateQuizzes(ctx context.Context, questionID uint) {
	ids, err := s.QuestionRepo.QuizIDs(questionID)
	if err != nil {
		logger.Log.Warn("Failed to look up quizzes for question", zap.Uint("question_id", questionID), zap.Error(err))
		return
	}
	for _, id := range ids {
		s.Cache.Delete(ctx, id)
	}
}

func (s *QuestionService) Tags() ([]string, error) {
	return s.QuestionRepo.DistinctTags()
}
