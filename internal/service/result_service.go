package service

import (
	"errors"
	"quizgen_backend/internal/model"
	"quizgen_backend/internal/repository"
	"quizgen_backend/internal/util"

	"gorm.io/gorm"
)

type ResultService struct {
	ResultRepo *repository.QuizResultRepository
}

func NewResultService(resultRepo *repository.QuizResultRepository) *ResultService {
	return &ResultService{ResultRepo: resultRepo}
}

// Get 只有结果所属用户与管理员可以查看
func (s *ResultService) Get(id uint, claims *util.Claims) (*model.QuizResult, error) {
	if claims == nil {
		return nil, util.ErrUnauthorized
	}

	res, err := s.ResultRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrResultNotFound
		}
		return nil, err
	}

	if claims.Role == model.RoleAdmin {
		return res, nil
	}
	if res.UserID == nil || *res.UserID != claims.UserID {
		return nil, util.ErrPermissionDenied
	}
	return res, nil
}

func (s *ResultService) ListByUser(userID uint) ([]model.QuizResult, error) {
	return s.ResultRepo.ListByUser(userID)
}
