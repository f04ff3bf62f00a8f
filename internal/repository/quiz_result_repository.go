package repository

import (
	"database/sql"
	"quizgen_backend/internal/model"

	"gorm.io/gorm"
)

type QuizResultRepository struct {
	DB *gorm.DB
}

func NewQuizResultRepository(db *gorm.DB) *QuizResultRepository {
	return &QuizResultRepository{DB: db}
}

// Create 同时写入逐题作答记录
func (r *QuizResultRepository) Create(result *model.QuizResult) error {
	return r.DB.Create(result).Error
}

func (r *QuizResultRepository) FindByID(id uint) (*model.QuizResult, error) {
	var res model.QuizResult
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *QuizResultRepository) ListByUser(userID uint) ([]model.QuizResult, error) {
	var rs []model.QuizResult
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("user_id = ?", userID).
		Order("completed_at desc, id desc").
		Find(&rs).Error
	return rs, err
}

func (r *QuizResultRepository) Count() (int64, error) {
	var total int64
	err := r.DB.Model(&model.QuizResult{}).Count(&total).Error
	return total, err
}

// AverageScore 没有结果时返回 0
func (r *QuizResultRepository) AverageScore() (float64, error) {
	var avg sql.NullFloat64
	if err := r.DB.Model(&model.QuizResult{}).Select("AVG(score)").Row().Scan(&avg); err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (r *QuizResultRepository) CountByMinScore(minScore int) (int64, error) {
	var total int64
	err := r.DB.Model(&model.QuizResult{}).Where("score >= ?", minScore).Count(&total).Error
	return total, err
}

type UserActivity struct {
	UserID  uint  `json:"userId"`
	Results int64 `json:"results"`
}

func (r *QuizResultRepository) MostActiveUsers(limit int) ([]UserActivity, error) {
	var rows []UserActivity
	err := r.DB.Model(&model.QuizResult{}).
		Select("user_id, COUNT(*) as results").
		Where("user_id IS NOT NULL").
		Group("user_id").
		Order("results desc, user_id asc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
