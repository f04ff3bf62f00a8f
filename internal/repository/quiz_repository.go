package repository

import (
	"quizgen_backend/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

// Transaction 在同一事务内执行 fn，fn 返回错误时回滚
func (r *QuizRepository) Transaction(fn func(tx *QuizRepository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(NewQuizRepository(tx))
	})
}

// SaveQuestions 批量写入题目并回填 ID
func (r *QuizRepository) SaveQuestions(questions []model.Question) ([]model.Question, error) {
	if len(questions) == 0 {
		return questions, nil
	}
	if err := r.DB.Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// SaveQuiz 写入测验以及按顺序排列的题目关联，题目必须已有 ID
func (r *QuizRepository) SaveQuiz(quiz *model.Quiz) (*model.Quiz, error) {
	if err := r.DB.Omit("Items").Create(quiz).Error; err != nil {
		return nil, err
	}

	items := make([]model.QuizQuestion, 0, len(quiz.Questions))
	for i, q := range quiz.Questions {
		items = append(items, model.QuizQuestion{
			QuizID:     quiz.ID,
			QuestionID: q.ID,
			Position:   i,
			Question:   q,
		})
	}
	if len(items) > 0 {
		if err := r.DB.Omit("Question").Create(&items).Error; err != nil {
			return nil, err
		}
	}
	quiz.Items = items
	return quiz, nil
}

func (r *QuizRepository) preloaded() *gorm.DB {
	return r.DB.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Items.Question")
}

func (r *QuizRepository) FindByID(id uint) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := r.preloaded().First(&quiz, id).Error; err != nil {
		return nil, err
	}
	quiz.SyncQuestions()
	return &quiz, nil
}

func (r *QuizRepository) FindAll() ([]model.Quiz, error) {
	var quizzes []model.Quiz
	if err := r.preloaded().Order("created_at desc, id desc").Find(&quizzes).Error; err != nil {
		return nil, err
	}
	for i := range quizzes {
		quizzes[i].SyncQuestions()
	}
	return quizzes, nil
}

// Delete 删除测验及其题目关联，题目本身保留
func (r *QuizRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Quiz{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("quiz_id = ?", id).Delete(&model.QuizQuestion{}).Error
	})
}
