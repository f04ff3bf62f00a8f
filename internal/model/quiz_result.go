package model

import (
	"time"

	"gorm.io/datatypes"
)

// QuizResult 一次作答的评分结果，创建后不再修改
type QuizResult struct {
	BaseModel
	QuizID         *uint          `gorm:"index" json:"quizId,omitempty"`
	UserID         *uint          `gorm:"index" json:"userId,omitempty"`
	Score          int            `gorm:"not null" json:"score"`
	TotalQuestions int            `gorm:"not null" json:"totalQuestions"`
	AttemptNumber  int            `gorm:"default:1" json:"attemptNumber"`
	CompletedAt    time.Time      `gorm:"not null" json:"completedAt"`
	Answers        []ResultAnswer `gorm:"foreignKey:ResultID" json:"userAnswers"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}

// ResultAnswer 题目快照与用户提交的答案
type ResultAnswer struct {
	ID            uint                        `gorm:"primaryKey;autoIncrement" json:"-"`
	ResultID      uint                        `gorm:"index;not null" json:"-"`
	Position      int                         `gorm:"not null" json:"position"` // 从 1 开始，与答案键一致
	QuestionID    *uint                       `gorm:"index" json:"questionId,omitempty"`
	QuestionText  string                      `gorm:"type:text" json:"questionText"`
	Options       datatypes.JSONSlice[string] `json:"options,omitempty"`
	CorrectAnswer *string                     `gorm:"size:16" json:"correctAnswer"`
	Explanation   string                      `gorm:"type:text" json:"explanation,omitempty"`
	Answer        *string                     `gorm:"size:64" json:"answer"` // nil 表示未作答
	Correct       bool                        `json:"correct"`
}

func (ResultAnswer) TableName() string {
	return "result_answers"
}
