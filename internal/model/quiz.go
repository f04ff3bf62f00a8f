package model

import (
	"sort"

	"gorm.io/datatypes"
)

// swagger:model Quiz
type Quiz struct {
	BaseModel
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Items       []QuizQuestion              `gorm:"foreignKey:QuizID" json:"-"`
	Questions   []Question                  `gorm:"-" json:"questions"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Difficulty  string                      `gorm:"size:50" json:"difficulty"`
	TimeLimit   int                         `gorm:"default:30" json:"timeLimit"` // Minutes
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion 记录题目在测验中的位置
type QuizQuestion struct {
	ID         uint     `gorm:"primaryKey;autoIncrement"`
	QuizID     uint     `gorm:"index;not null"`
	QuestionID uint     `gorm:"index;not null"`
	Position   int      `gorm:"not null"`
	Question   Question `gorm:"foreignKey:QuestionID"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// SyncQuestions 根据预加载的 Items 按位置重建 Questions
func (q *Quiz) SyncQuestions() {
	items := make([]QuizQuestion, len(q.Items))
	copy(items, q.Items)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })

	q.Questions = make([]Question, 0, len(items))
	for _, it := range items {
		// 题目被删除后预加载结果为空
		if it.Question.ID == 0 {
			continue
		}
		q.Questions = append(q.Questions, it.Question)
	}
}
