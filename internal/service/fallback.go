package service

import (
	"fmt"
	"quizgen_backend/internal/model"
)

var (
	fallbackOptions = []string{"Option A", "Option B", "Option C", "Option D"}
	fallbackTags    = []string{"General", "Practice"}
)

const fallbackCorrectAnswer = "A"

// FallbackGenerator 不依赖网络的占位题目
type FallbackGenerator struct{}

// Questions 每次调用返回新分配的切片，批次之间不共享底层数组
func (FallbackGenerator) Questions(count int) []model.Question {
	if count <= 0 {
		return []model.Question{}
	}

	questions := make([]model.Question, 0, count)
	for i := 1; i <= count; i++ {
		questions = append(questions, model.Question{
			Text:          fmt.Sprintf("Placeholder question %d: which option is marked as correct?", i),
			Type:          model.QuestionTheory,
			Options:       append([]string(nil), fallbackOptions...),
			CorrectAnswer: fallbackCorrectAnswer,
			Explanation:   fmt.Sprintf("Placeholder question %d was generated because quiz content was unavailable.", i),
			Tags:          append([]string(nil), fallbackTags...),
			Difficulty:    model.DefaultDifficulty,
		})
	}
	return questions
}
