package model

import (
	"strings"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionTheory QuestionType = "THEORY"
	QuestionCode   QuestionType = "CODE"
	QuestionOutput QuestionType = "OUTPUT"
	QuestionTask   QuestionType = "TASK"
)

const DefaultDifficulty = "JUNIOR"

// ParseQuestionType 不区分大小写，未知值一律视为 THEORY
func ParseQuestionType(s string) QuestionType {
	switch t := QuestionType(strings.ToUpper(s)); t {
	case QuestionTheory, QuestionCode, QuestionOutput, QuestionTask:
		return t
	default:
		return QuestionTheory
	}
}

// swagger:model Question
type Question struct {
	BaseModel
	Text          string                      `gorm:"type:text;not null" json:"text"`
	Type          QuestionType                `gorm:"size:20;default:'THEORY'" json:"type"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"size:16" json:"correctAnswer"`
	Explanation   string                      `gorm:"type:text" json:"explanation"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Difficulty    string                      `gorm:"size:50;index" json:"difficulty"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionLetter 返回第 i 个选项对应的字母标签 (0 -> A)
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// TagSet 去重并保持首次出现的顺序，忽略空白标签
func TagSet(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
