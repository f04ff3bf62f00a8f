package service

import (
	"fmt"
	"strings"
)

const quizPromptTemplate = `You are an expert quiz author. Write a test of %d questions.

TOPICS: %s
DIFFICULTY: %s

FORMAT REQUIREMENTS:
- Every question has exactly 4 answer options (A, B, C, D)
- Give the correct answer as a single letter (A, B, C or D)
- Keep the explanation short and clear
- Use tags to categorise every question
- Question types: THEORY, CODE, OUTPUT, TASK

RETURN ONLY JSON in exactly this shape:
{
  "questions": [
    {
      "text": "question text",
      "type": "THEORY",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": "A",
      "explanation": "why this answer is correct",
      "tags": ["tag"],
      "difficulty": "%s"
    }
  ]
}`

// BuildQuizPrompt 纯函数，相同输入得到相同提示词
func BuildQuizPrompt(topics []string, difficulty string, count int) string {
	return fmt.Sprintf(quizPromptTemplate, count, strings.Join(topics, ", "), difficulty, difficulty)
}
