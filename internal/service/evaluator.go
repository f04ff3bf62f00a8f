package service

import (
	"bytes"
	"encoding/json"
	"quizgen_backend/internal/model"
	"quizgen_backend/pkg/logger"
	"quizgen_backend/pkg/monitoring"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	EvaluationAdHoc  = "adhoc"
	EvaluationStored = "stored"
)

// EvaluationQuestion 评分所需的题目数据，correctAnswer 为 nil 时该题不计分
type EvaluationQuestion struct {
	ID            *uint    `json:"id,omitempty"`
	Text          string   `json:"text"`
	CorrectAnswer *string  `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
	Options       []string `json:"options,omitempty"`
}

// QuizData 客户端持有的测验数据，questions 不是数组时视为空
type QuizData struct {
	Questions []json.RawMessage `json:"questions"`
}

func (d *QuizData) UnmarshalJSON(b []byte) error {
	var raw struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		d.Questions = nil
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw.Questions, &items); err != nil {
		d.Questions = nil
		return nil
	}
	d.Questions = items
	return nil
}

// AnswerSheet 以 1 开始的位置为键，非字符串值取其字面量，null 视为未作答
type AnswerSheet map[string]string

func (s *AnswerSheet) UnmarshalJSON(b []byte) error {
	out := AnswerSheet{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err == nil {
		for k, v := range raw {
			if isAbsent(v) {
				continue
			}
			out[k] = asText(v, "")
		}
	}
	*s = out
	return nil
}

// PositionKey 第 i 题 (从 0 开始) 的答案键
func PositionKey(i int) string {
	return strconv.Itoa(i + 1)
}

func decodeEvaluationQuestion(raw json.RawMessage) (EvaluationQuestion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return EvaluationQuestion{}, errNotObject
	}

	q := EvaluationQuestion{
		Text:        asText(fields["text"], ""),
		Explanation: asText(fields["explanation"], ""),
		Options:     asTextList(fields["options"]),
	}
	if !isAbsent(fields["correctAnswer"]) {
		ca := asText(fields["correctAnswer"], "")
		q.CorrectAnswer = &ca
	}
	if id, err := strconv.ParseUint(string(bytes.Trim(bytes.TrimSpace(fields["id"]), `"`)), 10, 64); err == nil && id > 0 {
		v := uint(id)
		q.ID = &v
	}
	return q, nil
}

type Evaluator struct{}

// EvaluateRaw 对客户端提交的测验数据评分，单题数据异常只跳过计分，不返回错误
func (e Evaluator) EvaluateRaw(data QuizData, answers AnswerSheet) *model.QuizResult {
	questions := make([]*EvaluationQuestion, len(data.Questions))
	for i, raw := range data.Questions {
		q, err := decodeEvaluationQuestion(raw)
		if err != nil {
			logger.Log.Warn("Skipping malformed quiz item during evaluation", zap.Int("index", i), zap.Error(err))
			continue
		}
		questions[i] = &q
	}
	return e.score(questions, answers, EvaluationAdHoc)
}

// EvaluateQuiz 对已保存的测验评分
func (e Evaluator) EvaluateQuiz(quiz *model.Quiz, answers AnswerSheet) *model.QuizResult {
	questions := make([]*EvaluationQuestion, len(quiz.Questions))
	for i := range quiz.Questions {
		q := quiz.Questions[i]
		id := q.ID
		ca := q.CorrectAnswer
		questions[i] = &EvaluationQuestion{
			ID:            &id,
			Text:          q.Text,
			CorrectAnswer: &ca,
			Explanation:   q.Explanation,
			Options:       append([]string(nil), q.Options...),
		}
	}
	result := e.score(questions, answers, EvaluationStored)
	quizID := quiz.ID
	result.QuizID = &quizID
	return result
}

// score nil 元素表示无法解析的题目，计入总数但不计分
func (Evaluator) score(questions []*EvaluationQuestion, answers AnswerSheet, kind string) *model.QuizResult {
	result := &model.QuizResult{
		TotalQuestions: len(questions),
		AttemptNumber:  1,
		CompletedAt:    time.Now(),
		Answers:        make([]model.ResultAnswer, 0, len(questions)),
	}

	for i, q := range questions {
		if q == nil {
			continue
		}

		record := model.ResultAnswer{
			Position:      i + 1,
			QuestionID:    q.ID,
			QuestionText:  q.Text,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		}

		if ans, ok := answers[PositionKey(i)]; ok {
			a := ans
			record.Answer = &a
			// 逐字比较，不做大小写与空白处理
			if q.CorrectAnswer != nil && *q.CorrectAnswer == ans {
				record.Correct = true
				result.Score++
			}
		}
		result.Answers = append(result.Answers, record)
	}

	monitoring.Evaluations.WithLabelValues(kind).Inc()
	logger.Log.Info("Quiz evaluated",
		zap.String("kind", kind),
		zap.Int("score", result.Score),
		zap.Int("total", result.TotalQuestions),
	)
	return result
}
