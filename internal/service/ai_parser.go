package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"quizgen_backend/internal/model"
	"strconv"
	"strings"
)

// chatCompletionResponse 服务端外层响应，error 保留原始值以便判断字段是否存在
type chatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error json.RawMessage `json:"error,omitempty"`
}

type envelopeError struct {
	Message string `json:"message"`
}

func envelopeErrorMessage(body []byte) (string, bool) {
	var env chatCompletionResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return "", false
	}
	return env.errorMessage()
}

func (r *chatCompletionResponse) errorMessage() (string, bool) {
	if isAbsent(r.Error) {
		return "", false
	}
	var e envelopeError
	if err := json.Unmarshal(r.Error, &e); err == nil && e.Message != "" {
		return e.Message, true
	}
	return asText(r.Error, ""), true
}

// SkippedQuestion 校验阶段被丢弃的题目及原因
type SkippedQuestion struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ParsedCompletion 解析结果，Skipped 用于诊断
type ParsedCompletion struct {
	Questions []model.Question
	Skipped   []SkippedQuestion
}

// ParseCompletion 解析外层响应、提取内嵌 JSON 并逐题转换
func ParseCompletion(body []byte) (*ParsedCompletion, error) {
	var env chatCompletionResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, newGenerationError(FailureMalformedEnvelope, "decode envelope: %w", err)
	}

	if msg, ok := env.errorMessage(); ok {
		return nil, newGenerationError(FailureProviderError, "provider error: %s", msg)
	}

	if len(env.Choices) == 0 {
		return nil, newGenerationError(FailureNoChoices, "no choices in response")
	}

	content := env.Choices[0].Message.Content
	doc := ExtractJSON(content)

	var payload struct {
		Questions json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		return nil, newGenerationError(FailureMalformedContent, "decode content: %w", err)
	}
	if isAbsent(payload.Questions) {
		return nil, newGenerationError(FailureMalformedContent, "content has no questions array")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(payload.Questions, &items); err != nil {
		return nil, newGenerationError(FailureMalformedContent, "questions is not an array: %w", err)
	}

	questions, skipped := CoerceQuestions(items)
	return &ParsedCompletion{Questions: questions, Skipped: skipped}, nil
}

// ExtractJSON 在平衡花括号对象中优先取含 questions 字段的一个，其次取第一个可解析的，
// 再其次取第一个 '{' 到最后一个 '}'，都不存在时原样返回
func ExtractJSON(content string) string {
	objects := balancedObjects(content)
	for _, obj := range objects {
		var fields map[string]json.RawMessage
		if json.Unmarshal([]byte(obj), &fields) == nil {
			if _, ok := fields["questions"]; ok {
				return obj
			}
		}
	}
	if len(objects) > 0 {
		return objects[0]
	}

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start != -1 && end > start {
		return content[start : end+1]
	}
	return content
}

// balancedObjects 返回所有可解析的顶层平衡花括号对象
func balancedObjects(content string) []string {
	var out []string
	for offset := 0; offset < len(content); {
		i := strings.IndexByte(content[offset:], '{')
		if i == -1 {
			break
		}
		start := offset + i
		end, ok := matchBrace(content, start)
		if ok && json.Valid([]byte(content[start:end+1])) {
			out = append(out, content[start:end+1])
			offset = end + 1
			continue
		}
		offset = start + 1
	}
	return out
}

// matchBrace 返回与 start 处 '{' 配对的 '}' 下标，跳过字符串字面量
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

var errNotObject = errors.New("question item is not a JSON object")

// CoerceQuestions 逐题转换，单题失败只跳过该题
func CoerceQuestions(items []json.RawMessage) ([]model.Question, []SkippedQuestion) {
	questions := make([]model.Question, 0, len(items))
	var skipped []SkippedQuestion
	for i, item := range items {
		q, err := CoerceQuestion(item)
		if err != nil {
			skipped = append(skipped, SkippedQuestion{Index: i, Reason: err.Error()})
			continue
		}
		questions = append(questions, q)
	}
	return questions, skipped
}

// CoerceQuestion 缺失或类型不符的字段使用默认值
func CoerceQuestion(raw json.RawMessage) (model.Question, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return model.Question{}, errNotObject
	}

	q := model.Question{
		Text:          asText(fields["text"], ""),
		Type:          model.ParseQuestionType(asText(fields["type"], "")),
		Options:       asTextList(fields["options"]),
		CorrectAnswer: asText(fields["correctAnswer"], ""),
		Explanation:   asText(fields["explanation"], ""),
		Tags:          model.TagSet(asTextList(fields["tags"])),
		Difficulty:    asText(fields["difficulty"], model.DefaultDifficulty),
	}
	return q, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// asText 字符串取值，数字与布尔取字面量，对象与数组为空串，缺失或 null 返回 def
func asText(raw json.RawMessage, def string) string {
	if isAbsent(raw) {
		return def
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return def
	}

	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asTextList 非数组返回空切片
func asTextList(raw json.RawMessage) []string {
	out := []string{}
	if isAbsent(raw) {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, it := range items {
		out = append(out, asText(it, ""))
	}
	return out
}
