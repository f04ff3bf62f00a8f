package util

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrEmptyTags            = errors.New("tags list cannot be empty")
	ErrInvalidQuestionCount = errors.New("question count must be positive")
	ErrTooManyQuestions     = errors.New("question count exceeds the allowed maximum")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrQuizNotFound         = errors.New("quiz not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrResultNotFound       = errors.New("result not found")
	ErrStorageUnavailable   = errors.New("storage provider unavailable")
)

// IsValidationError 判断是否为请求参数类错误
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyTags) ||
		errors.Is(err, ErrInvalidQuestionCount) ||
		errors.Is(err, ErrTooManyQuestions) ||
		errors.Is(err, ErrInvalidRequest)
}
