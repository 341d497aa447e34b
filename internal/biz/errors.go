package biz

import (
	"errors"
	"fmt"
)

// ErrorCode 结构化错误码，随失败信封返回给调用方
type ErrorCode string

const (
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	CodeDataNotFound     ErrorCode = "DATA_NOT_FOUND"
	CodeNoDataAvailable  ErrorCode = "NO_DATA_AVAILABLE"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// Error 业务错误，携带错误码与修复建议
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
}

func (e *Error) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Suggestion)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ErrInvalidParameter 参数错误
func ErrInvalidParameter(message, suggestion string) *Error {
	return &Error{Code: CodeInvalidParameter, Message: message, Suggestion: suggestion}
}

// ErrDataNotFound 请求范围内没有数据
func ErrDataNotFound(message, suggestion string) *Error {
	return &Error{Code: CodeDataNotFound, Message: message, Suggestion: suggestion}
}

// ErrNoDataAvailable 数据目录完全为空，区别于单日缺数据
func ErrNoDataAvailable(message, suggestion string) *Error {
	return &Error{Code: CodeNoDataAvailable, Message: message, Suggestion: suggestion}
}

// IsDataNotFound 判断是否为单日缺数据错误
func IsDataNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Code == CodeDataNotFound
}

// AsError 把任意错误归一化为业务错误；未知错误一律归为 INTERNAL_ERROR，
// 不允许原始异常穿透到公共入口之外
func AsError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}
