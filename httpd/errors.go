package httpd

import (
	"errors"
	"fmt"
)

// ErrorCode 区分服务器返回给调用者的错误种类
type ErrorCode string

const (
	// Listen时配置不合法，例如端口或槽位数不是正数
	CodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// 监听socket创建失败
	CodeListenFailed ErrorCode = "LISTEN_FAILED"
	// Step等待就绪失败。服务器仍然可用，是否继续Step由调用者决定
	CodePollFailed ErrorCode = "POLL_FAILED"
	// Listen成功之前调用了Step
	CodeNotListening ErrorCode = "NOT_LISTENING"
)

// Error 是Listen和Step返回的错误类型
type Error struct {
	Code    ErrorCode
	Message string
	cause   error
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsCode 判断err是否是携带code的*Error
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
