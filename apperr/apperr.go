// Package apperr 统一业务错误类型，控制器按 Kind 映射 HTTP 状态码。
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUnexpected Kind = iota
	KindNotFound
	KindBusinessRule
	KindValidation
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindBusinessRule:
		return "business_rule"
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindUnexpected {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound: "Tool not found with id: xxx"
func NotFound(resource, field string, value any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("%s not found with %s: %v", resource, field, value)}
}

func Business(msg string) error { return &Error{Kind: KindBusinessRule, Msg: msg} }

func Businessf(format string, args ...any) error {
	return &Error{Kind: KindBusinessRule, Msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string) error { return &Error{Kind: KindValidation, Msg: msg} }

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Msg: msg} }

func Forbidden(msg string) error { return &Error{Kind: KindForbidden, Msg: msg} }

// Wrap 包装意外错误并附带调用栈（%+v 打印）
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindUnexpected, Msg: msg, Err: errors.WithStack(err)}
}

// KindOf 返回错误链上第一个 *Error 的 Kind，非 *Error 一律视为 Unexpected
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}

func Is(err error, k Kind) bool { return err != nil && KindOf(err) == k }

// Stack 返回 Wrap 时记录的调用栈，没有则为空
func Stack(err error) string {
	var ae *Error
	if !errors.As(err, &ae) || ae.Err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", ae.Err)
}
