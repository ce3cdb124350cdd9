// 指示: miu200521358
// Package merr はエラーIDを持つ共通エラーを提供する。
package merr

import (
	"errors"
	"fmt"
)

// ErrorKind はエラー分類を表す。
type ErrorKind string

const (
	// ErrorKindValidate は入力検証エラーを表す。
	ErrorKindValidate ErrorKind = "validate"
	// ErrorKindNotFound は参照先不在エラーを表す。
	ErrorKindNotFound ErrorKind = "not_found"
	// ErrorKindInternal は内部処理エラーを表す。
	ErrorKindInternal ErrorKind = "internal"
)

// CommonError はエラーIDと分類を持つエラーを表す。
type CommonError struct {
	id      string
	kind    ErrorKind
	message string
	cause   error
}

// NewCommonError はCommonErrorを生成する。
func NewCommonError(id string, kind ErrorKind, message string, cause error) *CommonError {
	return &CommonError{
		id:      id,
		kind:    kind,
		message: message,
		cause:   cause,
	}
}

// Error はエラーメッセージを返す。
func (e *CommonError) Error() string {
	if e == nil {
		return ""
	}
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.cause)
}

// Unwrap は原因エラーを返す。
func (e *CommonError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// ErrorID はエラーIDを返す。
func (e *CommonError) ErrorID() string {
	if e == nil {
		return ""
	}
	return e.id
}

// Kind はエラー分類を返す。
func (e *CommonError) Kind() ErrorKind {
	if e == nil {
		return ""
	}
	return e.kind
}

// Message は原因を含まないメッセージを返す。
func (e *CommonError) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// Is はエラーIDが一致するCommonErrorを同一エラーとして扱う。
func (e *CommonError) Is(target error) bool {
	if e == nil || e.id == "" {
		return false
	}
	other, ok := target.(*CommonError)
	if !ok || other == nil {
		return false
	}
	return e.id == other.id
}

// idCarrier はエラーIDを返せるエラーを表す。
type idCarrier interface {
	ErrorID() string
}

// ExtractErrorID はエラー連鎖から最初のエラーIDを取り出す。
func ExtractErrorID(err error) string {
	var carrier idCarrier
	if errors.As(err, &carrier) {
		return carrier.ErrorID()
	}
	return ""
}
