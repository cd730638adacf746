// Package apperr はHTTPステータスに対応付け可能なアプリケーションエラーを定義します。
// 各フィーチャーは usecase/errors.go でこのパッケージを使ってセンチネルエラーを宣言します。
package apperr

import (
	"errors"
	"net/http"
)

// Kind はエラーの分類です。
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindThrottled
)

// Error はクライアントに公開してよいメッセージを持つエラーです。
type Error struct {
	Kind    Kind
	Message string
	// Fields はフィールド単位のバリデーションメッセージ（任意）
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New は指定された分類とメッセージでエラーを生成します。
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap は原因エラーを保持したまま分類とメッセージを付与します。
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Validation(msg string) *Error   { return New(KindValidation, msg) }
func Conflict(msg string) *Error     { return New(KindConflict, msg) }
func NotFound(msg string) *Error     { return New(KindNotFound, msg) }
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(KindForbidden, msg) }

// InvalidFields はバインディング失敗をフィールドごとのメッセージ付きで表します。
func InvalidFields(fields map[string][]string, err error) *Error {
	return &Error{Kind: KindValidation, Message: "Invalid input.", Fields: fields, Err: err}
}

// As はエラーチェーンから *Error を取り出します。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// StatusOf はエラーに対応するHTTPステータスを返します。
// *Error を含まないエラーは500です。
func StatusOf(err error) int {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindThrottled:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
