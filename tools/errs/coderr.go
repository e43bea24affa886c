package errs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// ===== codes =====

const (
	ArgsError        = 10001 // malformed input, not retried
	PersistenceError = 10002 // storage write failed or timed out, caller may retry
	RecordNotFound   = 10003
	RecordDuplicate  = 10004
	TokenInvalid     = 10005
	NoPermission     = 10006
)

var (
	ErrArgs           = NewCodeError(ArgsError, "invalid argument")
	ErrPersistence    = NewCodeError(PersistenceError, "persistence failed")
	ErrRecordNotFound = NewCodeError(RecordNotFound, "record not found")
	ErrDuplicate      = NewCodeError(RecordDuplicate, "record already exists")
	ErrTokenInvalid   = NewCodeError(TokenInvalid, "token invalid")
	ErrNoPermission   = NewCodeError(NoPermission, "no permission")
)

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	if e.Detail == "" {
		return strconv.Itoa(e.Code) + " " + e.Msg
	}
	return strconv.Itoa(e.Code) + " " + e.Msg + ": " + e.Detail
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

// WithDetail returns a copy carrying extra detail; the prototype is unchanged.
func (e *CodeError) WithDetail(detail string) *CodeError {
	c := e.clone()
	if c.Detail == "" {
		c.Detail = detail
	} else {
		c.Detail += ", " + detail
	}
	return c
}

// WrapMsg attaches detail (formatted as "msg k=v ...") plus a stack trace.
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return pkgerrors.WithStack(e.WithDetail(toDetail(msg, kv)))
}

// Wrap records the underlying cause as detail and keeps the code.
// Returns nil for a nil cause.
func (e *CodeError) Wrap(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(e.WithDetail(err.Error()))
}

// Is matches by code so errors.Is works across WithDetail/WrapMsg copies.
func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// CodeOf extracts the code from any error in the chain; 0 if none.
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}

func toDetail(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprint(kv[i]))
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(fmt.Sprint(kv[i+1]))
		}
	}
	return sb.String()
}
