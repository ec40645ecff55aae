// Package svcerr is the error taxonomy services return and controllers map
// to HTTP statuses.
package svcerr

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	NotFound          ErrCode = "NOT_FOUND"
	Conflict          ErrCode = "CONFLICT"
	ResourceExhausted ErrCode = "RESOURCE_EXHAUSTED"
	InvalidOperation  ErrCode = "INVALID_OPERATION"
	Forbidden         ErrCode = "FORBIDDEN"
	Unauthorized      ErrCode = "UNAUTHORIZED"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

func New(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

func NewNotFound(msg string) error     { return codedError{code: NotFound, msg: msg} }
func NewConflict(msg string) error     { return codedError{code: Conflict, msg: msg} }
func NewExhausted(msg string) error    { return codedError{code: ResourceExhausted, msg: msg} }
func NewInvalid(msg string) error      { return codedError{code: InvalidOperation, msg: msg} }
func NewForbidden(msg string) error    { return codedError{code: Forbidden, msg: msg} }
func NewUnauthorized(msg string) error { return codedError{code: Unauthorized, msg: msg} }

// Code extracts the error code, "" for errors outside the taxonomy.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
