package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeInvalid         ErrorCode = "INVALID"
	ErrCodeUnauthorized    ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal        ErrorCode = "INTERNAL"
	ErrCodeGeneration      ErrorCode = "GENERATION_FAILED"
	ErrCodeEmptyGeneration ErrorCode = "EMPTY_GENERATION"
	ErrCodeFetch           ErrorCode = "FETCH_FAILED"
	ErrCodeSave            ErrorCode = "SAVE_FAILED"
	ErrCodeUpdate          ErrorCode = "UPDATE_FAILED"
	ErrCodeDelete          ErrorCode = "DELETE_FAILED"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound          = NewError(ErrCodeNotFound, "task not found")
	ErrCandidatesNotFound    = NewError(ErrCodeNotFound, "no generated tasks")
	ErrAuthorizationRequired = NewError(ErrCodeUnauthorized, "please sign in to manage tasks")
	ErrInvalidPayload        = NewError(ErrCodeInvalid, "invalid payload")
	ErrEmptyTopic            = NewError(ErrCodeInvalid, "please enter a topic")
	ErrEmptyGeneration       = NewError(ErrCodeEmptyGeneration, "no valid tasks were generated")
)

// User-facing messages per failed operation kind.
const (
	MsgGenerationFailed = "failed to generate tasks, please try again"
	MsgFetchFailed      = "failed to fetch tasks"
	MsgSaveFailed       = "failed to save tasks"
	MsgUpdateFailed     = "failed to update task"
	MsgDeleteFailed     = "failed to delete task"
)

// IsDomainError reports whether the outermost domain error in the chain carries code.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost domain error, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
