// Package errors provides the typed failures that flow from the action
// backend to the dispatcher.
package errors

import (
	"errors"
	"strings"
)

// ============================================================
// Error Categories
// ============================================================

// Category defines how the dispatcher reports and logs an error.
type Category int

const (
	// CategoryUser errors come from the command itself (missing field, no match)
	CategoryUser Category = iota

	// CategoryPolicy errors are refusals by the safety policy
	CategoryPolicy

	// CategoryConfig errors mean an integration lacks settings or credentials
	CategoryConfig

	// CategoryBackend errors are failures of an OS, network or telephony call
	CategoryBackend
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryUser:
		return "user"
	case CategoryPolicy:
		return "policy"
	case CategoryConfig:
		return "config"
	case CategoryBackend:
		return "backend"
	default:
		return "unknown"
	}
}

// ============================================================
// AppError
// ============================================================

// AppError is the error type shared by the dispatcher and its backends.
type AppError struct {
	// Code identifies the failure for programmatic handling
	Code string

	// Message is the user-facing text
	Message string

	// Category determines logging level and reporting
	Category Category

	// Inner is the underlying error
	Inner error

	// Context is additional debugging information
	Context map[string]any
}

// Error returns the error message.
func (e *AppError) Error() string {
	var sb strings.Builder

	if e.Code != "" {
		sb.WriteString("[")
		sb.WriteString(e.Code)
		sb.WriteString("] ")
	}

	sb.WriteString(e.Message)

	if e.Inner != nil {
		innerMsg := e.Inner.Error()
		if innerMsg != "" && innerMsg != e.Message {
			sb.WriteString(": ")
			sb.WriteString(innerMsg)
		}
	}

	return sb.String()
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Inner
}

// Is matches another AppError by code, or the inner error.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if errors.As(target, &other) {
		return other.Code != "" && other.Code == e.Code
	}
	return errors.Is(e.Inner, target)
}

// ============================================================
// Error Constructors
// ============================================================

// New creates a new AppError.
func New(code, message string, category Category) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Category: category,
	}
}

// Wrap wraps an existing error with context.
func Wrap(err error, code, message string, category Category) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:     code,
			Message:  message,
			Category: category,
			Inner:    appErr,
			Context:  appErr.Context,
		}
	}

	return &AppError{
		Code:     code,
		Message:  message,
		Category: category,
		Inner:    err,
	}
}

// MissingParameter reports a required field the command did not supply.
func MissingParameter(field, message string) *AppError {
	return NewBuilder(CodeMissingParameter, message).
		User().
		WithContext("field", field).
		Build()
}

// SafetyRejection reports a path or command refused by the policy.
func SafetyRejection(message string) *AppError {
	return New(CodeSafetyRejection, message, CategoryPolicy)
}

// NotConfigured reports an integration without settings or credentials.
func NotConfigured(message string) *AppError {
	return New(CodeNotConfigured, message, CategoryConfig)
}

// BackendFailure wraps a failed OS, network or telephony call.
func BackendFailure(err error, message string) *AppError {
	return Wrap(err, CodeBackendFailure, message, CategoryBackend)
}

// InvalidContact reports a phone number or email that failed validation.
func InvalidContact(message string) *AppError {
	return New(CodeInvalidContact, message, CategoryUser)
}

// ============================================================
// Builder Pattern for Fluent Error Construction
// ============================================================

// Builder provides fluent error construction.
type Builder struct {
	err *AppError
}

// NewBuilder starts building a new error. The default category is backend.
func NewBuilder(code, message string) *Builder {
	return &Builder{
		err: &AppError{
			Code:     code,
			Message:  message,
			Category: CategoryBackend,
			Context:  make(map[string]any),
		},
	}
}

// User marks the error as caused by the command.
func (b *Builder) User() *Builder {
	b.err.Category = CategoryUser
	return b
}

// Policy marks the error as a policy refusal.
func (b *Builder) Policy() *Builder {
	b.err.Category = CategoryPolicy
	return b
}

// Config marks the error as a configuration gap.
func (b *Builder) Config() *Builder {
	b.err.Category = CategoryConfig
	return b
}

// Wrap sets the underlying error.
func (b *Builder) Wrap(err error) *Builder {
	b.err.Inner = err
	return b
}

// WithContext adds context information.
func (b *Builder) WithContext(key string, value any) *Builder {
	b.err.Context[key] = value
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *AppError {
	return b.err
}

// ============================================================
// Error Codes
// ============================================================

const (
	CodeNoMatch          = "NO_MATCH"
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeSafetyRejection  = "SAFETY_REJECTION"
	CodeBackendFailure   = "BACKEND_FAILURE"
	CodeNotConfigured    = "NOT_CONFIGURED"
	CodeInvalidContact   = "INVALID_CONTACT"
	CodeNotFound         = "NOT_FOUND"
	CodeUnsupported      = "UNSUPPORTED"
)

// ============================================================
// Helpers
// ============================================================

// GetCategory extracts the category from an error.
// Errors that are not AppErrors count as backend failures.
func GetCategory(err error) Category {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Category
	}
	return CategoryBackend
}

// GetCode extracts the code from an error, or "" when it has none.
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Inner
	}
	return false
}

// UserMessage returns the outermost AppError message, or err.Error() for
// foreign errors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Cause returns the innermost message of err, which is what users see after
// "Failed to <action>: ".
func Cause(err error) string {
	if err == nil {
		return ""
	}
	for {
		var appErr *AppError
		if !errors.As(err, &appErr) || appErr.Inner == nil {
			break
		}
		err = appErr.Inner
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
