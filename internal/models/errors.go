package models

import "fmt"

// AppError is an application-level error with a stable code. Two AppErrors
// match under errors.Is when their codes are equal.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailInUse         = "EMAIL_IN_USE"
	CodePostNotFound       = "POST_NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotAuthenticated   = "NOT_AUTHENTICATED"
	CodeValidation         = "VALIDATION_ERROR"
)

var (
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials, Message: "Invalid email or password"}
	ErrEmailAlreadyInUse  = &AppError{Code: CodeEmailInUse, Message: "Email already in use"}
	ErrPostNotFound       = &AppError{Code: CodePostNotFound, Message: "Post not found"}
	ErrUnauthorized       = &AppError{Code: CodeUnauthorized, Message: "Unauthorized"}
	ErrNotAuthenticated   = &AppError{Code: CodeNotAuthenticated, Message: "Not authenticated"}
	ErrValidation         = &AppError{Code: CodeValidation, Message: "Validation failed"}
)

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}
