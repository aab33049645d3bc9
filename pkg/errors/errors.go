// Package errors provides structured error handling for the application
// Following enterprise patterns for error management and observability
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

// Common error codes following RESTful API conventions
const (
	// Client errors (4xx)
	CodeBadRequest       ErrorCode = "BAD_REQUEST"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeInternal             ErrorCode = "INTERNAL_ERROR"
	CodeServiceUnavailable   ErrorCode = "SERVICE_UNAVAILABLE"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Planning pipeline errors
	CodeGenerationFailed   ErrorCode = "GENERATION_FAILED"
	CodeGroundingViolation ErrorCode = "GROUNDING_VIOLATION"
	CodeCorpusExhausted    ErrorCode = "CORPUS_EXHAUSTED"
	CodeEmbeddingFailed    ErrorCode = "EMBEDDING_FAILED"
	CodeIndexUnavailable   ErrorCode = "INDEX_UNAVAILABLE"
)

// AppError represents an application error with structured information
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the appropriate HTTP status code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeGroundingViolation, CodeGenerationFailed, CodeExternalServiceError:
		return http.StatusBadGateway
	case CodeCorpusExhausted, CodeServiceUnavailable, CodeIndexUnavailable, CodeEmbeddingFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Predefined error constructors for common scenarios

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewExternalServiceError creates an external service error
func NewExternalServiceError(service string, cause error) *AppError {
	return NewAppError(
		CodeExternalServiceError,
		"External service error",
		fmt.Sprintf("Failed to communicate with %s", service),
	).WithCause(cause)
}

// Planning pipeline errors

// NewGenerationError reports malformed or non-JSON model output.
func NewGenerationError(details string, cause error) *AppError {
	return NewAppError(
		CodeGenerationFailed,
		"Model returned malformed output",
		details,
	).WithCause(cause)
}

// NewGroundingViolationError reports recipe IDs referenced by the model
// that are outside the retrieved set. The offending IDs always travel
// with the error so the condition is debuggable.
func NewGroundingViolationError(badIDs []string, retrievedCount int) *AppError {
	return NewAppError(
		CodeGroundingViolation,
		"Planner referenced recipe IDs outside the retrieved set",
		fmt.Sprintf("invalid recipe ids: %s", strings.Join(badIDs, ", ")),
	).WithMetadata("bad_recipe_ids", badIDs).
		WithMetadata("retrieved_count", retrievedCount)
}

// NewCorpusExhaustedError reports a bootstrap cycle that could not reach
// the sufficiency threshold for the requested plan size.
func NewCorpusExhaustedError(retrieved, needed int) *AppError {
	return NewAppError(
		CodeCorpusExhausted,
		"Recipe corpus too sparse for the requested plan",
		fmt.Sprintf("retrieved %d candidates after bootstrap, need %d", retrieved, needed),
	).WithMetadata("retrieved", retrieved).WithMetadata("needed", needed)
}

// NewEmbeddingError reports an embedding gateway failure.
func NewEmbeddingError(cause error) *AppError {
	return NewAppError(
		CodeEmbeddingFailed,
		"Embedding service failure",
		"",
	).WithCause(cause)
}

// NewIndexUnavailableError reports a vector index that is not configured
// or not reachable where its result is essential.
func NewIndexUnavailableError(details string) *AppError {
	return NewAppError(CodeIndexUnavailable, "Vector index unavailable", details)
}

// Utility functions

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if an error is of a specific error code
func Is(err error, code ErrorCode) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
