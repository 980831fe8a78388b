// Package errors provides the structured errors shared by the HTTP API and
// the Zeebe job workers, and their mapping onto BPMN errors and HTTP statuses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeUserNotFound    ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserFetchFailed ErrorCode = "USER_FETCH_FAILED"

	ErrCodeProviderNotFound     ErrorCode = "PROVIDER_NOT_FOUND"
	ErrCodeProviderFetchFailed  ErrorCode = "PROVIDER_FETCH_FAILED"
	ErrCodeProviderSearchFailed ErrorCode = "PROVIDER_SEARCH_FAILED"
	ErrCodeSearchNotConfigured  ErrorCode = "SEARCH_NOT_CONFIGURED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	ErrCodeRecommendationFailed ErrorCode = "RECOMMENDATION_FAILED"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a *StandardError from anywhere in err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewInvalidInputError reports a malformed request body or job payload.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false, nil)
}

func NewUserNotFoundError(userID string) *StandardError {
	return newError(ErrCodeUserNotFound, "User not found", fmt.Sprintf("userId: %s", userID), false, nil).
		WithMetadata("userId", userID)
}

// NewUserFetchFailedError creates a retryable user lookup error.
func NewUserFetchFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeUserFetchFailed, "Failed to load user",
		fmt.Sprintf("userId: %s, error: %s", userID, err.Error()), true, err)
}

func NewProviderNotFoundError(providerID string) *StandardError {
	return newError(ErrCodeProviderNotFound, "Provider not found", fmt.Sprintf("providerId: %s", providerID), false, nil).
		WithMetadata("providerId", providerID)
}

// NewProviderFetchFailedError creates a retryable provider pool error.
func NewProviderFetchFailedError(err error) *StandardError {
	return newError(ErrCodeProviderFetchFailed, "Failed to load providers", err.Error(), true, err)
}

// NewProviderSearchFailedError creates a retryable directory search error.
func NewProviderSearchFailedError(err error) *StandardError {
	return newError(ErrCodeProviderSearchFailed, "Provider search failed", err.Error(), true, err)
}

func NewSearchNotConfiguredError() *StandardError {
	return newError(ErrCodeSearchNotConfigured, "Provider search is not configured", "", false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

func NewRecommendationFailedError(details string) *StandardError {
	return newError(ErrCodeRecommendationFailed, "Failed to build recommendations", details, false, nil)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes the BPMN
// models catch. Codes missing here are thrown verbatim.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeUserNotFound:             "USER_NOT_FOUND",
	ErrCodeUserFetchFailed:          "USER_FETCH_FAILED",
	ErrCodeProviderNotFound:         "PROVIDER_NOT_FOUND",
	ErrCodeProviderFetchFailed:      "PROVIDER_FETCH_FAILED",
	ErrCodeProviderSearchFailed:     "PROVIDER_SEARCH_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeRecommendationFailed:     "RECOMMENDATION_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeUserFetchFailed,
		ErrCodeProviderFetchFailed,
		ErrCodeProviderSearchFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.HasPrefix(codeStr, "USER"):
		return "USER"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.HasPrefix(codeStr, "PROVIDER"):
		return "PROVIDER"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "RECOMMENDATION"):
		return "MATCHING"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code onto the status the API responds with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeUserNotFound, ErrCodeProviderNotFound:
		return http.StatusNotFound
	case ErrCodeSearchNotConfigured:
		return http.StatusNotImplemented
	case ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeUserFetchFailed,
		ErrCodeProviderFetchFailed,
		ErrCodeProviderSearchFailed,
		ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
