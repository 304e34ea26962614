package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrorCodeRateLimited       ErrorCode = "RATE_LIMITED"
	ErrorCodeExtractionTimeout ErrorCode = "EXTRACTION_TIMEOUT"
	ErrorCodeExtractionFailed  ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeParseFailed       ErrorCode = "PARSE_FAILED"
	ErrorCodeNoFormats         ErrorCode = "NO_FORMATS"
	ErrorCodeDownloadFailed    ErrorCode = "DOWNLOAD_FAILED"
	ErrorCodeNoOutputProduced  ErrorCode = "NO_OUTPUT_PRODUCED"
	ErrorCodeInternalError     ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// AsAppError unwraps err into an *AppError, if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func NewInvalidInputError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeInvalidInput, message, http.StatusBadRequest, details)
}

func NewInvalidURLError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidInput,
		"Please enter a Facebook video URL (facebook.com or fb.watch).",
		http.StatusBadRequest,
		map[string]interface{}{
			"provided": link,
		},
	)
}

func NewRateLimitError(retryAfterSeconds int) *AppError {
	return NewErrorWithDetails(
		ErrorCodeRateLimited,
		fmt.Sprintf("Too many requests. Please wait %d seconds.", retryAfterSeconds),
		http.StatusTooManyRequests,
		map[string]interface{}{
			"retry_after": retryAfterSeconds,
		},
	)
}

func NewExtractionTimeoutError() *AppError {
	return NewError(
		ErrorCodeExtractionTimeout,
		"Request timed out. Please try again.",
		http.StatusGatewayTimeout,
	)
}

// NewExtractionFailedError carries the user-facing category derived from the tool's diagnostics.
func NewExtractionFailedError(category, message string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeExtractionFailed,
		message,
		http.StatusBadGateway,
		map[string]interface{}{
			"category": category,
		},
	)
}

func NewParseFailedError() *AppError {
	return NewError(
		ErrorCodeParseFailed,
		"Failed to parse video information.",
		http.StatusBadGateway,
	)
}

func NewNoFormatsError() *AppError {
	return NewError(
		ErrorCodeNoFormats,
		"No downloadable formats found for this video.",
		http.StatusUnprocessableEntity,
	)
}

func NewDownloadFailedError(diagnostic string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeDownloadFailed,
		"Download failed.",
		http.StatusInternalServerError,
		map[string]interface{}{
			"diagnostic": diagnostic,
		},
	)
}

func NewNoOutputProducedError() *AppError {
	return NewError(
		ErrorCodeNoOutputProduced,
		"No output file produced.",
		http.StatusInternalServerError,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}
