package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeUnsupportedProvider = "UNSUPPORTED_PROVIDER"
	ErrCodeFetch               = "FETCH_FAILED"
	ErrCodeExtraction          = "EXTRACTION_FAILED"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeCanceled            = "CANCELED"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RankError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type RankError struct {
	Code    string
	Message string

	// StatusCode is the upstream HTTP status for FETCH_FAILED errors caused
	// by a non-2xx provider response. Zero otherwise.
	StatusCode int

	Err error // wrapped original error
}

func (e *RankError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RankError) Unwrap() error {
	return e.Err
}

// NewRankError creates a new RankError.
func NewRankError(code, message string, err error) *RankError {
	return &RankError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *RankError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// CodeOf returns the code of the first RankError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var re *RankError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeInternal
}
