// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent reporting.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002

	// Input errors (1100-1199) fail the whole run
	CodeVideoNotFound   = 1100
	CodeVideoCorrupt    = 1101
	CodeBoundaryInvalid = 1102
	CodeTranscriptBad   = 1103
	CodeVideoDownload   = 1104

	// Per-unit analysis errors (1200-1299)
	CodeFrameExtract   = 1200
	CodeAnalysisFailed = 1201
	CodeAnalysisParse  = 1202

	// Per-unit generation errors (1300-1399)
	CodeGenerateFailed   = 1300
	CodeGenerateTimeout  = 1301
	CodeGenerateDownload = 1302
	CodeRateLimited      = 1303
	CodeUpstreamError    = 1304

	// Assembly errors (1400-1499)
	CodeSplitFailed   = 1400
	CodeStitchFailed  = 1401
	CodeStitchPartial = 1402
	CodeConcatFailed  = 1403
	CodeClipInvalid   = 1404

	// Storage errors (1500-1599)
	CodeDBError        = 1500
	CodeFileNotFound   = 1501
	CodeFileWriteError = 1502
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// IsInputError reports whether the error is a whole-run input failure, as
// opposed to a per-unit failure that siblings survive.
func IsInputError(err error) bool {
	code := GetCode(err)
	return code >= 1100 && code < 1200
}

// IsTransient reports whether the error is worth retrying (timeouts, rate
// limits, upstream 5xx). Retries are bounded; once exhausted the error is
// downgraded to a plain per-unit failure.
func IsTransient(err error) bool {
	switch GetCode(err) {
	case CodeGenerateTimeout, CodeRateLimited, CodeUpstreamError:
		return true
	}
	return false
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "invalid parameters")
	ErrNotFound      = New(CodeNotFound, "resource not found")

	// Input
	ErrVideoNotFound   = New(CodeVideoNotFound, "video file not found")
	ErrVideoCorrupt    = New(CodeVideoCorrupt, "video file unreadable or corrupt")
	ErrBoundaryInvalid = New(CodeBoundaryInvalid, "scene boundary data invalid")

	// Generation
	ErrGenerateTimeout = New(CodeGenerateTimeout, "generation polling timed out")
	ErrRateLimited     = New(CodeRateLimited, "generation API rate limited")

	// Assembly
	ErrStitchPartial = New(CodeStitchPartial, "cannot stitch: not all chunks were generated")

	// Storage
	ErrDBError      = New(CodeDBError, "database error")
	ErrFileNotFound = New(CodeFileNotFound, "file not found")
)
