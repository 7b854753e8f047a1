package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP layer can map them to status codes
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation"
	KindUnsupportedPlatform ErrorKind = "unsupported_platform"
	KindToolUnavailable     ErrorKind = "tool_unavailable"
	KindResolution          ErrorKind = "resolution"
	KindConversion          ErrorKind = "conversion"
	KindIO                  ErrorKind = "io"
	KindInternal            ErrorKind = "internal"
)

// Error is a classified service error. Message is the caller-facing text,
// Err carries the underlying tool or library failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports a malformed request
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewUnsupportedPlatformError reports a URL no platform matched
func NewUnsupportedPlatformError(url string) *Error {
	return &Error{Kind: KindUnsupportedPlatform, Message: fmt.Sprintf("unsupported platform for url: %s", url)}
}

// NewToolUnavailableError reports that a required external tool is missing
func NewToolUnavailableError(tool string) *Error {
	return &Error{
		Kind:    KindToolUnavailable,
		Message: fmt.Sprintf("%s is not installed. Please install it to download from this platform", tool),
	}
}

// NewResolutionError reports a failure to fetch metadata or media
func NewResolutionError(message string, err error) *Error {
	return &Error{Kind: KindResolution, Message: message, Err: err}
}

// NewConversionError reports a transcoder failure
func NewConversionError(message string, err error) *Error {
	return &Error{Kind: KindConversion, Message: message, Err: err}
}

// NewInternalError reports an unexpected failure inside the service
func NewInternalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// NewIOError reports a filesystem failure
func NewIOError(message string, err error) *Error {
	return &Error{Kind: KindIO, Message: message, Err: err}
}

// KindOf returns the kind of a classified error, or KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a classified error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
