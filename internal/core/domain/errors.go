package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors represent failures surfaced to the user.
// Infrastructure adapters wrap or map their failures onto these.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation indicates a local pre-flight check rejected the input.
	// Validation failures never reach the network and are never retried.
	ErrValidation = errors.New("validation failed")

	// Authentication Errors.

	// ErrUnauthenticated indicates no session token or user id is available.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrSessionExpired indicates a 401 was received and the refresh failed.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrTokenRefreshFailed indicates the session provider could not refresh.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Transport Errors.

	// ErrNetwork indicates a transport-level failure (DNS, reset, timeout).
	ErrNetwork = errors.New("network error")

	// ErrStreamDecode indicates a single stream frame could not be decoded.
	// The frame is skipped; the stream continues.
	ErrStreamDecode = errors.New("stream decode error")

	// ErrTransientUpload marks an upload failure that is eligible for retry.
	ErrTransientUpload = errors.New("transient upload failure")

	// ErrThreadBusy indicates the thread already has an answer streaming.
	ErrThreadBusy = errors.New("thread is busy answering another message")
)

// HTTPError is a non-2xx response from the notes service.
type HTTPError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the server-provided detail, or a generic fallback.
	Message string
}

// NewHTTPError builds an HTTPError, falling back to a generic message
// when the server did not provide one.
func NewHTTPError(status int, message string) *HTTPError {
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("HTTP error! status: %d", status)
	}
	return &HTTPError{Status: status, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports a 401 HTTPError as ErrUnauthenticated.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// NetworkError wraps a transport failure.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return ErrNetwork.Error()
	}
	return fmt.Sprintf("%s: %v", ErrNetwork.Error(), e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Is matches ErrNetwork.
func (e *NetworkError) Is(target error) bool {
	return target == ErrNetwork
}

// ValidationError describes a file rejected before upload.
type ValidationError struct {
	// File is the path or name of the rejected file.
	File string

	// Reason is a human-readable explanation.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.File == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// FrameError is a single malformed stream frame.
type FrameError struct {
	// Payload is the raw data that failed to decode.
	Payload string

	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s: %v", ErrStreamDecode.Error(), e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Is matches ErrStreamDecode.
func (e *FrameError) Is(target error) bool {
	return target == ErrStreamDecode
}

// IsTransientUpload reports whether an upload failure should be retried.
// Network failures, timeouts, 408, 429 and gateway 5xx are transient, as is
// any error whose message mentions a timeout or a failed upload.
// Validation failures and other 4xx responses are terminal.
func IsTransientUpload(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransientUpload) || errors.Is(err, ErrNetwork) {
		return true
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrSessionExpired) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Status {
		case http.StatusRequestTimeout,
			http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "failed to upload")
}
