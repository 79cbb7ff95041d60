// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the AGRINOVA client.
type ClientError struct {
	Type ErrorType

	// Status is the HTTP status for rejected requests, 0 otherwise.
	Status int

	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so errors.Is(err, ErrTimeout) holds
// for any timeout regardless of its message.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota

	// ErrTypeRejected is a non-2xx response (or a 2xx carrying "error").
	ErrTypeRejected

	// ErrTypeUnreachable means no response was received.
	ErrTypeUnreachable

	// ErrTypeTimeout means the request exceeded the configured timeout.
	ErrTypeTimeout

	// ErrTypeInvalidResponse is a 2xx body that does not decode.
	ErrTypeInvalidResponse
)

// String returns the error type name.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeRejected:
		return "rejected"
	case ErrTypeUnreachable:
		return "unreachable"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking with errors.Is.
var (
	ErrRejected        = &ClientError{Type: ErrTypeRejected}
	ErrUnreachable     = &ClientError{Type: ErrTypeUnreachable}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse}
)

// Fallback messages shown when the backend gives no "error" field.
const (
	FallbackAuth       = "An error occurred"
	FallbackPrediction = "Prediction API error"
	FallbackWeather    = "Error fetching weather data"
	FallbackChat       = "Chatbot error"
	FallbackMarket     = "Error fetching market prices"
	FallbackLogout     = "Logout failed."
)

// NetworkErrorPrefix starts every message for a request that got no response.
const NetworkErrorPrefix = "Network error: "

// =============================================================================
// USER-FACING TEXT
// =============================================================================

// Describe maps err to the text shown to the user. Rejections show the
// server's message, network failures are prefixed with NetworkErrorPrefix,
// and anything else falls back to fallback.
func Describe(err error, fallback string) string {
	if err == nil {
		return ""
	}

	var ce *ClientError
	if !errors.As(err, &ce) {
		return fallback
	}

	switch ce.Type {
	case ErrTypeRejected:
		if ce.Message == "" {
			return fallback
		}
		return ce.Message
	case ErrTypeUnreachable, ErrTypeTimeout:
		return NetworkErrorPrefix + ce.Message
	default:
		return fallback
	}
}

// IsNetwork reports whether err means the backend was never heard from.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrUnreachable) || errors.Is(err, ErrTimeout)
}

func rejected(status int, message string) *ClientError {
	return &ClientError{Type: ErrTypeRejected, Status: status, Message: message}
}

func invalidResponse(what string, cause error) *ClientError {
	return &ClientError{
		Type:    ErrTypeInvalidResponse,
		Message: fmt.Sprintf("failed to decode %s response", what),
		Cause:   cause,
	}
}
