// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/agrinova-tui/internal/api"
	"github.com/jeranaias/agrinova-tui/internal/panels"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or input
	ExitUsageError = 2
	// ExitConfigError indicates a config file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates the backend refused the request
	ExitAuthError = 4
	// ExitNetworkError indicates no response was received
	ExitNetworkError = 5
	// ExitTimeoutError indicates the request timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is bad input caught before any request was made.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ConfigError wraps a failure to load or save the configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// failure carries the user-facing text of a backend error while keeping the
// original for ExitCode.
type failure struct {
	text string
	err  error
}

func (f *failure) Error() string { return f.text }

func (f *failure) Unwrap() error { return f.err }

// describe turns err into the message the TUI would show for it.
func describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	var ve *panels.ValidationError
	if errors.As(err, &ve) {
		return &UsageError{Message: ve.Message}
	}
	return &failure{text: api.Describe(err, fallback), err: err}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		usage *UsageError
		cfg   *ConfigError
		ve    *panels.ValidationError
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &ve):
		return ExitUsageError
	case errors.As(err, &cfg):
		return ExitConfigError
	case errors.Is(err, api.ErrTimeout):
		return ExitTimeoutError
	case errors.Is(err, api.ErrUnreachable):
		return ExitNetworkError
	case errors.Is(err, api.ErrRejected):
		return ExitAuthError
	}
	return ExitGeneralError
}
