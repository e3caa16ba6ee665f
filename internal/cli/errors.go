// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Exit codes and error display for the tabchat command.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/tabchat/internal/cloud"
	"github.com/jeranaias/tabchat/internal/config"
)

// =============================================================================
// EXIT CODES - Specific codes for different error categories
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates authentication failure
	ExitAuthError = 4
	// ExitNetworkError indicates network or connectivity error
	ExitNetworkError = 5
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError reports bad flags or arguments to the tabchat command itself.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// CommandError represents a failed subcommand with context.
type CommandError struct {
	Command string // e.g. "config init"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Command, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode maps an error returned by the root command to a process exit
// code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var cfgErr *config.ConfigurationError
	var validateErrs config.ValidateErrors
	var usageErr *UsageError
	var apiErr *cloud.APIError

	switch {
	case errors.As(err, &cfgErr), errors.As(err, &validateErrs):
		return ExitConfigError
	case errors.As(err, &usageErr):
		return ExitUsageError
	case errors.Is(err, cloud.ErrAuthFailed), errors.Is(err, cloud.ErrNotConfigured):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.As(err, &apiErr):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// DisplayError writes err to w in the form used for fatal errors.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)

	var cfgErr *config.ConfigurationError
	if errors.As(err, &cfgErr) && cfgErr.Key == "provider.api_key" {
		fmt.Fprintf(w, "Hint: export %s=<your key>, or run 'tabchat config init' and edit the file.\n", config.CredentialEnv)
	}
}
