// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
)

// Marker is the prefix that distinguishes a command from conversational input.
const Marker = "/"

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing user input.
type ParseResult struct {
	// IsCommand is true if the input starts with the marker
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name including the marker (e.g., "/help")
	CommandName string

	// Args are the positional arguments
	Args []string

	// RawInput is the trimmed input line
	RawInput string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser splits input lines and resolves command names against a registry.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses user input. Tokens are separated by whitespace; there is no
// quoting or escaping.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)

	result := ParseResult{
		RawInput:  input,
		IsCommand: strings.HasPrefix(input, Marker),
	}
	if !result.IsCommand {
		return result
	}

	parts := strings.Fields(input)
	result.CommandName = parts[0]
	if len(parts) > 1 {
		result.Args = parts[1:]
	}

	if p.registry != nil {
		result.Command = p.registry.Get(result.CommandName)
	}
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand returns true if the input appears to be a command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), Marker)
}

// ValidateArgs checks args against a command's argument definitions.
// Extra arguments are allowed and ignored by handlers.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}
	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &UsageError{
				Command: cmd.Name,
				Arg:     argDef.Name,
				Hint:    argDef.Description,
				Usage:   cmd.Usage,
			}
		}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// UsageError reports a missing required argument. The handler is not run.
type UsageError struct {
	Command string
	Arg     string
	Hint    string // e.g. "a name for the new tab"
	Usage   string
}

func (e *UsageError) Error() string {
	if e.Hint != "" {
		return "please specify " + e.Hint + " (usage: " + e.Usage + ")"
	}
	return e.Command + ": required argument '" + e.Arg + "' missing (usage: " + e.Usage + ")"
}

// UnknownCommandError reports a marker-prefixed token with no registered command.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command: " + e.Name
}
