// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// confirm.go - Prompts asked in the middle of a slash command.

package cli

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// ErrInputAborted is returned by Ask when the user presses Ctrl+C.
var ErrInputAborted = errors.New("input aborted")

// LinePrompter implements the command layer's Prompter over a line reader.
type LinePrompter struct {
	read func(prompt string) (string, error)
}

// NewLinePrompter creates a prompter that reads answers with read.
func NewLinePrompter(read func(prompt string) (string, error)) *LinePrompter {
	return &LinePrompter{read: read}
}

// Confirm asks a yes/no question. Only "y" and "yes" (any case) confirm;
// Ctrl+C answers no.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	answer, err := p.read(question + " [y/N]: ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	response := strings.ToLower(strings.TrimSpace(answer))
	return response == "y" || response == "yes", nil
}

// Ask reads a free-form answer.
func (p *LinePrompter) Ask(question string) (string, error) {
	answer, err := p.read(question + ": ")
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrInputAborted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
