// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// Callbacks for dynamic completion, set by the REPL
	TabsFn  func() []string // Returns existing tab names
	FilesFn func() []string // Returns recently saved conversation files
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for the token under the cursor, assumed to
// be at the end of input.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(input, Marker) {
		return nil
	}

	parts := strings.Fields(input)
	trailingSpace := strings.HasSuffix(input, " ")

	// Still typing the command name?
	if len(parts) == 1 && !trailingSpace {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2 // -1 for command, -1 for 0-based index
	partial := ""
	if trailingSpace {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}
	return c.completeArg(cmd, argIndex, partial)
}

// Lines returns whole-line candidates for input, the form line editors
// expect: everything before the completed token is kept as typed.
func (c *Completer) Lines(input string) []string {
	completions := c.Complete(input)
	if len(completions) == 0 {
		return nil
	}

	head := input
	if i := strings.LastIndexAny(input, " \t"); i >= 0 {
		head = input[:i+1]
	} else {
		head = ""
	}

	lines := make([]string, len(completions))
	for i, comp := range completions {
		lines[i] = head + comp.Value
	}
	return lines
}

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// completeArg returns completions for a command argument.
func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	switch cmd.Args[argIndex].Type {
	case ArgTypeTab:
		if c.TabsFn == nil {
			return nil
		}
		return completeFromList(c.TabsFn(), partial)
	case ArgTypeFile:
		if c.FilesFn == nil {
			return nil
		}
		return completeFromList(c.FilesFn(), partial)
	default:
		return nil
	}
}

// completeFromList returns the values matching partial in their given
// order, keeping the first occurrence of duplicates.
func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	seen := make(map[string]bool, len(values))
	for _, value := range values {
		if seen[value] || !strings.HasPrefix(value, partial) {
			continue
		}
		seen[value] = true
		completions = append(completions, Completion{Value: value})
	}
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	score := 100

	// Exact match
	if value == partial {
		return score + 100
	}

	// Bonus for shorter completions
	score += 20 - len(value)
	return score
}

// sortCompletions sorts completions by score (descending), keeping the
// input order for ties.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		return completions[i].Score > completions[j].Score
	})
}
