// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog provides the fixed list of selectable completion models.
package catalog

import (
	"fmt"
	"strconv"
)

// =============================================================================
// DESCRIPTOR
// =============================================================================

// Descriptor describes one backend model. Descriptors are immutable once the
// registry is built.
type Descriptor struct {
	ID              string
	Developer       string
	ContextWindow   int
	MaxOutputTokens *int // nil when the provider publishes no limit
}

// MaxOutputLabel returns the max output token limit for display, or "-".
func (d Descriptor) MaxOutputLabel() string {
	if d.MaxOutputTokens == nil {
		return "-"
	}
	return strconv.Itoa(*d.MaxOutputTokens)
}

// ContextWindowLabel returns the context window for display, or "-".
func (d Descriptor) ContextWindowLabel() string {
	if d.ContextWindow <= 0 {
		return "-"
	}
	return strconv.Itoa(d.ContextWindow)
}

// =============================================================================
// ERRORS
// =============================================================================

// InvalidSelectionError is returned when a selection does not name a catalog entry.
type InvalidSelectionError struct {
	Choice string
	Max    int
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid model number: %s (choose 1-%d)", e.Choice, e.Max)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is an ordered, read-only model catalog with one designated default.
type Registry struct {
	models       []Descriptor
	defaultIndex int // 0-based
}

// New builds a registry from models. defaultIndex is 1-based, matching Select.
func New(models []Descriptor, defaultIndex int) (*Registry, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("catalog: no models")
	}
	if defaultIndex < 1 || defaultIndex > len(models) {
		return nil, fmt.Errorf("catalog: default index %d out of range 1-%d", defaultIndex, len(models))
	}
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m.ID == "" {
			return nil, fmt.Errorf("catalog: model with empty id")
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("catalog: duplicate model id %q", m.ID)
		}
		seen[m.ID] = true
	}

	cp := make([]Descriptor, len(models))
	copy(cp, models)
	return &Registry{models: cp, defaultIndex: defaultIndex - 1}, nil
}

// Len returns the number of models in the catalog.
func (r *Registry) Len() int {
	return len(r.models)
}

// All returns a copy of the catalog in display order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.models))
	copy(out, r.models)
	return out
}

// Default returns the designated default model.
func (r *Registry) Default() Descriptor {
	return r.models[r.defaultIndex]
}

// Select returns the model at the given 1-based index.
func (r *Registry) Select(index int) (Descriptor, error) {
	if index < 1 || index > len(r.models) {
		return Descriptor{}, &InvalidSelectionError{Choice: strconv.Itoa(index), Max: len(r.models)}
	}
	return r.models[index-1], nil
}

// SelectString parses a user-typed model number and selects it.
func (r *Registry) SelectString(choice string) (Descriptor, error) {
	index, err := strconv.Atoi(choice)
	if err != nil {
		return Descriptor{}, &InvalidSelectionError{Choice: choice, Max: len(r.models)}
	}
	d, err := r.Select(index)
	if err != nil {
		return Descriptor{}, &InvalidSelectionError{Choice: choice, Max: len(r.models)}
	}
	return d, nil
}

// ByID looks a model up by its provider identifier.
func (r *Registry) ByID(id string) (Descriptor, bool) {
	for _, m := range r.models {
		if m.ID == id {
			return m, true
		}
	}
	return Descriptor{}, false
}

// IndexOf returns the 1-based index of the model with the given id, or 0.
func (r *Registry) IndexOf(id string) int {
	for i, m := range r.models {
		if m.ID == id {
			return i + 1
		}
	}
	return 0
}
