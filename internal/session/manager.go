// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation tabs of one interactive session.
package session

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/model"
)

// DefaultTab is the reserved tab that exists for the whole session.
const DefaultTab = "default"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTabNotFound indicates the named tab does not exist.
	ErrTabNotFound = errors.New("tab does not exist")

	// ErrDuplicateTab indicates a tab with that name already exists.
	ErrDuplicateTab = errors.New("tab already exists")

	// ErrProtectedTab indicates an attempt to close the default tab.
	ErrProtectedTab = errors.New("cannot close the default tab")
)

// TabError records the tab an operation failed on.
type TabError struct {
	Op  string // "create", "close", "switch"
	Tab string
	Err error
}

func (e *TabError) Error() string {
	switch e.Err {
	case ErrDuplicateTab:
		return fmt.Sprintf("tab '%s' already exists", e.Tab)
	case ErrTabNotFound:
		return fmt.Sprintf("tab '%s' does not exist", e.Tab)
	case ErrProtectedTab:
		return e.Err.Error()
	}
	return fmt.Sprintf("%s tab '%s': %v", e.Op, e.Tab, e.Err)
}

func (e *TabError) Unwrap() error {
	return e.Err
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager holds every tab of the session, their creation order, the active
// tab and the selected model.
//
// Invariants maintained by every method:
//   - active is always a key of tabs
//   - order lists every key of tabs exactly once, in creation order
//   - DefaultTab is always present
type Manager struct {
	mu sync.Mutex

	tabs   map[string][]model.Turn
	order  []string
	active string

	// Tabs changed since they were last saved or loaded
	dirty map[string]bool

	selected catalog.Descriptor
}

// NewManager creates a session containing only the default tab, with
// selected as the current model.
func NewManager(selected catalog.Descriptor) *Manager {
	return &Manager{
		tabs:     map[string][]model.Turn{DefaultTab: {}},
		order:    []string{DefaultTab},
		active:   DefaultTab,
		dirty:    make(map[string]bool),
		selected: selected,
	}
}

// =============================================================================
// TAB LIFECYCLE
// =============================================================================

// CreateTab adds an empty tab at the end of the tab order.
// The active tab does not change.
func (m *Manager) CreateTab(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tabs[name]; ok {
		return &TabError{Op: "create", Tab: name, Err: ErrDuplicateTab}
	}
	m.tabs[name] = []model.Turn{}
	m.order = append(m.order, name)
	return nil
}

// CloseTab removes a tab and its history. When the closed tab was active the
// first remaining tab in order becomes active and switched reports true.
func (m *Manager) CloseTab(name string) (switched bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == DefaultTab {
		return false, &TabError{Op: "close", Tab: name, Err: ErrProtectedTab}
	}
	if _, ok := m.tabs[name]; !ok {
		return false, &TabError{Op: "close", Tab: name, Err: ErrTabNotFound}
	}

	delete(m.tabs, name)
	delete(m.dirty, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	if m.active == name {
		m.active = m.order[0]
		return true, nil
	}
	return false, nil
}

// SwitchTab makes name the active tab. On error the active tab is unchanged.
func (m *Manager) SwitchTab(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tabs[name]; !ok {
		return &TabError{Op: "switch", Tab: name, Err: ErrTabNotFound}
	}
	m.active = name
	return nil
}

// Active returns the name of the active tab.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Has reports whether a tab with that name exists.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tabs[name]
	return ok
}

// Tabs returns the tab names in creation order.
func (m *Manager) Tabs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// ListTabs yields (name, isActive) for every tab in creation order.
// Each range over the sequence starts from a fresh snapshot, so it may be
// iterated any number of times and the loop body may call back into m.
func (m *Manager) ListTabs() iter.Seq2[string, bool] {
	return func(yield func(string, bool) bool) {
		m.mu.Lock()
		order := make([]string, len(m.order))
		copy(order, m.order)
		active := m.active
		m.mu.Unlock()

		for _, name := range order {
			if !yield(name, name == active) {
				return
			}
		}
	}
}

// =============================================================================
// ACTIVE TAB HISTORY
// =============================================================================

// History returns a copy of the active tab's turns.
func (m *Manager) History() []model.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.CloneTurns(m.tabs[m.active])
}

// TabHistory returns a copy of the named tab's turns.
func (m *Manager) TabHistory(name string) ([]model.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns, ok := m.tabs[name]
	if !ok {
		return nil, &TabError{Op: "read", Tab: name, Err: ErrTabNotFound}
	}
	return model.CloneTurns(turns), nil
}

// AppendTurn appends a turn to the active tab.
func (m *Manager) AppendTurn(turn model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[m.active] = append(m.tabs[m.active], turn)
	m.dirty[m.active] = true
}

// AppendTurnTo appends a turn to a specific tab. It is used by callers that
// captured the target tab before a blocking call.
func (m *Manager) AppendTurnTo(name string, turn model.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[name]; !ok {
		return &TabError{Op: "append", Tab: name, Err: ErrTabNotFound}
	}
	m.tabs[name] = append(m.tabs[name], turn)
	m.dirty[name] = true
	return nil
}

// ClearActive empties the active tab's history. The tab itself remains.
func (m *Manager) ClearActive() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tabs[m.active]) > 0 {
		m.dirty[m.active] = true
	}
	m.tabs[m.active] = []model.Turn{}
}

// ReplaceActive replaces the active tab's history with turns.
// The tab is considered in sync with storage afterwards.
func (m *Manager) ReplaceActive(turns []model.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[m.active] = model.CloneTurns(turns)
	delete(m.dirty, m.active)
}

// =============================================================================
// DIRTY TRACKING
// =============================================================================

// MarkClean records that a tab's history has been written to storage.
func (m *Manager) MarkClean(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dirty, name)
}

// DirtyTabs returns, in tab order, the tabs with unsaved turns.
func (m *Manager) DirtyTabs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, name := range m.order {
		if m.dirty[name] && len(m.tabs[name]) > 0 {
			out = append(out, name)
		}
	}
	return out
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// Model returns the selected model.
func (m *Manager) Model() catalog.Descriptor {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// SetModel changes the selected model.
func (m *Manager) SetModel(d catalog.Descriptor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = d
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time summary of the session.
type Status struct {
	Active    string
	TabCount  int
	TurnCount int // turns in the active tab
	Model     string
	Dirty     []string
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	dirty := m.DirtyTabs()

	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		Active:    m.active,
		TabCount:  len(m.order),
		TurnCount: len(m.tabs[m.active]),
		Model:     m.selected.ID,
		Dirty:     dirty,
	}
}
