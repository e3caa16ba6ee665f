// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound indicates the conversation file does not exist.
var ErrNotFound = errors.New("file not found")

// NotFoundError reports the path that could not be found.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FormatError indicates a conversation file is not a valid turn sequence.
type FormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid JSON format in %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid JSON format in %s: %s", e.Path, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IOError wraps a filesystem failure while reading or writing a conversation.
type IOError struct {
	Op   string // "read", "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// FilenameTimeLayout is the timestamp layout used in generated save names.
const FilenameTimeLayout = "20060102_150405"

// ConversationStore reads and writes tab histories as JSON arrays of
// {"role", "content"} records.
type ConversationStore struct {
	// Dir is where generated and relative save names are placed.
	// Empty means the working directory.
	Dir string

	// now is replaced in tests.
	now func() time.Time
}

// NewConversationStore creates a store rooted at dir.
func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{Dir: dir, now: time.Now}
}

// DefaultFilename returns the generated name for a save of tab at t.
func DefaultFilename(tab string, t time.Time) string {
	return fmt.Sprintf("conversation_%s_%s.json", tab, t.Format(FilenameTimeLayout))
}

// Resolve maps a user-supplied name to a path. Absolute names are kept,
// relative names are joined to Dir.
func (s *ConversationStore) Resolve(name string) string {
	if filepath.IsAbs(name) || s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes turns to name (or a generated name when empty) and returns the
// path written. The file is replaced atomically.
func (s *ConversationStore) Save(tab string, turns []model.Turn, name string) (string, error) {
	if name == "" {
		name = DefaultFilename(tab, s.clock())
	}
	path := s.Resolve(name)

	records := turns
	if records == nil {
		records = []model.Turn{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", &IOError{Op: "encode", Path: path, Err: err}
	}
	data = append(data, '\n')

	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", &IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// =============================================================================
// LOAD
// =============================================================================

// record mirrors model.Turn with pointer fields so missing keys are detectable.
type record struct {
	Role    *string `json:"role"`
	Content *string `json:"content"`
}

// Load reads a conversation file. The returned turns are validated: every
// record must carry exactly a known role and a content string.
func (s *ConversationStore) Load(name string) ([]model.Turn, error) {
	path := s.Resolve(name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return decodeTurns(path, data)
}

func decodeTurns(path string, data []byte) ([]model.Turn, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, &FormatError{Path: path, Reason: "malformed JSON"}
		}
		return nil, &FormatError{Path: path, Reason: "top-level value is not an array"}
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var records []record
	if err := dec.Decode(&records); err != nil {
		return nil, &FormatError{Path: path, Reason: "malformed record", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &FormatError{Path: path, Reason: "trailing data after array"}
	}

	turns := make([]model.Turn, 0, len(records))
	for i, r := range records {
		if r.Role == nil || r.Content == nil {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("record %d: missing role or content", i)}
		}
		role := model.Role(*r.Role)
		if !role.Valid() {
			return nil, &FormatError{Path: path, Reason: fmt.Sprintf("record %d: unknown role %q", i, *r.Role)}
		}
		turns = append(turns, model.Turn{Role: role, Content: *r.Content})
	}
	return turns, nil
}

// =============================================================================
// LISTING
// =============================================================================

// ListSaved returns the conversation files in Dir matching the generated
// name pattern, newest name first.
func (s *ConversationStore) ListSaved() ([]string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: dir, Err: err}
	}

	var names []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "conversation_") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *ConversationStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
