// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/tabchat/internal/model"
)

func newTestStore(t *testing.T) *ConversationStore {
	t.Helper()
	s := NewConversationStore(t.TempDir())
	s.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// SAVE TESTS
// =============================================================================

func TestConversationStore_SaveGeneratedName(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Save("work", []model.Turn{model.NewUserTurn("hello")}, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir, "conversation_work_20240309_140507.json"), path)
	assert.FileExists(t, path)
}

func TestConversationStore_SaveFormat(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Save("default", []model.Turn{
		model.NewUserTurn("hello"),
		model.NewAssistantTurn("hi"),
	}, "out.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	want := `[
  {
    "role": "user",
    "content": "hello"
  },
  {
    "role": "assistant",
    "content": "hi"
  }
]
`
	assert.Equal(t, want, string(data))
}

func TestConversationStore_SaveEmptyTab(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Save("default", nil, "empty.json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestConversationStore_SaveAbsolutePath(t *testing.T) {
	s := newTestStore(t)
	target := filepath.Join(t.TempDir(), "abs.json")

	path, err := s.Save("default", nil, target)
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestConversationStore_SaveWriteFailure(t *testing.T) {
	s := newTestStore(t)
	blocker := writeFile(t, s.Dir, "blocker", "x")

	// A regular file where a directory is needed makes the write fail.
	_, err := s.Save("default", nil, filepath.Join(blocker, "child.json"))
	require.Error(t, err)

	var ioErr *IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "write", ioErr.Op)
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestConversationStore_RoundTrip(t *testing.T) {
	cases := map[string][]model.Turn{
		"empty":   {},
		"single":  {model.NewUserTurn("hello")},
		"unicode": {model.NewUserTurn("héllo 世界 🚀"), model.NewAssistantTurn("line1\nline2\t\"quoted\"")},
		"long": {
			model.NewUserTurn(strings.Repeat("a", 10000)),
			model.NewAssistantTurn(""),
			model.NewUserTurn("again"),
		},
	}

	for name, turns := range cases {
		t.Run(name, func(t *testing.T) {
			s := newTestStore(t)
			path, err := s.Save("default", turns, "")
			require.NoError(t, err)

			got, err := s.Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(turns, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConversationStore_LoadRelativeName(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir, "rel.json", `[{"role":"user","content":"x"}]`)

	got, err := s.Load("rel.json")
	require.NoError(t, err)
	assert.Equal(t, []model.Turn{model.NewUserTurn("x")}, got)
}

func TestConversationStore_LoadNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Load("nonexistent.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, filepath.Join(s.Dir, "nonexistent.json"), nf.Path)
}

func TestConversationStore_LoadFormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `[{"role":"user",`},
		{"not json", `hello`},
		{"empty file", ``},
		{"object", `{"role":"user","content":"x"}`},
		{"null", `null`},
		{"string", `"abc"`},
		{"array of numbers", `[1, 2]`},
		{"unknown role", `[{"role":"system","content":"x"}]`},
		{"missing content", `[{"role":"user"}]`},
		{"missing role", `[{"content":"x"}]`},
		{"extra field", `[{"role":"user","content":"x","name":"bob"}]`},
		{"content not string", `[{"role":"user","content":5}]`},
		{"trailing data", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			path := writeFile(t, s.Dir, "bad.json", tt.content)

			got, err := s.Load(path)
			require.Error(t, err)
			assert.Nil(t, got)

			var fe *FormatError
			assert.ErrorAs(t, err, &fe)
			assert.False(t, errors.Is(err, ErrNotFound))
		})
	}
}

func TestConversationStore_LoadDirectoryIsIOError(t *testing.T) {
	s := newTestStore(t)
	dir := filepath.Join(s.Dir, "sub")
	require.NoError(t, os.Mkdir(dir, 0755))

	_, err := s.Load(dir)
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

// =============================================================================
// LISTING TESTS
// =============================================================================

func TestConversationStore_ListSaved(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s.Dir, "conversation_a_20240101_000000.json", "[]")
	writeFile(t, s.Dir, "conversation_a_20240102_000000.json", "[]")
	writeFile(t, s.Dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir, "conversation_dir.json"), 0755))

	names, err := s.ListSaved()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"conversation_a_20240102_000000.json",
		"conversation_a_20240101_000000.json",
	}, names)
}

func TestConversationStore_ListSavedMissingDir(t *testing.T) {
	s := NewConversationStore(filepath.Join(t.TempDir(), "missing"))
	names, err := s.ListSaved()
	require.NoError(t, err)
	assert.Empty(t, names)
}
