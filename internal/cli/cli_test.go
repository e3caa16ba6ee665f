// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/cloud"
	"github.com/jeranaias/tabchat/internal/commands"
	"github.com/jeranaias/tabchat/internal/config"
	"github.com/jeranaias/tabchat/internal/conversation"
	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/session"
	"github.com/jeranaias/tabchat/internal/storage"
	"github.com/jeranaias/tabchat/internal/ui"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// scriptedInput replays lines; an error entry is returned instead of a line.
// When the script runs out it returns io.EOF.
type scriptedInput struct {
	steps   []any
	prompts []string
}

func (s *scriptedInput) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.steps) == 0 {
		return "", io.EOF
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	if err, ok := step.(error); ok {
		return "", err
	}
	return step.(string), nil
}

type harness struct {
	chat    *ChatSession
	input   *scriptedInput
	out     *bytes.Buffer
	sess    *session.Manager
	mu      sync.Mutex
	calls   []string
	dir     string
	respond func(ctx context.Context, turns []model.Turn) (string, error)
}

func newHarness(t *testing.T, steps ...any) *harness {
	t.Helper()
	h := &harness{
		input: &scriptedInput{steps: steps},
		out:   &bytes.Buffer{},
		dir:   t.TempDir(),
	}
	h.respond = func(_ context.Context, turns []model.Turn) (string, error) {
		return "echo: " + turns[len(turns)-1].Content, nil
	}

	reg := catalog.Default()
	h.sess = session.NewManager(reg.Default())
	provider := conversation.ProviderFunc(func(ctx context.Context, turns []model.Turn, modelID string) (string, error) {
		h.mu.Lock()
		h.calls = append(h.calls, modelID)
		respond := h.respond
		h.mu.Unlock()
		return respond(ctx, turns)
	})
	logger := zaptest.NewLogger(t)
	console := ui.NewConsole(h.out).WithMarkdown(false)
	registry := commands.NewRegistry()

	h.chat = &ChatSession{
		Input:    h.input,
		Console:  console,
		Spinner:  ui.NewSpinner(h.out, false),
		Engine:   conversation.NewEngine(h.sess, provider, logger),
		Commands: registry,
		CmdCtx: &commands.Context{
			Session: h.sess,
			Catalog: reg,
			Store:   storage.NewConversationStore(h.dir),
			UI:      console,
			Prompt:  NewLinePrompter(h.input.ReadLine),
			Logger:  logger,
		},
		Logger: logger,
	}
	return h
}

// =============================================================================
// REPL TESTS
// =============================================================================

func TestRun_BannerAndEOF(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.chat.Run(context.Background()))

	out := h.out.String()
	assert.True(t, strings.HasPrefix(out, "Welcome to Groq Terminal!\nType /help for available commands\n"), out)
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"), out)
	assert.Equal(t, []string{"default> "}, h.input.prompts)
}

func TestRun_ChatAppendsTurns(t *testing.T) {
	h := newHarness(t, "hello", "   ", "again")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Equal(t, []model.Turn{
		model.NewUserTurn("hello"),
		model.NewAssistantTurn("echo: hello"),
		model.NewUserTurn("again"),
		model.NewAssistantTurn("echo: again"),
	}, h.sess.History())
	assert.Equal(t, []string{"llama-3.3-70b-versatile", "llama-3.3-70b-versatile"}, h.calls)
	assert.Contains(t, h.out.String(), "Assistant:\necho: hello\n")
}

func TestRun_PromptFollowsActiveTab(t *testing.T) {
	h := newHarness(t, "/newtab work", "/switch work", "hi", "/switch default")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Equal(t, []string{"default> ", "default> ", "work> ", "work> ", "default> "}, h.input.prompts)
	assert.Empty(t, h.sess.History())
	work, err := h.sess.TabHistory("work")
	require.NoError(t, err)
	assert.Len(t, work, 2)
}

func TestRun_CtrlCAtPromptContinues(t *testing.T) {
	h := newHarness(t, liner.ErrPromptAborted, "hello")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Interrupted by user. Type /exit to quit.")
	assert.Len(t, h.sess.History(), 2)
}

func TestRun_CommandErrorsAreInline(t *testing.T) {
	h := newHarness(t, "/bogus", "/switch nowhere", "/closetab default", "/newtab")
	require.NoError(t, h.chat.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, "Error: unknown command: /bogus")
	assert.Contains(t, out, "Error: tab 'nowhere' does not exist")
	assert.Contains(t, out, "Error: cannot close the default tab")
	assert.Contains(t, out, "Error: please specify")
	assert.Equal(t, "default", h.sess.Active())
}

func TestRun_ExitConfirmed(t *testing.T) {
	h := newHarness(t, "/exit", "y", "never read")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Equal(t, []string{"default> ", "Are you sure you want to exit? [y/N]: "}, h.input.prompts)
	assert.True(t, strings.HasSuffix(h.out.String(), "Goodbye!\n"))
}

func TestRun_ExitDeclined(t *testing.T) {
	h := newHarness(t, "/exit", "n", "hello")
	require.NoError(t, h.chat.Run(context.Background()))
	assert.Len(t, h.sess.History(), 2)
}

func TestRun_ExitWarnsAboutUnsavedTabs(t *testing.T) {
	h := newHarness(t, "hello", "/exit", "yes")
	require.NoError(t, h.chat.Run(context.Background()))
	assert.Contains(t, h.input.prompts, "Unsaved tabs: default. Are you sure you want to exit? [y/N]: ")
}

func TestRun_ProviderFailureShownInline(t *testing.T) {
	h := newHarness(t, "hello", "again")
	failed := false
	h.respond = func(_ context.Context, turns []model.Turn) (string, error) {
		if !failed {
			failed = true
			return "", cloud.ErrRateLimited
		}
		return "ok", nil
	}
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Error: completion with llama-3.3-70b-versatile failed: rate limited")
	assert.Equal(t, []model.Turn{
		model.NewUserTurn("hello"),
		model.NewUserTurn("again"),
		model.NewAssistantTurn("ok"),
	}, h.sess.History())
}

func TestRun_InterruptDuringRequest(t *testing.T) {
	h := newHarness(t, "slow", "fast")
	release := make(chan struct{})
	defer close(release)

	h.respond = func(ctx context.Context, turns []model.Turn) (string, error) {
		if turns[len(turns)-1].Content == "slow" {
			<-release
			return "late", nil
		}
		return "quick", nil
	}
	sends := 0
	h.chat.Interrupts = func(ctx context.Context) (context.Context, context.CancelFunc) {
		sends++
		ctx, cancel := context.WithCancel(ctx)
		if sends == 1 {
			cancel()
		}
		return ctx, cancel
	}

	require.NoError(t, h.chat.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Interrupted by user. Type /exit to quit.")
	assert.NotContains(t, h.out.String(), "late")
	assert.Equal(t, []model.Turn{
		model.NewUserTurn("slow"),
		model.NewUserTurn("fast"),
		model.NewAssistantTurn("quick"),
	}, h.sess.History())
}

func TestRun_ModelSelection(t *testing.T) {
	h := newHarness(t, "/model", "1", "hi")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.Equal(t, "gemma2-9b-it", h.sess.Model().ID)
	assert.Equal(t, []string{"gemma2-9b-it"}, h.calls)
	assert.Contains(t, h.input.prompts, "Select model number: ")
	assert.Contains(t, h.out.String(), "Switched to model: gemma2-9b-it")
}

func TestRun_SaveAndLoadAcrossTabs(t *testing.T) {
	h := newHarness(t, "hello", "/save chat.json", "/newtab copy", "/switch copy", "/load chat.json", "/history")
	require.NoError(t, h.chat.Run(context.Background()))

	assert.FileExists(t, filepath.Join(h.dir, "chat.json"))
	copied, err := h.sess.TabHistory("copy")
	require.NoError(t, err)
	def, err := h.sess.TabHistory("default")
	require.NoError(t, err)
	assert.Equal(t, def, copied)
	assert.Contains(t, h.out.String(), "Conversation History (copy)")
}

func TestRun_ReadError(t *testing.T) {
	boom := errors.New("terminal gone")
	h := newHarness(t, boom)
	err := h.chat.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

// =============================================================================
// PROMPTER TESTS
// =============================================================================

func TestLinePrompter_Confirm(t *testing.T) {
	tests := []struct {
		answer any
		want   bool
		err    bool
	}{
		{"y", true, false},
		{" YES ", true, false},
		{"n", false, false},
		{"", false, false},
		{"yep", false, false},
		{liner.ErrPromptAborted, false, false},
		{io.EOF, false, true},
	}
	for _, tt := range tests {
		in := &scriptedInput{steps: []any{tt.answer}}
		got, err := NewLinePrompter(in.ReadLine).Confirm("Sure?")
		assert.Equal(t, tt.want, got, "%v", tt.answer)
		assert.Equal(t, tt.err, err != nil, "%v", tt.answer)
		assert.Equal(t, []string{"Sure? [y/N]: "}, in.prompts)
	}
}

func TestLinePrompter_Ask(t *testing.T) {
	in := &scriptedInput{steps: []any{" 3 ", liner.ErrPromptAborted}}
	p := NewLinePrompter(in.ReadLine)

	got, err := p.Ask("Select model number")
	require.NoError(t, err)
	assert.Equal(t, "3", got)

	_, err = p.Ask("Select model number")
	assert.ErrorIs(t, err, ErrInputAborted)
}

// =============================================================================
// ROOT COMMAND TESTS
// =============================================================================

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(config.CredentialEnv, "")
	t.Setenv("TABCHAT_PROVIDER_API_KEY", "")
	t.Setenv("TABCHAT_MODEL_DEFAULT", "")
	return home
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_MissingKeyIsConfigError(t *testing.T) {
	isolateHome(t)
	_, err := runRoot(t)

	var cfgErr *config.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	var buf bytes.Buffer
	DisplayError(&buf, err)
	assert.Contains(t, buf.String(), "GROQ_API_KEY")
}

func TestRoot_InvalidModelFlag(t *testing.T) {
	isolateHome(t)
	_, err := runRoot(t, "models", "--model", "42")

	var verrs config.ValidateErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, ExitConfigError, GetExitCode(err))
}

func TestRoot_UnknownFlagIsUsageError(t *testing.T) {
	isolateHome(t)
	_, err := runRoot(t, "--bogus")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestRoot_Models(t *testing.T) {
	isolateHome(t)
	out, err := runRoot(t, "models", "--model", "mixtral-8x7b-32768")
	require.NoError(t, err)

	for _, d := range catalog.GroqModels {
		assert.Contains(t, out, d.ID)
	}
	assert.Contains(t, out, "Max Output Tokens")
}

func TestRoot_ConfigInitAndPath(t *testing.T) {
	home := isolateHome(t)
	want := filepath.Join(home, ".tabchat", "config.toml")

	out, err := runRoot(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, want+"\n", out)

	out, err = runRoot(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, want)
	assert.FileExists(t, want)

	_, err = runRoot(t, "config", "init")
	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runRoot(t, "config", "init", "--force")
	require.NoError(t, err)

	cfg, err := config.Load(want, nil)
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestRoot_Version(t *testing.T) {
	out, err := runRoot(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "tabchat "+Version))
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", &config.ConfigurationError{Message: "x"}, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "a", Message: "b"}}, ExitConfigError},
		{"usage", &UsageError{Reason: "x"}, ExitUsageError},
		{"auth", &conversation.ProviderError{Err: cloud.ErrAuthFailed}, ExitAuthError},
		{"api", &cloud.APIError{Status: 500}, ExitNetworkError},
		{"deadline", context.DeadlineExceeded, ExitTimeoutError},
		{"other", errors.New("x"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

// =============================================================================
// COMPLETION SOURCES
// =============================================================================

func TestSavedFiles(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewConversationStore(dir)
	logger := zaptest.NewLogger(t)

	journal, err := storage.OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer journal.Close()

	ctx := context.Background()
	inDir, err := store.Save("default", nil, "conversation_default_20240101_000000.json")
	require.NoError(t, err)
	_, err = journal.Record(ctx, inDir, "default", 0, "m")
	require.NoError(t, err)

	elsewhere := filepath.Join(t.TempDir(), "other.json")
	require.NoError(t, os.WriteFile(elsewhere, []byte("[]"), 0o644))
	_, err = journal.Record(ctx, elsewhere, "work", 0, "m")
	require.NoError(t, err)

	_, err = store.Save("work", nil, "conversation_work_20240102_000000.json")
	require.NoError(t, err)

	files := savedFiles(ctx, store, journal, logger)
	assert.Equal(t, []string{
		elsewhere,
		"conversation_default_20240101_000000.json",
		"conversation_work_20240102_000000.json",
	}, files)

	assert.Equal(t, []string{
		"conversation_work_20240102_000000.json",
		"conversation_default_20240101_000000.json",
	}, savedFiles(ctx, store, nil, logger))
}
