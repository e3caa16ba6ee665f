// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - The interactive REPL.
//
// Lines starting with "/" are slash commands; any other non-blank line is
// sent to the model in the active tab.
//
// Keys:
//   Tab       Complete command names, tab names and saved files
//   Up/Down   Input history
//   Ctrl+C    At the prompt: print a hint and keep going
//             While waiting for a reply: abandon the request
//   Ctrl+D    Exit

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/tabchat/internal/commands"
	"github.com/jeranaias/tabchat/internal/conversation"
	"github.com/jeranaias/tabchat/internal/ui"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one line of input. Implementations return
// liner.ErrPromptAborted for Ctrl+C and io.EOF at end of input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with history loaded from historyFile.
// An empty historyFile disables persistence. completer may be nil.
func NewChatCLI(historyFile string, completer *commands.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	if completer != nil {
		line.SetCompleter(completer.Lines)
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: historyFile,
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine reads a line with the given prompt and records it in history.
func (c *ChatCLI) ReadLine(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Prompt reads an answer to a question without recording it in history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// SaveHistory persists command history to file with 0600 permissions.
func (c *ChatCLI) SaveHistory() error {
	if c.historyFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = c.line.WriteHistory(f)
	return err
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() error {
	saveErr := c.SaveHistory()
	if err := c.line.Close(); err != nil {
		return err
	}
	return saveErr
}

// =============================================================================
// SESSION
// =============================================================================

// ChatSession wires the line reader, command registry and engine into the
// read-eval-print loop. It owns no state of its own; tabs live in
// CmdCtx.Session.
type ChatSession struct {
	Input    LineReader
	Console  *ui.Console
	Spinner  *ui.Spinner
	Engine   *conversation.Engine
	Commands *commands.Registry
	CmdCtx   *commands.Context
	Logger   *zap.Logger

	// Interrupts derives the context for one request. The default cancels
	// it on SIGINT.
	Interrupts func(ctx context.Context) (context.Context, context.CancelFunc)
}

// PromptFor returns the input prompt for a tab.
func PromptFor(tab string) string {
	return tab + "> "
}

// Run reads and handles lines until /exit is confirmed or input ends.
func (s *ChatSession) Run(ctx context.Context) error {
	log := s.logger()
	s.Console.Banner()

	for {
		line, err := s.Input.ReadLine(PromptFor(s.CmdCtx.Session.Active()))
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			s.Console.Interrupted()
			continue
		case errors.Is(err, io.EOF):
			log.Info("input closed")
			s.Console.Newline()
			s.Console.Goodbye()
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if commands.IsCommand(line) {
			out, err := s.Commands.Execute(ctx, s.CmdCtx, line)
			if err != nil {
				log.Debug("command failed", zap.String("line", line), zap.Error(err))
				s.Console.Error(err)
			}
			if out == commands.Exit {
				s.Console.Goodbye()
				return nil
			}
			continue
		}

		s.send(ctx, line)
	}
}

// send asks the engine for a reply and prints the outcome.
func (s *ChatSession) send(ctx context.Context, line string) {
	interrupts := s.Interrupts
	if interrupts == nil {
		interrupts = notifyInterrupt
	}
	reqCtx, stop := interrupts(ctx)
	defer stop()

	if s.Spinner != nil {
		s.Spinner.Start(ui.ThinkingText)
	}
	reply, err := s.Engine.Send(reqCtx, line)
	if s.Spinner != nil {
		s.Spinner.Stop()
	}

	switch {
	case err == nil:
		s.Console.Reply(reply)
	case errors.Is(err, conversation.ErrInterrupted):
		s.Console.Interrupted()
	default:
		s.Console.Error(err)
	}
}

func (s *ChatSession) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func notifyInterrupt(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}
