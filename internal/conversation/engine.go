// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/session"
)

// =============================================================================
// PROVIDER
// =============================================================================

// Provider produces one reply for a turn history. Implementations should
// return promptly once ctx is cancelled.
type Provider interface {
	Complete(ctx context.Context, turns []model.Turn, modelID string) (string, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, turns []model.Turn, modelID string) (string, error)

// Complete calls f.
func (f ProviderFunc) Complete(ctx context.Context, turns []model.Turn, modelID string) (string, error) {
	return f(ctx, turns, modelID)
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInterrupted indicates the user cancelled a pending reply.
	ErrInterrupted = errors.New("interrupted by user")

	// ErrBusy indicates Send was called while a reply was pending.
	ErrBusy = errors.New("a reply is already pending")

	// ErrEmptyInput indicates blank input was given to Send.
	ErrEmptyInput = errors.New("empty input")
)

// ProviderError wraps a failed or interrupted provider call.
type ProviderError struct {
	Tab   string
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion with %s failed: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STATE
// =============================================================================

// State is the engine's position in the exchange cycle.
type State int32

const (
	// Idle means no provider call is pending.
	Idle State = iota
	// AwaitingReply means Send is blocked on the provider.
	AwaitingReply
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReply:
		return "awaiting-reply"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine sends user input to the provider on behalf of a session.
type Engine struct {
	session  *session.Manager
	provider Provider
	logger   *zap.Logger

	state atomic.Int32

	// Provider calls still running, including abandoned ones
	inflight sync.WaitGroup
}

type result struct {
	reply string
	err   error
}

// NewEngine creates an engine. A nil logger disables logging.
func NewEngine(sess *session.Manager, provider Provider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		session:  sess,
		provider: provider,
		logger:   logger,
	}
}

// State returns the current state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Send appends input as a user turn to the active tab and asks the provider
// for a reply. The target tab and model are fixed when Send is called.
//
// On success the reply is appended as an assistant turn and returned.
// On failure the user turn stays and a *ProviderError is returned. When ctx
// is cancelled Send returns immediately with an error wrapping
// ErrInterrupted; the abandoned call's result is discarded.
func (e *Engine) Send(ctx context.Context, input string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if !e.state.CompareAndSwap(int32(Idle), int32(AwaitingReply)) {
		return "", ErrBusy
	}
	defer e.state.Store(int32(Idle))

	tab := e.session.Active()
	modelID := e.session.Model().ID

	if err := e.session.AppendTurnTo(tab, model.NewUserTurn(input)); err != nil {
		return "", err
	}
	turns, err := e.session.TabHistory(tab)
	if err != nil {
		return "", err
	}

	log := e.logger.With(zap.String("tab", tab), zap.String("model", modelID))
	log.Debug("sending turns", zap.Int("turns", len(turns)))
	start := time.Now()

	// Buffered so an abandoned call never blocks.
	done := make(chan result, 1)
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		reply, err := e.provider.Complete(ctx, turns, modelID)
		done <- result{reply: reply, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		log.Info("request abandoned", zap.Duration("elapsed", time.Since(start)))
		return "", &ProviderError{Tab: tab, Model: modelID, Err: cancellation(ctx.Err())}
	}

	if ctx.Err() != nil {
		// Cancelled while the result was in flight: discard it.
		res.err = cancellation(ctx.Err())
	}
	if res.err != nil {
		log.Warn("completion failed", zap.Error(res.err), zap.Duration("elapsed", time.Since(start)))
		return "", &ProviderError{Tab: tab, Model: modelID, Err: res.err}
	}

	if err := e.session.AppendTurnTo(tab, model.NewAssistantTurn(res.reply)); err != nil {
		return "", err
	}
	log.Debug("reply received",
		zap.Int("chars", len(res.reply)),
		zap.Duration("elapsed", time.Since(start)))
	return res.reply, nil
}

// Wait blocks until every provider call started by Send has returned,
// including calls abandoned on interrupt, or until ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cancellation maps a context error to the engine's error. User
// cancellation becomes ErrInterrupted; deadlines pass through.
func cancellation(ctxErr error) error {
	if errors.Is(ctxErr, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrInterrupted, ctxErr)
	}
	return ctxErr
}
