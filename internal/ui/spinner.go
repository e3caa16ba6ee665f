// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Spinner animates a single status line while a request is in flight.
// A disabled spinner writes nothing, for use when output is not a terminal.
type Spinner struct {
	out     io.Writer
	frames  spinner.Spinner
	style   lipgloss.Style
	enabled bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a spinner using ASCII line frames.
func NewSpinner(out io.Writer, enabled bool) *Spinner {
	return &Spinner{
		out:     out,
		frames:  spinner.Line,
		style:   lipgloss.NewStyle(),
		enabled: enabled,
	}
}

// WithStyle sets the style applied to the frame glyph.
func (s *Spinner) WithStyle(style lipgloss.Style) *Spinner {
	s.style = style
	return s
}

// WithFrames replaces the animation frames.
func (s *Spinner) WithFrames(frames spinner.Spinner) *Spinner {
	if len(frames.Frames) > 0 && frames.FPS > 0 {
		s.frames = frames
	}
	return s
}

// Start begins animating message. Starting a running spinner is a no-op.
func (s *Spinner) Start(message string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(message, s.stop, s.done)
}

// Stop halts the animation and clears its line. It blocks until the
// animation goroutine has exited.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *Spinner) run(message string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.frames.FPS)
	defer ticker.Stop()

	width := 0
	for i := 0; ; i++ {
		frame := s.frames.Frames[i%len(s.frames.Frames)]
		line := s.style.Render(frame) + " " + message
		if w := runewidth.StringWidth(frame + " " + message); w > width {
			width = w
		}
		fmt.Fprint(s.out, "\r"+line)

		select {
		case <-stop:
			fmt.Fprint(s.out, "\r"+strings.Repeat(" ", width)+"\r")
			return
		case <-ticker.C:
		}
	}
}
