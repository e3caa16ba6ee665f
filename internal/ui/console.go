// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/ui/styles"
)

// Messages printed around the REPL loop.
const (
	WelcomeText     = "Welcome to Groq Terminal!"
	HelpHintText    = "Type /help for available commands"
	InterruptedText = "Interrupted by user. Type /exit to quit."
	GoodbyeText     = "Goodbye!"
	ThinkingText    = "Generating response..."
	ReplyHeaderText = "Assistant:"
)

// =============================================================================
// CONSOLE
// =============================================================================

// Console writes styled output for the REPL. It implements the command
// layer's Presenter.
type Console struct {
	out      io.Writer
	theme    *styles.Theme
	markdown bool
	width    int

	mdOnce sync.Once
	md     *glamour.TermRenderer
}

// NewConsole creates a console writing to out with a plain theme, markdown
// enabled and the default width.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:      out,
		theme:    styles.Plain(),
		markdown: true,
		width:    DefaultWidth,
	}
}

// WithTheme sets the style theme.
func (c *Console) WithTheme(t *styles.Theme) *Console {
	if t != nil {
		c.theme = t
	}
	return c
}

// WithMarkdown enables or disables markdown rendering of replies and panels.
func (c *Console) WithMarkdown(enabled bool) *Console {
	c.markdown = enabled
	return c
}

// WithWidth sets the wrap width. Values below MinWidth are clamped.
func (c *Console) WithWidth(width int) *Console {
	c.width = clampWidth(width)
	return c
}

// Theme returns the console's theme.
func (c *Console) Theme() *styles.Theme {
	return c.theme
}

// Width returns the wrap width.
func (c *Console) Width() int {
	return c.width
}

// =============================================================================
// MESSAGES
// =============================================================================

// Banner prints the welcome text shown when the REPL starts.
func (c *Console) Banner() {
	fmt.Fprintln(c.out, c.theme.Banner.Render(WelcomeText))
	fmt.Fprintln(c.out, c.theme.Hint.Render(HelpHintText))
	fmt.Fprintln(c.out)
}

// Interrupted reports a Ctrl+C at the prompt or during a request.
func (c *Console) Interrupted() {
	fmt.Fprintln(c.out, c.theme.Notice.Render(InterruptedText))
}

// Goodbye prints the farewell line.
func (c *Console) Goodbye() {
	fmt.Fprintln(c.out, c.theme.Banner.Render(GoodbyeText))
}

// Newline ends a line left open by the line editor, e.g. after EOF.
func (c *Console) Newline() {
	fmt.Fprintln(c.out)
}

// Success prints a confirmation line.
func (c *Console) Success(msg string) {
	fmt.Fprintln(c.out, c.theme.Success.Render(msg))
}

// Notice prints an informational line.
func (c *Console) Notice(msg string) {
	fmt.Fprintln(c.out, c.theme.Notice.Render(msg))
}

// Error prints err inline. A nil error prints nothing.
func (c *Console) Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(c.out, c.theme.Error.Render("Error: "+err.Error()))
}

// Reply prints an assistant reply under its heading.
func (c *Console) Reply(text string) {
	fmt.Fprintln(c.out, c.theme.ReplyHeader.Render(ReplyHeaderText))
	fmt.Fprintln(c.out, c.render(text))
}

// Panel prints a titled, bordered block of markdown.
func (c *Console) Panel(title, markdown string) {
	body := c.render(markdown)
	header := c.theme.PanelTitle.Render(title)
	fmt.Fprintln(c.out, c.theme.Panel.Render(header+"\n"+body))
}

// =============================================================================
// TABLES
// =============================================================================

// ShowModels prints the numbered model catalog, highlighting current.
func (c *Console) ShowModels(models []catalog.Descriptor, current catalog.Descriptor) {
	fmt.Fprintln(c.out, c.theme.PanelTitle.Render("Available Models"))
	fmt.Fprintln(c.out, c.modelTable(models, current))
}

// ShowHistory prints the tab's turns as a Role / Message table.
func (c *Console) ShowHistory(tab string, turns []model.Turn) {
	fmt.Fprintln(c.out, c.theme.PanelTitle.Render(fmt.Sprintf("Conversation History (%s)", tab)))
	fmt.Fprintln(c.out, c.historyTable(turns))
}

// ShowTabs prints every tab, marking the active one with "*".
func (c *Console) ShowTabs(tabs iter.Seq2[string, bool]) {
	fmt.Fprintln(c.out, c.theme.PanelTitle.Render("Active Tabs"))
	fmt.Fprintln(c.out, c.tabTable(tabs))
}

// =============================================================================
// MARKDOWN
// =============================================================================

// render converts markdown for the terminal, falling back to the raw text
// when rendering is disabled or fails.
func (c *Console) render(text string) string {
	if !c.markdown {
		return text
	}
	c.mdOnce.Do(func() {
		style := "dark"
		switch {
		case c.theme.ColorProfile == termenv.Ascii:
			style = "notty"
		case !c.theme.IsDark:
			style = "light"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(c.width-4),
		)
		if err == nil {
			c.md = r
		}
	})
	if c.md == nil {
		return text
	}
	out, err := c.md.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
