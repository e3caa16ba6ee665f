// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components used by the console.
type Theme struct {
	// Terminal capabilities
	ColorProfile termenv.Profile
	IsDark       bool

	Banner      lipgloss.Style
	Hint        lipgloss.Style
	Prompt      lipgloss.Style
	Success     lipgloss.Style
	Notice      lipgloss.Style
	Error       lipgloss.Style
	PanelTitle  lipgloss.Style
	Panel       lipgloss.Style
	ReplyHeader lipgloss.Style

	TableHeader  lipgloss.Style
	TableCell    lipgloss.Style
	TableBorder  lipgloss.Style
	UserRow      lipgloss.Style
	AssistantRow lipgloss.Style
	ActiveMarker lipgloss.Style
	CurrentModel lipgloss.Style
}

// DetectProfile returns the color profile for stdout, honoring NO_COLOR and
// FORCE_COLOR.
func DetectProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return termenv.TrueColor
	}
	return termenv.NewOutput(os.Stdout).ColorProfile()
}

// NewTheme creates a theme for the detected terminal.
func NewTheme() *Theme {
	profile := DetectProfile()
	dark := true
	if profile != termenv.Ascii {
		dark = termenv.HasDarkBackground()
	}
	return NewThemeWithProfile(profile, dark)
}

// NewThemeWithProfile creates a theme for an explicit color profile.
func NewThemeWithProfile(profile termenv.Profile, dark bool) *Theme {
	t := &Theme{
		ColorProfile: profile,
		IsDark:       dark,
	}
	t.initStyles()
	return t
}

// Plain returns a theme that emits no escape sequences.
func Plain() *Theme {
	return NewThemeWithProfile(termenv.Ascii, true)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	r := lipgloss.NewRenderer(os.Stdout)
	r.SetColorProfile(t.ColorProfile)
	r.SetHasDarkBackground(t.IsDark)

	t.Banner = r.NewStyle().Bold(true).Foreground(Purple)
	t.Hint = r.NewStyle().Foreground(TextSecondary)
	t.Prompt = r.NewStyle().Bold(true).Foreground(Cyan)
	t.Success = r.NewStyle().Foreground(Emerald)
	t.Notice = r.NewStyle().Foreground(Amber)
	t.Error = r.NewStyle().Bold(true).Foreground(Rose)
	t.PanelTitle = r.NewStyle().Bold(true).Foreground(Purple)
	t.Panel = r.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
	t.ReplyHeader = r.NewStyle().Bold(true).Foreground(AssistantRole)

	t.TableHeader = r.NewStyle().Bold(true).Foreground(Cyan).Padding(0, 1)
	t.TableCell = r.NewStyle().Foreground(TextPrimary).Padding(0, 1)
	t.TableBorder = r.NewStyle().Foreground(TextMuted)
	t.UserRow = r.NewStyle().Foreground(UserRole).Padding(0, 1)
	t.AssistantRow = r.NewStyle().Foreground(AssistantRole).Padding(0, 1)
	t.ActiveMarker = r.NewStyle().Bold(true).Foreground(Emerald).Padding(0, 1)
	t.CurrentModel = r.NewStyle().Bold(true).Foreground(Emerald).Padding(0, 1)
}
