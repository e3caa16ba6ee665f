// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the color palette and lip gloss styles for tabchat's
terminal output.

# Color System (colors.go)

All colors are lip gloss AdaptiveColor values so they read on both light and
dark terminals:

  - Purple - Banner and panel borders
  - Cyan - Prompt, table headers
  - Emerald - Success messages, active markers
  - Amber - Notices and interrupts
  - Rose - Errors
  - UserRole / AssistantRole - Green and blue rows of the history table

# Theme (theme.go)

A Theme binds the palette to a renderer for one color profile. NewTheme
detects the profile with termenv and honors NO_COLOR; Plain is used when
output is not a terminal and in tests.
*/
package styles
