// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders tabchat's terminal output.
//
// Console implements the command layer's Presenter: confirmation and error
// lines, markdown panels rendered with glamour, and lip gloss tables for the
// model catalog, tab list and conversation history. Spinner shows progress
// while a reply is pending.
//
// # Usage
//
//	con := ui.NewConsole(os.Stdout).
//	    WithTheme(styles.NewTheme()).
//	    WithWidth(ui.TerminalWidth(os.Stdout))
//	con.Banner()
//	con.Reply("**hello**")
package ui
