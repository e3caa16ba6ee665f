// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger shared by tabchat's packages.
//
// Logs go to a file so the REPL's terminal output stays clean.
package logging
