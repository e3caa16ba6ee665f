// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the tabchat command and its interactive REPL.
//
// # Key Types
//
//   - ChatSession: the read-eval-print loop over tabs, commands and the engine
//   - ChatCLI: liner-backed line editing with history and completion
//   - LinePrompter: yes/no and free-form questions asked by slash commands
//
// # Commands
//
//   - tabchat: start the REPL (flags --config, --model, --save-dir, --verbose)
//   - tabchat models: print the model catalog
//   - tabchat config init | path: write or locate the config file
//   - tabchat version
//
// # Exit Codes
//
// Errors returned by the command tree map to exit codes with GetExitCode;
// a missing API key is a configuration error (3) reported before the REPL
// starts.
package cli
