// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the REPL.
//
// A line starting with "/" is split on whitespace; the first token is the
// command name and the rest are positional arguments. There is no quoting.
//
// # Key Types
//
//   - Registry: ordered command table, looked up once per line
//   - Command / ArgDef: a command and its declared arguments
//   - Context: session state and collaborators passed to handlers
//   - Outcome: Continue or Exit, checked by the REPL
//   - Completer: tab completion for command names, tabs and saved files
//
// # Usage
//
//	reg := commands.NewRegistry()
//	out, err := reg.Execute(ctx, cmdCtx, "/newtab work")
//	if out == commands.Exit {
//	    return
//	}
package commands
