// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives one exchange with the completion provider.
//
// Engine.Send appends the user's turn to the active tab, calls the
// provider with the tab's full history and the selected model, and appends
// the reply on success. A failed or interrupted call leaves exactly the
// user turn behind.
//
// # Usage
//
//	engine := conversation.NewEngine(sess, client, logger)
//	reply, err := engine.Send(ctx, "hello")
//	if errors.Is(err, conversation.ErrInterrupted) {
//	    // user pressed Ctrl+C
//	}
package conversation
