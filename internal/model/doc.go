// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversation turns.
//
// # Key Types
//
//   - Role: Sender of a turn (user or assistant)
//   - Turn: One immutable message in a tab's history
//
// Turns serialize to exactly two JSON fields, which is also the on-disk
// record format used by the storage package:
//
//	{"role": "user", "content": "hello"}
package model
