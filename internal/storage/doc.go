// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage saves and restores tab histories.
//
// # Key Types
//
//   - ConversationStore: JSON files, one array of {"role","content"} records per tab
//   - Journal: SQLite log of successful saves, used for /load completion
//   - NotFoundError, FormatError, IOError: load and save failures
//
// # Usage
//
//	store := storage.NewConversationStore(saveDir)
//	path, err := store.Save("default", turns, "")
//	turns, err = store.Load(path)
//
// Generated names follow conversation_<tab>_<YYYYmmdd_HHMMSS>.json.
package storage
