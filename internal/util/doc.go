// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across tabchat's packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
//   - AtomicWriteFileWithDir: the same with explicit directory permissions
//
// String Utilities:
//   - SingleLine: flatten text for one-line table cells
//   - TruncateWidth: display-width truncation with an ellipsis
//   - StringWidth: terminal columns occupied by a string
//
// # Usage
//
//	cell := util.TruncateWidth(util.SingleLine(msg), 60)
//	err := util.AtomicWriteFile(path, data, 0644)
package util
