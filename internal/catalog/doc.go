// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog provides the fixed list of selectable completion models.
//
// The catalog is built once at startup and never edited. Users pick a model
// by its 1-based number in the list:
//
//	reg := catalog.Default()
//	m, err := reg.Select(3) // llama-3.1-8b-instant
//
// Exactly one entry is the default and becomes the initial selected model.
package catalog
