// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

// DefaultModelIndex is the 1-based position of llama-3.3-70b-versatile.
const DefaultModelIndex = 2

func intPtr(v int) *int { return &v }

// GroqModels is the built-in catalog of Groq-hosted models.
var GroqModels = []Descriptor{
	{ID: "gemma2-9b-it", Developer: "Google", ContextWindow: 8192},
	{ID: "llama-3.3-70b-versatile", Developer: "Meta", ContextWindow: 128000, MaxOutputTokens: intPtr(32768)},
	{ID: "llama-3.1-8b-instant", Developer: "Meta", ContextWindow: 128000, MaxOutputTokens: intPtr(8192)},
	{ID: "llama-guard-3-8b", Developer: "Meta", ContextWindow: 8192},
	{ID: "llama3-70b-8192", Developer: "Meta", ContextWindow: 8192},
	{ID: "llama3-8b-8192", Developer: "Meta", ContextWindow: 8192},
	{ID: "mixtral-8x7b-32768", Developer: "Mistral", ContextWindow: 32768},
}

// Default returns the built-in Groq registry.
func Default() *Registry {
	r, err := New(GroqModels, DefaultModelIndex)
	if err != nil {
		// The built-in table is static; a failure here is a programming error.
		panic(err)
	}
	return r
}
