// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the Groq chat completions client.
//
// Groq exposes an OpenAI-compatible API. GroqClient sends the whole turn
// history on every call, non-streaming, at temperature 0.7, and makes a
// single attempt.
//
// # Usage
//
//	client := cloud.NewGroqClient(apiKey).WithLogger(logger)
//	reply, err := client.Complete(ctx, turns, "llama-3.3-70b-versatile")
//
// # Errors
//
//   - ErrNotConfigured: no API key
//   - ErrAuthFailed: HTTP 401
//   - ErrModelNotFound: HTTP 404
//   - ErrRateLimited: HTTP 429
//   - *APIError: any other non-200 status
package cloud
