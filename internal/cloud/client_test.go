// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeranaias/tabchat/internal/model"
)

const testKey = "gsk_test_abcdefghijklmnopqrstuvwxyz0123456789"

const okBody = `{
	"id": "chatcmpl-1",
	"model": "llama-3.3-70b-versatile",
	"choices": [{
		"message": {"role": "assistant", "content": "hi there"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGroqClient(testKey).
		WithBaseURL(server.URL + "/").
		WithHTTPClient(server.Client()).
		WithLogger(zaptest.NewLogger(t))
}

// =============================================================================
// REQUEST TESTS
// =============================================================================

func TestComplete_SendsRequest(t *testing.T) {
	var got ChatRequest
	var auth, contentType, path string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		path = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Write([]byte(okBody))
	})

	turns := []model.Turn{
		model.NewUserTurn("hello"),
		model.NewAssistantTurn("hey"),
		model.NewUserTurn("how are you"),
	}
	reply, err := client.Complete(context.Background(), turns, "gemma2-9b-it")
	require.NoError(t, err)
	assert.Equal(t, "hi there", reply)

	assert.Equal(t, "Bearer "+testKey, auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "/chat/completions", path)
	assert.Equal(t, "gemma2-9b-it", got.Model)
	assert.False(t, got.Stream)
	assert.Equal(t, 0.7, got.Temperature)
	assert.Equal(t, []ChatMessage{
		{Role: "user", Content: "hello"},
		{Role: "assistant", Content: "hey"},
		{Role: "user", Content: "how are you"},
	}, got.Messages)
}

func TestComplete_SingleAttempt(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	})

	_, err := client.Complete(context.Background(), []model.Turn{model.NewUserTurn("x")}, "m")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
	assert.Equal(t, "overloaded", apiErr.Message)
}

// =============================================================================
// ERROR MAPPING TESTS
// =============================================================================

func TestComplete_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"auth json", http.StatusUnauthorized, `{"error":{"message":"Invalid API Key","code":"invalid_api_key"}}`, ErrAuthFailed},
		{"auth plain", http.StatusUnauthorized, `nope`, ErrAuthFailed},
		{"model json", http.StatusNotFound, `{"error":{"message":"model does not exist"}}`, ErrModelNotFound},
		{"model plain", http.StatusNotFound, ``, ErrModelNotFound},
		{"rate json", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, ErrRateLimited},
		{"rate plain", http.StatusTooManyRequests, ``, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := client.Complete(context.Background(), nil, "m")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComplete_APIErrorWithCode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"context too long","code":"context_length_exceeded"}}`))
	})

	_, err := client.Complete(context.Background(), nil, "m")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "context_length_exceeded", apiErr.Code)
	assert.Equal(t, "Groq error [context_length_exceeded] (HTTP 400): context too long", apiErr.Error())
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	})
	_, err := client.Complete(context.Background(), nil, "m")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestComplete_MalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": [`))
	})
	_, err := client.Complete(context.Background(), nil, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestComplete_NotConfigured(t *testing.T) {
	_, err := NewGroqClient("   ").Complete(context.Background(), nil, "m")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestComplete_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Complete(ctx, []model.Turn{model.NewUserTurn("x")}, "m")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

// =============================================================================
// KEY HANDLING TESTS
// =============================================================================

func TestAPIKeyMasked(t *testing.T) {
	c := NewGroqClient(testKey)
	masked := c.APIKeyMasked()
	assert.NotContains(t, masked, "gsk_")
	assert.NotContains(t, masked, testKey[len(testKey)-6:])
	assert.Contains(t, masked, c.KeyFingerprint())
	assert.Len(t, c.KeyFingerprint(), 8)

	assert.Equal(t, "[not set]", NewGroqClient("").APIKeyMasked())
	assert.Equal(t, "none", NewGroqClient("").KeyFingerprint())
}

func TestBuilders(t *testing.T) {
	c := NewGroqClient(testKey).WithBaseURL("https://example.test/v1/").WithTimeout(5 * time.Second)
	assert.Equal(t, "https://example.test/v1", c.BaseURL())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)

	c.WithBaseURL("").WithTimeout(0)
	assert.Equal(t, "https://example.test/v1", c.BaseURL())
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.True(t, strings.HasPrefix(DefaultGroqURL, "https://"))
}
