package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Drizo7/open-ai-chatbot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseBody(lines ...string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	return b.String()
}

func collectEvents(t *testing.T, ch <-chan models.StreamEvent) []models.StreamEvent {
	t.Helper()
	var events []models.StreamEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return events
			}
			events = append(events, event)
		case <-timeout:
			t.Fatal("timed out waiting for stream events")
		}
	}
}

func TestStreamChat_DecodesDeltas(t *testing.T) {
	testCases := []struct {
		description string
		lines       []string
		expected    []models.StreamEvent
	}{
		{
			description: "content deltas",
			lines: []string{
				`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":"Hel"},"finish_reason":null}]}`,
				`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"lo"},"finish_reason":null}]}`,
				`{"id":"chatcmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`,
				`[DONE]`,
			},
			expected: []models.StreamEvent{
				{Kind: models.EventContentDelta, Text: "Hel"},
				{Kind: models.EventContentDelta, Text: "lo"},
				{Kind: models.EventEnd},
			},
		},
		{
			description: "function call fragments",
			lines: []string{
				`{"id":"chatcmpl-2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","function_call":{"name":"createAndPushNote","arguments":""}},"finish_reason":null}]}`,
				`{"id":"chatcmpl-2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"function_call":{"arguments":"{\"tit"}},"finish_reason":null}]}`,
				`{"id":"chatcmpl-2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"function_call":{"arguments":"le\":\"Groceries\",\"body\":\"buy milk\"}"}},"finish_reason":null}]}`,
				`{"id":"chatcmpl-2","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"function_call"}]}`,
				`[DONE]`,
			},
			expected: []models.StreamEvent{
				{Kind: models.EventFunctionCallDelta, ArgumentsFragment: ""},
				{Kind: models.EventFunctionCallDelta, ArgumentsFragment: `{"tit`},
				{Kind: models.EventFunctionCallDelta, ArgumentsFragment: `le":"Groceries","body":"buy milk"}`},
				{Kind: models.EventEnd},
			},
		},
		{
			description: "end without done marker",
			lines: []string{
				`{"id":"chatcmpl-3","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":"hi"},"finish_reason":null}]}`,
			},
			expected: []models.StreamEvent{
				{Kind: models.EventContentDelta, Text: "hi"},
				{Kind: models.EventEnd},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/chat/completions", r.URL.Path)
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = fmt.Fprint(w, sseBody(tc.lines...))
			}))
			defer srv.Close()

			client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
			ch, err := client.StreamChat(context.Background(), "thread_1", "hello")
			require.NoError(t, err)

			assert.Equal(t, tc.expected, collectEvents(t, ch))
		})
	}
}

func TestStreamChat_RequestShape(t *testing.T) {
	var captured models.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, sseBody(`[DONE]`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
	ch, err := client.StreamChat(context.Background(), "thread_42", "add a note")
	require.NoError(t, err)
	collectEvents(t, ch)

	assert.Equal(t, "gpt-3.5-turbo", captured.Model)
	assert.True(t, captured.Stream)
	assert.Equal(t, "thread_42", captured.User)
	assert.Equal(t, "auto", captured.FunctionCall)
	require.Len(t, captured.Functions, 1)
	assert.Equal(t, "createAndPushNote", captured.Functions[0].Name)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, models.ChatMessage{Role: "user", Content: "add a note"}, captured.Messages[1])
}

func TestStreamChat_MalformedChunk_EmitsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, sseBody(`{not json`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
	ch, err := client.StreamChat(context.Background(), "thread_1", "hello")
	require.NoError(t, err)

	events := collectEvents(t, ch)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventError, events[0].Kind)
	assert.Error(t, events[0].Err)
}

func TestStreamChat_Non200_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "bad-key", WithBaseURL(srv.URL))
	_, err := client.StreamChat(context.Background(), "thread_1", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestCreateThread(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads", r.URL.Path)
		assert.Equal(t, "assistants=v2", r.Header.Get("OpenAI-Beta"))
		_ = json.NewEncoder(w).Encode(models.Thread{ID: "thread_abc123"})
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
	threadID, err := client.CreateThread(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "thread_abc123", threadID)
}

func TestCreateThread_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"server error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
	_, err := client.CreateThread(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestAddMessage(t *testing.T) {
	var captured models.ThreadMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/threads/thread_abc123/messages", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "msg_1"})
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.Client(), "test-key", WithBaseURL(srv.URL))
	err := client.AddMessage(context.Background(), "thread_abc123", "buy milk")
	require.NoError(t, err)

	assert.Equal(t, models.ThreadMessageRequest{Role: "user", Content: "buy milk"}, captured)
}
