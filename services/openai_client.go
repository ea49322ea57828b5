package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Drizo7/open-ai-chatbot/models"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to the OpenAI HTTP API: thread management and
// streaming chat completions.
type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// OpenAIOption customizes an OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel overrides the default chat model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// NewOpenAIClient creates a client with the given API key.
func NewOpenAIClient(httpClient *http.Client, apiKey string, options ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		httpClient: httpClient,
		baseURL:    defaultOpenAIBaseURL,
		apiKey:     apiKey,
		model:      "gpt-3.5-turbo",
	}
	for _, option := range options {
		option(client)
	}
	return client
}

func (c *OpenAIClient) newRequest(ctx context.Context, path string, body interface{}) (*http.Request, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	return httpReq, nil
}

// CreateThread opens a new upstream conversation thread and returns its
// identifier.
func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	httpReq, err := c.newRequest(ctx, "/threads", struct{}{})
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call threads api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("threads api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var thread models.Thread
	if err := json.NewDecoder(resp.Body).Decode(&thread); err != nil {
		return "", fmt.Errorf("failed to decode thread response: %w", err)
	}
	return thread.ID, nil
}

// AddMessage records the user's message on an existing thread.
func (c *OpenAIClient) AddMessage(ctx context.Context, threadID, message string) error {
	httpReq, err := c.newRequest(ctx, "/threads/"+threadID+"/messages", models.ThreadMessageRequest{
		Role:    "user",
		Content: message,
	})
	if err != nil {
		return err
	}
	httpReq.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call messages api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("messages api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}

// StreamChat starts a streaming chat completion for the given message
// and returns a channel of typed events. The channel is closed after the
// terminal End (or Error) event. Sends honor ctx cancellation so a
// disconnected client stops the producer.
func (c *OpenAIClient) StreamChat(ctx context.Context, threadID, message string) (<-chan models.StreamEvent, error) {
	httpReq, err := c.newRequest(ctx, "/chat/completions", models.ChatRequest{
		Model: c.model,
		Messages: []models.ChatMessage{
			{Role: "system", Content: GetSystemPrompt()},
			{Role: "user", Content: message},
		},
		Functions:    GetNoteFunctions(),
		FunctionCall: "auto",
		Stream:       true,
		User:         threadID,
	})
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call chat completions api: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("chat completions api returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	events := make(chan models.StreamEvent)
	go func() {
		defer resp.Body.Close()
		defer close(events)
		c.consumeStream(ctx, resp.Body, events)
	}()
	return events, nil
}

func emit(ctx context.Context, events chan<- models.StreamEvent, event models.StreamEvent) bool {
	select {
	case events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// consumeStream scans the SSE body line by line and translates each
// delta into a StreamEvent.
func (c *OpenAIClient) consumeStream(ctx context.Context, body io.Reader, events chan<- models.StreamEvent) {
	scanner := bufio.NewScanner(body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			emit(ctx, events, models.StreamEvent{Kind: models.EventEnd})
			return
		}

		var chunk models.ChatStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			emit(ctx, events, models.StreamEvent{Kind: models.EventError, Err: fmt.Errorf("failed to unmarshal stream chunk: %w", err)})
			return
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.FunctionCall != nil {
			if !emit(ctx, events, models.StreamEvent{Kind: models.EventFunctionCallDelta, ArgumentsFragment: delta.FunctionCall.Arguments}) {
				return
			}
			continue
		}
		if delta.Content != nil && *delta.Content != "" {
			if !emit(ctx, events, models.StreamEvent{Kind: models.EventContentDelta, Text: *delta.Content}) {
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		emit(ctx, events, models.StreamEvent{Kind: models.EventError, Err: fmt.Errorf("stream read error: %w", err)})
		return
	}
	emit(ctx, events, models.StreamEvent{Kind: models.EventEnd})
}
