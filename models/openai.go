package models

// Wire types for the OpenAI HTTP API. The chat completions endpoint is
// called with the legacy functions/function_call fields, which is the
// surface that streams partial function-call arguments under
// choices[i].delta.function_call.

// ChatMessage is a single message in a chat completions request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FunctionDefinition declares a callable function to the model.
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// ChatRequest is the request body for POST /chat/completions.
type ChatRequest struct {
	Model        string               `json:"model"`
	Messages     []ChatMessage        `json:"messages"`
	Functions    []FunctionDefinition `json:"functions,omitempty"`
	FunctionCall string               `json:"function_call,omitempty"`
	Stream       bool                 `json:"stream,omitempty"`
	User         string               `json:"user,omitempty"`
}

// FunctionCallDelta mirrors the incremental function_call fields of a
// streaming delta. Arguments arrive as string fragments spread across
// multiple chunks; only the first chunk carries the function name.
type FunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// ChatDelta is the partial message inside a streaming chunk.
type ChatDelta struct {
	Role         string             `json:"role,omitempty"`
	Content      *string            `json:"content,omitempty"`
	FunctionCall *FunctionCallDelta `json:"function_call,omitempty"`
}

// ChatStreamChoice is one choice entry of a streaming chunk.
type ChatStreamChoice struct {
	Index        int       `json:"index"`
	Delta        ChatDelta `json:"delta"`
	FinishReason *string   `json:"finish_reason"`
}

// ChatStreamChunk is a single server-sent event payload from the chat
// completions endpoint when stream=true.
type ChatStreamChunk struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []ChatStreamChoice `json:"choices"`
}

// Thread is the upstream conversation thread object.
type Thread struct {
	ID string `json:"id"`
}

// ThreadMessageRequest is the body for adding a message to a thread.
type ThreadMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
