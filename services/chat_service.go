package services

import (
	"context"
	"fmt"
	"log"
)

// ChatService is the session gateway: it issues upstream thread IDs and
// hands inbound messages to the stream relay.
type ChatService interface {
	OpenThread(ctx context.Context) (string, error)
	PostMessage(ctx context.Context, message, threadID string, sink OutputSink) error
}

// chatServiceImpl holds the dependencies it needs to do its job.
type chatServiceImpl struct {
	openaiClient *OpenAIClient
	relay        *StreamRelay
}

// NewChatService creates a new chat service instance.
func NewChatService(openaiClient *OpenAIClient, relay *StreamRelay) ChatService {
	return &chatServiceImpl{
		openaiClient: openaiClient,
		relay:        relay,
	}
}

// OpenThread creates a new upstream conversation thread. Failures are
// surfaced as upstream errors; there is no retry.
func (s *chatServiceImpl) OpenThread(ctx context.Context) (string, error) {
	log.Printf("SERVICE: creating a new thread")
	threadID, err := s.openaiClient.CreateThread(ctx)
	if err != nil {
		return "", &UpstreamError{Op: "thread creation", Err: err}
	}
	return threadID, nil
}

// PostMessage records the message on the thread, opens the streaming
// chat completion and delegates to the relay. Setup failures return
// before anything is written to the sink.
func (s *chatServiceImpl) PostMessage(ctx context.Context, message, threadID string, sink OutputSink) error {
	if message == "" || threadID == "" {
		return fmt.Errorf("message and threadID are required")
	}

	log.Printf("SERVICE: adding message to thread %s", threadID)
	if err := s.openaiClient.AddMessage(ctx, threadID, message); err != nil {
		return &UpstreamError{Op: "message add", Err: err}
	}

	events, err := s.openaiClient.StreamChat(ctx, threadID, message)
	if err != nil {
		return &UpstreamError{Op: "stream open", Err: err}
	}

	return s.relay.Run(ctx, events, sink)
}
