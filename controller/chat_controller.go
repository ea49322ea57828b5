package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Drizo7/open-ai-chatbot/models"
	"github.com/Drizo7/open-ai-chatbot/services"
)

// ChatController handles the HTTP requests for the chat relay. It
// depends on the ChatService to perform the actual business logic.
type ChatController struct {
	chatService services.ChatService
}

// NewChatController is a constructor function that creates a new
// ChatController. This is called from main.go to inject the service
// dependency.
func NewChatController(service services.ChatService) *ChatController {
	return &ChatController{
		chatService: service,
	}
}

// OpenThread is the gin handler for the GET /thread endpoint.
func (c *ChatController) OpenThread(ctx *gin.Context) {
	threadID, err := c.chatService.OpenThread(ctx.Request.Context())
	if err != nil {
		log.Printf("CONTROLLER: failed to open thread: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating thread."})
		return
	}
	ctx.JSON(http.StatusOK, models.ThreadResponse{ThreadID: threadID})
}

// PostMessage is the gin handler for the POST /message endpoint. On
// success the response body is a stream of raw text fragments; once the
// first fragment is flushed the transport has committed to 200, so later
// failures surface as in-band text rather than a status change.
func (c *ChatController) PostMessage(ctx *gin.Context) {
	var req models.MessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Message == "" || req.ThreadID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing message or threadId."})
		return
	}

	sink := newGinSink(ctx)
	err := c.chatService.PostMessage(ctx.Request.Context(), req.Message, req.ThreadID, sink)
	if err == nil {
		return
	}

	var sinkErr *services.NoteSinkError
	if errors.As(err, &sinkErr) {
		log.Printf("CONTROLLER: note sink failure: %v", err)
		// The stream already returned 200; tell the client in-band
		// instead of fabricating a success message.
		_ = sink.Write("Failed to save the note. Please try again.")
		sink.Close()
		return
	}

	if !sink.Started() {
		log.Printf("CONTROLLER: failure before streaming began: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing assistant stream."})
		return
	}

	// Mid-stream transport failure or client disconnect: nothing useful
	// can reach the client anymore.
	log.Printf("CONTROLLER: relay aborted: %v", err)
}

// ginSink adapts the gin response writer to the relay's OutputSink,
// flushing after every write so the client sees partial text before the
// stream ends.
type ginSink struct {
	ctx     *gin.Context
	started bool
	closed  bool
}

func newGinSink(ctx *gin.Context) *ginSink {
	return &ginSink{ctx: ctx}
}

func (s *ginSink) Write(text string) error {
	if s.closed {
		return errors.New("sink already closed")
	}
	if !s.started {
		s.ctx.Header("Content-Type", "text/plain; charset=utf-8")
		s.started = true
	}
	if _, err := s.ctx.Writer.WriteString(text); err != nil {
		return err
	}
	s.ctx.Writer.Flush()
	return nil
}

func (s *ginSink) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.ctx.Writer.Flush()
}

// Started reports whether any fragment reached the response body.
func (s *ginSink) Started() bool {
	return s.started
}
