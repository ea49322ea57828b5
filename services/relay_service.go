package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Drizo7/open-ai-chatbot/models"

	"github.com/google/uuid"
)

// Fixed in-band messages written to the client connection.
const (
	msgParseError    = "Error while processing the function call."
	msgMissingFields = "Please provide both a title and a body for the note."
	msgNoFunction    = "Please provide a valid request for note creation."
)

// timestampLayout renders MM/DD/YYYY HH:MM:SS, 24-hour, zero-padded.
const timestampLayout = "01/02/2006 15:04:05"

// OutputSink is the client-facing side of a relay: an append-only,
// order-preserving text writer plus a terminator for the response.
type OutputSink interface {
	Write(text string) error
	Close()
}

// relaySession is the per-request state of one relay invocation. It is
// created at request start and mutated only by the relay loop, so no
// state leaks across concurrent requests.
type relaySession struct {
	id              string
	content         strings.Builder
	argFragments    []string
	sawFunctionCall bool
}

// StreamRelay consumes an upstream event stream for one request,
// demultiplexes content from function-call fragments, invokes the note
// sink when a complete valid call is assembled, and writes output to the
// client incrementally.
type StreamRelay struct {
	noteSink NoteSink
	now      func() time.Time
}

// NewStreamRelay creates a relay bound to the given note sink.
func NewStreamRelay(noteSink NoteSink) *StreamRelay {
	return &StreamRelay{
		noteSink: noteSink,
		now:      time.Now,
	}
}

// Run processes the event stream to completion and reports the outcome:
// nil on normal completion (including locally recovered payload errors),
// *UpstreamError when the stream itself fails, *NoteSinkError when the
// note could not be persisted, *SinkClosedError when the client
// connection went away. On the normal path Run closes the sink exactly
// once; on failure paths it leaves the sink to the caller.
func (r *StreamRelay) Run(ctx context.Context, events <-chan models.StreamEvent, sink OutputSink) error {
	session := &relaySession{id: uuid.New().String()}
	log.Printf("RELAY [%s]: consuming upstream stream", session.id)

	if err := r.consume(ctx, session, events, sink); err != nil {
		return err
	}

	if session.sawFunctionCall && len(session.argFragments) > 0 {
		if err := r.handleFunctionCall(ctx, session, sink); err != nil {
			return err
		}
	} else {
		if err := sink.Write(msgNoFunction); err != nil {
			return &SinkClosedError{Err: err}
		}
	}

	sink.Close()
	log.Printf("RELAY [%s]: completed, %d content bytes relayed", session.id, session.content.Len())
	return nil
}

// consume drains the event stream, flushing content fragments to the
// sink as they arrive and buffering function-call argument fragments for
// reassembly. Content flushing and argument buffering are two
// independent accumulation paths; a stream carrying both is processed on
// both, sequentially.
func (r *StreamRelay) consume(ctx context.Context, session *relaySession, events <-chan models.StreamEvent, sink OutputSink) error {
	for {
		select {
		case <-ctx.Done():
			return &SinkClosedError{Err: ctx.Err()}
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Kind {
			case models.EventContentDelta:
				session.content.WriteString(event.Text)
				if err := sink.Write(event.Text); err != nil {
					log.Printf("RELAY [%s]: client write failed, aborting: %v", session.id, err)
					return &SinkClosedError{Err: err}
				}
			case models.EventFunctionCallDelta:
				session.sawFunctionCall = true
				session.argFragments = append(session.argFragments, event.ArgumentsFragment)
			case models.EventEnd:
				return nil
			case models.EventError:
				log.Printf("RELAY [%s]: upstream stream failed: %v", session.id, event.Err)
				return &UpstreamError{Op: "stream", Err: event.Err}
			}
		}
	}
}

// handleFunctionCall reassembles the buffered argument fragments,
// validates them, and records the note. Parse and validation failures
// are recovered locally with a fixed in-band message; sink failures
// escalate to the caller.
func (r *StreamRelay) handleFunctionCall(ctx context.Context, session *relaySession, sink OutputSink) error {
	payload := strings.Join(session.argFragments, "")

	var args models.NoteArguments
	if err := json.Unmarshal([]byte(payload), &args); err != nil {
		log.Printf("RELAY [%s]: failed to parse function arguments: %v", session.id, err)
		if werr := sink.Write(msgParseError); werr != nil {
			return &SinkClosedError{Err: werr}
		}
		return nil
	}

	if args.Title == "" || args.Body == "" {
		log.Printf("RELAY [%s]: function call missing title or body", session.id)
		if werr := sink.Write(msgMissingFields); werr != nil {
			return &SinkClosedError{Err: werr}
		}
		return nil
	}

	timestamp := r.now().Format(timestampLayout)
	if err := r.noteSink.Record(ctx, args.Title, args.Body, timestamp); err != nil {
		log.Printf("RELAY [%s]: note sink failed: %v", session.id, err)
		return &NoteSinkError{Err: err}
	}

	confirmation := fmt.Sprintf("A note with the title \"%s\" was created successfully and added to Google Sheets.", args.Title)
	if err := sink.Write(confirmation); err != nil {
		return &SinkClosedError{Err: err}
	}
	return nil
}
