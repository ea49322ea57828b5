package models

// StreamEventKind discriminates the variants of a StreamEvent.
type StreamEventKind int

const (
	// EventContentDelta carries a fragment of assistant-visible text.
	EventContentDelta StreamEventKind = iota
	// EventFunctionCallDelta carries a fragment of the JSON-encoded
	// function-call argument payload. Fragments concatenate in arrival
	// order to reconstruct the full payload.
	EventFunctionCallDelta
	// EventEnd marks the end of the stream; no further events follow.
	EventEnd
	// EventError reports an upstream transport or decode failure.
	EventError
)

// StreamEvent is one incremental unit pulled from the upstream chat
// stream, modeled as a tagged variant so downstream logic never touches
// untyped wire fields.
type StreamEvent struct {
	Kind StreamEventKind

	// Text is set for EventContentDelta.
	Text string

	// ArgumentsFragment is set for EventFunctionCallDelta.
	ArgumentsFragment string

	// Err is set for EventError.
	Err error
}
