package services

import "fmt"

// UpstreamError reports a failure talking to the upstream chat service,
// either during call setup (thread creation, message add, stream open)
// or mid-stream.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NoteSinkError reports a failure persisting a note to the backing
// store. It is surfaced to the relay caller rather than swallowed, so
// the caller never fabricates a success message.
type NoteSinkError struct {
	Err error
}

func (e *NoteSinkError) Error() string {
	return fmt.Sprintf("note sink record failed: %v", e.Err)
}

func (e *NoteSinkError) Unwrap() error { return e.Err }

// SinkClosedError reports that a write to the client connection failed,
// typically because the client disconnected mid-stream. The relay stops
// consuming and never touches the sink again.
type SinkClosedError struct {
	Err error
}

func (e *SinkClosedError) Error() string {
	return fmt.Sprintf("client sink write failed: %v", e.Err)
}

func (e *SinkClosedError) Unwrap() error { return e.Err }
