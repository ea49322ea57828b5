package models

// ThreadResponse is the body returned by GET /thread.
type ThreadResponse struct {
	ThreadID string `json:"threadId"`
}
