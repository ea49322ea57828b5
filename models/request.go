package models

// MessageRequest is the body of the POST /message endpoint.
type MessageRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId"`
}
