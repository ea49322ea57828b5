package models

// NoteArguments is the argument object of the createAndPushNote
// function, parsed from the fully reassembled payload.
type NoteArguments struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Note is the record unit persisted by the note sink.
type Note struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
}
