package chat

import "github.com/tetrlabs/professor-server/api"

// ClientMessage is the message format from client to server
type ClientMessage struct {
	Message     string `json:"message"`
	ClassID     string `json:"class_id"`
	Mode        string `json:"mode"`
	CohortID    string `json:"cohort_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`   // per-visit id correlating turns with backend-side context
	FileName    string `json:"file_name,omitempty"`    // optional uploaded file used as context
	FileContent string `json:"file_content,omitempty"` // the file's text content
}

// ServerMessage is the message format from server to client
type ServerMessage struct {
	Type           string        `json:"type"`                      // "text", "sources", "done", or "error"
	Content        string        `json:"content,omitempty"`         // full accumulated response text so far; replaces the previous frame
	Sources        []*api.Source `json:"sources,omitempty"`         // de-duplicated citations, sent with "sources"
	ConversationID int64         `json:"conversation_id,omitempty"` // sent with "done"
	MessageID      int64         `json:"message_id,omitempty"`      // persisted assistant message id, sent with "done"
	Warning        string        `json:"warning,omitempty"`         // sent with "done" (e.g. no course materials matched)
	Error          string        `json:"error,omitempty"`           // sent with "error"
}

// Message types
const (
	MessageTypeText    = "text"
	MessageTypeSources = "sources"
	MessageTypeDone    = "done"
	MessageTypeError   = "error"
)
