package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

//Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

//SourceMetadata describes where a retrieved course-material snippet came from
type SourceMetadata struct {
	ClassName string `json:"class_name,omitempty"`
	Section   string `json:"section,omitempty"`
	Title     string `json:"title,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

//Source is a citation attached to an assistant Message, pointing at retrieved course material
type Source struct {
	Content    string          `json:"content"`
	Similarity float64         `json:"similarity,omitempty"`
	Metadata   *SourceMetadata `json:"metadata,omitempty"`
}

//Message represents one persisted chat message
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Sources        []*Source `json:"sources,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

//Validate validates the given Message
func (m *Message) Validate() error {
	if err := ValidateRole(m.Role); err != nil {
		return err
	}
	if m.Content == "" {
		return fmt.Errorf("content must not be empty")
	}
	if m.Role == RoleUser && len(m.Sources) > 0 {
		return fmt.Errorf("sources are only allowed on %s messages", RoleAssistant)
	}
	return nil
}

//CreateMessage appends a Message to its Conversation (ID and CreatedAt are ignored and created) and returns its ID,
//or an error if one occurred. The Conversation's updated_at is touched.
func CreateMessage(ctx context.Context, msg *Message) (id int64, err error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err = msg.Validate(); err != nil {
		return 0, &Error{Description: "Could not validate Message", Type: ErrorTypeUser, Err: err}
	}

	var sources interface{}
	if len(msg.Sources) > 0 {
		data, jErr := json.Marshal(msg.Sources)
		if jErr != nil {
			return 0, &Error{Description: "Could not marshal Message sources", Type: ErrorTypeServer, Err: jErr}
		}
		sources = data
	}

	res, err := tx.Exec("INSERT INTO message(conversation_id, role, content, sources, created_at) VALUES(?, ?, ?, ?, ?);",
		msg.ConversationID, msg.Role, msg.Content, sources, time.Now())
	if err != nil {
		return 0, &Error{Description: "Could not insert Message", Type: ErrorTypeServer, Err: err}
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, &Error{Description: "Could not fetch Message id", Type: ErrorTypeServer, Err: err}
	}

	if err = touchConversation(ctx, msg.ConversationID); err != nil {
		return 0, err
	}

	return id, nil
}

//ReadMessages returns all Messages for the given Conversation ordered by creation time, or an error if one occurred
func ReadMessages(ctx context.Context, conversationID int64) ([]*Message, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	rows, err := tx.Query("SELECT id, role, content, sources, created_at FROM message WHERE conversation_id=? ORDER BY created_at, id;", conversationID)
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query Messages(%d)", conversationID), Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	var messages []*Message

	for rows.Next() {
		m := &Message{ConversationID: conversationID}
		var sources []byte

		sErr := rows.Scan(&(m.ID), &(m.Role), &(m.Content), &sources, &(m.CreatedAt))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Message row", Type: ErrorTypeServer, Err: sErr}
		}

		if len(sources) > 0 {
			if jErr := json.Unmarshal(sources, &(m.Sources)); jErr != nil {
				return nil, &Error{Description: fmt.Sprintf("Could not unmarshal Message(%d) sources", m.ID), Type: ErrorTypeServer, Err: jErr}
			}
		}

		messages = append(messages, m)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Message rows", Type: ErrorTypeServer, Err: err}
	}

	return messages, nil
}

//ReadMessage returns the Message with the given id, or an error if one occurred
func ReadMessage(ctx context.Context, id int64) (*Message, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	m := &Message{ID: id}
	var sources []byte

	row := tx.QueryRow("SELECT conversation_id, role, content, sources, created_at FROM message WHERE id=?", id)
	err := row.Scan(&(m.ConversationID), &(m.Role), &(m.Content), &sources, &(m.CreatedAt))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Message(%d)", id), Type: ErrorTypeServer, Err: err}
	}

	if len(sources) > 0 {
		if jErr := json.Unmarshal(sources, &(m.Sources)); jErr != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not unmarshal Message(%d) sources", id), Type: ErrorTypeServer, Err: jErr}
		}
	}

	return m, nil
}
