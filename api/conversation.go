package api

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

//Chat modes
const (
	ModeBalanced  = "balanced"
	ModeStudy     = "study"
	ModeProfessor = "professor"
	ModeSocratic  = "socratic"
)

//Modes are the allowed chat modes
var Modes = []string{ModeBalanced, ModeStudy, ModeProfessor, ModeSocratic}

const titleMax = 50

//Conversation represents a chat conversation owned by a User
type Conversation struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	ClassID   string    `json:"class_id"`
	Mode      string    `json:"mode"`
	Pinned    bool      `json:"pinned"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

//Validate validates the given Conversation
func (c *Conversation) Validate() error {
	if err := ValidateString("title", c.Title, 255); err != nil {
		return err
	}
	if err := ValidateString("class_id", c.ClassID, 255); err != nil {
		return err
	}
	return ValidateMode(c.Mode)
}

//DeriveTitle returns a sidebar title for a conversation started with the given user message.
//Long messages are truncated to titleMax characters on a rune boundary.
func DeriveTitle(userContent string) string {
	title := strings.TrimSpace(userContent)
	if runes := []rune(title); len(runes) > titleMax {
		title = string(runes[:titleMax]) + "..."
	}
	return title
}

//CreateConversation creates a new Conversation with the given fields (ID and timestamps are ignored and created)
//and returns its ID, or an error if one occurred
func CreateConversation(ctx context.Context, conv *Conversation) (id int64, err error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err = conv.Validate(); err != nil {
		return 0, &Error{Description: "Could not validate Conversation", Type: ErrorTypeUser, Err: err}
	}

	now := time.Now()
	res, err := tx.Exec("INSERT INTO conversation(user_id, title, class_id, mode, pinned, archived, created_at, updated_at) VALUES(?, ?, ?, ?, 0, 0, ?, ?);",
		conv.UserID, conv.Title, conv.ClassID, conv.Mode, now, now)
	if err != nil {
		return 0, &Error{Description: "Could not insert Conversation", Type: ErrorTypeServer, Err: err}
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, &Error{Description: "Could not fetch Conversation id", Type: ErrorTypeServer, Err: err}
	}

	if _, err := CreateCreatedEvent(ctx, id, ConversationEventLocation); err != nil {
		return 0, &Error{Description: "Could not add Created Event", Type: ErrorTypeServer, Err: err}
	}

	return id, nil
}

//ReadConversation returns the Conversation with the given id, or an error if one occurred
func ReadConversation(ctx context.Context, id int64) (*Conversation, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	conv := &Conversation{ID: id}

	row := tx.QueryRow("SELECT user_id, title, class_id, mode, pinned, archived, created_at, updated_at FROM conversation WHERE id=?", id)
	err := row.Scan(&(conv.UserID), &(conv.Title), &(conv.ClassID), &(conv.Mode), &(conv.Pinned), &(conv.Archived), &(conv.CreatedAt), &(conv.UpdatedAt))

	switch {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, &Error{Description: fmt.Sprintf("Could not query Conversation(%d)", id), Type: ErrorTypeServer, Err: err}
	}

	return conv, nil
}

//QueryConversations returns the given User's Conversations matching the search term and archived flag,
//pinned first, most recently updated first, or an error if one occurred.
//The search term matches the title or class id; an empty search matches everything.
func QueryConversations(ctx context.Context, userID int64, search string, archived bool) ([]*Conversation, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	criteria := []string{"user_id=?", "archived=?"}
	parameters := []interface{}{userID, archived}

	if search != "" {
		criteria = append(criteria, "(title LIKE ? OR class_id LIKE ?)")
		s := fmt.Sprintf("%%%s%%", search)
		parameters = append(parameters, s, s)
	}

	query := fmt.Sprintf("SELECT id, user_id, title, class_id, mode, pinned, archived, created_at, updated_at FROM conversation WHERE %s ORDER BY pinned DESC, updated_at DESC;",
		strings.Join(criteria, " AND "))

	rows, err := tx.Query(query, parameters...)
	if err != nil {
		return nil, &Error{Description: "Could not query Conversations", Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	var conversations []*Conversation

	for rows.Next() {
		c := new(Conversation)
		sErr := rows.Scan(&(c.ID), &(c.UserID), &(c.Title), &(c.ClassID), &(c.Mode), &(c.Pinned), &(c.Archived), &(c.CreatedAt), &(c.UpdatedAt))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Conversation row", Type: ErrorTypeServer, Err: sErr}
		}

		conversations = append(conversations, c)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Conversation rows", Type: ErrorTypeServer, Err: err}
	}

	return conversations, nil
}

//RenameConversation updates the title of the Conversation with the given id, or returns an error if one occurred
func RenameConversation(ctx context.Context, id int64, title string) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err := ValidateString("title", title, 255); err != nil {
		return &Error{Description: "Could not validate title", Type: ErrorTypeUser, Err: err}
	}

	old, err := ReadConversation(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return &Error{Description: fmt.Sprintf("Could not read Conversation(%d)", id), Type: ErrorTypeUser, Err: sql.ErrNoRows}
	}

	_, err = tx.Exec("UPDATE conversation SET title=? WHERE id=?;", title, id)
	if err != nil {
		return &Error{Description: fmt.Sprintf("Could not update Conversation(%d)", id), Type: ErrorTypeServer, Err: err}
	}

	if old.Title != title {
		if _, err := CreateModifiedEvent(ctx, id, ConversationEventLocation, "title", old.Title, title); err != nil {
			return &Error{Description: fmt.Sprintf("Could not create Modified Event for Conversation(%d).Title", id), Type: ErrorTypeServer, Err: err}
		}
	}

	return nil
}

//SetConversationPinned updates the pinned flag of the Conversation with the given id, or returns an error if one occurred
func SetConversationPinned(ctx context.Context, id int64, pinned bool) error {
	return setConversationFlag(ctx, id, "pinned", pinned)
}

//SetConversationArchived updates the archived flag of the Conversation with the given id, or returns an error if one occurred
func SetConversationArchived(ctx context.Context, id int64, archived bool) error {
	return setConversationFlag(ctx, id, "archived", archived)
}

func setConversationFlag(ctx context.Context, id int64, field string, value bool) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	old, err := ReadConversation(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return &Error{Description: fmt.Sprintf("Could not read Conversation(%d)", id), Type: ErrorTypeUser, Err: sql.ErrNoRows}
	}

	_, err = tx.Exec(fmt.Sprintf("UPDATE conversation SET %s=? WHERE id=?;", field), value, id)
	if err != nil {
		return &Error{Description: fmt.Sprintf("Could not update Conversation(%d).%s", id, field), Type: ErrorTypeServer, Err: err}
	}

	oldValue := old.Pinned
	if field == "archived" {
		oldValue = old.Archived
	}
	if oldValue != value {
		if _, err := CreateModifiedEvent(ctx, id, ConversationEventLocation, field, oldValue, value); err != nil {
			return &Error{Description: fmt.Sprintf("Could not create Modified Event for Conversation(%d).%s", id, field), Type: ErrorTypeServer, Err: err}
		}
	}

	return nil
}

//DeleteConversation deletes the Conversation with the given id along with its Messages and log,
//or returns an error if one occurred
func DeleteConversation(ctx context.Context, id int64) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	for _, stmt := range []string{
		"DELETE FROM feedback WHERE message_id IN (SELECT id FROM message WHERE conversation_id=?);",
		"DELETE FROM message WHERE conversation_id=?;",
		"DELETE FROM conversation_log WHERE conversation_id=?;",
		"DELETE FROM conversation WHERE id=?;",
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return &Error{Description: fmt.Sprintf("Could not delete Conversation(%d)", id), Type: ErrorTypeServer, Err: err}
		}
	}

	return nil
}

//touchConversation bumps updated_at so the sidebar sort tracks activity
func touchConversation(ctx context.Context, id int64) error {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	_, err := tx.Exec("UPDATE conversation SET updated_at=? WHERE id=?;", time.Now(), id)
	if err != nil {
		return &Error{Description: fmt.Sprintf("Could not touch Conversation(%d)", id), Type: ErrorTypeServer, Err: err}
	}

	return nil
}
