package api

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

//Feedback represents a user's rating of an assistant Message
type Feedback struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	UserID    int64     `json:"user_id"`
	Rating    int       `json:"rating"` //1 = helpful, -1 = not helpful
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

//Validate validates the given Feedback
func (f *Feedback) Validate() error {
	if f.Rating != 1 && f.Rating != -1 {
		return fmt.Errorf("rating (%d) must be 1 or -1", f.Rating)
	}
	if len(f.Comment) > 1024 {
		return fmt.Errorf("comment length (%d) was more than maximum allowed (1024)", len(f.Comment))
	}
	return nil
}

//CreateFeedback creates a new Feedback for the given assistant Message (ID and CreatedAt are ignored and created)
//and returns its ID, or an error if one occurred. A feedback Event is logged on the Conversation.
func CreateFeedback(ctx context.Context, fb *Feedback) (id int64, err error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	if err = fb.Validate(); err != nil {
		return 0, &Error{Description: "Could not validate Feedback", Type: ErrorTypeUser, Err: err}
	}

	msg, err := ReadMessage(ctx, fb.MessageID)
	if err != nil {
		return 0, err
	}
	if msg == nil {
		return 0, &Error{Description: fmt.Sprintf("Could not read Message(%d)", fb.MessageID), Type: ErrorTypeUser, Err: sql.ErrNoRows}
	}
	if msg.Role != RoleAssistant {
		return 0, &Error{Description: "Could not validate Feedback", Type: ErrorTypeUser, Err: fmt.Errorf("message (%d) is not an %s message", fb.MessageID, RoleAssistant)}
	}

	res, err := tx.Exec("INSERT INTO feedback(message_id, user_id, rating, comment, created_at) VALUES(?, ?, ?, ?, ?);",
		fb.MessageID, fb.UserID, fb.Rating, fb.Comment, time.Now())
	if err != nil {
		return 0, &Error{Description: "Could not insert Feedback", Type: ErrorTypeServer, Err: err}
	}

	id, err = res.LastInsertId()
	if err != nil {
		return 0, &Error{Description: "Could not fetch Feedback id", Type: ErrorTypeServer, Err: err}
	}

	if _, err := CreateFeedbackEvent(ctx, msg.ConversationID, &FeedbackContent{MessageID: fb.MessageID, Rating: fb.Rating, Comment: fb.Comment}); err != nil {
		return 0, err
	}

	return id, nil
}

//ReadFeedback returns all Feedback for the given Message, or an error if one occurred
func ReadFeedback(ctx context.Context, messageID int64) ([]*Feedback, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	rows, err := tx.Query("SELECT id, user_id, rating, comment, created_at FROM feedback WHERE message_id=? ORDER BY created_at, id;", messageID)
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query Feedback(%d)", messageID), Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	var feedback []*Feedback

	for rows.Next() {
		f := &Feedback{MessageID: messageID}
		sErr := rows.Scan(&(f.ID), &(f.UserID), &(f.Rating), &(f.Comment), &(f.CreatedAt))
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Feedback row", Type: ErrorTypeServer, Err: sErr}
		}

		feedback = append(feedback, f)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Feedback rows", Type: ErrorTypeServer, Err: err}
	}

	return feedback, nil
}
