package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

//ConversationEventLocation is the EventLocation for the Conversation type
var ConversationEventLocation = EventLocation{
	Type:    "Conversation",
	Table:   "conversation_log",
	IDField: "conversation_id",
}

//EventLocation contains information needed to add events for the given type
type EventLocation struct {
	Type    string
	Table   string
	IDField string
}

//CreatedContent represents content for a created event
type CreatedContent struct{}

//ModifiedField represents a field for a ModifiedContent
type ModifiedField struct {
	Name     string      `json:"name"`
	OldValue interface{} `json:"old_value"`
	NewValue interface{} `json:"new_value"`
}

//ModifiedContent represents content for a modified event
type ModifiedContent struct {
	Fields []*ModifiedField `json:"fields"`
}

//FeedbackContent represents content for a feedback event
type FeedbackContent struct {
	MessageID int64  `json:"message_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

//Event represents something that has happened to a record.
//UserID should be set when creating an Event and User is populated when reading one.
type Event struct {
	ID      int64       `json:"-"`
	Date    time.Time   `json:"date"`
	UserID  int64       `json:"user_id"`
	User    *User       `json:"_user,omitempty"`
	Type    string      `json:"type"`
	Content interface{} `json:"content"`
}

//CreateEvent creates a new Event for the given type and id with the given fields (ID is ignored and created)
//and returns its ID or an error if one occurred
func CreateEvent(ctx context.Context, id int64, el EventLocation, event *Event) (eventID int64, err error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	content, err := json.Marshal(event.Content)
	if err != nil {
		return 0, &Error{Description: "Could not marshal content json", Type: ErrorTypeServer, Err: err}
	}

	res, err := tx.Exec(fmt.Sprintf("INSERT INTO %s(%s, user_id, date, type, content) VALUES(?, ?, ?, ?, ?);", el.Table, el.IDField),
		id,
		event.UserID,
		event.Date,
		event.Type,
		content,
	)
	if err != nil {
		return 0, &Error{Description: "Could not insert event", Type: ErrorTypeServer, Err: err}
	}

	eventID, err = res.LastInsertId()
	if err != nil {
		return 0, &Error{Description: "Could not fetch event id", Type: ErrorTypeServer, Err: err}
	}

	return eventID, nil
}

//CreateCreatedEvent creates a new created Event for the given type and id attributed to the context user,
//and returns its ID or an error if one occurred
func CreateCreatedEvent(ctx context.Context, id int64, el EventLocation) (eventID int64, err error) {
	user := ctx.Value(UserKey).(*User)

	return CreateEvent(ctx, id, el, &Event{
		Date:    time.Now(),
		UserID:  user.ID,
		Type:    "created",
		Content: &CreatedContent{},
	})
}

//CreateModifiedEvent creates a new modified Event recording the given field change attributed to the context user,
//and returns its ID or an error if one occurred
func CreateModifiedEvent(ctx context.Context, id int64, el EventLocation, field string, oldValue, newValue interface{}) (eventID int64, err error) {
	user := ctx.Value(UserKey).(*User)

	return CreateEvent(ctx, id, el, &Event{
		Date:   time.Now(),
		UserID: user.ID,
		Type:   "modified",
		Content: &ModifiedContent{Fields: []*ModifiedField{
			{Name: field, OldValue: oldValue, NewValue: newValue},
		}},
	})
}

//CreateFeedbackEvent creates a new feedback Event for the given conversation attributed to the context user,
//and returns its ID or an error if one occurred
func CreateFeedbackEvent(ctx context.Context, conversationID int64, content *FeedbackContent) (eventID int64, err error) {
	user := ctx.Value(UserKey).(*User)

	return CreateEvent(ctx, conversationID, ConversationEventLocation, &Event{
		Date:    time.Now(),
		UserID:  user.ID,
		Type:    "feedback",
		Content: content,
	})
}

//ReadEvents returns all Events for the given type and id, or an error if one occurred
func ReadEvents(ctx context.Context, id int64, el EventLocation) ([]*Event, error) {
	tx := ctx.Value(TransactionKey).(*sql.Tx)

	rows, err := tx.Query(fmt.Sprintf("SELECT id, user_id, date, type, content FROM %s WHERE %s=? ORDER BY date, id;", el.Table, el.IDField), id)
	if err != nil {
		return nil, &Error{Description: fmt.Sprintf("Could not query %s Events(%d)", el.Type, id), Type: ErrorTypeServer, Err: err}
	}
	defer rows.Close()

	var events []*Event

	for rows.Next() {
		e := new(Event)
		var content []byte

		sErr := rows.Scan(&(e.ID), &(e.UserID), &(e.Date), &(e.Type), &content)
		if sErr != nil {
			return nil, &Error{Description: "Could not scan Event row", Type: ErrorTypeServer, Err: sErr}
		}

		var parsed interface{}
		if jErr := json.Unmarshal(content, &parsed); jErr != nil {
			return nil, &Error{Description: fmt.Sprintf("Could not unmarshal Event(%d) content", e.ID), Type: ErrorTypeServer, Err: jErr}
		}
		e.Content = parsed

		user, uErr := ReadUser(ctx, e.UserID)
		if uErr != nil {
			return nil, uErr
		}
		e.User = user

		events = append(events, e)
	}

	err = rows.Err()
	if err != nil {
		return nil, &Error{Description: "Could not scan Event rows", Type: ErrorTypeServer, Err: err}
	}

	return events, nil
}
