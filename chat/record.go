package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tetrlabs/professor-server/api"
)

//ErrNotOwned is returned when a conversation does not belong to the requesting user
var ErrNotOwned = errors.New("conversation does not belong to user")

//TurnRecord is one finalized turn to persist. ConversationID of zero means
//the conversation does not exist yet and is created lazily.
type TurnRecord struct {
	UserID           int64
	ConversationID   int64
	ClassID          string
	Mode             string
	UserContent      string
	AssistantContent string
	Sources          []*api.Source
}

//TurnReceipt identifies the rows written for one turn
type TurnReceipt struct {
	ConversationID     int64
	UserMessageID      int64
	AssistantMessageID int64
}

//Recorder is the persistence gateway for chat turns
type Recorder interface {
	//History returns the persisted messages of a conversation owned by the user,
	//oldest first
	History(ctx context.Context, userID, conversationID int64) ([]*api.Message, error)

	//RecordTurn writes exactly one user row and one assistant row (and the
	//conversation itself if this is its first turn) in one transaction,
	//or nothing at all on error
	RecordTurn(ctx context.Context, rec *TurnRecord) (*TurnReceipt, error)
}

//SQLRecorder implements Recorder on the relational store, one transaction per call
type SQLRecorder struct {
	db *sql.DB
}

//NewSQLRecorder creates a new SQLRecorder
func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

//History implements Recorder
func (r *SQLRecorder) History(ctx context.Context, userID, conversationID int64) (messages []*api.Message, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	ctx = context.WithValue(ctx, api.TransactionKey, tx)

	conv, err := api.ReadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || conv.UserID != userID {
		return nil, ErrNotOwned
	}

	return api.ReadMessages(ctx, conversationID)
}

//RecordTurn implements Recorder
func (r *SQLRecorder) RecordTurn(ctx context.Context, rec *TurnRecord) (receipt *TurnReceipt, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	ctx = context.WithValue(ctx, api.TransactionKey, tx)

	conversationID := rec.ConversationID
	if conversationID == 0 {
		conversationID, err = api.CreateConversation(ctx, &api.Conversation{
			UserID:  rec.UserID,
			Title:   api.DeriveTitle(rec.UserContent),
			ClassID: rec.ClassID,
			Mode:    rec.Mode,
		})
		if err != nil {
			return nil, err
		}
	} else {
		conv, rErr := api.ReadConversation(ctx, conversationID)
		if rErr != nil {
			err = rErr
			return nil, err
		}
		if conv == nil || conv.UserID != rec.UserID {
			err = ErrNotOwned
			return nil, err
		}
	}

	userID, err := api.CreateMessage(ctx, &api.Message{
		ConversationID: conversationID,
		Role:           api.RoleUser,
		Content:        rec.UserContent,
	})
	if err != nil {
		return nil, err
	}

	assistantID, err := api.CreateMessage(ctx, &api.Message{
		ConversationID: conversationID,
		Role:           api.RoleAssistant,
		Content:        rec.AssistantContent,
		Sources:        rec.Sources,
	})
	if err != nil {
		return nil, err
	}

	if err = api.IncrementPromptCount(ctx, rec.ClassID); err != nil {
		return nil, err
	}

	return &TurnReceipt{
		ConversationID:     conversationID,
		UserMessageID:      userID,
		AssistantMessageID: assistantID,
	}, nil
}
