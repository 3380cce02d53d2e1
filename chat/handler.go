package chat

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/tetrlabs/professor-server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

//user-facing failure messages
const (
	errSendFailed    = "Failed to send message. Please try again."
	errNoContent     = "The AI didn't send any content. Please try again."
	errLoadHistory   = "Failed to load conversation"
	errSaveTurn      = "Failed to save conversation"
	errNoClass       = "Select a course before sending a message"
	errEmptyMessage  = "Message cannot be empty"
	errStreamAborted = "The response stream was interrupted. Please try again."
)

// Handler handles WebSocket chat connections. One connection carries one
// turn: the user message in, incremental assistant state out, then a terminal
// "done" or "error" frame.
type Handler struct {
	recorder Recorder
	client   *Client
	history  *HistoryCache
}

// NewHandler creates a new chat handler
func NewHandler(recorder Recorder, client *Client, history *HistoryCache) *Handler {
	return &Handler{
		recorder: recorder,
		client:   client,
		history:  history,
	}
}

// wsSink relays reducer snapshots to the browser
type wsSink struct {
	conn *websocket.Conn
}

func (s *wsSink) Text(snapshot *Snapshot) error {
	return s.conn.WriteJSON(ServerMessage{
		Type:    MessageTypeText,
		Content: snapshot.Content,
	})
}

func (s *wsSink) Sources(sources []*api.Source) error {
	return s.conn.WriteJSON(ServerMessage{
		Type:    MessageTypeSources,
		Sources: sources,
	})
}

// ServeHTTP handles the WebSocket upgrade and one chat turn
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Set by the auth middleware
	user := r.Context().Value(api.UserKey).(*api.User)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var clientMsg ClientMessage
	if err := conn.ReadJSON(&clientMsg); err != nil {
		h.sendError(conn, "Failed to read message")
		return
	}

	if clientMsg.Message == "" {
		h.sendError(conn, errEmptyMessage)
		return
	}
	if clientMsg.ClassID == "" {
		h.sendError(conn, errNoClass)
		return
	}
	if clientMsg.Mode == "" {
		clientMsg.Mode = api.ModeBalanced
	}
	if err := api.ValidateMode(clientMsg.Mode); err != nil {
		h.sendError(conn, err.Error())
		return
	}

	var conversationID int64
	if raw := r.URL.Query().Get("conversation_id"); raw != "" {
		conversationID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.sendError(conn, "Invalid conversation id")
			return
		}
	}

	// Prior turns for upstream context
	var history []*api.Message
	if conversationID != 0 {
		history = h.history.Get(user.ID, conversationID)
		if history == nil {
			history, err = h.recorder.History(r.Context(), user.ID, conversationID)
			if err != nil {
				if !errors.Is(err, ErrNotOwned) {
					log.Printf("Failed to load history for conversation %d: %v", conversationID, err)
				}
				h.sendError(conn, errLoadHistory)
				return
			}
			h.history.Put(user.ID, conversationID, history)
		}
	}

	req := buildChatRequest(&clientMsg, history)

	stream, err := h.client.ChatStream(r.Context(), req)
	if err != nil {
		var quota *QuotaError
		if errors.As(err, &quota) {
			h.sendError(conn, quota.Message)
		} else {
			log.Printf("Chat request failed: %v", err)
			h.sendError(conn, errSendFailed)
		}
		return
	}

	var result *Result
	if stream.Streaming {
		result, err = Consume(stream.Body, &wsSink{conn: conn})
		stream.Body.Close()
	} else {
		result, err = h.readFallback(conn, stream)
	}

	if err != nil {
		var streamErr *StreamError
		switch {
		case errors.As(err, &streamErr):
			h.sendError(conn, streamErr.Message)
		case errors.Is(err, ErrNoContent):
			h.sendError(conn, errNoContent)
		default:
			log.Printf("Stream failed: %v", err)
			h.sendError(conn, errStreamAborted)
		}
		return
	}

	receipt, err := h.recorder.RecordTurn(r.Context(), &TurnRecord{
		UserID:           user.ID,
		ConversationID:   conversationID,
		ClassID:          clientMsg.ClassID,
		Mode:             clientMsg.Mode,
		UserContent:      clientMsg.Message,
		AssistantContent: result.Content,
		Sources:          result.Sources,
	})
	if err != nil {
		log.Printf("Failed to record turn: %v", err)
		h.sendError(conn, errSaveTurn)
		return
	}

	h.history.Append(receipt.ConversationID,
		&api.Message{ID: receipt.UserMessageID, ConversationID: receipt.ConversationID, Role: api.RoleUser, Content: clientMsg.Message},
		&api.Message{ID: receipt.AssistantMessageID, ConversationID: receipt.ConversationID, Role: api.RoleAssistant, Content: result.Content, Sources: result.Sources},
	)

	done := ServerMessage{
		Type:           MessageTypeDone,
		ConversationID: receipt.ConversationID,
		MessageID:      receipt.AssistantMessageID,
	}
	if IsNoMaterialsFallback(result.Content) {
		done.Warning = NoMaterialsWarning
	}
	conn.WriteJSON(done)
}

// readFallback handles the non-streaming upstream response path
func (h *Handler) readFallback(conn *websocket.Conn, stream *StreamResponse) (*Result, error) {
	content, err := stream.ReadFallback()
	if err != nil {
		return nil, err
	}

	draft := new(Draft)
	snapshot := draft.Append(content)
	if draft.Empty() {
		return nil, ErrNoContent
	}

	if err := conn.WriteJSON(ServerMessage{Type: MessageTypeText, Content: snapshot.Content}); err != nil {
		return nil, fmt.Errorf("could not relay text: %w", err)
	}

	return &Result{Content: draft.Content()}, nil
}

// buildChatRequest shapes the upstream request for one turn. An uploaded
// file's content is prepended to the user message as context; the persisted
// user message stays the raw text.
func buildChatRequest(clientMsg *ClientMessage, history []*api.Message) *ChatRequest {
	messages := make([]RequestMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, RequestMessage{Role: msg.Role, Content: msg.Content})
	}

	content := clientMsg.Message
	if clientMsg.FileContent != "" {
		content = fmt.Sprintf("[CONTEXT FROM FILE: %s]\n%s\n\n[USER QUERY]\n%s", clientMsg.FileName, clientMsg.FileContent, clientMsg.Message)
	}
	messages = append(messages, RequestMessage{Role: api.RoleUser, Content: content})

	return &ChatRequest{
		Messages:    messages,
		ClassID:     clientMsg.ClassID,
		Persona:     clientMsg.Mode,
		CohortID:    clientMsg.CohortID,
		SessionID:   clientMsg.SessionID,
		FileContent: clientMsg.FileContent,
	}
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) {
	conn.WriteJSON(ServerMessage{
		Type:  MessageTypeError,
		Error: msg,
	})
}
