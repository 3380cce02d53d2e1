package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tetrlabs/professor-server/api"
	"github.com/tetrlabs/professor-server/chat"
)

//ownedConversation reads the Conversation in the URL and checks that the
//authenticated user owns it. Conversations of other users are reported as
//not found, not as forbidden.
func ownedConversation(r *http.Request) (*api.Conversation, *handlerResponse) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
	}

	conv, err := api.ReadConversation(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return nil, resp
	}

	user := r.Context().Value(api.UserKey).(*api.User)
	if conv == nil || conv.UserID != user.ID {
		return nil, handleError(http.StatusNotFound, errors.New("Could not find conversation"))
	}

	return conv, nil
}

//POST /conversations/
func handleCreateConversation(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *ConversationCreateRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	user := r.Context().Value(api.UserKey).(*api.User)

	id, err := api.CreateConversation(r.Context(), &api.Conversation{
		UserID:  user.ID,
		Title:   req.Title,
		ClassID: req.ClassID,
		Mode:    req.Mode,
	})
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	conv, err := api.ReadConversation(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}
	if conv == nil {
		return handleError(http.StatusInternalServerError, errors.New("Could not find conversation, but just created"))
	}

	return &handlerResponse{Code: http.StatusOK, Body: conv}
}

//GET /conversations/?search=&archived=
func handleQueryConversations(w http.ResponseWriter, r *http.Request) *handlerResponse {
	user := r.Context().Value(api.UserKey).(*api.User)

	archived := r.URL.Query().Get("archived") == "true"
	search := r.URL.Query().Get("search")

	convs, err := api.QueryConversations(r.Context(), user.ID, search, archived)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &QueryConversationsResponse{Conversations: convs}}
}

//GET /conversations/:id
func handleReadConversation(w http.ResponseWriter, r *http.Request) *handlerResponse {
	conv, errResp := ownedConversation(r)
	if errResp != nil {
		return errResp
	}

	messages, err := api.ReadMessages(r.Context(), conv.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &ConversationResponse{Conversation: conv, Messages: messages}}
}

//POST /conversations/:id
func handleRenameConversation(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *RenameConversationRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	conv, errResp := ownedConversation(r)
	if errResp != nil {
		return errResp
	}

	err = api.RenameConversation(r.Context(), conv.ID, req.Title)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	conv, err = api.ReadConversation(r.Context(), conv.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: conv}
}

//POST /conversations/:id/pinned
func handleSetConversationPinned(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *SetPinnedRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	conv, errResp := ownedConversation(r)
	if errResp != nil {
		return errResp
	}

	err = api.SetConversationPinned(r.Context(), conv.ID, req.Pinned)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	conv, err = api.ReadConversation(r.Context(), conv.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: conv}
}

//POST /conversations/:id/archived
func handleSetConversationArchived(w http.ResponseWriter, r *http.Request) *handlerResponse {
	var req *SetArchivedRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	conv, errResp := ownedConversation(r)
	if errResp != nil {
		return errResp
	}

	err = api.SetConversationArchived(r.Context(), conv.ID, req.Archived)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	conv, err = api.ReadConversation(r.Context(), conv.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: conv}
}

//DELETE /conversations/:id
func handleDeleteConversation(history *chat.HistoryCache) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		conv, errResp := ownedConversation(r)
		if errResp != nil {
			return errResp
		}

		err := api.DeleteConversation(r.Context(), conv.ID)
		if resp := checkAPIError(err); resp != nil {
			return resp
		}

		history.Drop(conv.ID)

		return &handlerResponse{Code: http.StatusOK, Body: struct{}{}}
	}
}

//GET /conversations/:id/events
func handleReadConversationEvents(w http.ResponseWriter, r *http.Request) *handlerResponse {
	conv, errResp := ownedConversation(r)
	if errResp != nil {
		return errResp
	}

	events, err := api.ReadEvents(r.Context(), conv.ID, api.ConversationEventLocation)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &ReadEventsResponse{Events: events}}
}
