package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tetrlabs/professor-server/api"
)

//ownedMessage reads the Message in the URL and checks that the authenticated
//user owns its Conversation. Messages of other users are reported as not
//found, not as forbidden.
func ownedMessage(r *http.Request) (*api.Message, *handlerResponse) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, handleError(http.StatusBadRequest, fmt.Errorf("Could not decode id: %v", err))
	}

	msg, err := api.ReadMessage(r.Context(), id)
	if resp := checkAPIError(err); resp != nil {
		return nil, resp
	}
	if msg == nil {
		return nil, handleError(http.StatusNotFound, errors.New("Could not find message"))
	}

	conv, err := api.ReadConversation(r.Context(), msg.ConversationID)
	if resp := checkAPIError(err); resp != nil {
		return nil, resp
	}

	user := r.Context().Value(api.UserKey).(*api.User)
	if conv == nil || conv.UserID != user.ID {
		return nil, handleError(http.StatusNotFound, errors.New("Could not find message"))
	}

	return msg, nil
}

//POST /messages/:id/feedback
func handleCreateFeedback(w http.ResponseWriter, r *http.Request) *handlerResponse {
	msg, errResp := ownedMessage(r)
	if errResp != nil {
		return errResp
	}

	var req *FeedbackRequest
	d := json.NewDecoder(r.Body)

	err := d.Decode(&req)
	if err != nil || req == nil {
		return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
	}

	user := r.Context().Value(api.UserKey).(*api.User)

	id, err := api.CreateFeedback(r.Context(), &api.Feedback{
		MessageID: msg.ID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	feedback, err := api.ReadFeedback(r.Context(), msg.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	for _, f := range feedback {
		if f.ID == id {
			return &handlerResponse{Code: http.StatusOK, Body: f}
		}
	}

	return handleError(http.StatusInternalServerError, fmt.Errorf("Could not find feedback %d, but just created", id))
}

//GET /messages/:id/feedback
func handleReadFeedback(w http.ResponseWriter, r *http.Request) *handlerResponse {
	msg, errResp := ownedMessage(r)
	if errResp != nil {
		return errResp
	}

	feedback, err := api.ReadFeedback(r.Context(), msg.ID)
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &ReadFeedbackResponse{Feedback: feedback}}
}
