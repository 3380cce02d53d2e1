package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tetrlabs/professor-server/chat"
)

//checkQuotaError maps an upstream quota error to its own status code with the
//upstream message verbatim, or returns nil if err is not a quota error
func checkQuotaError(err error) *handlerResponse {
	var quota *chat.QuotaError
	if errors.As(err, &quota) {
		return &handlerResponse{Code: quota.Status, Body: &ErrorResponse{
			Code:  quota.Status,
			Error: quota.Message,
		}, Err: err}
	}
	return nil
}

//POST /search
func handleSearch(search *chat.SearchClient) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *SearchRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		if req.Query == "" {
			return handleError(http.StatusBadRequest, errors.New("query empty"))
		}

		sources, err := search.Search(r.Context(), req.Query, req.ClassID)
		if err != nil {
			if resp := checkQuotaError(err); resp != nil {
				return resp
			}
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not search: %v", err))
		}

		return &handlerResponse{Code: http.StatusOK, Body: &SearchResponse{Sources: sources}}
	}
}
