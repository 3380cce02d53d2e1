package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tetrlabs/professor-server/api"
	"github.com/tetrlabs/professor-server/chat"
)

//POST /quiz
func handleGenerateQuiz(gateway *chat.GatewayClient, model string) returnHandler {
	return func(w http.ResponseWriter, r *http.Request) *handlerResponse {
		var req *QuizRequest
		d := json.NewDecoder(r.Body)

		err := d.Decode(&req)
		if err != nil || req == nil {
			return handleError(http.StatusBadRequest, fmt.Errorf("Could not decode json: %v", err))
		}

		if req.Topic == "" {
			return handleError(http.StatusBadRequest, errors.New("topic empty"))
		}

		courseName := req.ClassID
		if req.ClassID != "" {
			course, err := api.ReadCourseByClassID(r.Context(), req.ClassID)
			if resp := checkAPIError(err); resp != nil {
				return resp
			}
			if course != nil {
				courseName = course.Name
			}
		}

		quiz, err := chat.GenerateQuiz(r.Context(), gateway, model, req.Topic, courseName, req.NumQuestions)
		if err != nil {
			if resp := checkQuotaError(err); resp != nil {
				return resp
			}
			return handleError(http.StatusInternalServerError, fmt.Errorf("Could not generate quiz: %v", err))
		}

		return &handlerResponse{Code: http.StatusOK, Body: quiz}
	}
}
