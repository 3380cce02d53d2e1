package httpapi

import (
	"net/http"

	"github.com/tetrlabs/professor-server/api"
	"github.com/tetrlabs/professor-server/chat"
)

//GET /cohorts/
func handleReadCohorts(w http.ResponseWriter, r *http.Request) *handlerResponse {
	cohorts, err := api.ReadCohorts(r.Context())
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &ReadCohortsResponse{Cohorts: cohorts}}
}

//GET /courses/?cohort=
func handleQueryCourses(w http.ResponseWriter, r *http.Request) *handlerResponse {
	courses, err := api.ReadCourses(r.Context(), r.URL.Query().Get("cohort"))
	if resp := checkAPIError(err); resp != nil {
		return resp
	}

	return &handlerResponse{Code: http.StatusOK, Body: &QueryCoursesResponse{Courses: courses}}
}

//GET /modes/
func handleReadModes(w http.ResponseWriter, r *http.Request) *handlerResponse {
	modes := make([]*ModeInfo, 0, len(api.Modes))
	for _, mode := range api.Modes {
		modes = append(modes, &ModeInfo{Mode: mode, Description: chat.ModeDescriptions[mode]})
	}

	return &handlerResponse{Code: http.StatusOK, Body: &ReadModesResponse{Modes: modes}}
}
