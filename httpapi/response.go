package httpapi

import "github.com/tetrlabs/professor-server/api"

//AuthenticateResponse is a successful authentication response including the session key and User
type AuthenticateResponse struct {
	SessionKey string    `json:"session_key"`
	User       *api.User `json:"user"`
}

//QueryConversationsResponse contains a list of Conversations
type QueryConversationsResponse struct {
	Conversations []*api.Conversation `json:"conversations"`
}

//ConversationResponse is a Conversation with its Messages
type ConversationResponse struct {
	Conversation *api.Conversation `json:"conversation"`
	Messages     []*api.Message    `json:"messages"`
}

//ReadCohortsResponse contains a list of Cohorts
type ReadCohortsResponse struct {
	Cohorts []api.Cohort `json:"cohorts"`
}

//QueryCoursesResponse contains a list of Courses
type QueryCoursesResponse struct {
	Courses []*api.Course `json:"courses"`
}

//ReadFeedbackResponse contains a Message's Feedback
type ReadFeedbackResponse struct {
	Feedback []*api.Feedback `json:"feedback"`
}

//ReadEventsResponse contains a Conversation's Events
type ReadEventsResponse struct {
	Events []*api.Event `json:"events"`
}

//ModeInfo is a chat mode with its user-facing description
type ModeInfo struct {
	Mode        string `json:"mode"`
	Description string `json:"description"`
}

//ReadModesResponse contains the allowed chat modes
type ReadModesResponse struct {
	Modes []*ModeInfo `json:"modes"`
}

//SearchResponse contains the Sources matched for a search query
type SearchResponse struct {
	Sources []*api.Source `json:"sources"`
}
