package httpapi

//UserCreateRequest is a request to create a new User
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

//ChangeUserPasswordRequest is a request to change a User's password
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

//AuthenticateRequest is an email/password authentication request
type AuthenticateRequest struct {
	Email    string
	Password string
}

//ConversationCreateRequest is a request to create an empty Conversation
type ConversationCreateRequest struct {
	Title   string `json:"title"`
	ClassID string `json:"class_id"`
	Mode    string `json:"mode"`
}

//RenameConversationRequest is a request to retitle a Conversation
type RenameConversationRequest struct {
	Title string `json:"title"`
}

//SetPinnedRequest is a request to pin or unpin a Conversation
type SetPinnedRequest struct {
	Pinned bool `json:"pinned"`
}

//SetArchivedRequest is a request to archive or unarchive a Conversation
type SetArchivedRequest struct {
	Archived bool `json:"archived"`
}

//FeedbackRequest is a request to rate an assistant Message
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

//SearchRequest is a request to search the course materials
type SearchRequest struct {
	Query   string `json:"query"`
	ClassID string `json:"class_id"`
}

//QuizRequest is a request to generate a practice quiz
type QuizRequest struct {
	Topic        string `json:"topic"`
	ClassID      string `json:"class_id"`
	NumQuestions int    `json:"num_questions"`
}
