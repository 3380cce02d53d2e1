package httpapi

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/tetrlabs/professor-server/chat"
)

//ServiceConfig holds the upstream service configuration for the router
type ServiceConfig struct {
	//professor chat backend
	ChatEndpoint string
	ChatAPIKey   string

	//OpenAI-compatible gateway for quiz generation and query embeddings
	GatewayCompletionsEndpoint string
	GatewayEmbeddingsEndpoint  string
	GatewayAPIKey              string
	EmbeddingModel             string
	QuizModel                  string

	//document match endpoint for vector search
	MatchEndpoint string
	MatchAPIKey   string

	//conversation history cache bound
	CacheMaxBytes int
}

//NewRouter returns an HTTP router for the HTTP API
func NewRouter(w io.Writer, s SessionStore, db *sql.DB, cfg *ServiceConfig) http.Handler {

	//construct middleware
	var m = func(h returnHandler) http.Handler {
		return logMiddleware(jsonMiddleware(txMiddleware(authMiddleware(h, s), db)), w)
	}

	gateway := chat.NewGatewayClient(cfg.GatewayCompletionsEndpoint, cfg.GatewayEmbeddingsEndpoint, cfg.GatewayAPIKey)
	search := chat.NewSearchClient(gateway, cfg.EmbeddingModel, cfg.MatchEndpoint, cfg.MatchAPIKey)
	history := chat.NewHistoryCache(cfg.CacheMaxBytes)

	r := mux.NewRouter()

	r.Path("/cohorts/").Methods("GET").Handler(m(handleReadCohorts))
	r.Path("/courses/").Methods("GET").Handler(m(handleQueryCourses))
	r.Path("/modes/").Methods("GET").Handler(m(handleReadModes))

	r.Path("/conversations/").Methods("POST").Handler(m(handleCreateConversation))
	r.Path("/conversations/").Methods("GET").Handler(m(handleQueryConversations))
	r.Path("/conversations/{id:[0-9]+}").Methods("GET").Handler(m(handleReadConversation))
	r.Path("/conversations/{id:[0-9]+}").Methods("POST").Handler(m(handleRenameConversation))
	r.Path("/conversations/{id:[0-9]+}").Methods("DELETE").Handler(m(handleDeleteConversation(history)))
	r.Path("/conversations/{id:[0-9]+}/pinned").Methods("POST").Handler(m(handleSetConversationPinned))
	r.Path("/conversations/{id:[0-9]+}/archived").Methods("POST").Handler(m(handleSetConversationArchived))
	r.Path("/conversations/{id:[0-9]+}/events/").Methods("GET").Handler(m(handleReadConversationEvents))

	r.Path("/messages/{id:[0-9]+}/feedback/").Methods("POST").Handler(m(handleCreateFeedback))
	r.Path("/messages/{id:[0-9]+}/feedback/").Methods("GET").Handler(m(handleReadFeedback))

	r.Path("/users/").Methods("POST").Handler(m(handleCreateUserWithCredentials))
	r.Path("/users/{id:[0-9]+}").Methods("GET").Handler(m(handleReadUser))
	r.Path("/users/{id:[0-9]+}").Methods("POST").Handler(m(handleUpdateUser))
	r.Path("/users/{id:[0-9]+}/password").Methods("POST").Handler(m(handleChangeUserPassword))

	r.Path("/stats/").Methods("GET").Handler(m(handleReadStats))

	r.Path("/search").Methods("POST").Handler(m(handleSearch(search)))
	r.Path("/quiz").Methods("POST").Handler(m(handleGenerateQuiz(gateway, cfg.QuizModel)))

	r.Path("/auth").Methods("POST").Handler(logMiddleware(jsonMiddleware(txMiddleware(handleAuthenticate(s), db)), w))

	//chat WebSocket endpoint: auth via header or query parameter, no JSON
	//middleware, transactions managed inside the recorder
	client := chat.NewClient(cfg.ChatEndpoint, cfg.ChatAPIKey)
	chatHandler := chat.NewHandler(chat.NewSQLRecorder(db), client, history)
	r.Path("/chat").Handler(wsAuthMiddleware(chatHandler, s, db, w))

	r.NotFoundHandler = m(notFoundHandler)

	return http.StripPrefix("/api/1.0", r)
}
