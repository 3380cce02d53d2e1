package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/handlers"
	"github.com/tetrlabs/professor-server/httpapi"
)

func main() {
	db, err := sql.Open(config.SQLDriver, config.SQLDSN)
	if err != nil {
		log.Fatalln("Could not open database:", err)
	}

	s := httpapi.NewMemorySessionStore(time.Hour * time.Duration(config.SessionDuration))

	r := httpapi.NewRouter(os.Stdout, s, db, &httpapi.ServiceConfig{
		ChatEndpoint:               config.ChatEndpoint,
		ChatAPIKey:                 config.ChatAPIKey,
		GatewayCompletionsEndpoint: config.GatewayCompletionsEndpoint,
		GatewayEmbeddingsEndpoint:  config.GatewayEmbeddingsEndpoint,
		GatewayAPIKey:              config.GatewayAPIKey,
		EmbeddingModel:             config.EmbeddingModel,
		QuizModel:                  config.QuizModel,
		MatchEndpoint:              config.MatchEndpoint,
		MatchAPIKey:                config.MatchAPIKey,
		CacheMaxBytes:              config.CacheMaxBytes,
	})

	chain := handlers.CompressHandler(http.StripPrefix(config.Prefix, r))

	log.Println("Listening on:", config.ListenAddr)
	log.Println(http.ListenAndServe(config.ListenAddr, chain))
}
