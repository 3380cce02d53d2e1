package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

//Config represents options given in the environment
type Config struct {
	SessionDuration int //in hours; default: 24

	SQLDriver string //required
	SQLDSN    string //required

	ListenAddr string //addr format used for net.Dial; required
	Prefix     string //url prefix to mount api to without trailing slash

	ChatEndpoint string //professor chat backend; required
	ChatAPIKey   string

	GatewayCompletionsEndpoint string //OpenAI-compatible chat completions endpoint; required
	GatewayEmbeddingsEndpoint  string //OpenAI-compatible embeddings endpoint; required
	GatewayAPIKey              string

	EmbeddingModel string //default: text-embedding-3-small
	QuizModel      string //default: gpt-4o-mini

	MatchEndpoint string //document match endpoint for vector search; required
	MatchAPIKey   string

	CacheMaxBytes int //conversation history cache bound; default: 8388608 (8 MiB)
}

var config = &Config{}

func checkEmpty(val, name string) {
	if val == "" {
		log.Fatalf("PROFESSOR_%s must be configured\n", name)
	}
}

func init() {
	//optional .env for development
	godotenv.Load()

	err := envconfig.Process("PROFESSOR", config)
	if err != nil {
		log.Fatalln("Error reading configuration from environment:", err)
	}

	if config.SessionDuration == 0 {
		config.SessionDuration = 24
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = "text-embedding-3-small"
	}
	if config.QuizModel == "" {
		config.QuizModel = "gpt-4o-mini"
	}
	if config.CacheMaxBytes == 0 {
		config.CacheMaxBytes = 8 << 20
	}

	checkEmpty(config.SQLDriver, "SQLDRIVER")
	checkEmpty(config.SQLDSN, "SQLDSN")

	if config.SQLDriver == "mysql" && !strings.Contains(config.SQLDSN, "?parseTime=true") {
		log.Fatalln("mysql DSN must contain \"?parseTime=true\"")
	}

	checkEmpty(config.ListenAddr, "LISTENADDR")
	checkEmpty(config.ChatEndpoint, "CHATENDPOINT")
	checkEmpty(config.GatewayCompletionsEndpoint, "GATEWAYCOMPLETIONSENDPOINT")
	checkEmpty(config.GatewayEmbeddingsEndpoint, "GATEWAYEMBEDDINGSENDPOINT")
	checkEmpty(config.MatchEndpoint, "MATCHENDPOINT")
}
