package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tetrlabs/professor-server/api"
)

//SearchClient performs vector similarity search against the external course
//material index: the query is embedded through the gateway and matched against
//the document store.
type SearchClient struct {
	gateway        *GatewayClient
	embeddingModel string
	matchEndpoint  string
	matchAPIKey    string
	httpClient     *http.Client

	//MatchThreshold and MatchCount tune the similarity search
	MatchThreshold float64
	MatchCount     int
}

//NewSearchClient creates a new vector search client
func NewSearchClient(gateway *GatewayClient, embeddingModel, matchEndpoint, matchAPIKey string) *SearchClient {
	return &SearchClient{
		gateway:        gateway,
		embeddingModel: embeddingModel,
		matchEndpoint:  matchEndpoint,
		matchAPIKey:    matchAPIKey,
		httpClient:     &http.Client{},
		MatchThreshold: 0.7,
		MatchCount:     5,
	}
}

//matchRequest is the wire format of the document match endpoint
type matchRequest struct {
	QueryEmbedding []float64 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
	FilterClass    string    `json:"filter_class,omitempty"`
}

type matchResponse struct {
	Documents []*api.Source `json:"documents"`
}

//Search returns course material documents relevant to the query, optionally
//filtered to one class
func (c *SearchClient) Search(ctx context.Context, query, classID string) ([]*api.Source, error) {
	embedding, err := c.gateway.Embed(ctx, c.embeddingModel, query)
	if err != nil {
		return nil, fmt.Errorf("could not embed query: %w", err)
	}

	body, err := json.Marshal(&matchRequest{
		QueryEmbedding: embedding,
		MatchThreshold: c.MatchThreshold,
		MatchCount:     c.MatchCount,
		FilterClass:    classID,
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal match request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.matchEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create match request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("apikey", c.matchAPIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not make match request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("match error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	var matched matchResponse
	if err := json.NewDecoder(resp.Body).Decode(&matched); err != nil {
		return nil, fmt.Errorf("could not decode match response: %w", err)
	}

	return matched.Documents, nil
}
