package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

//RequestMessage is one chat history entry in the upstream wire format
type RequestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

//ChatRequest is the request body for the upstream chat API
type ChatRequest struct {
	Messages    []RequestMessage `json:"messages"`
	ClassID     string           `json:"class_id"`
	Persona     string           `json:"persona"`
	CohortID    string           `json:"cohort_id,omitempty"`
	SessionID   string           `json:"session_id,omitempty"`
	FileContent string           `json:"file_content,omitempty"`
}

//fallbackResponse is the non-streaming upstream response shape
type fallbackResponse struct {
	Response string `json:"response"`
	Content  string `json:"content"`
}

//QuotaError is a structured 429 (rate limit) or 402 (payment/quota) upstream
//error. The carried message is surfaced to the user verbatim.
type QuotaError struct {
	Status  int
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("upstream quota error (%d): %s", e.Status, e.Message)
}

//ErrStartStream is the generic failure for non-2xx upstream responses without
//a structured error body
var ErrStartStream = fmt.Errorf("failed to start stream")

//StreamResponse is an open upstream response. Streaming reports whether the
//body is an SSE/plain-text stream; otherwise the body is one JSON object with
//a "response" or "content" field.
type StreamResponse struct {
	Body      io.ReadCloser
	Streaming bool
}

//ReadFallback consumes a non-streaming body and returns its content
func (r *StreamResponse) ReadFallback() (string, error) {
	defer r.Body.Close()

	var fallback fallbackResponse
	if err := json.NewDecoder(r.Body).Decode(&fallback); err != nil {
		return "", fmt.Errorf("could not decode fallback response: %w", err)
	}
	if fallback.Response != "" {
		return fallback.Response, nil
	}
	return fallback.Content, nil
}

//Client is a client for the upstream professor chat backend
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

//NewClient creates a new upstream chat client
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		//no overall timeout: the body is a long-lived stream
		httpClient: &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: 30 * time.Second}},
	}
}

//ChatStream starts one turn against the upstream backend and returns the open
//response. 429 and 402 responses with a structured {error} body are returned
//as *QuotaError; other non-2xx responses return ErrStartStream.
func (c *Client) ChatStream(ctx context.Context, req *ChatRequest) (*StreamResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	if req.CohortID != "" {
		httpReq.Header.Set("x-cohort-id", req.CohortID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("could not make request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired {
			var structured struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&structured); err == nil && structured.Error != "" {
				return nil, &QuotaError{Status: resp.StatusCode, Message: structured.Error}
			}
		}
		return nil, ErrStartStream
	}

	return &StreamResponse{Body: resp.Body, Streaming: isStreamingContentType(resp.Header.Get("Content-Type"))}, nil
}

func isStreamingContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	}
	return mediaType == "text/event-stream" || mediaType == "text/plain"
}
