package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Tool represents an OpenAI function tool
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a function tool
type ToolFunction struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters"`
}

// ToolChoice forces the model to call a specific function
type ToolChoice struct {
	Type     string `json:"type"`
	Function struct {
		Name string `json:"name"`
	} `json:"function"`
}

// CompletionRequest is the request body for the gateway chat completions API
type CompletionRequest struct {
	Model      string           `json:"model"`
	Messages   []RequestMessage `json:"messages"`
	Tools      []Tool           `json:"tools,omitempty"`
	ToolChoice *ToolChoice      `json:"tool_choice,omitempty"`
}

// FunctionCall contains the function name and arguments
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ToolCall represents a tool call in a completion response
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// CompletionResponse is the response from the gateway chat completions API
type CompletionResponse struct {
	Choices []struct {
		Message struct {
			Content   string     `json:"content"`
			ToolCalls []ToolCall `json:"tool_calls,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// GatewayClient is a client for an OpenAI-compatible AI gateway, used for the
// non-streaming calls (quiz generation, query embeddings).
type GatewayClient struct {
	completionsEndpoint string
	embeddingsEndpoint  string
	apiKey              string
	httpClient          *http.Client
}

// NewGatewayClient creates a new gateway client
func NewGatewayClient(completionsEndpoint, embeddingsEndpoint, apiKey string) *GatewayClient {
	return &GatewayClient{
		completionsEndpoint: completionsEndpoint,
		embeddingsEndpoint:  embeddingsEndpoint,
		apiKey:              apiKey,
		httpClient:          &http.Client{},
	}
}

// Complete makes a non-streaming chat completion request
func (c *GatewayClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	var completion CompletionResponse
	if err := c.post(ctx, c.completionsEndpoint, req, &completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

// Embed generates an embedding vector for the given input text
func (c *GatewayClient) Embed(ctx context.Context, model, input string) ([]float64, error) {
	req := struct {
		Model string `json:"model"`
		Input string `json:"input"`
	}{Model: model, Input: input}

	var resp struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.post(ctx, c.embeddingsEndpoint, &req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	return resp.Data[0].Embedding, nil
}

func (c *GatewayClient) post(ctx context.Context, endpoint string, reqBody, respBody interface{}) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("could not make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusPaymentRequired {
		var structured struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&structured); err == nil && structured.Error != "" {
			return &QuotaError{Status: resp.StatusCode, Message: structured.Error}
		}
		return &QuotaError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusOK {
		respBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("could not decode response: %w", err)
	}

	return nil
}
