package chat_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tetrlabs/professor-server/chat"
)

func TestChatStreamQuotaErrors(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusPaymentRequired} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"You have reached your prompt limit for today."}`))
		}))
		defer server.Close()

		client := chat.NewClient(server.URL, "test-key")
		_, err := client.ChatStream(context.Background(), &chat.ChatRequest{ClassID: "BIO101"})

		var quota *chat.QuotaError
		if !errors.As(err, &quota) {
			t.Fatalf("status %d: err = %v; want *QuotaError", status, err)
		}
		if quota.Status != status {
			t.Errorf("Status = %d; want %d", quota.Status, status)
		}
		if quota.Message != "You have reached your prompt limit for today." {
			t.Errorf("Message = %q; want the upstream error verbatim", quota.Message)
		}
	}
}

func TestChatStreamUnstructuredfailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := chat.NewClient(server.URL, "test-key")
	_, err := client.ChatStream(context.Background(), &chat.ChatRequest{ClassID: "BIO101"})
	if !errors.Is(err, chat.ErrStartStream) {
		t.Errorf("err = %v; want ErrStartStream", err)
	}
}

// a 429 without a structured body is not a quota error
func TestChatStreamQuotaStatusWithoutBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := chat.NewClient(server.URL, "test-key")
	_, err := client.ChatStream(context.Background(), &chat.ChatRequest{ClassID: "BIO101"})
	if !errors.Is(err, chat.ErrStartStream) {
		t.Errorf("err = %v; want ErrStartStream", err)
	}
}

func TestChatStreamHeadersAndDetection(t *testing.T) {
	var gotAPIKey, gotCohort string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-api-key")
		gotCohort = r.Header.Get("x-cohort-id")
		w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
		w.Write([]byte("data: {\"content\":\"hi\"}\n\ndata: [DONE]\n\n"))
	}))
	defer server.Close()

	client := chat.NewClient(server.URL, "test-key")
	resp, err := client.ChatStream(context.Background(), &chat.ChatRequest{ClassID: "BIO101", CohortID: "fall-2026"})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	defer resp.Body.Close()

	if gotAPIKey != "test-key" {
		t.Errorf("x-api-key = %q; want %q", gotAPIKey, "test-key")
	}
	if gotCohort != "fall-2026" {
		t.Errorf("x-cohort-id = %q; want %q", gotCohort, "fall-2026")
	}
	if !resp.Streaming {
		t.Error("text/event-stream response was not detected as streaming")
	}
}

func TestReadFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"response field", `{"response":"The mitochondria is the powerhouse of the cell."}`, "The mitochondria is the powerhouse of the cell."},
		{"content field", `{"content":"fallback content"}`, "fallback content"},
		{"response wins", `{"response":"r","content":"c"}`, "r"},
	}

	for _, test := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(test.body))
		}))

		client := chat.NewClient(server.URL, "test-key")
		resp, err := client.ChatStream(context.Background(), &chat.ChatRequest{ClassID: "BIO101"})
		if err != nil {
			t.Fatalf("%s: ChatStream failed: %v", test.name, err)
		}
		if resp.Streaming {
			t.Errorf("%s: application/json response was detected as streaming", test.name)
		}

		content, err := resp.ReadFallback()
		if err != nil {
			t.Fatalf("%s: ReadFallback failed: %v", test.name, err)
		}
		if content != test.want {
			t.Errorf("%s: content = %q; want %q", test.name, content, test.want)
		}

		server.Close()
	}
}
