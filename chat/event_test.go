package chat_test

import (
	"testing"

	"github.com/tetrlabs/professor-server/chat"
)

func TestParseLineIgnorable(t *testing.T) {
	for name, line := range map[string]string{
		"comment":    ": keep-alive",
		"blank":      "",
		"whitespace": "   ",
		"event line": "event: message",
	} {
		result := chat.ParseLine(line)
		if result.Status != chat.ParseOK {
			t.Errorf("%s: Status = %v; want ParseOK", name, result.Status)
		}
		if len(result.Events) != 0 {
			t.Errorf("%s: Events = %v; want none", name, result.Events)
		}
	}
}

func TestParseLineDone(t *testing.T) {
	result := chat.ParseLine("data: [DONE]")
	if result.Status != chat.ParseOK || len(result.Events) != 1 || result.Events[0].Kind != chat.EventDone {
		t.Errorf("got %+v; want a single EventDone", result)
	}
}

func TestParseLineNeedsMoreData(t *testing.T) {
	result := chat.ParseLine("data: {\"choices\":[{\"delta\":{\"content\":\"Hi")
	if result.Status != chat.ParseNeedsMoreData {
		t.Errorf("Status = %v; want ParseNeedsMoreData", result.Status)
	}
	if len(result.Events) != 0 {
		t.Errorf("Events = %v; want none", result.Events)
	}
}

func TestParseLineError(t *testing.T) {
	result := chat.ParseLine("data: {\"error\":\"quota exceeded\",\"content\":\"ignored\"}")
	if result.Status != chat.ParseOK || len(result.Events) != 1 {
		t.Fatalf("got %+v; want a single event", result)
	}
	if result.Events[0].Kind != chat.EventError || result.Events[0].Message != "quota exceeded" {
		t.Errorf("event = %+v; want EventError %q", result.Events[0], "quota exceeded")
	}
}

func TestParseLineContentPrecedence(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"delta wins over content and text",
			"data: {\"choices\":[{\"delta\":{\"content\":\"delta\"}}],\"content\":\"content\",\"text\":\"text\"}", "delta"},
		{"content wins over text",
			"data: {\"content\":\"content\",\"text\":\"text\"}", "content"},
		{"text as last resort",
			"data: {\"text\":\"text\"}", "text"},
		{"empty delta falls through to content",
			"data: {\"choices\":[{\"delta\":{}}],\"content\":\"content\"}", "content"},
	}

	for _, test := range tests {
		result := chat.ParseLine(test.line)
		if result.Status != chat.ParseOK || len(result.Events) != 1 {
			t.Errorf("%s: got %+v; want a single event", test.name, result)
			continue
		}
		if result.Events[0].Kind != chat.EventContent || result.Events[0].Content != test.want {
			t.Errorf("%s: event = %+v; want EventContent %q", test.name, result.Events[0], test.want)
		}
	}
}

func TestParseLineSourcesAndContent(t *testing.T) {
	result := chat.ParseLine("data: {\"sources\":[{\"content\":\"src\",\"metadata\":{\"title\":\"T\"}}],\"content\":\"hello\"}")
	if result.Status != chat.ParseOK || len(result.Events) != 2 {
		t.Fatalf("got %+v; want two events", result)
	}
	if result.Events[0].Kind != chat.EventSources {
		t.Errorf("first event = %+v; want EventSources", result.Events[0])
	}
	if result.Events[1].Kind != chat.EventContent || result.Events[1].Content != "hello" {
		t.Errorf("second event = %+v; want EventContent %q", result.Events[1], "hello")
	}
}
