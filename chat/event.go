package chat

import (
	"encoding/json"
	"strings"

	"github.com/tetrlabs/professor-server/api"
)

//EventKind classifies a parsed stream event
type EventKind int

//EventKinds
const (
	EventContent EventKind = iota
	EventSources
	EventError
	EventDone
)

//Event is one typed event decoded from a stream line
type Event struct {
	Kind    EventKind
	Content string        //EventContent: text fragment to append
	Sources []*api.Source //EventSources: citations for this turn
	Message string        //EventError: upstream error message
}

//ParseStatus reports whether a line could be classified
type ParseStatus int

//ParseStatuses
const (
	//ParseOK means the line was classified; Events holds the result (possibly empty for ignorable lines)
	ParseOK ParseStatus = iota

	//ParseNeedsMoreData means a "data:" payload failed to parse as JSON, which signals
	//that the payload was split across chunk boundaries. The line must be rebuffered
	//and retried once more bytes arrive. It is not an error.
	ParseNeedsMoreData
)

//ParseResult is the outcome of classifying one decoded line
type ParseResult struct {
	Status ParseStatus
	Events []Event
}

const dataPrefix = "data: "

//streamPayload is the recognized shape of a "data:" JSON object
type streamPayload struct {
	Error   string        `json:"error"`
	Sources []*api.Source `json:"sources"`
	Content string        `json:"content"`
	Text    string        `json:"text"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

//contentFragment extracts the text fragment from a payload. The precedence
//choices[0].delta.content, then content, then text matches the upstream
//backend's behavior and must not be reordered.
func (p *streamPayload) contentFragment() string {
	if len(p.Choices) > 0 && p.Choices[0].Delta.Content != "" {
		return p.Choices[0].Delta.Content
	}
	if p.Content != "" {
		return p.Content
	}
	return p.Text
}

//ParseLine classifies one decoded stream line. Comment lines (":"), blank
//lines, and lines without the "data: " prefix carry no data and yield an empty
//ParseOK. "data: [DONE]" is the stream terminator. Any other "data:" line is
//parsed as a JSON object; a parse failure yields ParseNeedsMoreData (split
//payload), never a fatal error.
func ParseLine(line string) ParseResult {
	if strings.HasPrefix(line, ":") || strings.TrimSpace(line) == "" {
		return ParseResult{Status: ParseOK}
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return ParseResult{Status: ParseOK}
	}

	data := strings.TrimSpace(line[len(dataPrefix):])
	if data == "[DONE]" {
		return ParseResult{Status: ParseOK, Events: []Event{{Kind: EventDone}}}
	}

	var payload streamPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return ParseResult{Status: ParseNeedsMoreData}
	}

	if payload.Error != "" {
		return ParseResult{Status: ParseOK, Events: []Event{{Kind: EventError, Message: payload.Error}}}
	}

	var events []Event
	if len(payload.Sources) > 0 {
		events = append(events, Event{Kind: EventSources, Sources: payload.Sources})
	}
	if content := payload.contentFragment(); content != "" {
		events = append(events, Event{Kind: EventContent, Content: content})
	}

	return ParseResult{Status: ParseOK, Events: events}
}
