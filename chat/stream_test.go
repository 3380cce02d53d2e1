package chat_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tetrlabs/professor-server/api"
	"github.com/tetrlabs/professor-server/chat"
)

// chunkReader returns one chunk per Read call so tests control exactly where
// the stream is split
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	if n < len(r.chunks[0]) {
		r.chunks[0] = r.chunks[0][n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// collectSink records every snapshot and sources payload it receives
type collectSink struct {
	snapshots []string
	sources   [][]*api.Source
}

func (s *collectSink) Text(snapshot *chat.Snapshot) error {
	s.snapshots = append(s.snapshots, snapshot.Content)
	return nil
}

func (s *collectSink) Sources(sources []*api.Source) error {
	s.sources = append(s.sources, sources)
	return nil
}

func TestConsumeChunkScenario(t *testing.T) {
	// the second data line is split mid-prefix across the chunk boundary
	chunks := []string{
		"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\nda",
		"ta: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n\ndata: [DONE]\n\n",
	}

	sink := &collectSink{}
	result, err := chat.Consume(&chunkReader{chunks: chunks}, sink)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if result.Content != "Hi there" {
		t.Errorf("Content = %q; want %q", result.Content, "Hi there")
	}

	if len(sink.snapshots) != 2 {
		t.Fatalf("got %d snapshots; want 2", len(sink.snapshots))
	}
	if sink.snapshots[0] != "Hi" || sink.snapshots[1] != "Hi there" {
		t.Errorf("snapshots = %v; want [Hi, Hi there]", sink.snapshots)
	}
}

func TestConsumeSplitAtEveryOffset(t *testing.T) {
	stream := "data: {\"sources\":[{\"content\":\"chunk text\",\"similarity\":0.91,\"metadata\":{\"title\":\"Lecture 3\",\"class_name\":\"Biology\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\"Photosynthesis \"}}]}\n\n" +
		"data: {\"content\":\"converts light\"}\n\n" +
		"data: [DONE]\n\n"

	for i := 0; i <= len(stream); i++ {
		sink := &collectSink{}
		result, err := chat.Consume(&chunkReader{chunks: []string{stream[:i], stream[i:]}}, sink)
		if err != nil {
			t.Fatalf("split at %d: Consume failed: %v", i, err)
		}

		if result.Content != "Photosynthesis converts light" {
			t.Errorf("split at %d: Content = %q", i, result.Content)
		}
		if len(result.Sources) != 1 || result.Sources[0].Metadata.Title != "Lecture 3" {
			t.Errorf("split at %d: Sources = %+v", i, result.Sources)
		}
		if len(sink.sources) != 1 {
			t.Errorf("split at %d: sources sent %d times; want 1", i, len(sink.sources))
		}
	}
}

func TestConsumeTerminatorEquivalence(t *testing.T) {
	body := "data: {\"content\":\"Hello\"}\n\ndata: {\"content\":\" World\"}\n\n"

	terminated, err := chat.Consume(strings.NewReader(body+"data: [DONE]\n\n"), nil)
	if err != nil {
		t.Fatalf("terminated stream failed: %v", err)
	}

	unterminated, err := chat.Consume(strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("unterminated stream failed: %v", err)
	}

	if terminated.Content != unterminated.Content {
		t.Errorf("terminated = %q, unterminated = %q; want equal", terminated.Content, unterminated.Content)
	}
	if terminated.Content != "Hello World" {
		t.Errorf("Content = %q; want %q", terminated.Content, "Hello World")
	}
}

// a final line can lack its newline entirely when the connection closes
func TestConsumeFlushPartialFinalLine(t *testing.T) {
	body := "data: {\"content\":\"Hello\"}\n\ndata: {\"content\":\" World\"}"

	result, err := chat.Consume(strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if result.Content != "Hello World" {
		t.Errorf("Content = %q; want %q", result.Content, "Hello World")
	}
}

func TestConsumeErrorShortCircuit(t *testing.T) {
	body := "data: {\"content\":\"Hello\"}\n\n" +
		"data: {\"error\":\"boom\"}\n\n" +
		"data: {\"content\":\" World\"}\n\n" +
		"data: [DONE]\n\n"

	sink := &collectSink{}
	_, err := chat.Consume(strings.NewReader(body), sink)

	var streamErr *chat.StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("err = %v; want *StreamError", err)
	}
	if streamErr.Message != "boom" {
		t.Errorf("Message = %q; want %q", streamErr.Message, "boom")
	}

	for _, snapshot := range sink.snapshots {
		if strings.Contains(snapshot, " World") {
			t.Errorf("content after the error event reached the sink: %q", snapshot)
		}
	}
}

func TestConsumeEmptyContent(t *testing.T) {
	for name, body := range map[string]string{
		"terminator only": "data: [DONE]\n\n",
		"whitespace only": "data: {\"content\":\"   \"}\n\ndata: [DONE]\n\n",
		"empty stream":    "",
	} {
		_, err := chat.Consume(strings.NewReader(body), nil)
		if !errors.Is(err, chat.ErrNoContent) {
			t.Errorf("%s: err = %v; want ErrNoContent", name, err)
		}
	}
}

func TestConsumeSourcesFirstWriteWins(t *testing.T) {
	body := "data: {\"sources\":[{\"content\":\"first\",\"metadata\":{\"title\":\"First\"}}]}\n\n" +
		"data: {\"content\":\"text\"}\n\n" +
		"data: {\"sources\":[{\"content\":\"second\",\"metadata\":{\"title\":\"Second\"}}]}\n\n" +
		"data: [DONE]\n\n"

	sink := &collectSink{}
	result, err := chat.Consume(strings.NewReader(body), sink)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	if len(result.Sources) != 1 || result.Sources[0].Metadata.Title != "First" {
		t.Errorf("Sources = %+v; want the first payload only", result.Sources)
	}
	if len(sink.sources) != 1 {
		t.Errorf("sources sent %d times; want 1", len(sink.sources))
	}
}

func TestConsumeIgnoresCommentsAndUnknownLines(t *testing.T) {
	body := ": keep-alive\n\n" +
		"event: message\n" +
		"data: {\"content\":\"Hello\"}\n\n" +
		": another comment\n" +
		"data: [DONE]\n\n"

	result, err := chat.Consume(strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if result.Content != "Hello" {
		t.Errorf("Content = %q; want %q", result.Content, "Hello")
	}
}

// a data: payload that never parses must not take the events after it down
// with it; the bad line is dropped at flush and the rest of the stream counts
func TestConsumeMalformedLineDoesNotSwallowLaterEvents(t *testing.T) {
	body := "data: {bad\n" +
		"data: {\"content\":\"Hello\"}\n\n" +
		"data: [DONE]\n\n"

	result, err := chat.Consume(strings.NewReader(body), nil)
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if result.Content != "Hello" {
		t.Errorf("Content = %q; want %q", result.Content, "Hello")
	}
}

func TestConsumeSnapshotsGrowMonotonically(t *testing.T) {
	body := "data: {\"content\":\"a\"}\n\ndata: {\"content\":\"b\"}\n\ndata: {\"content\":\"c\"}\n\ndata: [DONE]\n\n"

	sink := &collectSink{}
	if _, err := chat.Consume(strings.NewReader(body), sink); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	for i := 1; i < len(sink.snapshots); i++ {
		if !strings.HasPrefix(sink.snapshots[i], sink.snapshots[i-1]) {
			t.Errorf("snapshot %d (%q) does not extend snapshot %d (%q)",
				i, sink.snapshots[i], i-1, sink.snapshots[i-1])
		}
	}
}
