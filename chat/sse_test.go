package chat_test

import (
	"testing"

	"github.com/tetrlabs/professor-server/chat"
)

func TestLineDecoderSplitPrefix(t *testing.T) {
	dec := new(chat.LineDecoder)

	dec.Feed([]byte("da"))
	if _, ok := dec.Next(); ok {
		t.Fatal("got a line before its newline arrived")
	}

	dec.Feed([]byte("ta: hello\nda"))
	line, ok := dec.Next()
	if !ok || line != "data: hello" {
		t.Fatalf("line = %q, ok = %v; want %q", line, ok, "data: hello")
	}
	if _, ok := dec.Next(); ok {
		t.Fatal("got a line from a partial buffer")
	}
}

func TestLineDecoderTrimsCarriageReturn(t *testing.T) {
	dec := new(chat.LineDecoder)
	dec.Feed([]byte("data: a\r\ndata: b\n"))

	line, _ := dec.Next()
	if line != "data: a" {
		t.Errorf("line = %q; want %q", line, "data: a")
	}
	line, _ = dec.Next()
	if line != "data: b" {
		t.Errorf("line = %q; want %q", line, "data: b")
	}
}

// a rebuffered line keeps its boundary: it comes back as the same line and
// never fuses with the lines behind it
func TestLineDecoderRebuffer(t *testing.T) {
	dec := new(chat.LineDecoder)
	dec.Feed([]byte("data: {bad\ndata: {\"content\":\"Hello\"}\n"))

	line, ok := dec.Next()
	if !ok || line != "data: {bad" {
		t.Fatalf("line = %q, ok = %v", line, ok)
	}

	dec.Rebuffer(line)

	line, ok = dec.Next()
	if !ok || line != "data: {bad" {
		t.Fatalf("after rebuffer: line = %q, ok = %v; want the same line back", line, ok)
	}

	line, ok = dec.Next()
	if !ok || line != "data: {\"content\":\"Hello\"}" {
		t.Fatalf("following line = %q, ok = %v", line, ok)
	}
}

func TestLineDecoderFlush(t *testing.T) {
	dec := new(chat.LineDecoder)
	dec.Feed([]byte("data: a\ndata: b"))

	line, _ := dec.Next()
	if line != "data: a" {
		t.Fatalf("line = %q; want %q", line, "data: a")
	}

	lines := dec.Flush()
	if len(lines) != 1 || lines[0] != "data: b" {
		t.Errorf("Flush() = %v; want [data: b]", lines)
	}

	if lines := dec.Flush(); lines != nil {
		t.Errorf("second Flush() = %v; want nil", lines)
	}
}
