package chat

import (
	"bytes"
	"strings"
)

// LineDecoder turns a stream of byte chunks with arbitrary boundaries into
// complete newline-delimited lines. Bytes stay buffered until their line's
// newline arrives, so a multi-byte UTF-8 sequence split across chunks is never
// decoded partially. Trailing "\r" is trimmed from each line.
type LineDecoder struct {
	buf []byte
}

// Feed appends a chunk to the pending buffer.
func (d *LineDecoder) Feed(chunk []byte) {
	d.buf = append(d.buf, chunk...)
}

// Next extracts the next complete line from the pending buffer. ok is false
// when no full line is buffered yet.
func (d *LineDecoder) Next() (line string, ok bool) {
	i := bytes.IndexByte(d.buf, '\n')
	if i == -1 {
		return "", false
	}

	line = strings.TrimSuffix(string(d.buf[:i]), "\r")
	d.buf = d.buf[i+1:]
	return line, true
}

// Rebuffer pushes a line back to the front of the pending buffer with its
// newline restored, keeping the line boundary intact. Used when a "data:"
// payload failed to parse: the line is retried once more data has arrived,
// and a line that never parses is skipped at Flush without swallowing the
// lines after it.
func (d *LineDecoder) Rebuffer(line string) {
	buf := make([]byte, 0, len(line)+1+len(d.buf))
	buf = append(buf, line...)
	buf = append(buf, '\n')
	buf = append(buf, d.buf...)
	d.buf = buf
}

// Flush returns whatever remains buffered as lines, including a final line
// that never received its newline. Called once at end of stream for backends
// that close the connection without a terminator.
func (d *LineDecoder) Flush() []string {
	if len(d.buf) == 0 {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(string(d.buf), "\n") {
		lines = append(lines, strings.TrimSuffix(line, "\r"))
	}
	d.buf = nil
	return lines
}
