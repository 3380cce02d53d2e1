package chat

import (
	"errors"
	"fmt"
	"io"

	"github.com/tetrlabs/professor-server/api"
)

//ErrNoContent is returned when a stream completes without any assistant text
var ErrNoContent = errors.New("no content received")

//StreamError is a fatal error event embedded mid-stream by the upstream backend.
//The carried message is user-facing.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("upstream stream error: %s", e.Message)
}

//Sink receives the turn's UI-visible state as it is reconstructed
type Sink interface {
	//Text relays the full accumulated assistant text so far; each call replaces
	//the previously displayed text
	Text(snapshot *Snapshot) error

	//Sources relays the turn's citations, sent at most once per turn
	Sources(sources []*api.Source) error
}

//Result is the finalized assistant message for one turn
type Result struct {
	Content string
	Sources []*api.Source
}

//Consume drives the decode/parse/reduce loop over an upstream stream body and
//returns the finalized Result. Chunks are folded strictly in arrival order. A
//stream that closes without an explicit [DONE] terminator is flushed and
//replayed once, and yields the same Result as a terminated stream. Consume
//returns *StreamError for an error event, ErrNoContent when no text was
//accumulated, and the read error for transport failures.
func Consume(body io.Reader, sink Sink) (*Result, error) {
	dec := new(LineDecoder)
	draft := new(Draft)

	buf := make([]byte, 4096)
	done := false

	for !done {
		n, err := body.Read(buf)
		if n > 0 {
			dec.Feed(buf[:n])

			for !done {
				line, ok := dec.Next()
				if !ok {
					break
				}

				result := ParseLine(line)
				if result.Status == ParseNeedsMoreData {
					dec.Rebuffer(line)
					break
				}

				var aErr error
				done, aErr = applyEvents(draft, result.Events, sink)
				if aErr != nil {
					return nil, aErr
				}
			}
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("could not read stream: %w", err)
		}
	}

	//the upstream may close the connection without sending [DONE]; replay
	//whatever is left in the buffer once
	if !done {
		for _, line := range dec.Flush() {
			result := ParseLine(line)
			if result.Status == ParseNeedsMoreData {
				//an incomplete fragment at end of stream; nothing more is coming
				continue
			}

			var err error
			done, err = applyEvents(draft, result.Events, sink)
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
		}
	}

	if draft.Empty() {
		return nil, ErrNoContent
	}

	return &Result{Content: draft.Content(), Sources: draft.Sources()}, nil
}

func applyEvents(draft *Draft, events []Event, sink Sink) (done bool, err error) {
	for _, ev := range events {
		switch ev.Kind {
		case EventDone:
			return true, nil
		case EventError:
			return false, &StreamError{Message: ev.Message}
		case EventSources:
			if draft.SetSources(ev.Sources) && sink != nil {
				if err := sink.Sources(DisplaySources(draft.Sources())); err != nil {
					return false, fmt.Errorf("could not relay sources: %w", err)
				}
			}
		case EventContent:
			snapshot := draft.Append(ev.Content)
			if sink != nil {
				if err := sink.Text(snapshot); err != nil {
					return false, fmt.Errorf("could not relay text: %w", err)
				}
			}
		}
	}
	return false, nil
}
