package space

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// maxFrameSize bounds a single stream line. Transcripts ride inside one
// data: line, so the default bufio limit is far too small.
const maxFrameSize = 10 * 1024 * 1024

// event is one framed block of a poll response: an optional event name and
// a data payload, blocks separated by blank lines.
type event struct {
	name string
	data string
}

// streamReader reads data-framed events from a poll response body.
type streamReader struct {
	scanner *bufio.Scanner
}

func newStreamReader(r io.Reader) *streamReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &streamReader{scanner: sc}
}

// next returns the next event carrying data. Returns io.EOF when the stream
// ends.
func (r *streamReader) next() (*event, error) {
	var ev event
	var hasData bool

	for r.scanner.Scan() {
		line := r.scanner.Text()

		// Blank line ends the current block.
		if line == "" {
			if hasData {
				return &ev, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				ev.data += "\n" + value
			} else {
				ev.data = value
				hasData = true
			}
		case "event":
			ev.name = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if hasData {
		return &ev, nil
	}
	return nil, io.EOF
}

// lastPayload scans the whole stream and returns the data payload of the
// last block that is well-formed JSON. Earlier blocks are intermediate or
// heartbeat events for a still-running job; only the final one is
// authoritative.
func lastPayload(r io.Reader) (string, bool) {
	sr := newStreamReader(r)
	var payload string
	var found bool
	for {
		ev, err := sr.next()
		if err != nil {
			break
		}
		if json.Valid([]byte(ev.data)) {
			payload = ev.data
			found = true
		}
	}
	return payload, found
}

// parseLine splits a "field: value" stream line. A single leading space
// after the colon is stripped.
func parseLine(line string) (field, value string) {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		return line, ""
	}
	field = line[:idx]
	value = line[idx+1:]
	if value != "" && value[0] == ' ' {
		value = value[1:]
	}
	return field, value
}
