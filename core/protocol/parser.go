package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	framingPrefix = "data:"
	endOfStream   = "[DONE]"
)

// ErrStreamDone signals the out-of-band end-of-stream sentinel. It is
// distinct from a decode failure: the stream ended gracefully.
var ErrStreamDone = errors.New("end of stream sentinel")

// Parse turns one complete line into a typed envelope. The optional framing
// prefix is stripped and surrounding whitespace trimmed before decoding.
//
// Returns (nil, nil) for empty lines and unknown envelope kinds,
// (nil, ErrStreamDone) for the end-of-stream sentinel, and a wrapped error
// for malformed JSON. A malformed line must not abort an otherwise healthy
// turn; callers log and continue.
func Parse(line string) (Envelope, error) {
	line = strings.TrimSpace(strings.TrimPrefix(line, framingPrefix))

	if len(line) == 0 {
		return nil, nil
	}

	if line == endOfStream {
		return nil, ErrStreamDone
	}

	var raw rawEnvelope
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("error unmarshalling envelope: %w", err)
	}

	return raw.envelope(), nil
}
