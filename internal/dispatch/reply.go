// Package dispatch classifies raw model replies into the shapes the
// front-end understands: plain chat text or a navigation command.
//
// A reply whose trimmed text starts with Sentinel carries a JSON navigation
// payload after the marker. Anything else is chat.
package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel marks a reply as a navigation command.
const Sentinel = "~"

// Result is one of ChatReply, NavigationAction or ParseFailure.
type Result interface {
	isResult()
}

// ChatReply is shown to the user as-is. Text is the untrimmed reply.
type ChatReply struct {
	Text string
}

// NavigationAction holds the decoded payload, compacted but otherwise verbatim.
type NavigationAction struct {
	Payload json.RawMessage
}

// ParseFailure means the reply promised a navigation payload but did not
// deliver valid (or, with a Validator, acceptable) JSON.
type ParseFailure struct {
	Raw string
	Err error
}

func (ChatReply) isResult()        {}
func (NavigationAction) isResult() {}
func (ParseFailure) isResult()     {}

func (f ParseFailure) Error() string {
	return fmt.Sprintf("malformed navigation command: %v", f.Err)
}

func (f ParseFailure) Unwrap() error { return f.Err }

var ErrEmptyPayload = errors.New("empty payload after sentinel")

// Parse classifies reply. v may be nil, in which case any JSON value after
// the sentinel is accepted.
func Parse(reply string, v *Validator) Result {
	trimmed := strings.TrimSpace(reply)
	if !strings.HasPrefix(trimmed, Sentinel) {
		return ChatReply{Text: reply}
	}

	body := strings.TrimSpace(strings.TrimPrefix(trimmed, Sentinel))
	if body == "" {
		return ParseFailure{Raw: body, Err: ErrEmptyPayload}
	}

	if !json.Valid([]byte(body)) {
		return ParseFailure{Raw: body, Err: syntaxError(body)}
	}
	if v != nil {
		dec := json.NewDecoder(strings.NewReader(body))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return ParseFailure{Raw: body, Err: err}
		}
		if err := v.Validate(decoded); err != nil {
			return ParseFailure{Raw: body, Err: err}
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return ParseFailure{Raw: body, Err: err}
	}
	return NavigationAction{Payload: buf.Bytes()}
}

// syntaxError recovers the decoder's message for invalid JSON.
func syntaxError(body string) error {
	var discard json.RawMessage
	if err := json.Unmarshal([]byte(body), &discard); err != nil {
		return err
	}
	return errors.New("invalid JSON")
}

// Kind names the outcome for logs.
func Kind(r Result) string {
	switch r.(type) {
	case ChatReply:
		return "chat"
	case NavigationAction:
		return "navigation"
	case ParseFailure:
		return "malformed_navigation"
	default:
		return "unknown"
	}
}
