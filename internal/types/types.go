package types

import (
	"encoding/json"
	"strings"
)

// Part is one text fragment of a turn in the Gemini-native history shape.
type Part struct {
	Text string `json:"text"`
}

// UnmarshalJSON accepts a bare string as well as {"text": "..."}.
func (p *Part) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Text = s
		return nil
	}
	type plain Part
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Part(v)
	return nil
}

// Turn is a single entry of the conversation history sent by the front-end.
// Either Content or Parts carries the text; both shapes are accepted.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content,omitempty"`
	Parts   []Part `json:"parts,omitempty"`
}

// Text returns the turn text, joining parts when Content is empty.
func (t Turn) Text() string {
	if t.Content != "" {
		return t.Content
	}
	texts := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

type ChatRequest struct {
	History []Turn `json:"history"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
