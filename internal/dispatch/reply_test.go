package dispatch

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParse_ChatReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"plain text", "Oranges and acerola are great sources! 🍊"},
		{"keeps surrounding whitespace", "  Beba água!\n"},
		{"tilde not first", "Use ~ with care"},
		{"empty reply", ""},
		{"markdown", "**Cálcio** é importante:\n* leite\n* brócolis"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.reply, nil)
			chat, ok := got.(ChatReply)
			if !ok {
				t.Fatalf("Expected ChatReply, got %T", got)
			}
			if chat.Text != tc.reply {
				t.Errorf("Expected exact reply %q, got %q", tc.reply, chat.Text)
			}
			if Kind(got) != "chat" {
				t.Errorf("Expected kind chat, got %q", Kind(got))
			}
		})
	}
}

func TestParse_NavigationAction(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		expected string
	}{
		{"flat", `~{"action":"navigate","path":"#receitas"}`, `{"action":"navigate","path":"#receitas"}`},
		{"leading whitespace", "\n  ~{\"action\":\"navigate\",\"path\":\"#idoso\"}  ", `{"action":"navigate","path":"#idoso"}`},
		{"space after sentinel", `~ {"a": 1}`, `{"a":1}`},
		{
			"nested action",
			`~{"text": "Claro! 🍳", "action": {"type": "navigate", "pageId": "receitas"}}`,
			`{"text":"Claro! 🍳","action":{"type":"navigate","pageId":"receitas"}}`,
		},
		{"non-object passes through", `~[1,2,3]`, `[1,2,3]`},
		{"number beyond float64", `~{"n":1e400}`, `{"n":1e400}`},
		{
			"large number keeps digits",
			`~{"action":"navigate","path":"#receitas","score":1e400,"id":12345678901234567890}`,
			`{"action":"navigate","path":"#receitas","score":1e400,"id":12345678901234567890}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.reply, nil)
			nav, ok := got.(NavigationAction)
			if !ok {
				t.Fatalf("Expected NavigationAction, got %T (%v)", got, got)
			}
			if string(nav.Payload) != tc.expected {
				t.Errorf("Expected payload %s, got %s", tc.expected, nav.Payload)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	values := []any{
		map[string]any{"action": "navigate", "path": "#receitas"},
		map[string]any{"text": "Indo!", "action": map[string]any{"type": "navigate", "pageId": "higiene"}},
		[]any{"a", float64(1), true, nil},
		"just a string",
		float64(42),
		nil,
	}

	for _, want := range values {
		encoded, err := json.Marshal(want)
		if err != nil {
			t.Fatalf("marshal %v: %v", want, err)
		}
		got := Parse(Sentinel+string(encoded), nil)
		nav, ok := got.(NavigationAction)
		if !ok {
			t.Fatalf("Expected NavigationAction for %s, got %T", encoded, got)
		}
		var decoded any
		if err := json.Unmarshal(nav.Payload, &decoded); err != nil {
			t.Fatalf("payload %s does not decode: %v", nav.Payload, err)
		}
		if !reflect.DeepEqual(decoded, want) {
			t.Errorf("Round trip mismatch: expected %#v, got %#v", want, decoded)
		}
	}
}

func TestParse_ParseFailure(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"broken json", `~{not valid json`},
		{"sentinel only", "~"},
		{"sentinel and spaces", "  ~   "},
		{"trailing garbage", `~{"action":"navigate"} and more`},
		{"truncated", `~{"action":"navigate","path":"#rec`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.reply, nil)
			failure, ok := got.(ParseFailure)
			if !ok {
				t.Fatalf("Expected ParseFailure, got %T", got)
			}
			if failure.Err == nil {
				t.Error("Expected underlying error")
			}
			if Kind(got) != "malformed_navigation" {
				t.Errorf("Expected kind malformed_navigation, got %q", Kind(got))
			}
		})
	}
}

func TestParse_EmptyPayloadError(t *testing.T) {
	failure, ok := Parse("~", nil).(ParseFailure)
	if !ok {
		t.Fatal("Expected ParseFailure")
	}
	if !errors.Is(failure, ErrEmptyPayload) {
		t.Errorf("Expected ErrEmptyPayload, got %v", failure.Err)
	}
}

func TestParse_WithValidator(t *testing.T) {
	v := NewValidator([]string{"home", "receitas", "idoso"})

	tests := []struct {
		name    string
		reply   string
		wantNav bool
		wantErr error
	}{
		{"nested known page", `~{"text":"ok","action":{"type":"navigate","pageId":"receitas"}}`, true, nil},
		{"flat path with hash", `~{"action":"navigate","path":"#idoso"}`, true, nil},
		{"large number with validator", `~{"action":"navigate","path":"#idoso","score":1e400}`, true, nil},
		{"unknown page", `~{"action":{"type":"navigate","pageId":"casino"}}`, false, ErrUnknownPageID},
		{"not navigate", `~{"action":{"type":"delete","pageId":"home"}}`, false, ErrNotNavigate},
		{"no action", `~{"pageId":"home"}`, false, ErrNotNavigate},
		{"no destination", `~{"action":"navigate"}`, false, ErrNoDestination},
		{"array", `~["home"]`, false, ErrNotObject},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.reply, v)
			if tc.wantNav {
				if _, ok := got.(NavigationAction); !ok {
					t.Fatalf("Expected NavigationAction, got %T (%v)", got, got)
				}
				return
			}
			failure, ok := got.(ParseFailure)
			if !ok {
				t.Fatalf("Expected ParseFailure, got %T", got)
			}
			if !errors.Is(failure.Err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, failure.Err)
			}
		})
	}
}

func TestValidator_EmptyPageListAcceptsAnyDestination(t *testing.T) {
	v := NewValidator(nil)
	if err := v.Validate(map[string]any{"action": "navigate", "path": "#anywhere"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := v.Validate(map[string]any{"action": "navigate"}); !errors.Is(err, ErrNoDestination) {
		t.Errorf("Expected ErrNoDestination, got %v", err)
	}
}
