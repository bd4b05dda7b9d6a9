package types

import (
	"encoding/json"
	"testing"
)

func TestTurn_UnmarshalParts(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"content", `{"role":"user","content":"Oi"}`, "Oi"},
		{"text parts", `{"role":"user","parts":[{"text":"a"},{"text":"b"}]}`, "a\nb"},
		{"bare string parts", `{"role":"user","parts":["Quais frutas têm vitamina C?"]}`, "Quais frutas têm vitamina C?"},
		{"mixed parts", `{"role":"model","parts":["a",{"text":"b"}]}`, "a\nb"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var turn Turn
			if err := json.Unmarshal([]byte(tc.raw), &turn); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got := turn.Text(); got != tc.expected {
				t.Errorf("Expected text %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestPart_UnmarshalRejectsOtherShapes(t *testing.T) {
	for _, raw := range []string{`42`, `[1]`, `true`} {
		var p Part
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			t.Errorf("Expected error for part %s", raw)
		}
	}
}
