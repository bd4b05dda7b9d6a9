package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

const actionNavigate = "navigate"

var (
	ErrNotObject     = errors.New("navigation payload is not an object")
	ErrNotNavigate   = errors.New("navigation payload has no navigate action")
	ErrNoDestination = errors.New("navigation payload has no destination")
	ErrUnknownPageID = errors.New("navigation destination is not a known page")
)

// Validator checks navigation payloads against the pages the site exposes.
// Two shapes are understood:
//
//	{"text": "...", "action": {"type": "navigate", "pageId": "receitas"}}
//	{"action": "navigate", "path": "#receitas"}
type Validator struct {
	pages map[string]struct{}
}

// NewValidator returns a validator for pages. An empty list accepts any
// destination but still enforces the navigate shape.
func NewValidator(pages []string) *Validator {
	v := &Validator{pages: make(map[string]struct{}, len(pages))}
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p != "" {
			v.pages[p] = struct{}{}
		}
	}
	return v
}

// Validate inspects a decoded payload.
func (v *Validator) Validate(decoded any) error {
	obj, ok := decoded.(map[string]any)
	if !ok {
		return ErrNotObject
	}

	var dest string
	switch action := obj["action"].(type) {
	case map[string]any:
		if t, _ := action["type"].(string); t != actionNavigate {
			return ErrNotNavigate
		}
		dest = destination(action)
	case string:
		if action != actionNavigate {
			return ErrNotNavigate
		}
		dest = destination(obj)
	default:
		return ErrNotNavigate
	}

	if dest == "" {
		return ErrNoDestination
	}
	if len(v.pages) == 0 {
		return nil
	}
	if _, ok := v.pages[dest]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPageID, dest)
	}
	return nil
}

func destination(m map[string]any) string {
	for _, key := range []string{"pageId", "path", "page"} {
		if s, ok := m[key].(string); ok {
			s = strings.TrimPrefix(strings.TrimSpace(s), "#")
			if s != "" {
				return s
			}
		}
	}
	return ""
}
