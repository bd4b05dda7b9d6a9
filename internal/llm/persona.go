package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/persona.yaml
var defaultPersonaYAML []byte

// Persona is the fixed instruction and generation profile sent with every
// completion call. It is loaded once at startup and never mutated.
type Persona struct {
	Name       string `yaml:"name"`
	Greeting   string `yaml:"greeting"`
	System     string `yaml:"system"`
	Generation struct {
		Temperature     float32 `yaml:"temperature"`
		TopP            float32 `yaml:"top_p"`
		TopK            int32   `yaml:"top_k"`
		MaxOutputTokens int32   `yaml:"max_output_tokens"`
	} `yaml:"generation"`
	Safety     []SafetyRule `yaml:"safety"`
	Navigation struct {
		Pages []string `yaml:"pages"`
	} `yaml:"navigation"`
}

// SafetyRule maps a harm category to a block threshold, using the
// provider's enum names (HARM_CATEGORY_*, BLOCK_*).
type SafetyRule struct {
	Category  string `yaml:"category"`
	Threshold string `yaml:"threshold"`
}

// DefaultPersona returns the compiled-in persona.
func DefaultPersona() (Persona, error) {
	return parsePersona(defaultPersonaYAML)
}

// LoadPersona reads a persona file. An empty path yields the default persona.
func LoadPersona(path string) (Persona, error) {
	if path == "" {
		return DefaultPersona()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Persona{}, fmt.Errorf("read persona %s: %w", path, err)
	}
	return parsePersona(b)
}

func parsePersona(b []byte) (Persona, error) {
	var p Persona
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Persona{}, fmt.Errorf("parse persona: %w", err)
	}
	if strings.TrimSpace(p.System) == "" {
		return Persona{}, fmt.Errorf("parse persona: system instruction is empty")
	}
	if p.Generation.MaxOutputTokens <= 0 {
		p.Generation.MaxOutputTokens = 2048
	}
	return p, nil
}

// Instruction renders the system instruction with the page list filled in.
func (p Persona) Instruction() string {
	quoted := make([]string, 0, len(p.Navigation.Pages))
	for _, page := range p.Navigation.Pages {
		quoted = append(quoted, "'"+page+"'")
	}
	return strings.TrimSpace(strings.ReplaceAll(p.System, "{{pages}}", strings.Join(quoted, ", ")))
}
