package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultPersona(t *testing.T) {
	p, err := DefaultPersona()
	if err != nil {
		t.Fatalf("DefaultPersona: %v", err)
	}

	if p.Name != "NutriFases" {
		t.Errorf("Expected name NutriFases, got %q", p.Name)
	}
	if p.Generation.Temperature != 0.9 || p.Generation.TopK != 1 || p.Generation.MaxOutputTokens != 2048 {
		t.Errorf("Unexpected generation profile: %+v", p.Generation)
	}
	if len(p.Safety) != 4 {
		t.Errorf("Expected 4 safety settings, got %d", len(p.Safety))
	}
	if len(p.Navigation.Pages) != 12 {
		t.Errorf("Expected 12 pages, got %d", len(p.Navigation.Pages))
	}
}

func TestPersonaInstruction_FillsPages(t *testing.T) {
	p, err := DefaultPersona()
	if err != nil {
		t.Fatalf("DefaultPersona: %v", err)
	}

	got := p.Instruction()
	if strings.Contains(got, "{{pages}}") {
		t.Error("Expected page placeholder to be replaced")
	}
	if !strings.Contains(got, "'home', 'quemsomos'") {
		t.Errorf("Expected quoted page list in instruction")
	}
	if !strings.Contains(got, "~{") {
		t.Errorf("Expected navigation example with sentinel in instruction")
	}
}

func TestLoadPersona(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "persona.yaml")
	os.WriteFile(valid, []byte("system: Be brief.\ngeneration:\n  temperature: 0.2\n"), 0o644)

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("name: nobody\n"), 0o644)

	broken := filepath.Join(dir, "broken.yaml")
	os.WriteFile(broken, []byte("system: [unterminated\n"), 0o644)

	t.Run("valid file", func(t *testing.T) {
		p, err := LoadPersona(valid)
		if err != nil {
			t.Fatalf("LoadPersona: %v", err)
		}
		if p.Instruction() != "Be brief." {
			t.Errorf("Expected instruction 'Be brief.', got %q", p.Instruction())
		}
		if p.Generation.MaxOutputTokens != 2048 {
			t.Errorf("Expected default max tokens 2048, got %d", p.Generation.MaxOutputTokens)
		}
	})

	t.Run("empty path uses default", func(t *testing.T) {
		p, err := LoadPersona("")
		if err != nil {
			t.Fatalf("LoadPersona: %v", err)
		}
		if p.Name != "NutriFases" {
			t.Errorf("Expected default persona, got %q", p.Name)
		}
	})

	for _, tc := range []struct{ name, path string }{
		{"missing system", empty},
		{"broken yaml", broken},
		{"missing file", filepath.Join(dir, "nope.yaml")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadPersona(tc.path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}
