package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

// TestDurationUnmarshalYAML tests Go duration syntax in config files.
func TestDurationUnmarshalYAML(t *testing.T) {
	t.Parallel()

	t.Run("parses duration strings", func(t *testing.T) {
		t.Parallel()

		var s struct {
			D Duration `yaml:"d"`
		}
		if err := yaml.Unmarshal([]byte("d: 1m30s\n"), &s); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if s.D.Std() != 90*time.Second {
			t.Errorf("expected 90s, got %v", s.D)
		}
	})

	t.Run("rejects unitless values", func(t *testing.T) {
		t.Parallel()

		var s struct {
			D Duration `yaml:"d"`
		}
		if err := yaml.Unmarshal([]byte("d: 30\n"), &s); err == nil {
			t.Error("expected error for a duration without a unit")
		}
	})
}

// TestDurationMarshalYAML tests round-tripping through yaml.
func TestDurationMarshalYAML(t *testing.T) {
	t.Parallel()

	s := struct {
		D Duration `yaml:"d"`
	}{D: Duration(500 * time.Millisecond)}

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(out) != "d: 500ms\n" {
		t.Errorf("unexpected yaml: %q", out)
	}
}
