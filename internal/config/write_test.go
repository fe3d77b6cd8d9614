package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestWriteDefault_CreatesConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, action, err := WriteDefault(false)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if action != "created" {
		t.Errorf("action = %q, want %q", action, "created")
	}

	want := filepath.Join(dir, "blue", "config.toml")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(data)
	for _, section := range []string{"[limits]", "[scoring]", "[decision]", "[feedback]", "[llm]", "[monitoring]", "[store]", "[log]"} {
		if !strings.Contains(content, section) {
			t.Errorf("config missing %s section", section)
		}
	}
}

func TestWriteDefault_RoundTripsToDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path, _, err := WriteDefault(false)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(path, &got); err != nil {
		t.Fatalf("decode written config: %v", err)
	}

	want := DefaultConfig()
	if got.Limits != want.Limits {
		t.Errorf("Limits = %+v, want %+v", got.Limits, want.Limits)
	}
	if got.Decision != want.Decision {
		t.Errorf("Decision = %+v, want %+v", got.Decision, want.Decision)
	}
	if got.Feedback != want.Feedback {
		t.Errorf("Feedback = %+v, want %+v", got.Feedback, want.Feedback)
	}
	if len(got.Scoring.FunctionPatterns) != len(want.Scoring.FunctionPatterns) {
		t.Errorf("FunctionPatterns = %d rules, want %d", len(got.Scoring.FunctionPatterns), len(want.Scoring.FunctionPatterns))
	}
	for i, r := range got.Scoring.ImportPatterns {
		if r != want.Scoring.ImportPatterns[i] {
			t.Errorf("ImportPatterns[%d] = %+v, want %+v", i, r, want.Scoring.ImportPatterns[i])
		}
	}
}

func TestWriteDefault_KeepsExisting(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "blue")
	os.MkdirAll(configDir, 0o755)
	existing := filepath.Join(configDir, "config.toml")
	os.WriteFile(existing, []byte("[limits]\nscore_threshold = 8\n"), 0o644)

	path, action, err := WriteDefault(false)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if action != "exists" {
		t.Errorf("action = %q, want exists", action)
	}
	if path != existing {
		t.Errorf("path = %q, want %q", path, existing)
	}
	data, _ := os.ReadFile(existing)
	if !strings.Contains(string(data), "score_threshold = 8") {
		t.Error("existing config was modified")
	}
}

func TestWriteDefault_Force(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir := filepath.Join(dir, "blue")
	os.MkdirAll(configDir, 0o755)
	os.WriteFile(filepath.Join(configDir, "config.toml"), []byte("junk"), 0o644)

	_, action, err := WriteDefault(true)
	if err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}
	if action != "overwritten" {
		t.Errorf("action = %q, want overwritten", action)
	}
}

func TestCompressHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	tests := []struct {
		input string
		want  string
	}{
		{filepath.Join(home, "blue"), "~/blue"},
		{home, "~"},
		{"/opt/blue", "/opt/blue"},
	}
	for _, tt := range tests {
		if got := CompressHome(tt.input); got != tt.want {
			t.Errorf("CompressHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
