package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the blue config directory path.
// Uses $XDG_CONFIG_HOME/blue if set, otherwise ~/.config/blue.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "blue")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "blue")
}

// StateDir returns where blue keeps its history database.
// Uses $XDG_STATE_HOME/blue if set, otherwise ~/.local/state/blue.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "blue")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "blue")
}

// WriteDefault writes a commented default config.toml into ConfigDir.
// Returns the path and the action taken: "created", "overwritten", or
// "exists" when a file is present and force is false.
func WriteDefault(force bool) (string, string, error) {
	dir := ConfigDir()
	path := filepath.Join(dir, "config.toml")

	action := "created"
	if _, err := os.Stat(path); err == nil {
		if !force {
			return path, "exists", nil
		}
		action = "overwritten"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultTemplate()), 0o644); err != nil {
		return "", "", fmt.Errorf("write config: %w", err)
	}

	return path, action, nil
}

func defaultTemplate() string {
	d := DefaultConfig()
	l, s, dc, f, m := d.Limits, d.Scoring, d.Decision, d.Feedback, d.Monitoring

	var b strings.Builder
	fmt.Fprintf(&b, `# blue configuration

[limits]
# Changes needed before any trigger is considered.
min_buffer_size = %d
# Buffer length that triggers buffer_full.
buffer_threshold = %d
# Hard cap on buffered changes; oldest is dropped beyond it.
buffer_capacity = %d
# Seconds between two triggers.
processing_cooldown = %d
# Initial score threshold; feedback may move it.
score_threshold = %d
# Seconds of quiet before idle_timeout.
idle_threshold = %d
# Seconds a change may stay buffered.
max_buffer_age = %d
poll_interval_ms = %d

[scoring]
base_points = %d
function_bonus = %d
small_change_lines = %d
small_change_penalty = %d
deletion_points = %d
security_bonus = %d
error_handling_bonus = %d
test_bonus = %d
# "regex" or "treesitter" (treesitter needs a cgo build).
parser = %q
max_cached_files = %d
max_file_bytes = %d
`,
		l.MinBufferSize, l.BufferThreshold, l.BufferCapacity, l.ProcessingCooldown,
		l.ScoreThreshold, l.IdleThreshold, l.MaxBufferAge, l.PollIntervalMs,
		s.BasePoints, s.FunctionBonus, s.SmallChangeLines, s.SmallChangePenalty,
		s.DeletionPoints, s.SecurityBonus, s.ErrorHandlingBonus, s.TestBonus,
		s.Parser, s.MaxCachedFiles, s.MaxFileBytes)

	writeRules(&b, "function_patterns", s.FunctionPatterns)
	writeRules(&b, "import_patterns", s.ImportPatterns)
	writeRules(&b, "security_patterns", s.SecurityPatterns)
	writeRules(&b, "error_patterns", s.ErrorPatterns)
	writeRules(&b, "test_patterns", s.TestPatterns)
	writeRules(&b, "minor_patterns", s.MinorPatterns)

	fmt.Fprintf(&b, `
[decision]
enable_llm_decision = %t
confidence_threshold = %d
timeout_seconds = %d
# "reject" or "accept" when the model cannot be reached.
failure_policy = %q
prompt = %q

[feedback]
enable_adaptive_learning = %t
threshold_adjustment = %d
min_score_threshold = %d
max_score_threshold = %d
feedback_window_seconds = %d
history_limit = %d
resume_threshold = %t

[llm]
# "openai" (any OpenAI-compatible endpoint) or "gemini".
provider = %q
model = %q
api_key_env = %q
# Empty uses the provider's public endpoint.
base_url = %q
max_tokens = %d
temperature = %.1f

[monitoring]
supported_extensions = %s
ignore_directories = %s
ignore_files = %s
debounce_ms = %d
queue_size = %d

[store]
enabled = %t
# Empty means the default state directory.
path = ""

[log]
level = %q
format = %q
`,
		dc.EnableLLMDecision, dc.ConfidenceThreshold, dc.TimeoutSeconds, dc.FailurePolicy, dc.Prompt,
		f.EnableAdaptiveLearning, f.ThresholdAdjustment, f.MinScoreThreshold, f.MaxScoreThreshold,
		f.WindowSeconds, f.HistoryLimit, f.ResumeThreshold,
		d.LLM.Provider, d.LLM.Model, d.LLM.APIKeyEnv, d.LLM.BaseURL, d.LLM.MaxTokens, d.LLM.Temperature,
		tomlList(m.SupportedExtensions), tomlList(m.IgnoreDirectories), tomlList(m.IgnoreFiles),
		m.DebounceMs, m.QueueSize,
		d.Store.Enabled, d.Log.Level, d.Log.Format)

	return b.String()
}

func writeRules(b *strings.Builder, name string, rules []PatternRule) {
	for _, r := range rules {
		fmt.Fprintf(b, "\n[[scoring.%s]]\npattern = '%s'\npoints = %d\nlanguage = %q\n",
			name, r.Pattern, r.Points, r.Language)
	}
}

func tomlList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// CompressHome replaces $HOME prefix with ~/ for portable config values.
func CompressHome(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if strings.HasPrefix(path, home+"/") {
		return "~/" + path[len(home)+1:]
	}
	if path == home {
		return "~"
	}
	return path
}
