package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all blue configuration.
type Config struct {
	Limits     LimitsConfig     `toml:"limits"`
	Scoring    ScoringConfig    `toml:"scoring"`
	Decision   DecisionConfig   `toml:"decision"`
	Feedback   FeedbackConfig   `toml:"feedback"`
	LLM        LLMConfig        `toml:"llm"`
	Monitoring MonitoringConfig `toml:"monitoring"`
	Store      StoreConfig      `toml:"store"`
	Log        LogConfig        `toml:"log"`
}

// LimitsConfig drives the change buffer and its trigger rules.
// All durations are whole seconds.
type LimitsConfig struct {
	MinBufferSize      int `toml:"min_buffer_size"`
	BufferThreshold    int `toml:"buffer_threshold"`
	BufferCapacity     int `toml:"buffer_capacity"`
	ProcessingCooldown int `toml:"processing_cooldown"`
	ScoreThreshold     int `toml:"score_threshold"`
	IdleThreshold      int `toml:"idle_threshold"`
	MaxBufferAge       int `toml:"max_buffer_age"`
	PollIntervalMs     int `toml:"poll_interval_ms"`
}

// PatternRule is one scoring rule. Language is a detected language name or "all".
type PatternRule struct {
	Pattern  string `toml:"pattern"`
	Points   int    `toml:"points"`
	Language string `toml:"language"`
}

type ScoringConfig struct {
	BasePoints         int    `toml:"base_points"`
	FunctionBonus      int    `toml:"function_bonus"`
	SmallChangeLines   int    `toml:"small_change_lines"`
	SmallChangePenalty int    `toml:"small_change_penalty"`
	DeletionPoints     int    `toml:"deletion_points"`
	SecurityBonus      int    `toml:"security_bonus"`
	ErrorHandlingBonus int    `toml:"error_handling_bonus"`
	TestBonus          int    `toml:"test_bonus"`
	Parser             string `toml:"parser"` // "regex" or "treesitter"
	MaxCachedFiles     int    `toml:"max_cached_files"`
	MaxFileBytes       int64  `toml:"max_file_bytes"`

	FunctionPatterns []PatternRule `toml:"function_patterns"`
	ImportPatterns   []PatternRule `toml:"import_patterns"`
	SecurityPatterns []PatternRule `toml:"security_patterns"`
	ErrorPatterns    []PatternRule `toml:"error_patterns"`
	TestPatterns     []PatternRule `toml:"test_patterns"`
	MinorPatterns    []PatternRule `toml:"minor_patterns"`
}

type DecisionConfig struct {
	EnableLLMDecision   bool   `toml:"enable_llm_decision"`
	ConfidenceThreshold int    `toml:"confidence_threshold"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
	FailurePolicy       string `toml:"failure_policy"` // "reject" or "accept"
	Prompt              string `toml:"prompt"`
}

type FeedbackConfig struct {
	EnableAdaptiveLearning bool `toml:"enable_adaptive_learning"`
	ThresholdAdjustment    int  `toml:"threshold_adjustment"`
	MinScoreThreshold      int  `toml:"min_score_threshold"`
	MaxScoreThreshold      int  `toml:"max_score_threshold"`
	WindowSeconds          int  `toml:"feedback_window_seconds"`
	HistoryLimit           int  `toml:"history_limit"`
	ResumeThreshold        bool `toml:"resume_threshold"`
}

type LLMConfig struct {
	Provider    string  `toml:"provider"` // "openai" or "gemini"
	Model       string  `toml:"model"`
	APIKeyEnv   string  `toml:"api_key_env"`
	BaseURL     string  `toml:"base_url"` // empty means the provider default
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

type MonitoringConfig struct {
	SupportedExtensions []string `toml:"supported_extensions"`
	IgnoreDirectories   []string `toml:"ignore_directories"`
	IgnoreFiles         []string `toml:"ignore_files"`
	DebounceMs          int      `toml:"debounce_ms"`
	QueueSize           int      `toml:"queue_size"`
}

type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// DefaultDecisionPrompt is the decision template; {changes} and {context} are substituted.
const DefaultDecisionPrompt = "Changes: {changes}. Context: {context}. Good time for big-picture input? Answer: YES/NO, confidence 1-10."

// DefaultConfig returns config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Limits: LimitsConfig{
			MinBufferSize:      3,
			BufferThreshold:    4,
			BufferCapacity:     10,
			ProcessingCooldown: 30,
			ScoreThreshold:     5,
			IdleThreshold:      30,
			MaxBufferAge:       120,
			PollIntervalMs:     1000,
		},
		Scoring: ScoringConfig{
			BasePoints:         1,
			FunctionBonus:      2,
			SmallChangeLines:   2,
			SmallChangePenalty: 1,
			DeletionPoints:     1,
			Parser:             "regex",
			MaxCachedFiles:     500,
			MaxFileBytes:       1 << 20,
			FunctionPatterns: []PatternRule{
				{Pattern: `^\s*(async\s+)?def\s+\w+\s*\(`, Points: 1, Language: "python"},
				{Pattern: `^\s*class\s+\w+`, Points: 1, Language: "all"},
				{Pattern: `\bfunction\s+\w+\s*\(`, Points: 1, Language: "javascript"},
				{Pattern: `^func\s+(\([^)]*\)\s*)?\w+\s*\(`, Points: 1, Language: "go"},
				{Pattern: `^type\s+\w+\s+(struct|interface)\b`, Points: 1, Language: "go"},
				{Pattern: `^\s*(pub\s+)?fn\s+\w+`, Points: 1, Language: "rust"},
			},
			ImportPatterns: []PatternRule{
				{Pattern: `^\s*(from\s+[\w.]+\s+)?import\s+`, Points: 1, Language: "python"},
				{Pattern: `^\s*import\s+.*\bfrom\b`, Points: 1, Language: "javascript"},
				{Pattern: `\brequire\s*\(`, Points: 1, Language: "javascript"},
				{Pattern: `^import\s+(\(|")`, Points: 1, Language: "go"},
				{Pattern: `^\s*#include\s*[<"]`, Points: 1, Language: "c"},
			},
			SecurityPatterns: []PatternRule{
				{Pattern: "password", Points: 2, Language: "all"},
				{Pattern: "secret", Points: 2, Language: "all"},
				{Pattern: "token", Points: 1, Language: "all"},
				{Pattern: "encrypt", Points: 1, Language: "all"},
				{Pattern: "eval(", Points: 2, Language: "all"},
			},
			ErrorPatterns: []PatternRule{
				{Pattern: `^\s*try\s*:`, Points: 1, Language: "python"},
				{Pattern: `^\s*except\b`, Points: 1, Language: "python"},
				{Pattern: `\bcatch\s*\(`, Points: 1, Language: "all"},
				{Pattern: `if\s+err\s*!=\s*nil`, Points: 1, Language: "go"},
			},
			TestPatterns: []PatternRule{
				{Pattern: `^\s*def\s+test_\w+`, Points: 1, Language: "python"},
				{Pattern: `^func\s+Test\w+\s*\(`, Points: 1, Language: "go"},
				{Pattern: `\b(describe|it)\s*\(`, Points: 1, Language: "javascript"},
			},
			MinorPatterns: []PatternRule{
				{Pattern: "todo", Points: 0, Language: "all"},
				{Pattern: "fixme", Points: 1, Language: "all"},
			},
		},
		Decision: DecisionConfig{
			EnableLLMDecision:   false,
			ConfidenceThreshold: 7,
			TimeoutSeconds:      10,
			FailurePolicy:       "reject",
			Prompt:              DefaultDecisionPrompt,
		},
		Feedback: FeedbackConfig{
			EnableAdaptiveLearning: false,
			ThresholdAdjustment:    1,
			MinScoreThreshold:      3,
			MaxScoreThreshold:      10,
			WindowSeconds:          60,
			HistoryLimit:           100,
			ResumeThreshold:        true,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			BaseURL:     "",
			MaxTokens:   50,
			Temperature: 0.3,
		},
		Monitoring: MonitoringConfig{
			SupportedExtensions: []string{
				".py", ".js", ".ts", ".jsx", ".tsx", ".java", ".c", ".cpp", ".h",
				".go", ".rs", ".php", ".rb", ".swift", ".kt", ".cs",
			},
			IgnoreDirectories: []string{".git", "node_modules", "__pycache__", "vendor", ".venv", "dist", "build"},
			IgnoreFiles:       []string{"*.pyc", "*.log", "*.tmp", "*.swp", ".DS_Store"},
			DebounceMs:        300,
			QueueSize:         64,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads config from path, or from the standard locations when path is
// empty, falling back to defaults when no file exists.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if p := Resolve(path); p != "" {
		if _, err := toml.DecodeFile(p, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", p, err)
		}
	}

	cfg.Store.Path = ExpandHome(cfg.Store.Path)
	return cfg, nil
}

// Resolve returns the file Load reads for path. An explicit path is returned
// as given (home-expanded) even if missing; otherwise the first existing
// standard location, or "" when Load would use defaults.
func Resolve(path string) string {
	if path != "" {
		return ExpandHome(path)
	}
	for _, p := range configPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func configPaths() []string {
	return []string{
		filepath.Join(ConfigDir(), "config.toml"),
		filepath.Join("config", "config.toml"),
		"config.toml",
	}
}

// Validate reports option combinations the pipeline cannot run with.
func (c Config) Validate() error {
	var problems []string

	l := c.Limits
	if l.BufferCapacity <= 0 {
		problems = append(problems, "limits.buffer_capacity must be positive")
	}
	if l.MinBufferSize < 0 {
		problems = append(problems, "limits.min_buffer_size must not be negative")
	}
	if l.ProcessingCooldown < 0 || l.IdleThreshold < 0 || l.MaxBufferAge < 0 {
		problems = append(problems, "limits durations must not be negative")
	}

	f := c.Feedback
	if f.MinScoreThreshold > f.MaxScoreThreshold {
		problems = append(problems, fmt.Sprintf("feedback.min_score_threshold %d > max_score_threshold %d",
			f.MinScoreThreshold, f.MaxScoreThreshold))
	} else if l.ScoreThreshold < f.MinScoreThreshold || l.ScoreThreshold > f.MaxScoreThreshold {
		problems = append(problems, fmt.Sprintf("limits.score_threshold %d outside [%d, %d]",
			l.ScoreThreshold, f.MinScoreThreshold, f.MaxScoreThreshold))
	}
	if f.ThresholdAdjustment < 0 {
		problems = append(problems, "feedback.threshold_adjustment must not be negative")
	}

	d := c.Decision
	if d.ConfidenceThreshold < 1 || d.ConfidenceThreshold > 10 {
		problems = append(problems, fmt.Sprintf("decision.confidence_threshold %d outside [1, 10]", d.ConfidenceThreshold))
	}
	switch d.FailurePolicy {
	case "reject", "accept":
	default:
		problems = append(problems, fmt.Sprintf("decision.failure_policy %q must be reject or accept", d.FailurePolicy))
	}

	switch c.Scoring.Parser {
	case "regex", "treesitter":
	default:
		problems = append(problems, fmt.Sprintf("scoring.parser %q must be regex or treesitter", c.Scoring.Parser))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Cooldown returns the minimum time between two triggers.
func (l LimitsConfig) Cooldown() time.Duration {
	return time.Duration(l.ProcessingCooldown) * time.Second
}

// Idle returns how long the buffer must be quiet before an idle trigger.
func (l LimitsConfig) Idle() time.Duration {
	return time.Duration(l.IdleThreshold) * time.Second
}

// MaxAge returns how long a record may stay buffered.
func (l LimitsConfig) MaxAge() time.Duration {
	return time.Duration(l.MaxBufferAge) * time.Second
}

// PollInterval returns the idle-check tick, defaulting to one second.
func (l LimitsConfig) PollInterval() time.Duration {
	if l.PollIntervalMs <= 0 {
		return time.Second
	}
	return time.Duration(l.PollIntervalMs) * time.Millisecond
}

// Timeout returns the decision call timeout, defaulting to ten seconds.
func (d DecisionConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// Window returns how long a surfaced intervention accepts feedback.
func (f FeedbackConfig) Window() time.Duration {
	if f.WindowSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(f.WindowSeconds) * time.Second
}

// StorePath returns the configured history database path or the default
// location inside StateDir.
func (c Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(StateDir(), "history.db")
}

// ExpandHome replaces a leading ~/ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
