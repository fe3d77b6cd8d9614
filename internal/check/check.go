// Package check reports whether the environment can run the pipeline.
package check

import (
	"fmt"
	"os"
	"strings"

	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/history"
	"github.com/suykerbuyk/blue/internal/scoring"
)

// Status represents the outcome of a single check.
type Status int

const (
	Pass Status = iota
	Warn
	Fail
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "pass"
	case Warn:
		return "warn"
	case Fail:
		return "FAIL"
	default:
		return "unknown"
	}
}

// Result holds the outcome of a single check.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report aggregates all check results.
type Report struct {
	Results []Result
}

// HasFailures returns true if any result has Fail status.
func (r Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == Fail {
			return true
		}
	}
	return false
}

// Format returns the human-readable report string.
func (r Report) Format() string {
	if len(r.Results) == 0 {
		return "blue check\n\n  no checks ran\n"
	}

	maxName := 0
	for _, res := range r.Results {
		if len(res.Name) > maxName {
			maxName = len(res.Name)
		}
	}

	var b strings.Builder
	b.WriteString("blue check\n\n")

	var passed, warnings, failures int
	for _, res := range r.Results {
		switch res.Status {
		case Pass:
			passed++
		case Warn:
			warnings++
		case Fail:
			failures++
		}
		fmt.Fprintf(&b, "  %-4s  %-*s  %s\n", res.Status, maxName, res.Name, res.Detail)
	}

	fmt.Fprintf(&b, "\n%d passed, %d warning, %d failure\n", passed, warnings, failures)
	return b.String()
}

// CheckConfig reports which file the config came from.
func CheckConfig(path string) Result {
	if path == "" {
		return Result{Name: "config", Status: Pass, Detail: "built-in defaults (run blue init to write a file)"}
	}
	return Result{Name: "config", Status: Pass, Detail: config.CompressHome(path)}
}

// CheckValid runs config validation.
func CheckValid(cfg config.Config) Result {
	if err := cfg.Validate(); err != nil {
		return Result{Name: "settings", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "settings", Status: Pass, Detail: "valid"}
}

// CheckWorkspace checks that the directory to watch exists.
func CheckWorkspace(dir string) Result {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return Result{Name: "workspace", Status: Pass, Detail: config.CompressHome(dir)}
	}
	return Result{Name: "workspace", Status: Fail, Detail: dir + " not found"}
}

// CheckPatterns compiles every scoring rule. Bad rules are skipped at run
// time, so they only warn.
func CheckPatterns(cfg config.ScoringConfig) Result {
	total := len(cfg.FunctionPatterns) + len(cfg.ImportPatterns) + len(cfg.SecurityPatterns) +
		len(cfg.ErrorPatterns) + len(cfg.TestPatterns) + len(cfg.MinorPatterns)
	errs := scoring.CheckRules(cfg)
	if len(errs) == 0 {
		return Result{Name: "patterns", Status: Pass, Detail: fmt.Sprintf("%d rules", total)}
	}
	return Result{
		Name:   "patterns",
		Status: Warn,
		Detail: fmt.Sprintf("%d of %d rules skipped: %v", len(errs), total, errs[0]),
	}
}

// CheckParser reports the identifier extractor in use.
func CheckParser(cfg config.ScoringConfig) Result {
	if cfg.Parser != "treesitter" {
		return Result{Name: "parser", Status: Pass, Detail: "regex"}
	}
	if scoring.TreeSitterAvailable() {
		return Result{Name: "parser", Status: Pass, Detail: "tree-sitter"}
	}
	return Result{Name: "parser", Status: Warn, Detail: "tree-sitter unavailable in this build, using regex"}
}

// CheckLLM checks the decision model configuration.
func CheckLLM(dcfg config.DecisionConfig, lcfg config.LLMConfig) Result {
	if !dcfg.EnableLLMDecision {
		return Result{Name: "llm", Status: Pass, Detail: "disabled"}
	}
	switch lcfg.Provider {
	case "", "openai", "gemini":
	default:
		return Result{Name: "llm", Status: Fail, Detail: fmt.Sprintf("unknown provider %q", lcfg.Provider)}
	}
	keyEnv := lcfg.APIKeyEnv
	if os.Getenv(keyEnv) != "" {
		return Result{Name: "llm", Status: Pass, Detail: fmt.Sprintf("%s %s, %s set", lcfg.Provider, lcfg.Model, keyEnv)}
	}
	return Result{
		Name:   "llm",
		Status: Warn,
		Detail: fmt.Sprintf("%s not set (failure policy: %s)", keyEnv, dcfg.FailurePolicy),
	}
}

// CheckStore opens the history database.
func CheckStore(cfg config.Config) Result {
	if !cfg.Store.Enabled {
		return Result{Name: "store", Status: Pass, Detail: "disabled"}
	}
	path := cfg.StorePath()
	s, err := history.Open(path)
	if err != nil {
		return Result{Name: "store", Status: Fail, Detail: err.Error()}
	}
	defer s.Close()

	st, err := s.TriggerStats()
	if err != nil {
		return Result{Name: "store", Status: Fail, Detail: err.Error()}
	}
	return Result{Name: "store", Status: Pass, Detail: fmt.Sprintf("%s (%d batches)", config.CompressHome(path), st.Triggers)}
}

// CheckFeedback describes the adaptive threshold settings.
func CheckFeedback(cfg config.Config) Result {
	f := cfg.Feedback
	if !f.EnableAdaptiveLearning {
		return Result{Name: "feedback", Status: Pass, Detail: fmt.Sprintf("disabled, fixed threshold %d", cfg.Limits.ScoreThreshold)}
	}
	return Result{
		Name:   "feedback",
		Status: Pass,
		Detail: fmt.Sprintf("adaptive, threshold %d in [%d, %d]", cfg.Limits.ScoreThreshold, f.MinScoreThreshold, f.MaxScoreThreshold),
	}
}

// Run executes all checks and returns a report. cfgPath is the file the
// config was loaded from, or "" for defaults.
func Run(cfg config.Config, cfgPath, workspace string) Report {
	results := []Result{
		CheckConfig(cfgPath),
		CheckValid(cfg),
		CheckWorkspace(workspace),
		CheckPatterns(cfg.Scoring),
		CheckParser(cfg.Scoring),
		CheckLLM(cfg.Decision, cfg.LLM),
		CheckStore(cfg),
		CheckFeedback(cfg),
	}
	return Report{Results: results}
}
