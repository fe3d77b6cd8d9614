package scoring

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/config"
)

// bareConfig has the scoring constants but no pattern rules.
func bareConfig() config.ScoringConfig {
	return config.ScoringConfig{
		BasePoints:         1,
		FunctionBonus:      2,
		SmallChangeLines:   2,
		SmallChangePenalty: 1,
		DeletionPoints:     1,
		Parser:             "regex",
		MaxCachedFiles:     100,
	}
}

func newEngine(t *testing.T, cfg config.ScoringConfig) *Engine {
	t.Helper()
	e, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

const twoFuncs = "def alpha():\n    pass\n\ndef beta():\n    pass\n"

func TestScore_NewFunctionsEarnBonus(t *testing.T) {
	e := newEngine(t, bareConfig())

	r := e.Score("mod.py", []byte(twoFuncs))
	assert.Equal(t, 5, r.Score) // base 1 + 2 identifiers × 2
	assert.Equal(t, []string{"alpha", "beta"}, r.Details.FunctionsAdded)
	assert.Equal(t, "python", r.Details.Language)
	assert.Equal(t, 6, r.Details.LinesChanged)
}

func TestScore_UnchangedContentIsPenalized(t *testing.T) {
	e := newEngine(t, bareConfig())
	e.Score("mod.py", []byte(twoFuncs))

	r := e.Score("mod.py", []byte(twoFuncs))
	assert.Equal(t, 0, r.Score)
	assert.Empty(t, r.Details.FunctionsAdded)
	assert.Equal(t, 0, r.Details.LinesChanged)
}

func TestScore_DiffsAgainstPreviousVersion(t *testing.T) {
	e := newEngine(t, bareConfig())
	e.Score("mod.py", []byte(twoFuncs))

	r := e.Score("mod.py", []byte(twoFuncs+"\ndef gamma():\n    return 1\n"))
	assert.Equal(t, 3, r.Score)
	assert.Equal(t, []string{"gamma"}, r.Details.FunctionsAdded)
	assert.Equal(t, 3, r.Details.LinesChanged)
}

func TestScore_CachePerEngine(t *testing.T) {
	a := newEngine(t, bareConfig())
	b := newEngine(t, bareConfig())

	a.Score("mod.py", []byte(twoFuncs))
	r := b.Score("mod.py", []byte(twoFuncs))
	assert.Equal(t, 5, r.Score, "second engine must not see the first engine's cache")
}

func ruleConfig() config.ScoringConfig {
	cfg := bareConfig()
	cfg.FunctionBonus = 0
	cfg.SmallChangePenalty = 0
	cfg.FunctionPatterns = []config.PatternRule{{Pattern: `^def\s+\w+`, Points: 1, Language: "python"}}
	cfg.SecurityPatterns = []config.PatternRule{{Pattern: "Password", Points: 2, Language: "all"}}
	cfg.MinorPatterns = []config.PatternRule{{Pattern: "todo", Points: 1, Language: "all"}}
	cfg.ImportPatterns = []config.PatternRule{
		{Pattern: "[invalid", Points: 5, Language: "all"},
		{Pattern: "", Points: 5, Language: "all"},
	}
	return cfg
}

const ruleContent = "import os\ndef f():\n  password = 1  # TODO\n  PASSWORD\n"

func TestScore_PatternRules(t *testing.T) {
	e := newEngine(t, ruleConfig())
	assert.Equal(t, 3, e.RuleCount(), "malformed rules are skipped")

	r := e.Score("x.py", []byte(ruleContent))
	// base 1 + function 1 + security 2×2 + minor 1
	assert.Equal(t, 7, r.Score)
}

func TestScore_LanguageScopedRules(t *testing.T) {
	e := newEngine(t, ruleConfig())

	r := e.Score("x.js", []byte(ruleContent))
	assert.Equal(t, 6, r.Score, "python-only rule must not apply to javascript")

	r = e.Score("notes.txt", []byte(ruleContent))
	assert.Equal(t, 6, r.Score, "unknown language gets only 'all' rules")
	assert.Equal(t, LanguageUnknown, r.Details.Language)
}

func TestBreakdown(t *testing.T) {
	e := newEngine(t, ruleConfig())

	b := e.Breakdown("x.py", []byte(ruleContent))
	assert.Equal(t, 7, b.Total)
	assert.Equal(t, 1, b.Base)
	assert.Equal(t, map[string]int{
		CategoryFunction: 1,
		CategorySecurity: 4,
		CategoryMinor:    1,
	}, b.CategoryScores)
	require.Len(t, b.Matches, 3)
	assert.Equal(t, RuleMatch{Category: CategorySecurity, Pattern: "Password", Matches: 2, PointsEach: 2, Total: 4}, b.Matches[1])

	assert.Equal(t, 0, e.CacheStats().Entries, "breakdown must not touch the cache")
}

func TestCheckRules(t *testing.T) {
	errs := CheckRules(ruleConfig())
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "import_patterns[0]")

	assert.Empty(t, CheckRules(config.DefaultConfig().Scoring))
}

func TestScore_FlagsAndBonuses(t *testing.T) {
	cfg := bareConfig()
	cfg.SecurityBonus = 3
	cfg.ErrorHandlingBonus = 2
	cfg.TestBonus = 2
	cfg.SmallChangePenalty = 0
	e := newEngine(t, cfg)

	content := "func TestLogin(t *testing.T) {\n\tif err := auth(token); err != nil {\n\t\tpanic(err)\n\t}\n}\n"
	r := e.Score("login_test.go", []byte(content))
	assert.True(t, r.Details.HasSecurity)
	assert.True(t, r.Details.HasErrorHandling)
	assert.True(t, r.Details.HasTests)
	assert.Equal(t, []string{"TestLogin"}, r.Details.FunctionsAdded)
	// base 1 + identifier 2 + 3 + 2 + 2
	assert.Equal(t, 10, r.Score)
}

func TestScore_Binary(t *testing.T) {
	e := newEngine(t, bareConfig())
	r := e.Score("blob.py", []byte{'a', 0x00, 'b'})
	assert.Equal(t, 0, r.Score)
	assert.True(t, r.Details.Binary)
}

func TestScoreFile_Unreadable(t *testing.T) {
	e := newEngine(t, bareConfig())
	r := e.ScoreFile(filepath.Join(t.TempDir(), "missing.py"))
	assert.Equal(t, 0, r.Score)
	assert.True(t, r.Details.Unreadable)
	assert.NotEmpty(t, r.Details.Error)
}

func TestScoreFile_TooLarge(t *testing.T) {
	cfg := bareConfig()
	cfg.MaxFileBytes = 8
	e := newEngine(t, cfg)

	path := filepath.Join(t.TempDir(), "big.py")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0o644))

	r := e.ScoreFile(path)
	assert.True(t, r.Details.Unreadable)
	assert.Equal(t, 0, r.Score)
}

func TestScoreNotification(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.py")
	newPath := filepath.Join(dir, "new.py")
	require.NoError(t, os.WriteFile(oldPath, []byte(twoFuncs), 0o644))

	e := newEngine(t, bareConfig())
	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s := e.ScoreNotification(change.Notification{Path: oldPath, Kind: change.Created, Timestamp: ts})
	assert.Equal(t, 5, s.Score)
	assert.Equal(t, ts, s.Timestamp)
	assert.Equal(t, change.Created, s.Kind)

	require.NoError(t, os.Rename(oldPath, newPath))
	s = e.ScoreNotification(change.Notification{Path: oldPath, Dest: newPath, Kind: change.Moved, Timestamp: ts})
	assert.Equal(t, 0, s.Score, "moved content diffs against the source's cached version")
	assert.Equal(t, newPath, s.File())

	s = e.ScoreNotification(change.Notification{Path: newPath, Kind: change.Deleted, Timestamp: ts})
	assert.Equal(t, 1, s.Score)
	assert.Equal(t, 0, e.CacheStats().Entries)
}

func TestScore_NeverNegative(t *testing.T) {
	cfg := config.DefaultConfig().Scoring
	cfg.SmallChangePenalty = 50
	e := newEngine(t, cfg)

	inputs := []string{"", "\n", "x", "def f(): pass", strings.Repeat("a\n", 3), "\x00\x00"}
	for _, in := range inputs {
		r := e.Score("f.py", []byte(in))
		assert.GreaterOrEqual(t, r.Score, 0, "input %q", in)
	}
}

func TestCacheBounded(t *testing.T) {
	cfg := bareConfig()
	cfg.MaxCachedFiles = 2
	e := newEngine(t, cfg)

	e.Score("a.py", []byte("a"))
	e.Score("b.py", []byte("b"))
	e.Score("c.py", []byte("c"))
	assert.Equal(t, 2, e.CacheStats().Entries)

	e.ClearCache()
	assert.Equal(t, 0, e.CacheStats().Entries)
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"a.py":        "python",
		"b.TSX":       "javascript",
		"c.h":         "c",
		"d.go":        "go",
		"e.kt":        "kotlin",
		"Makefile":    LanguageUnknown,
		"notes.md":    LanguageUnknown,
		"dir.d/x.cs":  "csharp",
		"weird.py.md": LanguageUnknown,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestRegexExtractor(t *testing.T) {
	x := RegexExtractor()
	tests := []struct {
		lang    string
		content string
		want    []string
	}{
		{"go", "type Server struct{}\nfunc (s *Server) Run() {}\nfunc main() {}\n", []string{"Run", "Server", "main"}},
		{"javascript", "function a() {}\nconst b = (x) => x\nclass C {}\n", []string{"C", "a", "b"}},
		{"python", "class Foo(Base):\n    def bar(self):\n        pass\n", []string{"Foo", "bar"}},
		{"c", "static int add(int a, int b) {\n  if (a) {\n  }\n}\n", []string{"add"}},
		{"ruby", "def x; end", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, x.Identifiers(tt.lang, []byte(tt.content)), tt.lang)
	}
}
