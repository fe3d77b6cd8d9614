package scoring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/change"
	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/snapshot"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// Engine scores content against the configured pattern rules. It owns the
// previous-content cache used to find newly added identifiers.
type Engine struct {
	cfg     config.ScoringConfig
	rules   []rule
	extract Extractor
	cache   *snapshot.Cache
	log     *zap.Logger
}

// New compiles the rules in cfg. Rules that fail to compile are logged and
// skipped. A "treesitter" parser falls back to regex when the build lacks cgo.
func New(cfg config.ScoringConfig, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := snapshot.New(cfg.MaxCachedFiles)
	if err != nil {
		return nil, fmt.Errorf("create content cache: %w", err)
	}

	rules, _ := compileRules(cfg, log)

	extract := RegexExtractor()
	if cfg.Parser == "treesitter" {
		ts, err := TreeSitterExtractor()
		if err != nil {
			log.Warn("falling back to regex identifier extraction", zap.Error(err))
		} else {
			extract = ts
		}
	}

	return &Engine{
		cfg:     cfg,
		rules:   rules,
		extract: extract,
		cache:   cache,
		log:     log,
	}, nil
}

// Close releases the content cache.
func (e *Engine) Close() {
	e.cache.Close()
}

// RuleCount returns how many rules compiled.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Score scores content for path and records it as the previous content for
// the next call. It never fails: binary content scores 0 with a flag.
func (e *Engine) Score(path string, content []byte) Result {
	lang := DetectLanguage(path)
	details := change.Details{Language: lang}

	if isBinary(content) {
		details.Binary = true
		e.cache.Delete(path)
		return Result{Score: 0, Details: details}
	}

	prev, _ := e.cache.Get(path)
	details.LinesChanged = countLines(content) - countLines(prev)

	score := e.cfg.BasePoints + e.patternScore(lang, content, nil)

	newIDs := added(e.extract.Identifiers(lang, prev), e.extract.Identifiers(lang, content))
	details.FunctionsAdded = newIDs
	score += len(newIDs) * e.cfg.FunctionBonus

	f := detectFlags(content)
	details.HasSecurity = f.security
	details.HasErrorHandling = f.errorHandling
	details.HasTests = f.tests
	if f.security {
		score += e.cfg.SecurityBonus
	}
	if f.errorHandling {
		score += e.cfg.ErrorHandlingBonus
	}
	if f.tests {
		score += e.cfg.TestBonus
	}

	if abs(details.LinesChanged) <= e.cfg.SmallChangeLines {
		score -= e.cfg.SmallChangePenalty
	}
	if score < 0 {
		score = 0
	}

	e.cache.Put(path, content)
	return Result{Score: score, Details: details}
}

// ScoreFile reads path and scores it. Read failures score 0 and are flagged.
func (e *Engine) ScoreFile(path string) Result {
	content, err := readLimited(path, e.cfg.MaxFileBytes)
	if err != nil {
		e.log.Debug("unreadable file", zap.String("path", path), zap.Error(err))
		e.cache.Delete(path)
		return Result{Score: 0, Details: change.Details{
			Language:   DetectLanguage(path),
			Unreadable: true,
			Error:      err.Error(),
		}}
	}
	return e.Score(path, content)
}

// ScoreDeletion forgets path and returns the fixed deletion score.
func (e *Engine) ScoreDeletion(path string) Result {
	e.cache.Delete(path)
	return Result{
		Score:   e.cfg.DeletionPoints,
		Details: change.Details{Language: DetectLanguage(path)},
	}
}

// Rename carries the cached content of from over to to.
func (e *Engine) Rename(from, to string) {
	e.cache.Rename(from, to)
}

// ScoreNotification scores a watcher notification by reading the file from
// disk where there is content to read.
func (e *Engine) ScoreNotification(n change.Notification) change.Scored {
	var r Result
	switch n.Kind {
	case change.Deleted:
		r = e.ScoreDeletion(n.Path)
	case change.Moved:
		if n.Dest != "" {
			e.Rename(n.Path, n.Dest)
		}
		r = e.ScoreFile(n.Target())
	default:
		r = e.ScoreFile(n.Path)
	}
	return change.Scored{
		Path:      n.Path,
		Dest:      n.Dest,
		Kind:      n.Kind,
		Timestamp: n.Timestamp,
		Score:     r.Score,
		Details:   r.Details,
	}
}

// Breakdown reports the per-category pattern scores for content without
// touching the cache.
func (e *Engine) Breakdown(path string, content []byte) Breakdown {
	lang := DetectLanguage(path)
	b := Breakdown{
		Language:       lang,
		Base:           e.cfg.BasePoints,
		CategoryScores: make(map[string]int),
	}
	if isBinary(content) {
		return b
	}
	b.Total = b.Base + e.patternScore(lang, content, &b)
	return b
}

// CacheStats reports the previous-content cache occupancy.
func (e *Engine) CacheStats() snapshot.Stats {
	return e.cache.Stats()
}

// ClearCache forgets every previous version.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

func (e *Engine) patternScore(lang string, content []byte, b *Breakdown) int {
	lowered := strings.ToLower(string(content))
	total := 0
	for _, r := range e.rules {
		if !r.appliesTo(lang) {
			continue
		}
		n := r.count(content, lowered)
		if n == 0 {
			continue
		}
		pts := n * r.points
		total += pts
		if b != nil {
			b.CategoryScores[r.category] += pts
			b.Matches = append(b.Matches, RuleMatch{
				Category:   r.category,
				Pattern:    r.pattern,
				Matches:    n,
				PointsEach: r.points,
				Total:      pts,
			})
		}
	}
	return total
}

var errTooLarge = errors.New("file exceeds max_file_bytes")

func readLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if max <= 0 {
		return io.ReadAll(f)
	}
	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, errTooLarge
	}
	return data, nil
}

func isBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	return bytes.Count(content, []byte("\n")) + 1
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
