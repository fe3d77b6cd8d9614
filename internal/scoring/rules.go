package scoring

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/config"
)

type rule struct {
	category string
	pattern  string
	points   int
	language string

	// literal rules count case-insensitive substrings; the rest use re.
	literal bool
	lower   string
	re      *regexp.Regexp
}

func (r rule) appliesTo(lang string) bool {
	return r.language == LanguageAll || r.language == lang
}

// count returns the number of non-overlapping matches in content.
// lowered is content already passed through strings.ToLower.
func (r rule) count(content []byte, lowered string) int {
	if r.literal {
		return strings.Count(lowered, r.lower)
	}
	return len(r.re.FindAllIndex(content, -1))
}

var errEmptyPattern = errors.New("empty pattern")

func compileRule(category string, pr config.PatternRule) (rule, error) {
	r := rule{
		category: category,
		pattern:  pr.Pattern,
		points:   pr.Points,
		language: strings.ToLower(pr.Language),
	}
	if r.language == "" {
		r.language = LanguageAll
	}
	if pr.Pattern == "" {
		return r, errEmptyPattern
	}

	if category == CategorySecurity || category == CategoryMinor {
		r.literal = true
		r.lower = strings.ToLower(pr.Pattern)
		return r, nil
	}

	re, err := regexp.Compile("(?mi)" + pr.Pattern)
	if err != nil {
		return r, err
	}
	r.re = re
	return r, nil
}

// compileRules builds every category's rules, logging and skipping any
// rule that does not compile.
func compileRules(cfg config.ScoringConfig, log *zap.Logger) ([]rule, []error) {
	byCategory := map[string][]config.PatternRule{
		CategoryFunction: cfg.FunctionPatterns,
		CategoryImport:   cfg.ImportPatterns,
		CategorySecurity: cfg.SecurityPatterns,
		CategoryError:    cfg.ErrorPatterns,
		CategoryTest:     cfg.TestPatterns,
		CategoryMinor:    cfg.MinorPatterns,
	}

	var rules []rule
	var errs []error
	for _, cat := range categories {
		for i, pr := range byCategory[cat] {
			r, err := compileRule(cat, pr)
			if err != nil {
				log.Warn("skipping pattern rule",
					zap.String("category", cat),
					zap.Int("index", i),
					zap.String("pattern", pr.Pattern),
					zap.Error(err))
				errs = append(errs, fmt.Errorf("%s_patterns[%d] %q: %w", cat, i, pr.Pattern, err))
				continue
			}
			rules = append(rules, r)
		}
	}
	return rules, errs
}

// CheckRules reports every rule in cfg that would be skipped.
func CheckRules(cfg config.ScoringConfig) []error {
	_, errs := compileRules(cfg, zap.NewNop())
	return errs
}
