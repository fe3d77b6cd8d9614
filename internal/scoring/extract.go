package scoring

import (
	"regexp"
	"sort"
)

// Extractor finds function and type identifiers in source content.
type Extractor interface {
	Identifiers(lang string, content []byte) []string
}

var functionPatterns = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`(?m)def\s+(\w+)\s*\(`),
	"javascript": regexp.MustCompile(`(?m)function\s+(\w+)|(?:const|let|var)\s+(\w+)\s*=\s*(?:\([^)]*\)\s*=>|\([^)]*\)\s*\{|function)`),
	"java":       regexp.MustCompile(`(?m)(?:public|private|protected|static|\s)+[\w<>\[\]]+\s+(\w+)\s*\([^)]*\)\s*\{`),
	"go":         regexp.MustCompile(`(?m)func\s+(?:\([^)]*\)\s*)?(\w+)\s*\(`),
	"c":          regexp.MustCompile(`(?m)(?:static\s+)?[\w*]+\s+(\w+)\s*\([^)]*\)\s*\{`),
}

var classPatterns = map[string]*regexp.Regexp{
	"python":     regexp.MustCompile(`(?m)class\s+(\w+)(?:\([^)]*\))?:`),
	"javascript": regexp.MustCompile(`(?m)class\s+(\w+)`),
	"java":       regexp.MustCompile(`(?m)class\s+(\w+)`),
	"go":         regexp.MustCompile(`(?m)type\s+(\w+)\s+struct`),
}

// control-flow keywords the C-family function pattern picks up from
// constructs like "else if (x) {".
var notIdentifiers = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "return": true,
}

type regexExtractor struct{}

// RegexExtractor extracts identifiers with per-language regular expressions.
func RegexExtractor() Extractor { return regexExtractor{} }

func (regexExtractor) Identifiers(lang string, content []byte) []string {
	seen := make(map[string]bool)
	for _, re := range []*regexp.Regexp{functionPatterns[lang], classPatterns[lang]} {
		if re == nil {
			continue
		}
		for _, m := range re.FindAllSubmatch(content, -1) {
			for _, g := range m[1:] {
				if len(g) > 0 && !notIdentifiers[string(g)] {
					seen[string(g)] = true
				}
			}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// added returns identifiers in cur that are not in prev, sorted.
func added(prev, cur []string) []string {
	had := make(map[string]bool, len(prev))
	for _, p := range prev {
		had[p] = true
	}
	var out []string
	for _, c := range cur {
		if !had[c] {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

var (
	testRe = regexp.MustCompile(`(?i)test_\w+|def\s+test|\bit\s*\(|describe\s*\(|assert\s+|@Test|func\s+Test\w+`)
	errRe  = regexp.MustCompile(`(?i)try\s*:|except\s+|catch\s*\(|throw\s+|raise\s+|panic\s*\(|recover\s*\(`)
	secRe  = regexp.MustCompile(`(?i)\b(?:password|passwd|pwd|auth|authenticate|authorization|token|jwt|oauth|encrypt|decrypt|cipher|hash|sha|md5|sql|query|database|session|cookie|cors|csrf|sanitize|validate)`)
)

type flags struct {
	security, errorHandling, tests bool
}

func detectFlags(content []byte) flags {
	return flags{
		security:      secRe.Match(content),
		errorHandling: errRe.Match(content),
		tests:         testRe.Match(content),
	}
}
