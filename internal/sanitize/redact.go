// Package sanitize scrubs free text before it is persisted.
package sanitize

import (
	"regexp"
	"strings"
)

const mask = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	// provider API keys
	regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{16,}`),
	regexp.MustCompile(`\bxai-[A-Za-z0-9_-]{16,}`),
	regexp.MustCompile(`\bAIza[0-9A-Za-z_-]{30,}`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}\.[A-Za-z0-9_-]{8,}`),
}

// key=value or key: value where key names a credential.
var assignmentPattern = regexp.MustCompile(
	`(?i)\b(password|passwd|pwd|secret|token|api[_-]?key|access[_-]?key)(\s*[:=]\s*)("[^"]*"|'[^']*'|\S+)`,
)

var bearerPattern = regexp.MustCompile(`(?i)\b(bearer\s+)[A-Za-z0-9._~+/=-]{8,}`)

// Redact masks credential-looking substrings in text.
func Redact(text string) string {
	for _, re := range secretPatterns {
		text = re.ReplaceAllString(text, mask)
	}
	text = assignmentPattern.ReplaceAllString(text, "${1}${2}"+mask)
	text = bearerPattern.ReplaceAllString(text, "${1}"+mask)
	return strings.TrimSpace(text)
}

// Truncate shortens text to at most max runes, marking the cut.
func Truncate(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	return string(r[:max]) + "…"
}
