package feedback

import (
	"regexp"
	"strings"
)

var positiveKeywords = []string{
	"good", "helpful", "nice", "thanks", "useful", "great", "awesome", "perfect", "excellent", "spot on",
}

var negativeKeywords = []string{
	"bad", "wrong", "unhelpful", "annoying", "stop", "quiet", "too much", "spam", "unnecessary",
}

var (
	positiveRe = keywordPattern(positiveKeywords)
	negativeRe = keywordPattern(negativeKeywords)
)

// keywordPattern matches any keyword as a whole word; spaces inside a
// phrase match any run of whitespace.
func keywordPattern(words []string) *regexp.Regexp {
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// Classify reports the direction of text. When both keyword sets match,
// positive wins.
func Classify(text string) (Direction, bool) {
	lower := strings.ToLower(text)
	switch {
	case positiveRe.MatchString(lower):
		return Positive, true
	case negativeRe.MatchString(lower):
		return Negative, true
	}
	return "", false
}
