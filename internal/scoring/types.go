// Package scoring turns file content into a significance score.
package scoring

import "github.com/suykerbuyk/blue/internal/change"

// Category names, in scoring order.
const (
	CategoryFunction = "function"
	CategoryImport   = "import"
	CategorySecurity = "security"
	CategoryError    = "error"
	CategoryTest     = "test"
	CategoryMinor    = "minor"
)

var categories = []string{
	CategoryFunction, CategoryImport, CategorySecurity,
	CategoryError, CategoryTest, CategoryMinor,
}

// Result is the score for one piece of content.
type Result struct {
	Score   int
	Details change.Details
}

// RuleMatch is one rule that matched during a breakdown.
type RuleMatch struct {
	Category   string `json:"category" yaml:"category"`
	Pattern    string `json:"pattern" yaml:"pattern"`
	Matches    int    `json:"matches" yaml:"matches"`
	PointsEach int    `json:"points_each" yaml:"points_each"`
	Total      int    `json:"total_points" yaml:"total_points"`
}

// Breakdown explains how a pattern score was reached.
type Breakdown struct {
	Language       string         `json:"language" yaml:"language"`
	Base           int            `json:"base" yaml:"base"`
	CategoryScores map[string]int `json:"category_scores" yaml:"category_scores"`
	Matches        []RuleMatch    `json:"pattern_matches" yaml:"pattern_matches"`
	Total          int            `json:"total_score" yaml:"total_score"`
}
