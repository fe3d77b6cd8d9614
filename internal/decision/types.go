// Package decision confirms, optionally with a language model, that a
// released batch is worth surfacing now.
package decision

// Outcome is the raw result of a decision.
type Outcome string

const (
	Accept Outcome = "accept"
	Reject Outcome = "reject"
	// Error means the model could not be consulted; the failure policy
	// decides whether it counts as accepted.
	Error Outcome = "error"
)

// Verdict is the decision for one batch.
type Verdict struct {
	Outcome    Outcome
	Accepted   bool
	Confidence int // 0 when the model gave no number
	Reason     string
	Response   string
	Err        error
}

// Opportunity is the rule-of-thumb assessment logged next to each verdict.
type Opportunity struct {
	ShouldIntervene bool     `json:"should_intervene" yaml:"should_intervene"`
	Confidence      int      `json:"confidence" yaml:"confidence"`
	Opportunities   []string `json:"opportunity_factors" yaml:"opportunity_factors"`
	Risks           []string `json:"risk_factors" yaml:"risk_factors"`
}
