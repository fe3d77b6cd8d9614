package history

// TriggerStats counts released batches and their verdicts.
type TriggerStats struct {
	Triggers int            `json:"triggers" yaml:"triggers"`
	ByReason map[string]int `json:"by_reason" yaml:"by_reason"`
	Accepted int            `json:"accepted" yaml:"accepted"`
	Rejected int            `json:"rejected" yaml:"rejected"`
	Errors   int            `json:"errors" yaml:"errors"`
}
