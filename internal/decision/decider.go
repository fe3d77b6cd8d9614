package decision

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/suykerbuyk/blue/internal/buffer"
	"github.com/suykerbuyk/blue/internal/config"
	"github.com/suykerbuyk/blue/internal/llm"
	"github.com/suykerbuyk/blue/internal/render"
)

const systemPrompt = "You are a decision assistant. Answer briefly: YES/NO, confidence 1-10."

// Decider turns a released batch into a Verdict.
type Decider struct {
	cfg    config.DecisionConfig
	llmCfg config.LLMConfig
	client llm.Client
	log    *zap.Logger
}

// New returns a Decider. client may be nil, in which case every enabled
// decision ends in the Error outcome.
func New(cfg config.DecisionConfig, llmCfg config.LLMConfig, client llm.Client, log *zap.Logger) *Decider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decider{cfg: cfg, llmCfg: llmCfg, client: client, log: log}
}

// Decide asks the model whether now is a good time to surface s. It never
// returns an error: failures become the Error outcome, resolved by the
// failure policy.
func (d *Decider) Decide(ctx context.Context, s *buffer.Summary) Verdict {
	if !d.cfg.EnableLLMDecision {
		return Verdict{Outcome: Accept, Accepted: true, Reason: "model confirmation disabled"}
	}
	if d.client == nil {
		return d.failure(llm.ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout())
	defer cancel()

	resp, err := d.client.Complete(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      d.Prompt(s),
		MaxTokens:   d.llmCfg.MaxTokens,
		Temperature: d.llmCfg.Temperature,
	})
	if err != nil {
		return d.failure(err)
	}

	v := Parse(resp, d.cfg.ConfidenceThreshold)
	d.log.Debug("model decision",
		zap.String("response", resp),
		zap.String("outcome", string(v.Outcome)),
		zap.Int("confidence", v.Confidence))
	return v
}

// Prompt fills the configured template for s.
func (d *Decider) Prompt(s *buffer.Summary) string {
	tmpl := d.cfg.Prompt
	if tmpl == "" {
		tmpl = config.DefaultDecisionPrompt
	}
	return strings.NewReplacer(
		"{changes}", render.Describe(s),
		"{context}", render.Context(s),
	).Replace(tmpl)
}

func (d *Decider) failure(err error) Verdict {
	accepted := d.cfg.FailurePolicy == "accept"
	d.log.Warn("model decision failed",
		zap.Error(err),
		zap.String("failure_policy", d.cfg.FailurePolicy))
	return Verdict{
		Outcome:  Error,
		Accepted: accepted,
		Reason:   fmt.Sprintf("model unavailable, policy %s", d.cfg.FailurePolicy),
		Err:      err,
	}
}

var (
	yesNoRe       = regexp.MustCompile(`(?i)\b(yes|no)\b`)
	denominatorRe = regexp.MustCompile(`(?i)\s*(?:/|\bout\s+of)\s*10\b`)
	confidenceRe  = regexp.MustCompile(`\b([1-9]|10)\b`)
)

// Parse interprets a YES/NO plus confidence answer. Any "no" rejects.
// A "yes" is accepted when the last number in 1..10 meets threshold, or
// when there is no number at all.
func Parse(resp string, threshold int) Verdict {
	var hasYes, hasNo bool
	for _, m := range yesNoRe.FindAllStringSubmatch(resp, -1) {
		if strings.EqualFold(m[1], "yes") {
			hasYes = true
		} else {
			hasNo = true
		}
	}

	v := Verdict{Outcome: Reject, Response: resp}
	switch {
	case !hasYes && !hasNo:
		v.Reason = "no yes/no in response"
		return v
	case hasNo:
		v.Reason = "model said no"
		return v
	}

	nums := confidenceRe.FindAllString(denominatorRe.ReplaceAllString(resp, ""), -1)
	if len(nums) == 0 {
		v.Outcome = Accept
		v.Accepted = true
		v.Reason = "model said yes"
		return v
	}

	v.Confidence, _ = strconv.Atoi(nums[len(nums)-1])
	if v.Confidence >= threshold {
		v.Outcome = Accept
		v.Accepted = true
		v.Reason = fmt.Sprintf("confidence %d >= %d", v.Confidence, threshold)
	} else {
		v.Reason = fmt.Sprintf("confidence %d < %d", v.Confidence, threshold)
	}
	return v
}
