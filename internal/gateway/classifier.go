package gateway

import (
	"fmt"
	"regexp"
)

// Outcome is the classification of a gateway result code.
type Outcome int

const (
	// OutcomeSuccess is a settled, approved payment.
	OutcomeSuccess Outcome = iota
	// OutcomePending means the gateway is still processing; the caller
	// should poll again later.
	OutcomePending
	// OutcomeRejected is a terminal negative decision.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePending:
		return "pending"
	case OutcomeRejected:
		return "rejected"
	}
	return "unknown"
}

// TriggerContext distinguishes the two delivery channels. The gateway uses
// slightly different "still processing" code families for asynchronous
// pushes versus synchronous status queries, so the pending set differs per
// context while success is shared.
type TriggerContext int

const (
	TriggerWebhook TriggerContext = iota
	TriggerPoll
)

// ClassifierConfig holds the regex pattern families for result codes.
// Empty fields fall back to the gateway's documented defaults.
type ClassifierConfig struct {
	Success      string
	ManualReview string
	Pending      string
	PollPending  string
}

// DefaultClassifierConfig returns the documented code families of the
// checkout gateway.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Success:      `^(000\.000\.|000\.100\.1|000\.[36])`,
		ManualReview: `^(000\.400\.0[^3]|000\.400\.100)`,
		Pending:      `^(000\.200)`,
		PollPending:  `^(800\.400\.5|100\.400\.500)`,
	}
}

// Classifier maps raw gateway result codes onto outcomes. Both the webhook
// handler and the poll path consume this single table; the pattern families
// are configuration, not per-call-site copies.
type Classifier struct {
	success      *regexp.Regexp
	manualReview *regexp.Regexp
	pending      *regexp.Regexp
	pollPending  *regexp.Regexp
}

func NewClassifier(cfg ClassifierConfig) (*Classifier, error) {
	def := DefaultClassifierConfig()
	if cfg.Success == "" {
		cfg.Success = def.Success
	}
	if cfg.ManualReview == "" {
		cfg.ManualReview = def.ManualReview
	}
	if cfg.Pending == "" {
		cfg.Pending = def.Pending
	}
	if cfg.PollPending == "" {
		cfg.PollPending = def.PollPending
	}

	success, err := regexp.Compile(cfg.Success)
	if err != nil {
		return nil, fmt.Errorf("success pattern: %w", err)
	}
	manual, err := regexp.Compile(cfg.ManualReview)
	if err != nil {
		return nil, fmt.Errorf("manual review pattern: %w", err)
	}
	pending, err := regexp.Compile(cfg.Pending)
	if err != nil {
		return nil, fmt.Errorf("pending pattern: %w", err)
	}
	pollPending, err := regexp.Compile(cfg.PollPending)
	if err != nil {
		return nil, fmt.Errorf("poll pending pattern: %w", err)
	}

	return &Classifier{
		success:      success,
		manualReview: manual,
		pending:      pending,
		pollPending:  pollPending,
	}, nil
}

// Classify maps a result code to an outcome for the given trigger context.
// Any code outside the success and pending families is a terminal negative.
func (c *Classifier) Classify(resultCode string, trigger TriggerContext) Outcome {
	if c.success.MatchString(resultCode) || c.manualReview.MatchString(resultCode) {
		return OutcomeSuccess
	}
	if c.pending.MatchString(resultCode) {
		return OutcomePending
	}
	if trigger == TriggerPoll && c.pollPending.MatchString(resultCode) {
		return OutcomePending
	}
	return OutcomeRejected
}
