package harness

import "github.com/roach88/bourse/internal/market"

// Outcome of a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records what one op or resume step did.
type TraceEvent struct {
	Step int            `json:"step"`
	Op   string         `json:"op"`
	Args map[string]any `json:"args,omitempty"`

	// Outcome is OutcomeOK or the rejection code.
	Outcome string `json:"outcome"`

	// At is the clock reading of a committed operation.
	At         int64              `json:"at,omitempty"`
	Settlement *market.Settlement `json:"settlement,omitempty"`

	// Pending counts undelivered effects of a committed operation.
	Pending int `json:"pending,omitempty"`

	// Applied counts effects delivered by a resume step.
	Applied int `json:"applied,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion matched.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
