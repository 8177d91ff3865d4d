package model

import "time"

// Outcome is the verdict for one probed scenario
type Outcome string

const (
	// OutcomePass means the observed framing matched the expectation
	OutcomePass Outcome = "pass"
	// OutcomeFail means the probe or one of its assertions failed
	OutcomeFail Outcome = "fail"
	// OutcomeExpectedFailure is reported for known-invalid scenarios
	OutcomeExpectedFailure Outcome = "xfail"
)

// ScenarioResult is the report for one scenario
type ScenarioResult struct {
	Scenario       *RequestScenario    `json:"scenario"`
	Decision       FramingDecision     `json:"decision"`
	Expected       ObservedFraming     `json:"expected"`
	Classification *WireClassification `json:"classification,omitempty"`
	Outcome        Outcome             `json:"outcome"`
	Error          string              `json:"error,omitempty"`
	Duration       time.Duration       `json:"duration"`
}

// RunSummary totals one pass over the scenario catalog
type RunSummary struct {
	Run              int           `json:"run"`
	Target           string        `json:"target"`
	Passed           int           `json:"passed"`
	Failed           int           `json:"failed"`
	ExpectedFailures int           `json:"expected_failures"`
	Duration         time.Duration `json:"duration"`
}

// Add counts a scenario result into the summary
func (s *RunSummary) Add(r *ScenarioResult) {
	switch r.Outcome {
	case OutcomePass:
		s.Passed++
	case OutcomeExpectedFailure:
		s.ExpectedFailures++
	default:
		s.Failed++
	}
}

// OK reports whether every non-invalid scenario passed
func (s *RunSummary) OK() bool {
	return s.Failed == 0
}
