package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/framecheck/framecheck/internal/domain/model"
	"github.com/framecheck/framecheck/internal/domain/port"
	domain "github.com/framecheck/framecheck/internal/domain/service"
)

// ErrClassificationChanged is reported when a scenario classifies differently
// from one run to the next against the same server
var ErrClassificationChanged = errors.New("classification changed between runs")

// VerifyService drives scenarios through a prober and checks the observed
// framing against the decision rules
type VerifyService struct {
	prober    port.Prober
	publisher port.ReportPublisher
	logger    port.Logger
}

// NewVerifyService creates a new VerifyService instance. publisher may be nil.
func NewVerifyService(prober port.Prober, publisher port.ReportPublisher, logger port.Logger) *VerifyService {
	return &VerifyService{
		prober:    prober,
		publisher: publisher,
		logger:    logger,
	}
}

// Check probes one scenario and returns its result
func (s *VerifyService) Check(ctx context.Context, target *url.URL, scenario *model.RequestScenario) *model.ScenarioResult {
	start := time.Now()
	decision := Predict(scenario)
	result := &model.ScenarioResult{
		Scenario: scenario,
		Decision: decision,
		Expected: decision.ExpectedObservation(),
	}

	invalid := scenario.KnownInvalid
	if err := decision.Validate(); err != nil {
		invalid = true
	}

	c, err := s.prober.Probe(ctx, scenario.Bytes(target.Host), target)
	if err == nil {
		err = domain.CheckObservation(c, result.Expected)
	}
	result.Classification = c
	result.Duration = time.Since(start)

	switch {
	case invalid:
		result.Outcome = model.OutcomeExpectedFailure
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Error = "known-invalid scenario: " + scenario.Reason
		}
	case err != nil:
		result.Outcome = model.OutcomeFail
		result.Error = err.Error()
	default:
		result.Outcome = model.OutcomePass
	}

	return result
}

// Run probes every scenario once, in order
func (s *VerifyService) Run(ctx context.Context, target *url.URL, scenarios []*model.RequestScenario) (*model.RunSummary, []*model.ScenarioResult, error) {
	return s.runOnce(ctx, target, scenarios, 1, nil)
}

// Watch runs the catalog runs times (forever when runs <= 0), pausing for
// interval between runs. A scenario whose classification differs from the
// previous run fails with ErrClassificationChanged. onSummary, if set, is
// called after every run.
func (s *VerifyService) Watch(ctx context.Context, target *url.URL, scenarios []*model.RequestScenario, runs int, interval time.Duration, onSummary func(*model.RunSummary)) (bool, error) {
	last := make(map[string]model.ObservedFraming)
	ok := true

	for run := 1; runs <= 0 || run <= runs; run++ {
		if run > 1 && interval > 0 {
			select {
			case <-ctx.Done():
				return ok, s.abort(run, ctx.Err())
			case <-time.After(interval):
			}
		}

		summary, _, err := s.runOnce(ctx, target, scenarios, run, last)
		if err != nil {
			return ok, err
		}
		if onSummary != nil {
			onSummary(summary)
		}
		ok = ok && summary.OK()
	}

	return ok, nil
}

// runOnce probes the scenarios in order. When last is not nil it holds the
// previous classification per scenario and is updated in place.
func (s *VerifyService) runOnce(ctx context.Context, target *url.URL, scenarios []*model.RequestScenario, run int, last map[string]model.ObservedFraming) (*model.RunSummary, []*model.ScenarioResult, error) {
	start := time.Now()
	summary := &model.RunSummary{Run: run, Target: target.String()}
	results := make([]*model.ScenarioResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return summary, results, s.abort(run, err)
		}

		result := s.Check(ctx, target, scenario)
		if c := result.Classification; c != nil && last != nil {
			if prev, seen := last[scenario.Name]; seen && prev != c.ObservedFraming {
				result.Outcome = model.OutcomeFail
				result.Error = fmt.Sprintf("%v: %s then %s", ErrClassificationChanged, prev, c.ObservedFraming)
			}
			last[scenario.Name] = c.ObservedFraming
		}

		s.report(result)
		summary.Add(result)
		results = append(results, result)
	}

	summary.Duration = time.Since(start)
	s.publish(model.MessageTypeRunSummary, summary)
	return summary, results, nil
}

func (s *VerifyService) report(result *model.ScenarioResult) {
	observed := model.ObservedUnknown
	sample := "<null>"
	if c := result.Classification; c != nil {
		observed = c.ObservedFraming
		sample = c.Sample
	}

	switch result.Outcome {
	case model.OutcomePass:
		s.logger.Info("%-26s %-5s expected=%s observed=%s sample=%s", result.Scenario.Name, result.Outcome, result.Expected, observed, sample)
	case model.OutcomeExpectedFailure:
		s.logger.Warn("%-26s %-5s %s", result.Scenario.Name, result.Outcome, result.Error)
	default:
		s.logger.Error("%-26s %-5s expected=%s observed=%s: %s", result.Scenario.Name, result.Outcome, result.Expected, observed, result.Error)
	}

	s.publish(model.MessageTypeScenarioResult, result)
}

// abort reports a run that stopped before finishing the catalog and returns err
func (s *VerifyService) abort(run int, err error) error {
	s.logger.Warn("Verification stopped during run %d: %v", run, err)
	s.publish(model.MessageTypeError, model.ErrorPayload{Message: fmt.Sprintf("run %d stopped: %v", run, err)})
	return err
}

func (s *VerifyService) publish(msgType model.MessageType, payload interface{}) {
	if s.publisher == nil {
		return
	}
	msg, err := model.NewMessage(msgType, payload)
	if err != nil {
		s.logger.Error("Failed to build %s message: %v", msgType, err)
		return
	}
	if err := s.publisher.Publish(msg); err != nil {
		s.logger.Warn("Failed to publish %s message: %v", msgType, err)
	}
}
