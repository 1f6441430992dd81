package scoring

import (
	"log/slog"

	"github.com/pavelanni/whatif/internal/model"
)

// Engine runs the aggregator and simulator over every subject for one candidate.
type Engine struct {
	repo *Repository
	agg  *Aggregator
	sim  *Simulator
}

// NewEngine wires a calculator, aggregator and simulator over repo.
func NewEngine(repo *Repository, threshold float64) *Engine {
	agg := NewAggregator(NewCalculator(repo), threshold)
	return &Engine{repo: repo, agg: agg, sim: NewSimulator(agg)}
}

// Provisional reports whether the engine scores with placeholder maps.
func (e *Engine) Provisional() bool {
	return e.repo.Placeholder()
}

// Threshold returns the adaptive threshold in use.
func (e *Engine) Threshold() float64 {
	return e.agg.Threshold()
}

// Aggregate summarizes one subject.
func (e *Engine) Aggregate(responses []model.ResponseRecord, subject model.Subject) model.PerformanceSummary {
	return e.agg.Aggregate(responses, subject)
}

// Simulate projects one subject.
func (e *Engine) Simulate(responses []model.ResponseRecord, subject model.Subject, additionalCorrect int) model.WhatIfResult {
	return e.sim.Simulate(responses, subject, additionalCorrect)
}

// Analyze summarizes and projects every subject for one candidate.
func (e *Engine) Analyze(candidate string, responses []model.ResponseRecord, additionalCorrect int) model.CandidateReport {
	report := model.CandidateReport{Candidate: candidate}
	for _, subject := range model.Subjects {
		summary := e.agg.Aggregate(responses, subject)
		whatIf := e.sim.Simulate(responses, subject, additionalCorrect)
		report.Summaries = append(report.Summaries, summary)
		report.WhatIfs = append(report.WhatIfs, whatIf)
		slog.Debug("analyzed subject",
			"candidate", candidate,
			"subject", subject,
			"raw_score", summary.RawScore,
			"scaled_score", summary.ScaledScore,
			"projected", whatIf.NewScore,
		)
	}
	return report
}
