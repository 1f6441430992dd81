// Package report runs batch analyses and renders their results as text,
// Chart.js configs, spreadsheets and HTML.
package report

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/source"
)

// Analyzer scores one candidate's responses.
type Analyzer interface {
	Analyze(candidate string, responses []model.ResponseRecord, additionalCorrect int) model.CandidateReport
	Threshold() float64
	Provisional() bool
}

// Advisor produces study advice for a finished report.
type Advisor interface {
	Advise(ctx context.Context, report model.CandidateReport, narrative []string) (string, error)
}

// Runner analyzes a batch of candidates concurrently.
type Runner struct {
	Analyzer          Analyzer
	Source            source.ResponseSource
	AdditionalCorrect int
	Workers           int
	Narrative         []string
	Advisor           Advisor // optional
}

type outcome struct {
	report *model.CandidateReport
	err    error
}

// Run analyzes every candidate. A candidate that fails is recorded in the
// run's failures and does not stop the others. Reports keep input order.
// Only context cancellation makes Run itself fail.
func (r *Runner) Run(ctx context.Context, candidates []string) (*model.AnalysisRun, error) {
	outcomes := make([]outcome, len(candidates))

	g, ctx := errgroup.WithContext(ctx)
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, candidate := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := r.analyzeOne(ctx, candidate)
			outcomes[i] = outcome{report: rep, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &model.AnalysisRun{
		Threshold:   r.Analyzer.Threshold(),
		Provisional: r.Analyzer.Provisional(),
	}
	for i, o := range outcomes {
		if o.err != nil {
			if errors.Is(o.err, context.Canceled) || errors.Is(o.err, context.DeadlineExceeded) {
				return nil, o.err
			}
			slog.Error("candidate analysis failed", "candidate", candidates[i], "error", o.err)
			run.Failures = append(run.Failures, model.CandidateFailure{
				Candidate: candidates[i],
				Error:     o.err.Error(),
			})
			continue
		}
		run.Reports = append(run.Reports, *o.report)
	}
	slog.Info("batch analysis finished",
		"candidates", len(candidates), "reports", len(run.Reports), "failures", len(run.Failures))
	return run, nil
}

func (r *Runner) analyzeOne(ctx context.Context, candidate string) (*model.CandidateReport, error) {
	recs, err := r.Source.Responses(ctx, candidate)
	if err != nil {
		return nil, err
	}
	rep := r.Analyzer.Analyze(candidate, recs, r.AdditionalCorrect)
	rep.Narrative = r.Narrative

	if r.Advisor != nil {
		advice, err := r.Advisor.Advise(ctx, rep, r.Narrative)
		if err != nil {
			slog.Warn("advice unavailable", "candidate", candidate, "error", err)
		} else {
			rep.Advice = advice
		}
	}
	return &rep, nil
}
