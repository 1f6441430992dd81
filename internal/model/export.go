package model

import "time"

// CandidateReport holds one candidate's summaries and projections, in Subjects order.
type CandidateReport struct {
	Candidate string               `json:"candidate"`
	Summaries []PerformanceSummary `json:"summaries"`
	WhatIfs   []WhatIfResult       `json:"what_ifs"`
	Narrative []string             `json:"narrative,omitempty"`
	Advice    string               `json:"advice,omitempty"`
}

// Summary returns the candidate's summary for a subject.
func (r CandidateReport) Summary(s Subject) (PerformanceSummary, bool) {
	for _, p := range r.Summaries {
		if p.Subject == s {
			return p, true
		}
	}
	return PerformanceSummary{}, false
}

// WhatIf returns the candidate's projection for a subject.
func (r CandidateReport) WhatIf(s Subject) (WhatIfResult, bool) {
	for _, w := range r.WhatIfs {
		if w.Subject == s {
			return w, true
		}
	}
	return WhatIfResult{}, false
}

// ScorePair is one bar of the exported score chart.
type ScorePair struct {
	Label       string `json:"label"`
	ScaledScore int    `json:"scaled_score"`
	Projected   bool   `json:"projected"`
}

// AnalysisRun is a saved batch of candidate reports.
type AnalysisRun struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	Threshold   float64            `json:"threshold"`
	Provisional bool               `json:"provisional"`
	Reports     []CandidateReport  `json:"reports"`
	Failures    []CandidateFailure `json:"failures,omitempty"`
}

// CandidateFailure records a candidate whose analysis could not run.
type CandidateFailure struct {
	Candidate string `json:"candidate"`
	Error     string `json:"error"`
}

// Calibration is the result of a threshold grid search.
type Calibration struct {
	Threshold float64 `json:"threshold"`
	Accuracy  float64 `json:"accuracy"`
	Valid     int     `json:"valid_samples"`
}
