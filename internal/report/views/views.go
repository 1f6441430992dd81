// Package views holds the templ components behind the web UI and the
// exported HTML report. Components take display-ready values; formatting and
// localization of cell text happen in package report.
package views

// RunRow is one line of the saved-runs table.
type RunRow struct {
	ID        string
	CreatedAt string
	Threshold string
	Failures  string
}

// Report is a rendered analysis run.
type Report struct {
	Title       string
	Threshold   string
	Provisional bool
	// Chart is the Chart.js configuration, JSON-encoded into the page script.
	Chart      any
	Candidates []Candidate
	Failures   []string
}

type Candidate struct {
	Heading   string
	Summaries []SummaryRow
	// WhatIfTitle is empty when the candidate has no projections.
	WhatIfTitle string
	WhatIfs     [][]string
	Narrative   []string
	Advice      string
}

// SummaryRow holds either the cells of a scored subject or, for a subject
// without first-stage responses, the Skipped message.
type SummaryRow struct {
	Skipped string
	Cells   []string
}
