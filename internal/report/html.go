package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/pavelanni/whatif/internal/i18n"
	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/report/views"
)

// RunsPage lists saved runs, newest first, linking to each report.
func RunsPage(runs []model.AnalysisRun) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		rows := make([]views.RunRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, views.RunRow{
				ID:        run.ID,
				CreatedAt: run.CreatedAt.Format("2006-01-02 15:04:05"),
				Threshold: i18n.Percent(ctx, run.Threshold*100),
				Failures:  fmt.Sprint(len(run.Failures)),
			})
		}
		return views.RunsPage(rows).Render(ctx, w)
	})
}

// ReportPage renders a run's candidate reports and its score chart.
func ReportPage(run *model.AnalysisRun) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return views.ReportPage(reportView(ctx, run)).Render(ctx, w)
	})
}

func reportView(ctx context.Context, run *model.AnalysisRun) views.Report {
	v := views.Report{
		Title:       i18n.Td(ctx, "RunN", map[string]any{"ID": run.ID}),
		Threshold:   i18n.Percent(ctx, run.Threshold*100),
		Provisional: run.Provisional,
		Chart:       RunChart(ctx, run),
	}
	for _, rep := range run.Reports {
		v.Candidates = append(v.Candidates, candidateView(ctx, rep))
	}
	for _, f := range run.Failures {
		v.Failures = append(v.Failures, i18n.Td(ctx, "CandidateFailed", map[string]any{"Name": f.Candidate, "Error": f.Error}))
	}
	return v
}

func candidateView(ctx context.Context, rep model.CandidateReport) views.Candidate {
	c := views.Candidate{
		Heading:   i18n.Td(ctx, "Candidate", map[string]any{"Name": rep.Candidate}),
		Narrative: rep.Narrative,
		Advice:    rep.Advice,
	}
	for _, s := range rep.Summaries {
		name := i18n.Subject(ctx, s.Subject)
		if !s.Scored() {
			c.Summaries = append(c.Summaries, views.SummaryRow{
				Skipped: i18n.Td(ctx, "SkippedSubject", map[string]any{"Subject": name}),
			})
			continue
		}
		weak := make([]string, 0, len(s.WeakTopics))
		for _, topic := range sortedKeys(s.WeakTopics) {
			weak = append(weak, topic+" "+i18n.Percent(ctx, s.WeakTopics[topic]))
		}
		c.Summaries = append(c.Summaries, views.SummaryRow{Cells: []string{
			name,
			fmt.Sprintf("%d/%d (%s)", s.Stage1.Correct, s.Stage1.Total, i18n.Percent(ctx, s.Stage1.Accuracy*100)),
			fmt.Sprintf("%d/%d", s.Stage2.Correct, s.Stage2.Total),
			string(s.Stage2.Difficulty),
			fmt.Sprint(s.RawScore),
			fmt.Sprint(s.ScaledScore),
			strings.Join(weak, ", "),
		}})
	}

	if len(rep.WhatIfs) == 0 {
		return c
	}
	c.WhatIfTitle = i18n.Tp(ctx, "WhatIfTitle", rep.WhatIfs[0].AdditionalCorrect)
	for _, wi := range rep.WhatIfs {
		if s, ok := rep.Summary(wi.Subject); ok && !s.Scored() {
			continue
		}
		ids := make([]string, 0, len(wi.HighImpactQuestions))
		for _, q := range wi.HighImpactQuestions {
			ids = append(ids, q.QuestionID+" ("+q.Complexity+")")
		}
		c.WhatIfs = append(c.WhatIfs, []string{
			i18n.Subject(ctx, wi.Subject),
			fmt.Sprint(wi.CurrentScore),
			fmt.Sprint(wi.NewScore),
			fmt.Sprintf("%+d", wi.ScoreGain),
			strings.Join(ids, ", "),
		})
	}
	return c
}

// WriteHTML renders the run's report page to w.
func WriteHTML(ctx context.Context, w io.Writer, run *model.AnalysisRun) error {
	return ReportPage(run).Render(ctx, w)
}
