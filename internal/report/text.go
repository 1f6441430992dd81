package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pavelanni/whatif/internal/i18n"
	"github.com/pavelanni/whatif/internal/model"
)

// WriteText prints a localized console report for every candidate in run,
// followed by its failures.
func WriteText(ctx context.Context, w io.Writer, run *model.AnalysisRun) error {
	tw := &textWriter{ctx: ctx, w: w, placeholder: run.Provisional}
	for _, rep := range run.Reports {
		tw.candidate(rep)
	}
	for _, f := range run.Failures {
		tw.printf("\n%s\n", i18n.Td(ctx, "CandidateFailed", map[string]any{"Name": f.Candidate, "Error": f.Error}))
	}
	return tw.err
}

// WriteCalibration prints the optimal threshold line.
func WriteCalibration(ctx context.Context, w io.Writer, c model.Calibration) error {
	_, err := fmt.Fprintf(w, "\n%s: %s\n", i18n.T(ctx, "OptimalThreshold"), i18n.Percent(ctx, c.Threshold*100))
	return err
}

type textWriter struct {
	ctx         context.Context
	w           io.Writer
	placeholder bool
	err         error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *textWriter) marker() string {
	if t.placeholder {
		return " " + i18n.T(t.ctx, "Placeholder")
	}
	return ""
}

func (t *textWriter) candidate(rep model.CandidateReport) {
	ctx := t.ctx
	t.printf("\n%s\n", i18n.Td(ctx, "Candidate", map[string]any{"Name": rep.Candidate}))

	for _, s := range rep.Summaries {
		name := i18n.Subject(ctx, s.Subject)
		if !s.Scored() {
			t.printf("%s\n", i18n.Td(ctx, "SkippedSubject", map[string]any{"Subject": name}))
			continue
		}
		t.printf("%s:\n", name)
		t.printf("  %s: %d/%d (%s)\n", i18n.T(ctx, "Stage1"), s.Stage1.Correct, s.Stage1.Total,
			i18n.Percent(ctx, s.Stage1.Accuracy*100))
		t.printf("  %s: %d/%d (%s)\n", i18n.T(ctx, "Stage2"), s.Stage2.Correct, s.Stage2.Total, s.Stage2.Difficulty)
		t.printf("  %s: %d%s\n", i18n.T(ctx, "ScaledScore"), s.ScaledScore, t.marker())
		t.printf("  %s: %s\n", i18n.T(ctx, "WeakTopics"), t.weakTopics(s.WeakTopics))
		t.printf("  %s: %s\n", i18n.T(ctx, "SlowQuestions"), t.slowQuestions(s.SlowQuestions))
		t.printf("  %s: %s\n", i18n.T(ctx, "TopicClusters"), t.clusters(s.TopicClusters))
	}

	if len(rep.WhatIfs) > 0 {
		t.printf("\n%s:\n", i18n.Tp(ctx, "WhatIfTitle", rep.WhatIfs[0].AdditionalCorrect))
	}
	for _, wi := range rep.WhatIfs {
		name := i18n.Subject(ctx, wi.Subject)
		if s, ok := rep.Summary(wi.Subject); ok && !s.Scored() {
			t.printf("%s\n", i18n.Td(ctx, "SkippedWhatIf", map[string]any{"Subject": name}))
			continue
		}
		t.printf("%s:\n", name)
		t.printf("  %s: %d%s\n", i18n.T(ctx, "CurrentScore"), wi.CurrentScore, t.marker())
		t.printf("  %s: %d%s\n", i18n.T(ctx, "NewScore"), wi.NewScore, t.marker())
		t.printf("  %s: %d\n", i18n.T(ctx, "ScoreGain"), wi.ScoreGain)
		t.printf("  %s: %s\n", i18n.T(ctx, "HighImpact"), t.highImpact(wi.HighImpactQuestions))
	}

	if len(rep.Narrative) > 0 {
		t.printf("\n%s:\n", i18n.T(ctx, "Narrative"))
		for _, p := range rep.Narrative {
			t.printf("  %s\n", p)
		}
	}
	if rep.Advice != "" {
		t.printf("\n%s:\n%s\n", i18n.T(ctx, "Advice"), rep.Advice)
	}
}

func (t *textWriter) weakTopics(m map[string]float64) string {
	if len(m) == 0 {
		return i18n.T(t.ctx, "None")
	}
	parts := make([]string, 0, len(m))
	for _, topic := range sortedKeys(m) {
		parts = append(parts, fmt.Sprintf("%s %s", topic, i18n.Percent(t.ctx, m[topic])))
	}
	return strings.Join(parts, ", ")
}

func (t *textWriter) slowQuestions(qs []model.SlowQuestion) string {
	if len(qs) == 0 {
		return i18n.T(t.ctx, "None")
	}
	parts := make([]string, 0, len(qs))
	for _, q := range qs {
		label := q.QuestionID
		if q.Topic != "" {
			label += " [" + q.Topic + "]"
		}
		parts = append(parts, fmt.Sprintf("%s %s", label, i18n.Seconds(t.ctx, q.TimeSpentS)))
	}
	return strings.Join(parts, ", ")
}

func (t *textWriter) clusters(m map[string]model.TopicCluster) string {
	if len(m) == 0 {
		return i18n.T(t.ctx, "None")
	}
	parts := make([]string, 0, len(m))
	for _, topic := range sortedKeys(m) {
		c := m[topic]
		parts = append(parts, fmt.Sprintf("%s %d/%d (%s, %s)", topic, c.Correct, c.Total,
			i18n.Percent(t.ctx, c.Accuracy), i18n.Seconds(t.ctx, c.AvgTimeS)))
	}
	return strings.Join(parts, "; ")
}

func (t *textWriter) highImpact(qs []model.HighImpactQuestion) string {
	if len(qs) == 0 {
		return i18n.T(t.ctx, "None")
	}
	parts := make([]string, 0, len(qs))
	for _, q := range qs {
		label := q.QuestionID
		if q.Topic != "" {
			label += " [" + q.Topic + "]"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", label, q.Complexity))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
