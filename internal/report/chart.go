package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pavelanni/whatif/internal/i18n"
	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/scoring"
)

// Bar colors for current and projected scores.
const (
	ColorCurrent   = "#4CAF50"
	ColorProjected = "#66BB6A"
)

// ScorePairs flattens reports into chart bars: each scored subject's current
// score followed by its projection. Subjects with no first-stage responses
// are skipped.
func ScorePairs(reports []model.CandidateReport) []model.ScorePair {
	var pairs []model.ScorePair
	for _, rep := range reports {
		base := filepath.Base(rep.Candidate)
		for _, s := range rep.Summaries {
			if !s.Scored() {
				continue
			}
			pairs = append(pairs, model.ScorePair{
				Label:       fmt.Sprintf("%s (%s)", s.Subject, base),
				ScaledScore: s.ScaledScore,
			})
			w, ok := rep.WhatIf(s.Subject)
			if !ok {
				continue
			}
			pairs = append(pairs, model.ScorePair{
				Label:       fmt.Sprintf("%s (+%d) (%s)", s.Subject, w.AdditionalCorrect, base),
				ScaledScore: w.NewScore,
				Projected:   true,
			})
		}
	}
	return pairs
}

// ChartConfig is a Chart.js bar chart configuration.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor"`
}

type ChartOptions struct {
	Scales  ChartScales  `json:"scales"`
	Plugins ChartPlugins `json:"plugins"`
}

type ChartScales struct {
	Y ChartAxis `json:"y"`
	X ChartAxis `json:"x"`
}

type ChartAxis struct {
	BeginAtZero bool       `json:"beginAtZero,omitempty"`
	Max         int        `json:"max,omitempty"`
	Title       ChartTitle `json:"title"`
}

type ChartTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type ChartPlugins struct {
	Title ChartTitle `json:"title"`
}

// NewChartConfig builds the bar chart for pairs with localized titles.
// additional is the what-if count shown in the chart title.
func NewChartConfig(ctx context.Context, pairs []model.ScorePair, additional int) ChartConfig {
	labels := make([]string, 0, len(pairs))
	scores := make([]int, 0, len(pairs))
	colors := make([]string, 0, len(pairs))
	for _, p := range pairs {
		labels = append(labels, p.Label)
		scores = append(scores, p.ScaledScore)
		if p.Projected {
			colors = append(colors, ColorProjected)
		} else {
			colors = append(colors, ColorCurrent)
		}
	}

	return ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: labels,
			Datasets: []ChartDataset{{
				Label:           i18n.T(ctx, "ChartDataset"),
				Data:            scores,
				BackgroundColor: colors,
			}},
		},
		Options: ChartOptions{
			Scales: ChartScales{
				Y: ChartAxis{
					BeginAtZero: true,
					Max:         scoring.MaxScaledScore,
					Title:       ChartTitle{Display: true, Text: i18n.T(ctx, "ChartYAxis")},
				},
				X: ChartAxis{
					Title: ChartTitle{Display: true, Text: i18n.T(ctx, "ChartXAxis")},
				},
			},
			Plugins: ChartPlugins{
				Title: ChartTitle{Display: true, Text: i18n.Td(ctx, "ChartTitle", map[string]any{"Count": additional})},
			},
		},
	}
}

// WriteChartConfig writes cfg as JSON.
func WriteChartConfig(w io.Writer, cfg ChartConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode chart config: %w", err)
	}
	return nil
}

// additionalOf returns the what-if count used in a run, defaulting to def.
func additionalOf(reports []model.CandidateReport, def int) int {
	for _, rep := range reports {
		if len(rep.WhatIfs) > 0 {
			return rep.WhatIfs[0].AdditionalCorrect
		}
	}
	return def
}

// RunChart builds the chart for a saved run.
func RunChart(ctx context.Context, run *model.AnalysisRun) ChartConfig {
	return NewChartConfig(ctx, ScorePairs(run.Reports), additionalOf(run.Reports, 0))
}
