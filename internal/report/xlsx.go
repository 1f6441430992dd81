package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/whatif/internal/model"
)

const (
	scoresSheet = "Scores"
	chartSheet  = "Chart"
)

var scoreHeaders = []any{
	"Candidate", "Subject", "Module 1 Correct", "Module 1 Total", "Module 1 Accuracy",
	"Module 2 Correct", "Module 2 Total", "Module 2 Difficulty", "Raw Score", "Scaled Score",
	"Additional Correct", "New Score", "Score Gain", "New Difficulty", "Provisional",
}

// WriteXLSX writes one row per scored subject and the chart bars on a
// second sheet.
func WriteXLSX(w io.Writer, reports []model.CandidateReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", scoresSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(chartSheet); err != nil {
		return fmt.Errorf("create chart sheet: %w", err)
	}

	if err := writeScoresSheet(f, reports); err != nil {
		return err
	}
	if err := writeChartSheet(f, ScorePairs(reports)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeScoresSheet(f *excelize.File, reports []model.CandidateReport) error {
	sw, err := f.NewStreamWriter(scoresSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", scoreHeaders); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	var rows [][]any
	for _, rep := range reports {
		for _, s := range rep.Summaries {
			if !s.Scored() {
				continue
			}
			w, _ := rep.WhatIf(s.Subject)
			rows = append(rows, []any{
				sanitizeForExcel(rep.Candidate),
				string(s.Subject),
				s.Stage1.Correct,
				s.Stage1.Total,
				s.Stage1.Accuracy,
				s.Stage2.Correct,
				s.Stage2.Total,
				string(s.Stage2.Difficulty),
				s.RawScore,
				s.ScaledScore,
				w.AdditionalCorrect,
				w.NewScore,
				w.ScoreGain,
				string(w.NewDifficulty),
				s.Provisional,
			})
		}
	}
	if err := setRows(sw, rows); err != nil {
		return fmt.Errorf("scores sheet: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush scores sheet: %w", err)
	}
	return nil
}

func writeChartSheet(f *excelize.File, pairs []model.ScorePair) error {
	sw, err := f.NewStreamWriter(chartSheet)
	if err != nil {
		return fmt.Errorf("create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", []any{"Label", "Scaled Score", "Projected"}); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	rows := make([][]any, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []any{sanitizeForExcel(p.Label), p.ScaledScore, p.Projected})
	}
	if err := setRows(sw, rows); err != nil {
		return fmt.Errorf("chart sheet: %w", err)
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush chart sheet: %w", err)
	}
	return nil
}

// rowSetter is the part of excelize.StreamWriter the sheet writers use.
type rowSetter interface {
	SetRow(cell string, values []any, opts ...excelize.RowOpts) error
}

// setRows writes rows below the header, starting at A2.
func setRows(sw rowSetter, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

// sanitizeForExcel guards against formula injection from candidate names.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
