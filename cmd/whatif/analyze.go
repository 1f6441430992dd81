package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/whatif/internal/llm"
	"github.com/pavelanni/whatif/internal/llm/prompts"
	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/narrative"
	"github.com/pavelanni/whatif/internal/report"
	"github.com/pavelanni/whatif/internal/scoring"
	"github.com/pavelanni/whatif/internal/source"
	"github.com/pavelanni/whatif/internal/store"
)

// narrativeParagraphs is how many paragraphs of the narrative document are shown.
const narrativeParagraphs = 5

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score candidates and project what-if gains",
		RunE:  runAnalyze,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	addScoringFlags(f)
	f.StringSliceP("responses", "r", nil, "Candidate response files or stored candidate keys (repeatable; default: all stored candidates)")
	f.String("data-source", string(source.KindAuto), "Response source (auto, store, file)")
	f.String("data-dir", "", "Directory that relative response file paths are resolved against")
	f.String("history", "", "Historical routing outcomes (JSON or YAML) for threshold calibration")
	f.String("narrative", "", "Optional .docx whose first paragraphs are shown with each report")
	f.String("chart-out", "", "Write a Chart.js config to this path")
	f.String("xlsx-out", "", "Write an XLSX score export to this path")
	f.String("html-out", "", "Write an HTML report to this path")
	f.Int("workers", model.DefaultAnalysisConfig().Workers, "Candidates analyzed concurrently")
	f.Bool("advise", false, "Ask the LLM for study advice on each report")
	f.String("advice-style", string(prompts.StyleBrief), "Advice prompt style (brief, detailed)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.Bool("save", true, "Save the run in the database")
	return cmd
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	cfg := analysisConfig(v)

	ctx, err := localize(cmd.Context(), cfg.Lang)
	if err != nil {
		return err
	}

	db, err := openStore(v)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	engine, err := buildEngine(v, db)
	if err != nil {
		return err
	}

	// A nil *store.Store must not reach Resolve as a non-nil interface.
	var lister source.ResponseLister
	if db != nil {
		lister = db
	}
	src, err := source.Resolve(source.Kind(v.GetString("data-source")), lister, v.GetString("data-dir"))
	if err != nil {
		return err
	}

	candidates := v.GetStringSlice("responses")
	if len(candidates) == 0 && db != nil {
		candidates, err = db.ListCandidates()
		if err != nil {
			return fmt.Errorf("list stored candidates: %w", err)
		}
	}
	if len(candidates) == 0 {
		return fmt.Errorf("no candidates: pass --responses or import response files first")
	}

	runner := &report.Runner{
		Analyzer:          engine,
		Source:            src,
		AdditionalCorrect: cfg.AdditionalCorrect,
		Workers:           cfg.Workers,
		Narrative:         loadNarrative(v.GetString("narrative")),
	}
	if v.GetBool("advise") {
		runner.Advisor = llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"), v.GetString("advice-style"))
		slog.Info("study advice enabled", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
	}

	slog.Info("starting analysis",
		"candidates", len(candidates),
		"source", src.Name(),
		"threshold", engine.Threshold(),
		"additional", cfg.AdditionalCorrect,
		"placeholder", engine.Provisional(),
		"workers", cfg.Workers,
	)
	run, err := runner.Run(ctx, candidates)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	if err := report.WriteText(ctx, cmd.OutOrStdout(), run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if db != nil && v.GetBool("save") {
		if err := db.SaveRun(run); err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		slog.Info("saved analysis run", "id", run.ID)
	}

	if err := writeOutputs(ctx, v, run, cfg.AdditionalCorrect); err != nil {
		return err
	}

	if path := v.GetString("history"); path != "" {
		samples, err := source.LoadThresholdSamples(path)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		candidates, err := calibrationGrid(cfg)
		if err != nil {
			return err
		}
		if err := report.WriteCalibration(ctx, cmd.OutOrStdout(), scoring.Calibrate(samples, candidates)); err != nil {
			return fmt.Errorf("write calibration: %w", err)
		}
	}
	return nil
}

// buildEngine resolves scoring maps (file, then database, then placeholder)
// and the threshold (configured, then last calibration, then default).
func buildEngine(v *viper.Viper, db *store.Store) (*scoring.Engine, error) {
	var maps []model.ScoringMap
	if path := v.GetString("scoring"); path != "" {
		var err error
		maps, err = source.LoadScoringMaps(path)
		if err != nil {
			return nil, fmt.Errorf("load scoring maps: %w", err)
		}
	} else if db != nil {
		var err error
		maps, err = db.ScoringMaps()
		if err != nil {
			return nil, fmt.Errorf("read stored scoring maps: %w", err)
		}
	}

	threshold := model.DefaultAnalysisConfig().Threshold
	switch {
	case v.IsSet("threshold"):
		threshold = v.GetFloat64("threshold")
	case db != nil:
		stored, ok, err := db.CalibratedThreshold()
		if err != nil {
			return nil, fmt.Errorf("read calibrated threshold: %w", err)
		}
		if ok {
			slog.Info("using calibrated threshold", "threshold", stored)
			threshold = stored
		}
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold %v out of range (0, 1]", threshold)
	}

	return scoring.NewEngine(scoring.NewRepository(maps), threshold), nil
}

func loadNarrative(path string) []string {
	if path == "" {
		return nil
	}
	paras, err := narrative.ReadParagraphs(path, narrativeParagraphs)
	if err != nil {
		slog.Warn("narrative document unavailable", "path", path, "error", err)
		return nil
	}
	return paras
}

func writeOutputs(ctx context.Context, v *viper.Viper, run *model.AnalysisRun, additional int) error {
	if path := v.GetString("chart-out"); path != "" {
		cfg := report.NewChartConfig(ctx, report.ScorePairs(run.Reports), additional)
		if err := writeFile(path, func(f *os.File) error { return report.WriteChartConfig(f, cfg) }); err != nil {
			return fmt.Errorf("write chart config: %w", err)
		}
		slog.Info("chart config saved", "path", path)
	}
	if path := v.GetString("xlsx-out"); path != "" {
		if err := writeFile(path, func(f *os.File) error { return report.WriteXLSX(f, run.Reports) }); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		slog.Info("xlsx export saved", "path", path)
	}
	if path := v.GetString("html-out"); path != "" {
		if err := writeFile(path, func(f *os.File) error { return report.WriteHTML(ctx, f, run) }); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		slog.Info("html report saved", "path", path)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
