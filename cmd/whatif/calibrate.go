package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/report"
	"github.com/pavelanni/whatif/internal/scoring"
	"github.com/pavelanni/whatif/internal/source"
)

func calibrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Find the routing threshold that best predicts historical Module 2 tiers",
		RunE:  runCalibrate,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	def := model.DefaultAnalysisConfig()
	f.String("history", "", "Historical routing outcomes (JSON or YAML); default: samples stored in the database")
	f.Float64("calib-min", def.CalibMin, "Lowest threshold candidate")
	f.Float64("calib-max", def.CalibMax, "Grid upper bound (exclusive)")
	f.Float64("calib-step", def.CalibStep, "Grid step")
	f.Bool("save", true, "Remember the result as the default threshold for later analyses")
	return cmd
}

func runCalibrate(cmd *cobra.Command, _ []string) error {
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

	var samples []model.ThresholdSample
	switch path := v.GetString("history"); {
	case path != "":
		samples, err = source.LoadThresholdSamples(path)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
	case db != nil:
		samples, err = db.ListThresholdSamples()
		if err != nil {
			return fmt.Errorf("list stored samples: %w", err)
		}
	default:
		return fmt.Errorf("no samples: pass --history or import a history file")
	}

	candidates, err := calibrationGrid(cfg)
	if err != nil {
		return err
	}
	result := scoring.Calibrate(samples, candidates)
	slog.Info("calibration finished",
		"threshold", result.Threshold, "accuracy", result.Accuracy, "valid_samples", result.Valid)

	if db != nil && v.GetBool("save") && result.Valid > 0 {
		if err := db.SetCalibratedThreshold(result.Threshold); err != nil {
			return fmt.Errorf("save calibrated threshold: %w", err)
		}
	}
	return report.WriteCalibration(ctx, cmd.OutOrStdout(), result)
}

func calibrationGrid(cfg model.AnalysisConfig) ([]float64, error) {
	candidates, err := scoring.CandidateRange(cfg.CalibMin, cfg.CalibMax, cfg.CalibStep)
	if err != nil {
		return nil, fmt.Errorf("calib-min/calib-max/calib-step: %w", err)
	}
	return candidates, nil
}
