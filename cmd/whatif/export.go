package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/report"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved analysis runs",
		RunE:  runExport,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.String("run-id", "", "Export only this run (default: all runs)")
	f.String("format", "json", "Output format (json, chart, xlsx, html); chart, xlsx and html need --run-id")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, err := localize(cmd.Context(), v.GetString("lang"))
	if err != nil {
		return err
	}

	db, err := openStore(v)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("export needs a database: set --db")
	}
	defer db.Close()

	var runs []model.AnalysisRun
	if id := v.GetString("run-id"); id != "" {
		run, err := db.GetRun(id)
		if err != nil {
			return fmt.Errorf("get run %s: %w", id, err)
		}
		if run == nil {
			return fmt.Errorf("run %s not found", id)
		}
		runs = []model.AnalysisRun{*run}
	} else {
		runs, err = db.ListRuns()
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
	}

	format := v.GetString("format")
	if format != "json" && len(runs) != 1 {
		return fmt.Errorf("format %s exports a single run: pass --run-id", format)
	}

	w, err := createOutput(v.GetString("output"))
	if err != nil {
		return err
	}
	defer w.Close()

	switch format {
	case "json":
		data, err := json.MarshalIndent(runs, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		// Ensure trailing newline.
		_, _ = fmt.Fprintln(w)
		return nil
	case "chart":
		return report.WriteChartConfig(w, report.RunChart(ctx, &runs[0]))
	case "xlsx":
		return report.WriteXLSX(w, runs[0].Reports)
	case "html":
		return report.WriteHTML(ctx, w, &runs[0])
	default:
		return fmt.Errorf("unknown format %q (want json, chart, xlsx or html)", format)
	}
}
