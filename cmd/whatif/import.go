package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavelanni/whatif/internal/source"
	"github.com/pavelanni/whatif/internal/store"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load response files, scoring maps and routing history into the database",
		RunE:  runImport,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	f.StringSliceP("responses", "r", nil, "Candidate response files (repeatable)")
	f.StringP("scoring", "s", "", "Scoring map file (JSON or YAML)")
	f.String("history", "", "Historical routing outcomes (JSON or YAML)")
	return cmd
}

func runImport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := openStore(v)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("import needs a database: set --db")
	}
	defer db.Close()

	for _, path := range v.GetStringSlice("responses") {
		if err := importResponses(db, path); err != nil {
			return err
		}
	}
	if path := v.GetString("scoring"); path != "" {
		if err := importScoring(db, path); err != nil {
			return err
		}
	}
	if path := v.GetString("history"); path != "" {
		if err := importHistory(db, path); err != nil {
			return err
		}
	}
	return nil
}

// fileChanged reports whether path's content differs from the last import,
// returning the new hash alongside.
func fileChanged(db *store.Store, path string) (data []byte, hash string, changed, seen bool, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, "", false, false, fmt.Errorf("read %s: %w", path, err)
	}
	hash = sha256sum(data)
	stored, err := db.GetImportedFileHash(path)
	if err != nil {
		return nil, "", false, false, fmt.Errorf("check import status for %s: %w", path, err)
	}
	return data, hash, stored != hash, stored != "", nil
}

// importResponses stores a candidate's responses keyed by file path. A
// changed file replaces the candidate's previous set.
func importResponses(db *store.Store, path string) error {
	data, hash, changed, seen, err := fileChanged(db, path)
	if err != nil {
		return err
	}
	if !changed {
		slog.Info("responses file unchanged, skipping", "path", path)
		return nil
	}
	if seen {
		slog.Info("responses file changed since last import, replacing", "path", path)
	}

	raws, err := source.DecodeRecords(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	recs := source.Canonicalize(path, raws)
	if err := db.InsertResponses(path, recs); err != nil {
		return fmt.Errorf("insert responses from %s: %w", path, err)
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported responses", "path", path, "count", len(recs))
	return nil
}

func importScoring(db *store.Store, path string) error {
	_, hash, changed, _, err := fileChanged(db, path)
	if err != nil {
		return err
	}
	if !changed {
		slog.Info("scoring file unchanged, skipping", "path", path)
		return nil
	}
	maps, err := source.LoadScoringMaps(path)
	if err != nil {
		return fmt.Errorf("load scoring maps: %w", err)
	}
	if err := db.ReplaceScoringMaps(maps); err != nil {
		return fmt.Errorf("store scoring maps: %w", err)
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported scoring maps", "path", path, "subjects", len(maps))
	return nil
}

// importHistory appends routing outcomes. A changed file is skipped because
// its earlier samples are already stored.
func importHistory(db *store.Store, path string) error {
	_, hash, changed, seen, err := fileChanged(db, path)
	if err != nil {
		return err
	}
	if !changed {
		slog.Info("history file unchanged, skipping", "path", path)
		return nil
	}
	if seen {
		slog.Warn("history file changed since last import, skipping to avoid duplicate samples", "path", path)
		return nil
	}
	samples, err := source.LoadThresholdSamples(path)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if err := db.InsertThresholdSamples(path, samples); err != nil {
		return fmt.Errorf("store history: %w", err)
	}
	if err := db.SetImportedFileHash(path, hash); err != nil {
		return fmt.Errorf("record import for %s: %w", path, err)
	}
	slog.Info("imported routing history", "path", path, "samples", len(samples))
	return nil
}
