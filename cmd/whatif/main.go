package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	appI18n "github.com/pavelanni/whatif/internal/i18n"
	"github.com/pavelanni/whatif/internal/model"
	"github.com/pavelanni/whatif/internal/store"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "whatif",
		Short: "Adaptive exam score analysis and what-if projections",
	}

	analyze := analyzeCmd()
	root.AddCommand(analyze, importCmd(), calibrateCmd(), serveCmd(), exportCmd(), hashPasswordCmd())

	// Make "analyze" the default when no subcommand is given.
	root.RunE = analyze.RunE

	// Register analyze flags on root so bare `whatif --responses ...` still works.
	root.Flags().AddFlagSet(analyze.Flags())

	return root
}

// addCommonFlags registers the flags every command shares.
func addCommonFlags(f *pflag.FlagSet) {
	f.String("db", "whatif.db", "SQLite database path (empty to run without a database)")
	f.StringP("lang", "l", "en", "Report language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

// addScoringFlags registers the flags that shape the scoring engine.
func addScoringFlags(f *pflag.FlagSet) {
	def := model.DefaultAnalysisConfig()
	f.StringP("scoring", "s", "", "Scoring map file (JSON or YAML); falls back to the database, then placeholder maps")
	f.Float64P("threshold", "t", def.Threshold, "Module 1 accuracy at or above which Module 2 is hard")
	f.IntP("additional", "n", def.AdditionalCorrect, "Extra Module 1 answers to treat as correct in the what-if projection")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("WHATIF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("whatif")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/whatif")
	v.AddConfigPath("/etc/whatif")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// analysisConfig collects the resolved settings once, before any analysis runs.
func analysisConfig(v *viper.Viper) model.AnalysisConfig {
	cfg := model.DefaultAnalysisConfig()
	if v.IsSet("threshold") {
		cfg.Threshold = v.GetFloat64("threshold")
	}
	if v.IsSet("additional") {
		cfg.AdditionalCorrect = v.GetInt("additional")
	}
	if l := v.GetString("lang"); l != "" {
		cfg.Lang = l
	}
	if v.IsSet("workers") {
		cfg.Workers = v.GetInt("workers")
	}
	if v.IsSet("calib-min") {
		cfg.CalibMin = v.GetFloat64("calib-min")
	}
	if v.IsSet("calib-max") {
		cfg.CalibMax = v.GetFloat64("calib-max")
	}
	if v.IsSet("calib-step") {
		cfg.CalibStep = v.GetFloat64("calib-step")
	}
	return cfg
}

// localize initializes translations and returns a context carrying lang.
func localize(ctx context.Context, lang string) (context.Context, error) {
	if err := appI18n.Init(lang); err != nil {
		return nil, fmt.Errorf("init i18n: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return appI18n.WithLanguage(ctx, lang), nil
}

// openStore opens the database, or returns nil when no path is configured.
func openStore(v *viper.Viper) (*store.Store, error) {
	path := v.GetString("db")
	if path == "" {
		return nil, nil
	}
	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// createOutput opens path for writing; "-" or "" means stdout.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
