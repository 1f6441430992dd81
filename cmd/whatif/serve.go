package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavelanni/whatif/internal/handler"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP report server and analysis API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	addCommonFlags(f)
	addScoringFlags(f)
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("api-user", "admin", "Basic auth user name")
	f.String("api-password-hash", "", "Bcrypt hash of the basic auth password (empty disables auth)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)
	cfg := analysisConfig(v)

	if _, err := localize(cmd.Context(), cfg.Lang); err != nil {
		return err
	}

	db, err := openStore(v)
	if err != nil {
		return err
	}
	if db == nil {
		return fmt.Errorf("serve needs a database: set --db")
	}
	defer db.Close()

	engine, err := buildEngine(v, db)
	if err != nil {
		return err
	}

	h := handler.New(db, engine, cfg.AdditionalCorrect)
	hash := v.GetString("api-password-hash")
	r := handler.NewRouter(h, handler.RouterConfig{
		Lang:         cfg.Lang,
		AuthUser:     v.GetString("api-user"),
		PasswordHash: hash,
	})

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("starting server",
		"addr", addr,
		"lang", cfg.Lang,
		"threshold", engine.Threshold(),
		"placeholder", engine.Provisional(),
		"auth", hash != "",
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
