package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/germanamz/smartbuddy/cmd/smartbuddy/internal/web"
	"github.com/germanamz/smartbuddy/pkg/engine"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, eng *engine.Engine, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              eng.Config().Server.Addr,
		Handler:           web.SetupMux(eng, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "provider", eng.Config().Provider.Kind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
