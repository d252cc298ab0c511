package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"humanizer/internal/app"
	"humanizer/internal/httputil"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Build(ctx)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Log.Warn("failed to close dependencies", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", deps.Config.Port),
		Handler:           newRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		deps.Log.Info("humanizer listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		deps.Log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		deps.Log.Error("server stopped", "err", err)
	}
}

func newRouter(deps app.Deps) *chi.Mux {
	r := httputil.NewRouter(deps.Log, deps.Config.RequestTimeout)

	r.Get("/healthz", httputil.HealthHandler(deps.Log))
	r.Route("/api", func(r chi.Router) {
		r.Post("/extract", extractHandler(deps))
		r.Post("/humanize", humanizeHandler(deps))

		r.Post("/sessions", createSessionHandler(deps))
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", getSessionHandler(deps))
			r.Delete("/", deleteSessionHandler(deps))
			r.Post("/file", uploadFileHandler(deps))
			r.Delete("/file", removeFileHandler(deps))
			r.Put("/text", setTextHandler(deps))
			r.Post("/humanize", sessionHumanizeHandler(deps))
			r.Post("/clear", clearHandler(deps))
			r.Get("/rewrites", rewritesHandler(deps))
		})
	})
	return r
}
