package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/msomdec/user-dashboard/internal/config"
	"github.com/msomdec/user-dashboard/internal/handler"
	"github.com/msomdec/user-dashboard/internal/repository/memory"
	"github.com/msomdec/user-dashboard/internal/service"
	"github.com/msomdec/user-dashboard/internal/upstream"
)

func main() {
	level := new(slog.LevelVar)
	logOpts := &slog.HandlerOptions{Level: level}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	level.Set(cfg.LogLevel)

	api := upstream.NewClient(cfg.APIBaseURL, upstream.WithTimeout(cfg.APITimeout))
	users := service.NewUserService(
		memory.NewUserStore(),
		api,
		service.RemoteMapper{Departments: cfg.Departments},
		cfg.PageSize,
	)

	var auth *service.AuthService
	if cfg.AuthEnabled() {
		auth, err = service.NewAuthService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSecret, cfg.BcryptCost)
		if err != nil {
			slog.Error("failed to set up operator login", "error", err)
			os.Exit(1)
		}
		slog.Info("operator login enabled", "username", cfg.AdminUsername)
	} else {
		slog.Warn("ADMIN_PASSWORD not set, dashboard is open to anyone who can reach it")
	}

	// Five attempts, then one every 12 seconds.
	loginLimiter := service.NewRateLimiter(1.0/12, 5)
	defer loginLimiter.Close()

	// A failed initial load is not fatal: the dashboard shows an empty table
	// with an error and the operator can reload.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), cfg.APITimeout)
	if n, err := users.FetchAll(loadCtx); err != nil {
		slog.Error("initial user load failed", "error", err, "api", cfg.APIBaseURL)
	} else {
		slog.Info("users loaded", "count", n, "api", cfg.APIBaseURL)
	}
	cancelLoad()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, users, auth, loginLimiter, cfg.Departments, cfg.CookieSecure)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
