package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/iudanet/matchday/internal/server/handlers"
	"github.com/iudanet/matchday/internal/server/middleware"
	"github.com/iudanet/matchday/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	addr := flag.String("addr", envOr("MATCHDAY_ADDR", ":8080"), "HTTP listen address")
	dbPath := flag.String("db", envOr("MATCHDAY_DB", "matchday-server.db"), "Path to sqlite database")
	logFile := flag.String("log-file", envOr("MATCHDAY_LOG_FILE", ""), "Log file path (rotated); empty logs to stdout only")
	rateLimit := flag.Int("rate-limit", 100, "Requests per minute per client IP (0 disables)")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := newLogger(*logFile)

	if err := run(logger, *addr, *dbPath, *rateLimit); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, addr, dbPath string, rateLimit int) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("failed to close storage", "error", err)
		}
	}()

	mux := http.NewServeMux()
	handlers.NewSyncHandler(logger, st).Register(mux)

	healthHandler := handlers.NewHealthHandler(logger, Version, st)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// health не логируем, иначе liveness-пробы зашумляют лог
	var handler http.Handler = mux
	if rateLimit > 0 {
		handler = middleware.RateLimitMiddleware(rateLimit, time.Minute, logger)(handler)
	}
	handler = middleware.LoggingWithSkip(logger, []string{"/health"})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "version", Version)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newLogger пишет в stdout и, если задан файл, дублирует в него с ротацией.
func newLogger(logFile string) *slog.Logger {
	var w io.Writer = os.Stdout
	if logFile != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("Matchday Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
