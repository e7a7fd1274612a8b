package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/iudanet/matchday/internal/client/api"
	"github.com/iudanet/matchday/internal/client/cli"
	"github.com/iudanet/matchday/internal/client/data"
	"github.com/iudanet/matchday/internal/client/iocli"
	"github.com/iudanet/matchday/internal/client/storage/boltdb"
	"github.com/iudanet/matchday/internal/client/sync"
	"github.com/iudanet/matchday/internal/validation"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги; env — запасной источник для скриптов
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("MATCHDAY_SERVER", "http://localhost:8080"), "Sync server URL")
	clubID := flag.String("club", envOr("MATCHDAY_CLUB", "default"), "Club ID for sync scope")
	dbPath := flag.String("db", envOr("MATCHDAY_DB", "matchday-client.db"), "Path to local database")

	flag.Parse()

	// Show version and exit if requested
	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	command := ""
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	if err := validation.ValidateClubID(*clubID); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid -club value: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	stores := boltStorage.Stores()
	apiClient := api.NewClient(*serverURL, *clubID)

	c := cli.New(
		iocli.NewStdio(),
		data.NewService(stores, logger),
		sync.NewService(sync.NewEndpoints(apiClient), stores, logger),
	)

	if err := c.Run(ctx, command, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("Matchday Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
