// Package main is the entry point for the Foodshare schema migration
// tool. Migrations are embedded in the repository packages and applied
// in order against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/config"
	"github.com/foodshare-app/foodshare/internal/repository/postgres"
	"github.com/foodshare-app/foodshare/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "version":
		fmt.Printf("Foodshare Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		err = runUp(args)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runUp(args []string) error {
	fs := flag.NewFlagSet("up", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	fmt.Println("Migrations applied")
	return nil
}

func printUsage() {
	fmt.Println(`Foodshare Migration Tool

Usage:
  foodshare-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  version     Print version information
  help        Show this help message

Examples:
  foodshare-migrate up
  foodshare-migrate up -config ./configs/config.yaml

The database is selected by the loaded configuration
(database.driver, FOODSHARE_DATABASE_DRIVER).`)
}
