// Package main is the entry point for the Foodshare admin CLI.
// It provides user management and ingredient catalog import commands.
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/foodshare-app/foodshare/internal/config"
	"github.com/foodshare-app/foodshare/internal/domain"
	"github.com/foodshare-app/foodshare/internal/repository"
	"github.com/foodshare-app/foodshare/internal/repository/postgres"
	"github.com/foodshare-app/foodshare/internal/repository/sqlite"
	"github.com/foodshare-app/foodshare/internal/service"
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
		fmt.Printf("Foodshare Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "create-user":
		err = runCreateUser(args)

	case "promote":
		err = runPromote(args)

	case "deactivate":
		err = runDeactivate(args)

	case "import-ingredients":
		err = runImportIngredients(args)

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

func printUsage() {
	fmt.Println(`Foodshare Admin CLI

Usage:
  foodshare-admin <command> [arguments]

Commands:
  create-user         Create a user account
  promote             Grant admin privileges to a user
  deactivate          Deactivate a user account
  import-ingredients  Bulk-load the ingredient catalog from CSV or JSON
  version             Print version information
  help                Show this help message

Examples:
  foodshare-admin create-user -email chef@example.com -username chef -password secret123
  foodshare-admin promote -email chef@example.com
  foodshare-admin deactivate -email chef@example.com
  foodshare-admin import-ingredients -file ingredients.csv

All commands honor the -config flag and FOODSHARE_ environment variables.`)
}

// =============================================================================
// Commands
// =============================================================================

func runCreateUser(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "email address")
	username := fs.String("username", "", "username")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	password := fs.String("password", "", "password")
	admin := fs.Bool("admin", false, "grant admin privileges")
	_ = fs.Parse(args)

	if *email == "" || *username == "" || *password == "" {
		return errors.New("email, username, and password are required")
	}

	return withRepositories(*configPath, func(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
		svc := service.NewUserService(repos.User, nil, nil,
			cfg.Auth.BcryptCost, cfg.Media.MaxImageSize, zerolog.Nop())

		out, err := svc.Register(ctx, service.RegisterInput{
			Email:     *email,
			Username:  *username,
			FirstName: *firstName,
			LastName:  *lastName,
			Password:  *password,
		})
		if err != nil {
			return err
		}

		if *admin {
			out.User.IsAdmin = true
			if err := repos.User.Update(ctx, out.User); err != nil {
				return err
			}
		}

		fmt.Printf("Created user %d (%s)\n", out.User.ID, out.User.Username)
		return nil
	})
}

func runPromote(args []string) error {
	fs := flag.NewFlagSet("promote", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	if *email == "" {
		return errors.New("email is required")
	}

	return withRepositories(*configPath, func(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
		user, err := repos.User.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		if user.IsAdmin {
			fmt.Printf("User %s is already an admin\n", user.Username)
			return nil
		}
		user.IsAdmin = true
		if err := repos.User.Update(ctx, user); err != nil {
			return err
		}
		fmt.Printf("Promoted %s to admin\n", user.Username)
		return nil
	})
}

func runDeactivate(args []string) error {
	fs := flag.NewFlagSet("deactivate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	email := fs.String("email", "", "email address")
	_ = fs.Parse(args)

	if *email == "" {
		return errors.New("email is required")
	}

	return withRepositories(*configPath, func(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
		user, err := repos.User.GetByEmail(ctx, *email)
		if err != nil {
			return err
		}
		svc := service.NewUserService(repos.User, nil, nil,
			cfg.Auth.BcryptCost, cfg.Media.MaxImageSize, zerolog.Nop())
		if err := svc.Deactivate(ctx, user.ID); err != nil {
			return err
		}
		fmt.Printf("Deactivated %s\n", user.Username)
		return nil
	})
}

func runImportIngredients(args []string) error {
	fs := flag.NewFlagSet("import-ingredients", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	file := fs.String("file", "", "CSV (name,unit) or JSON file")
	_ = fs.Parse(args)

	if *file == "" {
		return errors.New("file is required")
	}

	records, err := readIngredientFile(*file)
	if err != nil {
		return err
	}

	return withRepositories(*configPath, func(ctx context.Context, cfg *config.Config, repos *repository.Repositories) error {
		svc := service.NewIngredientService(repos.Ingredient, nil, 0, zerolog.Nop())
		out, err := svc.Import(ctx, service.ImportIngredientsInput{Records: records})
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d ingredients (%d skipped as duplicates)\n", out.Inserted, out.Skipped)
		return nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

// withRepositories loads the config, opens the configured database,
// and runs fn against the repository bundle.
func withRepositories(configPath string, fn func(context.Context, *config.Config, *repository.Repositories) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	logger := zerolog.Nop()

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
		return fn(ctx, cfg, postgres.NewRepositories(db))

	case "sqlite":
		sc := sqlite.DefaultConfig(cfg.Database.Path)
		db, err := sqlite.NewDB(ctx, sc, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		return fn(ctx, cfg, sqlite.NewRepositories(db))
	}
	return fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// readIngredientFile parses a catalog file. CSV rows are name,unit;
// JSON is an array of {"name": ..., "measurement_unit": ...}.
func readIngredientFile(path string) ([]*domain.Ingredient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var records []*domain.Ingredient
		if err := json.NewDecoder(f).Decode(&records); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return records, nil
	}

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	var records []*domain.Ingredient
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = append(records, &domain.Ingredient{
			Name:            strings.TrimSpace(row[0]),
			MeasurementUnit: strings.TrimSpace(row[1]),
		})
	}
	return records, nil
}
