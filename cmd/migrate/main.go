package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/repository/postgres"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// First, connect to the postgres database to create the target database if needed
	if cmd == "up" {
		if err := ensureDatabase(cfg.Database); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to prepare database: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	m, err := postgres.NewMigrator(db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrator: %v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil || steps < 1 {
				fmt.Fprintf(os.Stderr, "Invalid step count: %s\n", os.Args[2])
				os.Exit(1)
			}
		}
		err = m.Down(steps)
	case "version":
		version, dirty, ok, verr := m.Version()
		if verr != nil {
			err = verr
			break
		}
		if !ok {
			fmt.Println("No migrations applied")
			return
		}
		fmt.Printf("Version: %d (dirty: %t)\n", version, dirty)
		return
	default:
		fmt.Println("Usage: go run cmd/migrate/main.go [up | down [n] | version]")
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Migration completed successfully!")
}

func ensureDatabase(cfg config.DatabaseConfig) error {
	admin := cfg
	admin.DBName = "postgres"

	postgresDB, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	fmt.Printf("Database '%s' does not exist. Creating...\n", cfg.DBName)
	if _, err := postgresDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(cfg.DBName)); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	fmt.Printf("Database '%s' created successfully.\n", cfg.DBName)
	return nil
}
