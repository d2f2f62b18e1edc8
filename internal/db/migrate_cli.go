package db

import (
	"errors"
	"fmt"
	"io"
)

// ErrUnknownMigrateAction is returned for an unsupported migrate action.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand runs one 'migrate' subcommand action against the run
// registry at dbPath and prints the resulting schema version to w.
func RunMigrateCommand(w io.Writer, action, dbPath string) error {
	switch action {
	case "up", "down", "status":
	case "", "help":
		PrintMigrateHelp(w)
		return nil
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("%w: %q", ErrUnknownMigrateAction, action)
	}
	if dbPath == "" {
		return errors.New("migrate needs a run registry path (-db)")
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	migrations := MigrationsFS()
	switch action {
	case "up":
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
	case "down":
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
	}

	version, dirty, err := database.MigrateVersion(migrations)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	fmt.Fprintf(w, "Current version: %d (dirty: %v)\n", version, dirty)
	if dirty {
		fmt.Fprintln(w, "WARNING: a migration failed mid-execution; inspect the registry before running again.")
	}
	return nil
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprint(w, `Usage: ampes -db <registry.db> migrate <action>

Actions:
  up       Apply all pending migrations
  down     Roll back the most recent migration
  status   Show the current schema version
  help     Show this message
`)
}
