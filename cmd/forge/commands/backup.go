package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"focusforge/internal/app"
)

// RunExport writes a JSON backup to the named file, or stdout for "-".
func RunExport(env *app.Env, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		return failf(stderr, ExitCommandError, "usage: forge export FILE")
	}

	out := stdout
	if args[0] != "-" {
		file, err := os.Create(args[0])
		if err != nil {
			return failf(stderr, ExitCommandError, "%v", err)
		}
		defer file.Close()
		out = file
	}

	if err := env.ExportBackup(context.Background(), out); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	if args[0] != "-" {
		fmt.Fprintf(stdout, "Exported to %s\n", args[0])
	}
	return ExitSuccess
}

// RunImport replaces sessions and tasks with a backup and applies its focus
// duration.
func RunImport(env *app.Env, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		return failf(stderr, ExitCommandError, "usage: forge import FILE")
	}
	file, err := os.Open(args[0])
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	defer file.Close()

	backup, err := env.ImportBackup(context.Background(), file)
	if err != nil {
		return failf(stderr, ExitValidation, "%v", err)
	}
	fmt.Fprintf(stdout, "Imported %d sessions and %d tasks\n", len(backup.Sessions), len(backup.Todos))
	return ExitSuccess
}

// RunResetData deletes all sessions and tasks and restores default settings.
func RunResetData(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("reset-data", flag.ContinueOnError)
	fs.SetOutput(stderr)
	yes := fs.Bool("yes", false, "confirm deleting all data")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}
	if !*yes {
		return failf(stderr, ExitCommandError, "this deletes every session and task; rerun with -yes to confirm")
	}

	if _, err := env.ResetData(context.Background()); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	fmt.Fprintln(stdout, "All data deleted. Settings restored to defaults.")
	return ExitSuccess
}
