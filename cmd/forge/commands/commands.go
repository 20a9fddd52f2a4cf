// Package commands implements the forge subcommands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"focusforge/internal/app"
)

// Version is the forge release.
const Version = "0.1.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitCommandError = 1
	ExitValidation   = 2
)

// Command runs a subcommand against an opened environment.
type Command func(env *app.Env, args []string, stdout, stderr io.Writer) int

var registry = map[string]Command{
	"timer":      RunTimer,
	"log":        RunLog,
	"sessions":   RunSessions,
	"stats":      RunStats,
	"todo":       RunTodo,
	"export":     RunExport,
	"import":     RunImport,
	"journal":    RunJournal,
	"reset-data": RunResetData,
}

// Lookup returns the command registered under name.
func Lookup(name string) (Command, bool) {
	command, ok := registry[name]
	return command, ok
}

// PrintUsage writes the top-level help.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, `forge - Focus Forge from the terminal

Usage:
  forge <command> [options]

Commands:
  timer        Run the focus countdown in the terminal
  log          Log a session manually (-end HH:mm -duration N)
  sessions     List logged sessions
  stats        Show totals, today's shifts and your rank
  todo         Manage tasks: add, list, done, next, rm
  export       Write a JSON backup to a file (- for stdout)
  import       Replace all data with a JSON backup
  journal      Print the timer run journal
  reset-data   Delete all sessions and tasks and restore default settings

Environment:
  FOCUSFORGE_DB_PATH     Use another database file
  FOCUSFORGE_LOG_LEVEL   debug, info, warn or error

For command-specific help, run:
  forge <command> -h`)
}

// writeFormatted renders value as json or yaml. Other formats return false.
func writeFormatted(w io.Writer, format string, value any) (bool, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return true, err
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return true, err
		}
		_, err = w.Write(data)
		return true, err
	case "", "text":
		return false, nil
	}
	return true, fmt.Errorf("unknown format %q (text, json, yaml)", format)
}

func parseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(time.DateOnly, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must look like 2026-03-14", value)
	}
	return date, nil
}

func failf(stderr io.Writer, code int, format string, args ...any) int {
	fmt.Fprintf(stderr, "Error: "+format+"\n", args...)
	return code
}
