package commands

import (
	"flag"
	"fmt"
	"io"

	"focusforge/internal/app"
	"focusforge/internal/journal"
)

// RunJournal prints the timer run journal, oldest first.
func RunJournal(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	fs.SetOutput(stderr)
	last := fs.Int("n", 0, "show only the last n entries")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	entries, err := journal.ReadFile(env.JournalPath)
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	if *last > 0 && len(entries) > *last {
		entries = entries[len(entries)-*last:]
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, "The journal is empty.")
		return ExitSuccess
	}
	for _, entry := range entries {
		fmt.Fprintln(stdout, entry.String())
	}
	return ExitSuccess
}
