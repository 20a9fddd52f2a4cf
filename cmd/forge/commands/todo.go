package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"focusforge/internal/app"
	"focusforge/internal/core/todo"
)

// RunTodo dispatches the todo subcommands.
func RunTodo(env *app.Env, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printTodoUsage(stderr)
		return ExitCommandError
	}

	ctx := context.Background()
	action, rest := args[0], args[1:]
	switch action {
	case "add":
		return runTodoAdd(ctx, env, rest, stdout, stderr)
	case "list", "ls":
		return runTodoList(ctx, env, rest, stdout, stderr)
	case "done":
		return runTodoStatus(ctx, env, rest, stdout, stderr, func(todo.Status) todo.Status { return todo.StatusCompleted })
	case "next":
		return runTodoStatus(ctx, env, rest, stdout, stderr, todo.Status.Next)
	case "rm":
		return runTodoRemove(ctx, env, rest, stdout, stderr)
	case "-h", "--help", "help":
		printTodoUsage(stdout)
		return ExitSuccess
	}
	fmt.Fprintf(stderr, "Unknown todo command: %s\n", action)
	printTodoUsage(stderr)
	return ExitCommandError
}

func runTodoAdd(ctx context.Context, env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("todo add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	tag := fs.String("tag", "", "tag")
	priority := fs.String("priority", "none", "none, low, medium or high")
	due := fs.String("due", "", "due date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	parsedPriority, err := todo.ParsePriority(*priority)
	if err != nil {
		return failf(stderr, ExitValidation, "%v", err)
	}
	item := todo.Todo{
		Task:     strings.Join(fs.Args(), " "),
		Tag:      strings.TrimSpace(*tag),
		Priority: parsedPriority,
	}
	if *due != "" {
		dueDate, err := parseDate(*due)
		if err != nil {
			return failf(stderr, ExitValidation, "%v", err)
		}
		item.DueDate = &dueDate
	}

	stored, err := env.Todos.Add(ctx, item)
	if err != nil {
		return failf(stderr, ExitValidation, "%v", err)
	}
	fmt.Fprintf(stdout, "Added %s %s\n", shortID(stored.ID), stored.Task)
	return ExitSuccess
}

func runTodoList(ctx context.Context, env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("todo list", flag.ContinueOnError)
	fs.SetOutput(stderr)
	all := fs.Bool("all", false, "include completed tasks")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	items, err := env.Todos.List(ctx)
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTAG\tTASK")
	shown := 0
	for _, item := range items {
		if item.Status == todo.StatusCompleted && !*all {
			continue
		}
		due := ""
		if item.DueDate != nil {
			due = item.DueDate.Local().Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", shortID(item.ID), item.Status, item.Priority, due, item.Tag, item.Task)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(stdout, "Nothing to do.")
		return ExitSuccess
	}
	return flushOrFail(tw, stderr)
}

func runTodoStatus(ctx context.Context, env *app.Env, args []string, stdout, stderr io.Writer, next func(todo.Status) todo.Status) int {
	if len(args) != 1 {
		return failf(stderr, ExitCommandError, "expected one task id")
	}
	item, err := env.Todos.FindByPrefix(ctx, args[0])
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	status := next(item.Status)
	if err := env.Todos.SetStatus(ctx, item.ID, status); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	fmt.Fprintf(stdout, "%s %s: %s\n", shortID(item.ID), item.Task, status)
	return ExitSuccess
}

func runTodoRemove(ctx context.Context, env *app.Env, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		return failf(stderr, ExitCommandError, "expected one task id")
	}
	item, err := env.Todos.FindByPrefix(ctx, args[0])
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	if err := env.Todos.Remove(ctx, item.ID); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	fmt.Fprintf(stdout, "Removed %s %s\n", shortID(item.ID), item.Task)
	return ExitSuccess
}

func printTodoUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage:
  forge todo add [-tag T] [-priority none|low|medium|high] [-due YYYY-MM-DD] TASK...
  forge todo list [-all]
  forge todo done ID
  forge todo next ID
  forge todo rm ID

IDs may be shortened to any unique prefix.`)
}
