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
	"focusforge/internal/core/session"
)

type sessionOutput struct {
	ID        string `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	StartTime string `json:"startTime" yaml:"start_time"`
	EndTime   string `json:"endTime" yaml:"end_time"`
	Duration  int    `json:"duration" yaml:"duration"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Note      string `json:"note,omitempty" yaml:"note,omitempty"`
}

// RunLog stores a manually entered session.
func RunLog(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.SetOutput(stderr)
	end := fs.String("end", "", "end time HH:mm (required)")
	duration := fs.Int("duration", 0, "duration in minutes, 1-99 (required)")
	dateText := fs.String("date", "", "date YYYY-MM-DD the session ended on (default today)")
	tag := fs.String("tag", "", "tag")
	note := fs.String("note", "", "note")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}
	if *end == "" || *duration == 0 {
		fmt.Fprintln(stderr, "Error: -end and -duration are required")
		fs.Usage()
		return ExitCommandError
	}

	date := time.Now()
	if *dateText != "" {
		parsed, err := parseDate(*dateText)
		if err != nil {
			return failf(stderr, ExitValidation, "%v", err)
		}
		date = parsed
	}

	draft, err := session.NewManualDraft(date, *end, *duration, *tag, *note)
	if err != nil {
		return failf(stderr, ExitValidation, "%v", err)
	}
	stored, err := env.Sessions.Add(context.Background(), draft)
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	fmt.Fprintf(stdout, "Logged %d min %s-%s on %s (%s)\n",
		stored.DurationMinutes, stored.StartTime, stored.EndTime, stored.Date.Format(time.DateOnly), shortID(stored.ID))
	return ExitSuccess
}

// RunSessions lists sessions, optionally within a date range, or removes one.
func RunSessions(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("sessions", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "", "first date YYYY-MM-DD")
	to := fs.String("to", "", "last date YYYY-MM-DD (default today)")
	format := fs.String("format", "text", "output format: text, json, yaml")
	remove := fs.String("rm", "", "delete the session with this id")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	ctx := context.Background()
	if *remove != "" {
		if err := removeSession(ctx, env, *remove); err != nil {
			return failf(stderr, ExitCommandError, "%v", err)
		}
		fmt.Fprintf(stdout, "Deleted session %s\n", *remove)
		return ExitSuccess
	}

	var (
		items []session.Session
		err   error
	)
	if *from != "" {
		fromDate, parseErr := parseDate(*from)
		if parseErr != nil {
			return failf(stderr, ExitValidation, "%v", parseErr)
		}
		toDate := session.DateOf(time.Now())
		if *to != "" {
			if toDate, parseErr = parseDate(*to); parseErr != nil {
				return failf(stderr, ExitValidation, "%v", parseErr)
			}
		}
		items, err = env.Sessions.ListBetween(ctx, fromDate, toDate)
	} else {
		items, err = env.Sessions.List(ctx)
	}
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}

	output := make([]sessionOutput, 0, len(items))
	for _, item := range items {
		output = append(output, sessionOutput{
			ID:        item.ID,
			Date:      item.Date.Format(time.DateOnly),
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
			Duration:  item.DurationMinutes,
			Tag:       item.Tag,
			Note:      item.Note,
		})
	}
	handled, err := writeFormatted(stdout, *format, output)
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	if handled {
		return ExitSuccess
	}

	if len(output) == 0 {
		fmt.Fprintln(stdout, "No sessions logged yet.")
		return ExitSuccess
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSTART\tEND\tMIN\tTAG\tNOTE")
	for _, item := range output {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			shortID(item.ID), item.Date, item.StartTime, item.EndTime, item.Duration, item.Tag, item.Note)
	}
	return flushOrFail(tw, stderr)
}

func removeSession(ctx context.Context, env *app.Env, prefix string) error {
	items, err := env.Sessions.List(ctx)
	if err != nil {
		return err
	}
	var matches []string
	for _, item := range items {
		if strings.HasPrefix(item.ID, prefix) {
			matches = append(matches, item.ID)
		}
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("no session matches %q", prefix)
	case 1:
		return env.Sessions.Remove(ctx, matches[0])
	}
	return fmt.Errorf("session prefix %q is ambiguous", prefix)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func flushOrFail(tw *tabwriter.Writer, stderr io.Writer) int {
	if err := tw.Flush(); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	return ExitSuccess
}
