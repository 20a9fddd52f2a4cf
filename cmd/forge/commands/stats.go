package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"focusforge/internal/app"
	"focusforge/internal/core/session"
	"focusforge/internal/core/stats"
)

type statsOutput struct {
	TotalMinutes   int           `json:"totalMinutes" yaml:"total_minutes"`
	SessionsLogged int           `json:"sessionsLogged" yaml:"sessions_logged"`
	LongestSession int           `json:"longestSession" yaml:"longest_session"`
	BestDay        string        `json:"bestDay,omitempty" yaml:"best_day,omitempty"`
	BestDayMinutes int           `json:"bestDayMinutes" yaml:"best_day_minutes"`
	Level          int           `json:"level" yaml:"level"`
	Rank           string        `json:"rank" yaml:"rank"`
	XP             int           `json:"xp" yaml:"xp"`
	XPToNext       int           `json:"xpToNext" yaml:"xp_to_next"`
	Progress       float64       `json:"progressPercentage" yaml:"progress_percentage"`
	Today          []shiftOutput `json:"today" yaml:"today"`
}

type shiftOutput struct {
	Shift   string `json:"shift" yaml:"shift"`
	Minutes int    `json:"minutes" yaml:"minutes"`
	Goal    int    `json:"goal" yaml:"goal"`
}

// RunStats prints dashboard figures.
func RunStats(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "output format: text, json, yaml")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	items, err := env.Sessions.List(context.Background())
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	output := buildStats(items, time.Now())

	handled, err := writeFormatted(stdout, *format, output)
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	if !handled {
		printStats(stdout, output)
	}
	return ExitSuccess
}

func buildStats(items []session.Session, now time.Time) statsOutput {
	summary := stats.Summarize(items)
	progression := summary.Progression
	output := statsOutput{
		TotalMinutes:   summary.TotalMinutes,
		SessionsLogged: summary.SessionsLogged,
		LongestSession: summary.LongestSession,
		BestDay:        summary.BestDay.Date,
		BestDayMinutes: summary.BestDay.Minutes,
		Level:          progression.Current.Level,
		Rank:           progression.Current.Rank,
		XP:             progression.TotalXP,
		XPToNext:       progression.XPToNext,
		Progress:       progression.ProgressPercentage,
	}
	for _, total := range stats.TodayShifts(items, now) {
		output.Today = append(output.Today, shiftOutput{
			Shift:   total.Shift.Name,
			Minutes: total.Minutes,
			Goal:    total.GoalMinutes,
		})
	}
	return output
}

func printStats(w io.Writer, output statsOutput) {
	fmt.Fprintf(w, "Level %d  %s  (%d XP", output.Level, output.Rank, output.XP)
	if output.XPToNext > 0 {
		fmt.Fprintf(w, ", %d to next", output.XPToNext)
	}
	fmt.Fprintln(w, ")")
	fmt.Fprintf(w, "Focused   %dh %dm over %d sessions\n", output.TotalMinutes/60, output.TotalMinutes%60, output.SessionsLogged)
	fmt.Fprintf(w, "Longest   %d min\n", output.LongestSession)
	if output.BestDay != "" {
		fmt.Fprintf(w, "Best day  %s (%d min)\n", output.BestDay, output.BestDayMinutes)
	}
	fmt.Fprintln(w, "\nToday")
	for _, shift := range output.Today {
		fmt.Fprintf(w, "  %-10s %s %3d/%d\n", shift.Shift, bar(shift.Minutes, shift.Goal, 20), shift.Minutes, shift.Goal)
	}
}

func bar(value, goal, width int) string {
	filled := 0
	if goal > 0 {
		filled = min(width, value*width/goal)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
