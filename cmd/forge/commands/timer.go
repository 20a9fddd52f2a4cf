package commands

import (
	"flag"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"focusforge/internal/app"
	"focusforge/internal/core/timer"
	"focusforge/internal/tui"
)

// RunTimer runs the countdown in the terminal. Quitting abandons a run that
// has not been finished.
func RunTimer(env *app.Env, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("timer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	minutes := fs.Int("minutes", 0, "focus duration for this run, 15-90 (default from settings)")
	autostart := fs.Bool("start", false, "start counting immediately")
	if err := fs.Parse(args); err != nil {
		return ExitCommandError
	}

	notices := make(chan app.Notice, 8)
	controller, err := env.NewController(timer.NewTickerScheduler(), nil, func(notice app.Notice) {
		select {
		case notices <- notice:
		default:
		}
	})
	if err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}
	defer controller.Close()

	if *minutes != 0 {
		settings := env.Settings
		settings.FocusDuration = time.Duration(*minutes) * time.Minute
		if err := controller.ApplySettings(settings); err != nil {
			return failf(stderr, ExitValidation, "%v", err)
		}
	}

	machine := controller.Machine()
	events := machine.Subscribe(16)
	snapshot := machine.Snapshot()
	initial := timer.Event{State: snapshot.State, Remaining: snapshot.Remaining(), Progress: snapshot.Progress()}
	if *autostart {
		controller.Start()
	}

	model := tui.New(controller, events, notices, initial)
	if err := tui.Run(model, tea.WithOutput(stdout)); err != nil {
		return failf(stderr, ExitCommandError, "%v", err)
	}

	if machine.Snapshot().State != timer.StateIdle {
		controller.Reset()
	}
	return ExitSuccess
}
