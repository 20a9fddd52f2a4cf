package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"focusforge/internal/app"
	"focusforge/internal/core/session"
	"focusforge/internal/core/timer"
	"focusforge/internal/core/todo"
	"focusforge/internal/platform"
	"focusforge/internal/storage"
	"focusforge/internal/ui/animation"
	"focusforge/internal/ui/home"
	"focusforge/internal/ui/notify"
	"focusforge/internal/ui/overlay"
	"focusforge/internal/ui/preferences"
	"focusforge/internal/ui/tray"
	"focusforge/resources"
)

const miniTimerOpacity = 230

// desktopApp wires the controller, stores and windows of the tray app.
type desktopApp struct {
	env        *app.Env
	controller *app.Controller
	idle       *app.IdleWatcher
	platform   platform.Service

	home  *home.Window
	mini  *overlay.Window
	prefs *preferences.Window
	tray  *tray.Manager
	icons *animation.Engine

	progress      atomic.Uint64
	subscriptions []*storage.Subscription
	ctx           context.Context
	cancel        context.CancelFunc
}

func newDesktop(fyneApp fyne.App, trayApp desktop.App, env *app.Env) (*desktopApp, error) {
	ctx, cancel := context.WithCancel(context.Background())
	forge := &desktopApp{
		env:      env,
		platform: platform.NewService(),
		ctx:      ctx,
		cancel:   cancel,
	}

	controller, err := env.NewController(timer.NewTickerScheduler(), notify.New(fyneApp), nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("new desktop: %w", err)
	}
	forge.controller = controller
	forge.idle = app.NewIdleWatcher(controller, platform.NewIdleProvider(), nil, env.Logger.Logger)

	forge.home = home.New(fyneApp, home.Actions{
		OnToggle:        controller.Toggle,
		OnReset:         controller.Reset,
		OnFinish:        forge.finishFromWindow,
		OnAddSession:    forge.addSession,
		OnRemoveSession: forge.removeSession,
		OnAddTodo:       forge.addTodo,
		OnAdvanceTodo:   forge.advanceTodo,
		OnRemoveTodo:    forge.removeTodo,
	})
	forge.mini = overlay.New(fyneApp, overlay.Config{Opacity: miniTimerOpacity}, overlay.Actions{
		OnToggle: controller.Toggle,
		OnFinish: forge.finish,
		OnOpen:   forge.activate,
	})
	forge.prefs = preferences.New(fyneApp, env.Settings, forge.saveSettings, preferences.DataActions{
		Export: forge.exportBackup,
		Import: forge.importBackup,
		Reset:  forge.resetData,
	})
	forge.prefs.UpdateSettings(env.Settings)
	forge.tray = tray.New(trayApp, tray.Callbacks{
		OnShow:        forge.activate,
		OnMiniTimer:   forge.toggleMiniTimer,
		OnToggle:      controller.Toggle,
		OnReset:       controller.Reset,
		OnFinish:      forge.finish,
		OnPreferences: forge.prefs.Show,
		OnQuit:        fyneApp.Quit,
	})
	forge.icons = animation.New(animation.DefaultConfig(), func(icon fyne.Resource) {
		fyne.Do(func() { trayApp.SetSystemTrayIcon(icon) })
	})
	forge.icons.Show(resources.MustIcon(resources.IconIdle))

	controller.SetNoticeHandler(func(notice app.Notice) {
		fyne.Do(func() { forge.showNotice(notice) })
	})
	forge.idle.Apply(env.Settings.IdleConfig())

	forge.subscribe()
	forge.watchTimer()
	return forge, nil
}

// activate brings the main window forward. Safe from any goroutine.
func (forge *desktopApp) activate() {
	fyne.Do(forge.home.Show)
}

func (forge *desktopApp) subscribe() {
	sessions := forge.env.Sessions.Subscribe(forge.ctx, func(items []session.Session) {
		fyne.Do(func() { forge.home.SetSessions(items) })
	})
	todos := forge.env.Todos.Subscribe(forge.ctx, func(items []todo.Todo) {
		fyne.Do(func() { forge.home.SetTodos(items) })
	})
	forge.subscriptions = append(forge.subscriptions, sessions, todos)
}

func (forge *desktopApp) watchTimer() {
	machine := forge.controller.Machine()
	events := machine.Subscribe(16)

	snapshot := machine.Snapshot()
	forge.render(timer.Event{State: snapshot.State, Remaining: snapshot.Remaining(), Progress: snapshot.Progress()})

	go func() {
		for event := range events {
			forge.progress.Store(math.Float64bits(event.Progress))
			if event.Type != timer.EventProgress {
				forge.animate(event)
			}
			fyne.Do(func() { forge.render(event) })
		}
	}()
}

func (forge *desktopApp) render(event timer.Event) {
	forge.home.UpdateTimer(event)
	forge.mini.Update(event)
	forge.tray.Update(event.State, event.Remaining)
}

func (forge *desktopApp) animate(event timer.Event) {
	switch {
	case event.Type == timer.EventCompleted:
		forge.icons.Flash(forge.ctx, animation.FlashSpec{
			On:    resources.MustIcon(resources.IconDone),
			Off:   resources.MustIcon(resources.IconIdle),
			Final: resources.MustIcon(resources.IconIdle),
		})
	case event.State == timer.StateRunning:
		forge.icons.StartPulse(forge.ctx, animation.PulseSpec{
			Bright: func() fyne.Resource { return resources.ProgressIcon(forge.currentProgress(), true) },
			Dim:    func() fyne.Resource { return resources.ProgressIcon(forge.currentProgress(), false) },
		})
	case event.State == timer.StatePaused:
		forge.icons.Show(resources.MustIcon(resources.IconPaused))
	default:
		forge.icons.Show(resources.MustIcon(resources.IconIdle))
	}
}

func (forge *desktopApp) currentProgress() float64 {
	return math.Float64frombits(forge.progress.Load())
}

func (forge *desktopApp) showNotice(notice app.Notice) {
	switch notice.Level {
	case app.NoticeInfo:
		forge.home.SetStatus(notice.Message)
	default:
		forge.home.Show()
		if notice.Err != nil && notice.Level == app.NoticeError {
			forge.home.ShowError(fmt.Errorf("%s: %w", notice.Message, notice.Err))
			return
		}
		forge.home.ShowNotice("Focus Forge", notice.Message)
	}
}

func (forge *desktopApp) finish() {
	if err := forge.controller.Finish(); err != nil {
		forge.env.Logger.Debug("finish not logged", "error", err)
	}
}

// finishFromWindow leaves rejected runs to the controller's warning notice.
func (forge *desktopApp) finishFromWindow() error {
	err := forge.controller.Finish()
	if errors.Is(err, session.ErrSessionTooShort) {
		return nil
	}
	return err
}

func (forge *desktopApp) toggleMiniTimer() {
	if forge.mini.Visible() {
		forge.mini.Hide()
		return
	}
	forge.mini.Show()
}

func (forge *desktopApp) addSession(draft session.Draft) error {
	_, err := forge.env.Sessions.Add(forge.ctx, draft)
	return err
}

func (forge *desktopApp) removeSession(id string) error {
	return forge.env.Sessions.Remove(forge.ctx, id)
}

func (forge *desktopApp) addTodo(item todo.Todo) error {
	_, err := forge.env.Todos.Add(forge.ctx, item)
	return err
}

func (forge *desktopApp) advanceTodo(item todo.Todo) error {
	return forge.env.Todos.SetStatus(forge.ctx, item.ID, item.Status.Next())
}

func (forge *desktopApp) removeTodo(id string) error {
	return forge.env.Todos.Remove(forge.ctx, id)
}

func (forge *desktopApp) saveSettings(settings preferences.Settings) error {
	previous := forge.env.Settings
	if err := forge.controller.ApplySettings(settings); err != nil {
		return err
	}
	if err := forge.env.SaveSettings(settings); err != nil {
		return err
	}
	forge.idle.Apply(settings.IdleConfig())
	if settings.LaunchAtLogin != previous.LaunchAtLogin {
		if err := forge.applyAutostart(settings.LaunchAtLogin); err != nil {
			return fmt.Errorf("launch at login: %w", err)
		}
	}
	return nil
}

func (forge *desktopApp) applyAutostart(enabled bool) error {
	execPath, err := os.Executable()
	if err != nil {
		return err
	}
	if err := forge.platform.SetAutostart(appName, execPath, enabled); err != nil {
		return err
	}
	forge.env.Logger.Info("autostart updated", "enabled", enabled)
	return nil
}

func (forge *desktopApp) exportBackup(w io.Writer) error {
	return forge.env.ExportBackup(forge.ctx, w)
}

func (forge *desktopApp) importBackup(r io.Reader) error {
	if _, err := forge.env.ImportBackup(forge.ctx, r); err != nil {
		return err
	}
	return forge.reapplySettings()
}

func (forge *desktopApp) resetData() error {
	if _, err := forge.env.ResetData(forge.ctx); err != nil {
		return err
	}
	return forge.reapplySettings()
}

func (forge *desktopApp) reapplySettings() error {
	settings := forge.env.Settings
	if err := forge.controller.ApplySettings(settings); err != nil {
		return err
	}
	forge.idle.Apply(settings.IdleConfig())
	forge.prefs.UpdateSettings(settings)
	return nil
}

func (forge *desktopApp) shutdown() {
	forge.idle.Stop()
	forge.icons.Stop()
	for _, subscription := range forge.subscriptions {
		subscription.Close()
	}
	forge.controller.Close()
	forge.cancel()
}
