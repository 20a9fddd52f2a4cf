package main

import (
	"errors"
	"log"
	"log/slog"
	"os"

	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"

	"focusforge/internal/app"
	"focusforge/internal/platform"
	"focusforge/resources"
)

const (
	appName = platform.DefaultAppName
	appID   = "com.focusforge.app"
)

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if errors.Is(err, platform.ErrAlreadyRunning) {
		if err := platform.NotifyRunning(appName); err != nil {
			log.Printf("activate running instance: %v", err)
		}
		return
	}
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	env, err := app.OpenEnv(app.EnvOptions{AppName: appName, Console: os.Stderr})
	if err != nil {
		log.Printf("startup: %v", err)
		return
	}
	defer func() {
		if err := env.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()
	slog.SetDefault(env.Logger.Logger)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon(resources.IconLogo))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		env.Logger.Error("system tray unsupported on this platform")
		return
	}

	forge, err := newDesktop(fyneApp, desktopApp, env)
	if err != nil {
		env.Logger.Error("startup failed", "error", err)
		return
	}
	guard.Serve(forge.activate)

	forge.home.Show()
	fyneApp.Run()
	forge.shutdown()
}
