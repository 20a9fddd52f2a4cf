// forge is the command-line companion to the Focus Forge desktop app.
package main

import (
	"fmt"
	"os"

	"focusforge/cmd/forge/commands"
	"focusforge/internal/app"
	"focusforge/internal/platform"
)

func main() {
	if len(os.Args) < 2 {
		commands.PrintUsage(os.Stderr)
		os.Exit(commands.ExitCommandError)
	}

	name := os.Args[1]
	args := os.Args[2:]
	switch name {
	case "help", "-h", "--help":
		commands.PrintUsage(os.Stdout)
		os.Exit(commands.ExitSuccess)
	case "version", "-v", "--version":
		fmt.Println("forge version", commands.Version)
		os.Exit(commands.ExitSuccess)
	}

	command, ok := commands.Lookup(name)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		commands.PrintUsage(os.Stderr)
		os.Exit(commands.ExitCommandError)
	}

	env, err := app.OpenEnv(app.EnvOptions{AppName: platform.DefaultAppName})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(commands.ExitCommandError)
	}
	exitCode := command(env, args, os.Stdout, os.Stderr)
	if err := env.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode)
}
