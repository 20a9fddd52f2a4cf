package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusforge/internal/app"
	"focusforge/internal/core/todo"
	"focusforge/internal/journal"
)

func openEnv(t *testing.T) *app.Env {
	t.Helper()
	t.Setenv("FOCUSFORGE_DB_PATH", "")
	t.Setenv("FOCUSFORGE_LOG_LEVEL", "")
	env, err := app.OpenEnv(app.EnvOptions{AppName: "FocusForgeTest", ConfigDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func run(t *testing.T, env *app.Env, name string, args ...string) (int, string, string) {
	t.Helper()
	command, ok := Lookup(name)
	require.True(t, ok, name)
	var stdout, stderr bytes.Buffer
	code := command(env, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestLogResolvesStartAcrossMidnight(t *testing.T) {
	env := openEnv(t)

	code, out, errOut := run(t, env, "log", "-end", "00:10", "-duration", "30", "-date", "2026-03-10", "-tag", "deep")
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "Logged 30 min 23:40-00:10 on 2026-03-09")

	items, err := env.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "deep", items[0].Tag)
}

func TestLogRejectsInvalidInput(t *testing.T) {
	env := openEnv(t)

	code, _, errOut := run(t, env, "log", "-end", "25:00", "-duration", "30")
	assert.Equal(t, ExitValidation, code)
	assert.Contains(t, errOut, "Error:")

	code, _, _ = run(t, env, "log", "-end", "10:00", "-duration", "100")
	assert.Equal(t, ExitValidation, code)

	code, _, _ = run(t, env, "log", "-duration", "30")
	assert.Equal(t, ExitCommandError, code)
}

func TestSessionsFormatsAndRange(t *testing.T) {
	env := openEnv(t)
	for _, date := range []string{"2026-03-01", "2026-03-05", "2026-03-09"} {
		code, _, errOut := run(t, env, "log", "-end", "10:00", "-duration", "25", "-date", date)
		require.Equal(t, ExitSuccess, code, errOut)
	}

	code, out, _ := run(t, env, "sessions")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 4, strings.Count(out, "\n"))

	code, out, _ = run(t, env, "sessions", "-from", "2026-03-02", "-to", "2026-03-08", "-format", "json")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"date": "2026-03-05"`)
	assert.NotContains(t, out, "2026-03-01")

	code, out, _ = run(t, env, "sessions", "-format", "yaml")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "start_time:")
	assert.Contains(t, out, "09:35")

	code, _, errOut := run(t, env, "sessions", "-format", "xml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, "unknown format")
}

func TestSessionsRemoveByPrefix(t *testing.T) {
	env := openEnv(t)
	code, _, _ := run(t, env, "log", "-end", "10:00", "-duration", "25")
	require.Equal(t, ExitSuccess, code)
	items, err := env.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)

	code, _, errOut := run(t, env, "sessions", "-rm", items[0].ID[:8])
	require.Equal(t, ExitSuccess, code, errOut)
	items, err = env.Sessions.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	code, _, _ = run(t, env, "sessions", "-rm", "nope")
	assert.Equal(t, ExitCommandError, code)
}

func TestStatsJSON(t *testing.T) {
	env := openEnv(t)
	today := time.Now().Format(time.DateOnly)
	code, _, errOut := run(t, env, "log", "-end", "10:00", "-duration", "45", "-date", today)
	require.Equal(t, ExitSuccess, code, errOut)

	code, out, _ := run(t, env, "stats", "-format", "json")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, `"totalMinutes": 45`)
	assert.Contains(t, out, `"rank": "Recruit"`)
	assert.Contains(t, out, `"xpToNext": 315`)

	code, out, _ = run(t, env, "stats")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Morning")
	assert.Contains(t, out, " 45/120")
}

func TestTodoLifecycle(t *testing.T) {
	env := openEnv(t)
	ctx := context.Background()

	code, out, errOut := run(t, env, "todo", "add", "-priority", "high", "-tag", "work", "write", "report")
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "write report")

	items, err := env.Todos.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	id := items[0].ID[:6]
	assert.Equal(t, todo.PriorityHigh, items[0].Priority)

	code, _, _ = run(t, env, "todo", "next", id)
	require.Equal(t, ExitSuccess, code)
	items, _ = env.Todos.List(ctx)
	assert.Equal(t, todo.StatusInProgress, items[0].Status)

	code, _, _ = run(t, env, "todo", "done", id)
	require.Equal(t, ExitSuccess, code)

	code, out, _ = run(t, env, "todo", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Nothing to do.")

	code, out, _ = run(t, env, "todo", "list", "-all")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "Completed")

	code, _, _ = run(t, env, "todo", "rm", id)
	require.Equal(t, ExitSuccess, code)
	items, _ = env.Todos.List(ctx)
	assert.Empty(t, items)
}

func TestTodoAddRequiresTask(t *testing.T) {
	env := openEnv(t)
	code, _, _ := run(t, env, "todo", "add")
	assert.Equal(t, ExitValidation, code)

	code, _, _ = run(t, env, "todo", "add", "-priority", "urgent", "x")
	assert.Equal(t, ExitValidation, code)

	code, _, _ = run(t, env, "todo", "frobnicate")
	assert.Equal(t, ExitCommandError, code)
}

func TestExportImportRoundTrip(t *testing.T) {
	source := openEnv(t)
	code, _, _ := run(t, source, "log", "-end", "00:10", "-duration", "30", "-date", "2026-03-10")
	require.Equal(t, ExitSuccess, code)
	code, _, _ = run(t, source, "todo", "add", "read", "book")
	require.Equal(t, ExitSuccess, code)

	path := filepath.Join(t.TempDir(), "backup.json")
	code, _, errOut := run(t, source, "export", path)
	require.Equal(t, ExitSuccess, code, errOut)

	target := openEnv(t)
	code, _, _ = run(t, target, "todo", "add", "stale")
	require.Equal(t, ExitSuccess, code)

	code, out, errOut := run(t, target, "import", path)
	require.Equal(t, ExitSuccess, code, errOut)
	assert.Contains(t, out, "Imported 1 sessions and 1 tasks")

	items, err := target.Todos.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "read book", items[0].Task)

	sessions, err := target.Sessions.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "23:40", sessions[0].StartTime)
	assert.Equal(t, "2026-03-09", sessions[0].Date.Format(time.DateOnly))
}

func TestImportErrors(t *testing.T) {
	env := openEnv(t)
	path := filepath.Join(t.TempDir(), "bad.json")

	var stdout, stderr bytes.Buffer
	require.Equal(t, ExitSuccess, RunExport(env, []string{"-"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), `"version": 1`)

	code, _, _ := run(t, env, "import", path)
	assert.Equal(t, ExitCommandError, code)

	_, err := env.ImportBackup(context.Background(), strings.NewReader(`{"version": 9}`))
	assert.Error(t, err)
}

func TestResetDataNeedsConfirmation(t *testing.T) {
	env := openEnv(t)
	code, _, _ := run(t, env, "todo", "add", "keep", "me")
	require.Equal(t, ExitSuccess, code)

	code, _, errOut := run(t, env, "reset-data")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, errOut, "-yes")

	code, _, _ = run(t, env, "reset-data", "-yes")
	require.Equal(t, ExitSuccess, code)
	items, err := env.Todos.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestJournalPrintsEntries(t *testing.T) {
	env := openEnv(t)

	code, out, _ := run(t, env, "journal")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "empty")

	require.NoError(t, env.Journal.Record(journal.Entry{Timestamp: time.Now(), Kind: journal.KindStarted, RemainingSeconds: 1800}))
	require.NoError(t, env.Journal.Record(journal.Entry{Timestamp: time.Now(), Kind: journal.KindPaused, RemainingSeconds: 1700}))

	code, out, _ = run(t, env, "journal", "-n", "1")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "paused")
	assert.NotContains(t, out, "started")
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("frobnicate")
	assert.False(t, ok)
}
