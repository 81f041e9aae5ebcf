package slot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/persistence"
	"github.com/felixgeelhaar/timetable/pkg/config"
)

const testDate = "01/01/2030"

// setupTestApp installs an App over an in-memory store.
func setupTestApp(t *testing.T) *cli.App {
	t.Helper()
	app := cli.NewApp(&config.Config{AppEnv: "test"}, application.NewEngine(persistence.NewMemoryStore()))
	cli.SetApp(app)
	t.Cleanup(func() {
		cli.SetApp(nil)
		addFlags.reset()
		removeFlags.reset()
		conflictsFlags.reset()
		updateFlags.reset()
		addForce = false
		showDate = ""
		showJSON = false
		updateOldDate = ""
		updateIndex = 0
	})
	return app
}

func run(t *testing.T, cmd *cobra.Command) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, nil)
	return out.String(), err
}

func setFlags(f *slotFlags, start, end, title string) {
	f.date = testDate
	f.weekday = "Tuesday"
	f.start = start
	f.end = end
	f.title = title
}

func titles(t *testing.T, app *cli.App) []string {
	t.Helper()
	schedule, err := app.Engine.Snapshot(context.Background())
	require.NoError(t, err)
	slots, _ := schedule.Slots(testDate)
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Title
	}
	return out
}

func TestAddCmd(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	out, err := run(t, addCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Standup")

	setFlags(&addFlags, "08:00", "09:00", "Pre-check")
	_, err = run(t, addCmd)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pre-check", "Standup"}, titles(t, app))
}

func TestAddCmd_RefusesConflictUnlessForced(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	setFlags(&addFlags, "09:30", "09:45", "Ping")
	out, err := run(t, addCmd)
	require.Error(t, err)
	assert.Contains(t, out, "09:30-09:45  Ping")
	assert.Equal(t, []string{"Standup"}, titles(t, app))

	addForce = true
	_, err = run(t, addCmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Standup", "Ping"}, titles(t, app))
}

func TestAddCmd_IdenticalSlotTwiceIsNoop(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	out, err := run(t, addCmd)
	require.NoError(t, err)
	assert.NotContains(t, out, "overlap")
	assert.Equal(t, []string{"Standup"}, titles(t, app))
}

func TestAddCmd_BatchSkipsStoredSlotButChecksNewOnes(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"date": "01/01/2030", "weekday": "Tuesday", "startTime": "09:00", "endTime": "10:00", "title": "Standup"},
		{"date": "01/01/2030", "weekday": "Tuesday", "startTime": "09:30", "endTime": "09:45", "title": "Ping"}
	]`), 0o600))
	addFlags = slotFlags{file: path}

	_, err = run(t, addCmd)
	require.Error(t, err, "Ping still overlaps Standup")
	assert.Equal(t, []string{"Standup"}, titles(t, app))
}

func TestAddCmd_InvalidInput(t *testing.T) {
	setupTestApp(t)

	_, err := run(t, addCmd)
	assert.Error(t, err, "missing flags")

	setFlags(&addFlags, "9am", "10:00", "Standup")
	_, err = run(t, addCmd)
	assert.Error(t, err)
}

func TestAddCmd_FromFile(t *testing.T) {
	app := setupTestApp(t)

	path := filepath.Join(t.TempDir(), "slots.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"date": "01/01/2030", "weekday": "Tuesday", "startTime": "11:00", "endTime": "12:00", "title": "Review"},
		{"date": "01/01/2030", "weekday": "Tuesday", "startTime": "09:00", "endTime": "10:00", "title": "Standup"}
	]`), 0o600))

	addFlags.file = path
	_, err := run(t, addCmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"Standup", "Review"}, titles(t, app))
}

func TestSlotFlags_Candidates(t *testing.T) {
	var f slotFlags
	_, err := f.candidates()
	assert.Error(t, err)

	f.file = filepath.Join(t.TempDir(), "missing.json")
	_, err = f.candidates()
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`[]`), 0o600))
	f.file = empty
	_, err = f.candidates()
	assert.Error(t, err)

	f = slotFlags{}
	setFlags(&f, "09:00", "10:00", "Standup")
	got, err := f.candidates()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, testDate, got[0].Date)
	assert.Equal(t, "Standup", got[0].Title)
}

func TestRemoveCmd(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	setFlags(&removeFlags, "09:00", "10:00", "Lunch")
	_, err = run(t, removeCmd)
	assert.Error(t, err)
	assert.Equal(t, []string{"Standup"}, titles(t, app))

	setFlags(&removeFlags, "09:00", "10:00", "Standup")
	out, err := run(t, removeCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Do not call this tool anymore")
	assert.Empty(t, titles(t, app))
}

func TestConflictsCmd(t *testing.T) {
	setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	setFlags(&conflictsFlags, "10:00", "10:30", "Touching")
	out, err := run(t, conflictsCmd)
	require.NoError(t, err)
	assert.Contains(t, out, application.MessageNoConflict)

	setFlags(&conflictsFlags, "09:30", "09:45", "Ping")
	out, err = run(t, conflictsCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Ping")
}

func TestShowCmd(t *testing.T) {
	setupTestApp(t)

	out, err := run(t, showCmd)
	require.NoError(t, err)
	assert.Contains(t, out, domain.MessageNoEvents)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err = run(t, addCmd)
	require.NoError(t, err)

	showDate = testDate
	showJSON = true
	out, err = run(t, showCmd)
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
	assert.Contains(t, out, `"title": "Standup"`)

	showDate = "31/02/2030"
	showJSON = false
	_, err = run(t, showCmd)
	assert.Error(t, err)
}

func TestUpdateCmd(t *testing.T) {
	app := setupTestApp(t)

	setFlags(&addFlags, "09:00", "10:00", "Standup")
	_, err := run(t, addCmd)
	require.NoError(t, err)

	setFlags(&updateFlags, "09:00", "09:30", "Short standup")
	out, err := run(t, updateCmd)
	require.NoError(t, err)
	assert.Contains(t, out, "Short standup")
	assert.Equal(t, []string{"Short standup"}, titles(t, app))

	updateFlags.date = "05/05/2030"
	updateOldDate = "04/05/2030"
	_, err = run(t, updateCmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDateNotFound)
}

func TestCommandsRequireApp(t *testing.T) {
	cli.SetApp(nil)
	for _, cmd := range []*cobra.Command{addCmd, removeCmd, conflictsCmd, showCmd, updateCmd} {
		_, err := run(t, cmd)
		assert.ErrorIs(t, err, cli.ErrNoApp, cmd.Name())
	}
}
