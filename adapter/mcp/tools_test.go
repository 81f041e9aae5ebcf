package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/persistence"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

func newTestToolset(t *testing.T) (*toolset, *observability.InMemoryMetrics) {
	t.Helper()
	metrics := observability.NewInMemoryMetrics()
	tools, err := newToolset(ToolDependencies{
		Engine:  application.NewEngine(persistence.NewMemoryStore()),
		Metrics: metrics,
	})
	require.NoError(t, err)
	return tools, metrics
}

func standupInput() slotInput {
	return slotInput{Date: "01/01/2030", Weekday: "Tuesday", StartTime: "09:00", EndTime: "10:00", Title: "Standup"}
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	deps := ToolDependencies{Engine: application.NewEngine(persistence.NewMemoryStore())}
	require.NoError(t, RegisterTools(srv, deps))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, name := range []string{ToolAddSlots, ToolCheckConflicts, ToolRemoveSlots, ToolShow, ToolValidateDate} {
		assert.True(t, names[name], "%s should be registered", name)
	}
}

func TestRegisterTools_RequiresEngine(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterTools(srv, ToolDependencies{}))
	assert.Error(t, RegisterTools(nil, ToolDependencies{}))
}

func TestTools_Workflow(t *testing.T) {
	ctx := context.Background()
	tools, metrics := newTestToolset(t)

	valid, err := tools.validateDate(ctx, validateDateInput{Date: "01/01/2030", Weekday: "tue"})
	require.NoError(t, err)
	assert.True(t, valid.OK())

	added, err := tools.addSlots(ctx, slotsInput{Slots: []slotInput{standupInput()}})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageSlotsAdded, added.Message)

	ping := slotInput{Date: "01/01/2030", Weekday: "Tuesday", StartTime: "09:30", EndTime: "09:45", Title: "Ping"}
	conflicts, err := tools.checkConflicts(ctx, slotsInput{Slots: []slotInput{ping}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConflict, conflicts.Status)
	require.Len(t, conflicts.Conflicts, 1)

	shown, err := tools.show(ctx, showInput{Date: "01/01/2030"})
	require.NoError(t, err)
	assert.Len(t, shown.Slots, 1)

	removed, err := tools.removeSlots(ctx, slotsInput{Slots: []slotInput{standupInput()}})
	require.NoError(t, err)
	require.Len(t, removed.Results, 1)
	assert.Contains(t, removed.Results[0].Message, "Do not call this tool anymore")

	shown, err = tools.show(ctx, showInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEmpty, shown.Status)

	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricMCPToolCalls, observability.T("tool", ToolShow)))
}

func TestTools_RemoveRequiresSlots(t *testing.T) {
	tools, _ := newTestToolset(t)
	_, err := tools.removeSlots(context.Background(), slotsInput{})
	assert.Error(t, err)
}

func TestResources(t *testing.T) {
	ctx := context.Background()
	tools, _ := newTestToolset(t)
	_, err := tools.addSlots(ctx, slotsInput{Slots: []slotInput{standupInput()}})
	require.NoError(t, err)

	content, err := tools.scheduleJSON(ctx)
	require.NoError(t, err)

	var stored map[string][]domain.Slot
	require.NoError(t, json.Unmarshal([]byte(content), &stored))
	require.Len(t, stored["01/01/2030"], 1)
	assert.Equal(t, "Standup", stored["01/01/2030"][0].Title)

	text, err := tools.scheduleText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "01/01/2030: \n\t(Tuesday) Title: Standup")

	dates, err := tools.datesJSON(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `["01/01/2030"]`, dates)
}

func TestResources_DatesEmpty(t *testing.T) {
	tools, _ := newTestToolset(t)
	dates, err := tools.datesJSON(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "[]", dates)
}

func TestManageTimetablePrompt(t *testing.T) {
	res, err := manageTimetablePrompt(context.Background(), map[string]string{"request": "lunch with Sam on Friday"})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)

	raw, err := json.Marshal(res.Messages[0])
	require.NoError(t, err)
	text := string(raw)
	assert.Contains(t, text, "lunch with Sam on Friday")
	assert.Contains(t, text, ToolCheckConflicts)
	assert.Contains(t, text, ResourceScheduleText)
}
