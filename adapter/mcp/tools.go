package mcp

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// ToolDependencies provides the engine and ambient services to MCP tools.
type ToolDependencies struct {
	Engine  *application.Engine
	Logger  *slog.Logger
	Metrics observability.Metrics
}

// Tool names exposed to agents.
const (
	ToolAddSlots       = "timetable.add_slots"
	ToolCheckConflicts = "timetable.check_conflicts"
	ToolRemoveSlots    = "timetable.remove_slots"
	ToolShow           = "timetable.show"
	ToolValidateDate   = "timetable.validate_date"
)

// RegisterTools registers the timetable tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	tools, err := newToolset(deps)
	if err != nil {
		return err
	}

	srv.Tool(ToolAddSlots).
		Description("Add one or more slots to the timetable. Check conflicts first; adding an identical slot twice is harmless.").
		Handler(tools.addSlots)

	srv.Tool(ToolCheckConflicts).
		Description("Check whether slots overlap anything already planned on their date. Returns the conflicting slots.").
		Handler(tools.checkConflicts)

	srv.Tool(ToolRemoveSlots).
		Description("Remove slots matching start time, end time and title on their date.").
		Handler(tools.removeSlots)

	srv.Tool(ToolShow).
		Description("Show the whole timetable, or only one DD/MM/YYYY date.").
		Handler(tools.show)

	srv.Tool(ToolValidateDate).
		Description("Check that a DD/MM/YYYY date exists and falls on the given weekday.").
		Handler(tools.validateDate)

	return nil
}

// slotInput is the agent-facing slot shape.
type slotInput struct {
	Date      string `json:"date" jsonschema:"required"`
	Weekday   string `json:"weekday,omitempty"`
	StartTime string `json:"startTime" jsonschema:"required"`
	EndTime   string `json:"endTime" jsonschema:"required"`
	Title     string `json:"title" jsonschema:"required"`
}

func (s slotInput) candidate() domain.Candidate {
	return domain.NewCandidate(s.Date, s.Weekday, s.StartTime, s.EndTime, s.Title)
}

type slotsInput struct {
	Slots []slotInput `json:"slots" jsonschema:"required"`
}

func (in slotsInput) candidates() []domain.Candidate {
	out := make([]domain.Candidate, len(in.Slots))
	for i, s := range in.Slots {
		out[i] = s.candidate()
	}
	return out
}

type showInput struct {
	Date string `json:"date,omitempty"`
}

type validateDateInput struct {
	Date    string `json:"date" jsonschema:"required"`
	Weekday string `json:"weekday" jsonschema:"required"`
}

type removeOutput struct {
	Results []domain.Result `json:"results"`
}

type toolset struct {
	engine  *application.Engine
	logger  *slog.Logger
	metrics observability.Metrics
}

func newToolset(deps ToolDependencies) (*toolset, error) {
	if deps.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	return &toolset{engine: deps.Engine, logger: deps.Logger, metrics: deps.Metrics}, nil
}

func (t *toolset) called(ctx context.Context, tool string) {
	t.metrics.Counter(observability.MetricMCPToolCalls, 1, observability.T("tool", tool))
	t.logger.DebugContext(ctx, "mcp tool called", "tool", tool)
}

func (t *toolset) addSlots(ctx context.Context, in slotsInput) (*domain.Result, error) {
	t.called(ctx, ToolAddSlots)
	res, err := t.engine.InsertBatch(ctx, in.candidates())
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (t *toolset) checkConflicts(ctx context.Context, in slotsInput) (*domain.Result, error) {
	t.called(ctx, ToolCheckConflicts)
	res, err := t.engine.CheckConflicts(ctx, in.candidates())
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (t *toolset) removeSlots(ctx context.Context, in slotsInput) (*removeOutput, error) {
	t.called(ctx, ToolRemoveSlots)
	if len(in.Slots) == 0 {
		return nil, errors.New("no slots provided")
	}
	results, err := t.engine.RemoveBatch(ctx, in.candidates())
	if err != nil {
		return nil, err
	}
	return &removeOutput{Results: results}, nil
}

func (t *toolset) show(ctx context.Context, in showInput) (*domain.Result, error) {
	t.called(ctx, ToolShow)
	var (
		res domain.Result
		err error
	)
	if in.Date != "" {
		res, err = t.engine.RenderDate(ctx, in.Date)
	} else {
		res, err = t.engine.Render(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (t *toolset) validateDate(ctx context.Context, in validateDateInput) (*domain.Result, error) {
	t.called(ctx, ToolValidateDate)
	res := t.engine.ValidateDate(in.Date, in.Weekday)
	return &res, nil
}
