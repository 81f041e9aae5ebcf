package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
)

// Resource URIs.
const (
	ResourceSchedule     = "timetable://schedule"
	ResourceScheduleText = "timetable://schedule/text"
	ResourceDates        = "timetable://dates"
)

const (
	mimeJSON = "application/json"
	mimeText = "text/plain"
)

// RegisterResources exposes read-only views of the stored timetable.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	tools, err := newToolset(deps)
	if err != nil {
		return err
	}

	views := []struct {
		uri, name, desc, mime string
		read                  func(context.Context) (string, error)
	}{
		{ResourceSchedule, "Timetable", "The full timetable as stored: dates in DD/MM/YYYY mapping to ordered slots", mimeJSON, tools.scheduleJSON},
		{ResourceScheduleText, "Timetable (text)", "The full timetable rendered as text, one date per block", mimeText, tools.scheduleText},
		{ResourceDates, "Planned dates", "Dates that hold at least one slot, in stored order", mimeJSON, tools.datesJSON},
	}
	for _, v := range views {
		read, mime := v.read, v.mime
		srv.Resource(v.uri).
			Name(v.name).
			Description(v.desc).
			MimeType(mime).
			Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
				text, err := read(ctx)
				if err != nil {
					return nil, err
				}
				return &mcp.ResourceContent{URI: uri, MimeType: mime, Text: text}, nil
			})
	}
	return nil
}

func (t *toolset) scheduleJSON(ctx context.Context) (string, error) {
	schedule, err := t.engine.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := schedule.Encode()
	return string(data), err
}

func (t *toolset) scheduleText(ctx context.Context) (string, error) {
	res, err := t.engine.Render(ctx)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

func (t *toolset) datesJSON(ctx context.Context) (string, error) {
	schedule, err := t.engine.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(schedule.Dates())
	return string(data), err
}
