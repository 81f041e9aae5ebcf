package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
)

// PromptManageTimetable is the workflow prompt for timetable requests.
const PromptManageTimetable = "manage_timetable"

// RegisterPrompts registers MCP prompts for timetable workflows.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt(PromptManageTimetable).
		Description("Turn a natural-language scheduling request into timetable tool calls: validate, check conflicts, then add or remove.").
		Argument("request", "What the user wants to plan, move or cancel", true).
		Handler(manageTimetablePrompt)

	return nil
}

func manageTimetablePrompt(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
	request := strings.TrimSpace(args["request"])
	if request == "" {
		request = "[Please describe the event to plan or cancel]"
	}

	return &mcp.PromptResult{
		Description: "Timetable assistant",
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`You manage my timetable. Request:

**%s**

Work through it like this:

1. Convert the request into slots with date (DD/MM/YYYY), weekday, startTime and endTime (HH:MM, 24h) and a short title.
2. Call %s for every date you derived. If it fails, ask me to confirm the date.
3. To plan something, call %s first. If there is a conflict, tell me which events collide and ask before calling %s.
4. To cancel something, call %s once. If nothing matched, read the current day with %s and ask me which event I meant.
5. Finish with a one-line summary of what changed.

The full timetable is available from the %s resource.`,
						request,
						ToolValidateDate,
						ToolCheckConflicts,
						ToolAddSlots,
						ToolRemoveSlots,
						ToolShow,
						ResourceScheduleText,
					),
				},
			},
		},
	}, nil
}
