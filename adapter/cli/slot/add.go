package slot

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

var (
	addFlags slotFlags
	addForce bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add slots to the timetable",
	Long: `Add slots at their chronological position. Overlaps are checked first
and refused unless --force is given. Adding an identical slot twice is a no-op.

Examples:
  timetable slot add --date 01/01/2030 --weekday Tuesday --start 09:00 --end 10:00 --title Standup
  timetable slot add --file week.json`,
	Aliases: []string{"new"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		candidates, err := addFlags.candidates()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !addForce {
			pending, err := unstored(cmd.Context(), app.Engine, candidates)
			if err != nil {
				return err
			}
			check := domain.Ok("")
			if len(pending) > 0 {
				if check, err = app.Engine.CheckConflicts(cmd.Context(), pending); err != nil {
					return err
				}
			}
			if check.Status != domain.StatusOK {
				cli.PrintResult(out, check)
				if check.Status == domain.StatusConflict {
					return fmt.Errorf("refusing to add overlapping slots; use --force to add anyway")
				}
				return cli.ResultError(check)
			}
		}

		res, err := app.Engine.InsertBatch(cmd.Context(), candidates)
		if err != nil {
			return fmt.Errorf("failed to add slots: %w", err)
		}
		cli.PrintResult(out, res)
		return cli.ResultError(res)
	},
}

// unstored drops candidates whose identity is already on their date, so
// re-adding a slot is not reported as overlapping itself.
func unstored(ctx context.Context, engine *application.Engine, candidates []domain.Candidate) ([]domain.Candidate, error) {
	schedule, err := engine.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var pending []domain.Candidate
	for _, c := range candidates {
		n := c.Normalized()
		if schedule.IndexOf(n.Date, n.Slot) < 0 {
			pending = append(pending, c)
		}
	}
	return pending, nil
}

func init() {
	addFlags.bind(addCmd)
	addCmd.Flags().BoolVar(&addForce, "force", false, "add even if the slots overlap existing ones")
}
