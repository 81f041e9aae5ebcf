package slot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/internal/timetable/application"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

var (
	updateFlags   slotFlags
	updateOldDate string
	updateIndex   int
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Overwrite a slot by position",
	Long: `Replace the slot at --index on --date, append it when the index is past
the end, or move it from --old-date to --date. This is the editor override:
it does not re-sort the date and does not check for duplicates.

Examples:
  timetable slot update --date 01/01/2030 --index 0 --start 09:00 --end 09:30 --title Standup
  timetable slot update --old-date 01/01/2030 --date 02/01/2030 --index 0 --weekday Wednesday --start 09:00 --end 09:30 --title Standup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		outcome, err := app.Engine.UpdateSlot(cmd.Context(), application.UpdateRequest{
			Date:    updateFlags.date,
			OldDate: updateOldDate,
			Index:   updateIndex,
			Slot: domain.Slot{
				Weekday:   updateFlags.weekday,
				StartTime: updateFlags.start,
				EndTime:   updateFlags.end,
				Title:     updateFlags.title,
			},
		})
		if err != nil {
			return fmt.Errorf("failed to update slot: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), outcome.Message)
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", outcome.Slot)
		return nil
	},
}

func init() {
	updateFlags.bind(updateCmd)
	updateCmd.Flags().StringVar(&updateOldDate, "old-date", "", "date the slot is on now (default: --date)")
	updateCmd.Flags().IntVarP(&updateIndex, "index", "i", 0, "position of the slot on its date")
	_ = updateCmd.Flags().MarkHidden("file")
}
