package slot

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

var removeFlags slotFlags

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove slots matching start, end and title",
	Long: `Remove slots by their start time, end time and title on a date.

Examples:
  timetable slot remove --date 01/01/2030 --start 09:00 --end 10:00 --title Standup`,
	Aliases: []string{"rm", "delete"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		candidates, err := removeFlags.candidates()
		if err != nil {
			return err
		}

		results, err := app.Engine.RemoveBatch(cmd.Context(), candidates)
		if err != nil {
			return fmt.Errorf("failed to remove slots: %w", err)
		}

		out := cmd.OutOrStdout()
		var firstErr error
		for _, res := range results {
			cli.PrintResult(out, res)
			if err := cli.ResultError(res); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			return firstErr
		}
		for _, res := range results {
			if res.Status == domain.StatusNotFound {
				return fmt.Errorf("some slots were not found")
			}
		}
		return nil
	},
}

func init() {
	removeFlags.bind(removeCmd)
}
