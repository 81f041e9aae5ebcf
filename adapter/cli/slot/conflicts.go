package slot

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
)

var conflictsFlags slotFlags

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List planned slots that would overlap",
	Long: `Check slots against the timetable without changing it. Slots that
merely touch (one ends when the next starts) do not conflict.

Examples:
  timetable slot conflicts --date 01/01/2030 --start 09:30 --end 09:45 --title Ping`,
	Aliases: []string{"check"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}
		candidates, err := conflictsFlags.candidates()
		if err != nil {
			return err
		}

		res, err := app.Engine.CheckConflicts(cmd.Context(), candidates)
		if err != nil {
			return err
		}
		cli.PrintResult(cmd.OutOrStdout(), res)
		return cli.ResultError(res)
	},
}

func init() {
	conflictsFlags.bind(conflictsCmd)
}
