package cli

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <DD/MM/YYYY> <weekday>",
	Short: "Check that a date exists and falls on a weekday",
	Long: `Check that a date exists and falls on the given weekday.

Weekdays are matched case-insensitively and may be abbreviated.

Examples:
  timetable validate 01/01/2030 Tuesday
  timetable validate 01/01/2030 tue`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		res := app.Engine.ValidateDate(args[0], args[1])
		PrintResult(cmd.OutOrStdout(), res)
		return ResultError(res)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
