package slot

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/adapter/cli"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

var (
	showDate string
	showJSON bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the timetable",
	Long: `Show the whole timetable, or one date with --date.

Examples:
  timetable slot show
  timetable slot show --date 01/01/2030 --json`,
	Aliases: []string{"ls", "list"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		var res domain.Result
		if showDate != "" {
			res, err = app.Engine.RenderDate(cmd.Context(), showDate)
		} else {
			res, err = app.Engine.Render(cmd.Context())
		}
		if err != nil {
			return err
		}

		if showJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
		} else {
			cli.PrintResult(cmd.OutOrStdout(), res)
		}
		return cli.ResultError(res)
	},
}

func init() {
	showCmd.Flags().StringVarP(&showDate, "date", "d", "", "only show this DD/MM/YYYY date")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print the result as JSON")
}
