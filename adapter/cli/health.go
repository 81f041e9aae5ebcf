package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the timetable store is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		health := app.Health.GetOverallHealth(cmd.Context())
		out := cmd.OutOrStdout()
		for name, check := range health.Checks {
			if check.Message != "" {
				fmt.Fprintf(out, "%-10s %s (%s)\n", name, check.Status, check.Message)
			} else {
				fmt.Fprintf(out, "%-10s %s\n", name, check.Status)
			}
		}
		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("timetable is unhealthy")
		}
		fmt.Fprintln(out, "ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
