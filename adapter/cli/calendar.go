package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/internal/timetable/infrastructure/calendar"
)

var (
	exportOutput      string
	exportDate        string
	syncDeleteMissing bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Export or sync the timetable as iCalendar",
}

var calendarExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the timetable to ICS (iCalendar)",
	Long: `Export the timetable to ICS (iCalendar) format for import into
calendar apps. Slot times are read in the local time zone.

Examples:
  timetable calendar export                      # Export to stdout
  timetable calendar export -o timetable.ics     # Export to file
  timetable calendar export --date 01/01/2030    # Export one day`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}

		schedule, err := app.Engine.Snapshot(cmd.Context())
		if err != nil {
			return err
		}
		if exportDate != "" {
			schedule = scheduleForDate(schedule, exportDate)
		}
		if schedule.IsEmpty() {
			fmt.Fprintln(cmd.ErrOrStderr(), domain.MessageNoEvents)
			return nil
		}

		ics, err := calendar.ExportICS(schedule, app.Location, time.Now())
		if err != nil {
			return err
		}

		if exportOutput == "" {
			_, err = cmd.OutOrStdout().Write(ics)
			return err
		}
		if err := security.WriteFile(exportOutput, ics); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d slots to %s\n", schedule.SlotCount(), exportOutput)
		return nil
	},
}

var calendarSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the timetable to the configured CalDAV calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := RequireApp()
		if err != nil {
			return err
		}
		if app.CalendarSyncer == nil {
			return errors.New("calendar sync not configured; set CALDAV_URL")
		}

		syncer := app.CalendarSyncer
		if davSyncer, ok := syncer.(*calendar.Syncer); ok && syncDeleteMissing {
			syncer = davSyncer.WithDeleteMissing(true)
		}

		schedule, err := app.Engine.Snapshot(cmd.Context())
		if err != nil {
			return err
		}

		result, err := syncer.Sync(cmd.Context(), schedule)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Synced slots: created=%d updated=%d deleted=%d failed=%d\n",
			result.Created, result.Updated, result.Deleted, result.Failed)
		return nil
	},
}

// scheduleForDate returns a schedule holding only date.
func scheduleForDate(schedule *domain.Schedule, date string) *domain.Schedule {
	out := domain.NewSchedule()
	if slots, ok := schedule.Slots(date); ok {
		out.SetSlots(date, slots)
	}
	return out
}

func init() {
	calendarExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	calendarExportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "only export this DD/MM/YYYY date")
	calendarSyncCmd.Flags().BoolVar(&syncDeleteMissing, "delete-missing", false, "delete synced events that are no longer in the timetable")

	calendarCmd.AddCommand(calendarExportCmd)
	calendarCmd.AddCommand(calendarSyncCmd)
	rootCmd.AddCommand(calendarCmd)
}
