package slot

import (
	"encoding/json"
	"errors"
	"fmt"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// Cmd is the slot command group
var Cmd = &cobra.Command{
	Use:   "slot",
	Short: "Plan, cancel and inspect timetable slots",
	Long: `Add, remove and inspect slots. Dates are DD/MM/YYYY and times are
24h HH:MM. Several slots can be passed at once with --file, a JSON array of
{"date","weekday","startTime","endTime","title"} objects.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(removeCmd)
	Cmd.AddCommand(conflictsCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(updateCmd)
}

// slotFlags are the flags shared by commands taking one or more slots.
type slotFlags struct {
	date    string
	weekday string
	start   string
	end     string
	title   string
	file    string
}

func (f *slotFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date (DD/MM/YYYY)")
	cmd.Flags().StringVarP(&f.weekday, "weekday", "w", "", "weekday name")
	cmd.Flags().StringVar(&f.start, "start", "", "start time (HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "end time (HH:MM)")
	cmd.Flags().StringVar(&f.title, "title", "", "slot title")
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "JSON file with a list of slots")
}

func (f *slotFlags) reset() {
	*f = slotFlags{}
}

// candidates returns the slots given on the command line or in --file.
func (f *slotFlags) candidates() ([]domain.Candidate, error) {
	if f.file != "" {
		data, err := security.ReadFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read slots file: %w", err)
		}
		var out []domain.Candidate
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("invalid slots file: %w", err)
		}
		if len(out) == 0 {
			return nil, errors.New("slots file is empty")
		}
		return out, nil
	}
	if f.date == "" || f.start == "" || f.end == "" || f.title == "" {
		return nil, errors.New("--date, --start, --end and --title are required unless --file is given")
	}
	return []domain.Candidate{domain.NewCandidate(f.date, f.weekday, f.start, f.end, f.title)}, nil
}
