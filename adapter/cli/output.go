package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// ErrNoApp is returned by commands that need the engine when no App is set.
var ErrNoApp = errors.New("timetable is not initialized; check STORE_DRIVER and TIMETABLE_PATH")

// RequireApp returns the App or ErrNoApp.
func RequireApp() (*App, error) {
	if app == nil || app.Engine == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// PrintResult writes a Result for humans.
func PrintResult(w io.Writer, res domain.Result) {
	fmt.Fprintln(w, res.Message)
	if len(res.Conflicts) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 40))
		for _, c := range res.Conflicts {
			fmt.Fprintf(w, "  %s  %s-%s  %s\n", c.Date, c.StartTime, c.EndTime, c.Title)
		}
	}
}

// ResultError turns a rejected request into a command error. Conflicts and
// empty lookups are answers, not failures.
func ResultError(res domain.Result) error {
	if res.Status == domain.StatusInvalidFormat {
		return fmt.Errorf("invalid input: %s", res.Message)
	}
	return nil
}
