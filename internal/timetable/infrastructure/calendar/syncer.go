package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// Common CalDAV server URLs
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// ErrNoCalendars is returned when the principal owns no calendars and no
// explicit calendar path was configured.
var ErrNoCalendars = errors.New("no calendars found")

// SyncResult counts what a sync did.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// CalendarInfo describes a remote calendar.
type CalendarInfo struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
}

// davClient is the subset of *caldav.Client the syncer needs.
type davClient interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindCalendarHomeSet(ctx context.Context, principal string) (string, error)
	FindCalendars(ctx context.Context, calendarHomeSet string) ([]caldav.Calendar, error)
	GetCalendarObject(ctx context.Context, path string) (*caldav.CalendarObject, error)
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
	QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error)
	RemoveAll(ctx context.Context, name string) error
}

// Syncer mirrors the timetable into a CalDAV calendar (Apple Calendar,
// Fastmail, Nextcloud, etc.). Each slot becomes one object named after its
// UID.
type Syncer struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string
	deleteMissing bool
	timeout       time.Duration
	location      *time.Location
	now           func() time.Time
	dial          func() (davClient, error)
	logger        *slog.Logger
}

// NewSyncer creates a CalDAV syncer.
func NewSyncer(baseURL, username, password string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		baseURL:  baseURL,
		username: username,
		password: password,
		timeout:  30 * time.Second,
		location: time.Local,
		now:      time.Now,
		logger:   logger,
	}
	s.dial = s.newClient
	return s
}

// WithDeleteMissing removes marked events that are no longer in the schedule.
func (s *Syncer) WithDeleteMissing(enabled bool) *Syncer {
	s.deleteMissing = enabled
	return s
}

// WithCalendarPath pins the calendar collection instead of using the first
// one the server reports.
func (s *Syncer) WithCalendarPath(path string) *Syncer {
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	s.calendarPath = path
	return s
}

// WithTimeout sets the HTTP timeout.
func (s *Syncer) WithTimeout(d time.Duration) *Syncer {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// WithLocation sets the zone slot wall times are interpreted in.
func (s *Syncer) WithLocation(loc *time.Location) *Syncer {
	if loc != nil {
		s.location = loc
	}
	return s
}

// Sync pushes every slot of the schedule to the calendar.
func (s *Syncer) Sync(ctx context.Context, schedule *domain.Schedule) (*SyncResult, error) {
	client, err := s.dial()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	result := &SyncResult{}
	keepPaths := make(map[string]struct{}, schedule.SlotCount())
	stamp := s.now()

	for _, date := range schedule.Dates() {
		slots, _ := schedule.Slots(date)
		for _, slot := range slots {
			eventPath := objectPath(calPath, date, slot)
			keepPaths[eventPath] = struct{}{}

			cal, err := SlotCalendar(date, slot, s.location, stamp)
			if err != nil {
				s.logger.WarnContext(ctx, "skipping unrenderable slot", "date", date, "title", slot.Title, "error", err)
				result.Failed++
				continue
			}
			updated, err := s.upsertEvent(ctx, client, eventPath, cal)
			if err != nil {
				s.logger.WarnContext(ctx, "caldav sync failed", "event_path", eventPath, "error", err)
				result.Failed++
				continue
			}
			if updated {
				result.Updated++
			} else {
				result.Created++
			}
		}
	}

	if s.deleteMissing {
		deleted, err := s.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			s.logger.WarnContext(ctx, "caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	s.logger.InfoContext(ctx, "caldav sync finished",
		"calendar", calPath,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

// DeleteSlot removes the calendar object for one slot.
func (s *Syncer) DeleteSlot(ctx context.Context, date string, slot domain.Slot) error {
	client, err := s.dial()
	if err != nil {
		return err
	}
	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}
	return client.RemoveAll(ctx, objectPath(calPath, date, slot))
}

// ListCalendars returns calendars accessible to the user.
func (s *Syncer) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	client, err := s.dial()
	if err != nil {
		return nil, err
	}
	cals, err := s.discover(ctx, client)
	if err != nil {
		return nil, err
	}

	out := make([]CalendarInfo, 0, len(cals))
	for i, cal := range cals {
		out = append(out, CalendarInfo{
			Path:    cal.Path,
			Name:    cal.Name,
			Primary: i == 0,
		})
	}
	return out, nil
}

func (s *Syncer) newClient() (davClient, error) {
	httpClient := &http.Client{Timeout: s.timeout}
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Syncer) discover(ctx context.Context, client davClient) ([]caldav.Calendar, error) {
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}
	return cals, nil
}

func (s *Syncer) findCalendarPath(ctx context.Context, client davClient) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}
	cals, err := s.discover(ctx, client)
	if err != nil {
		return "", err
	}
	if len(cals) == 0 {
		return "", ErrNoCalendars
	}
	return cals[0].Path, nil
}

func (s *Syncer) upsertEvent(ctx context.Context, client davClient, eventPath string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	if _, err := client.PutCalendarObject(ctx, eventPath, cal); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Syncer) deleteMissingEvents(ctx context.Context, client davClient, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"UID", PropXTimetable}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for i := range objects {
		obj := &objects[i]
		if !isTimetableEvent(obj) {
			continue
		}
		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			s.logger.WarnContext(ctx, "failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func objectPath(calPath, date string, slot domain.Slot) string {
	return fmt.Sprintf("%s%s.ics", calPath, SlotUID(date, slot))
}

// isTimetableEvent reports whether obj carries the X-TIMETABLE marker.
func isTimetableEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}
	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[PropXTimetable]; len(props) > 0 && props[0].Value == "1" {
			return true
		}
	}
	return false
}
