package calendar

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// fakeDAV is an in-memory CalDAV server.
type fakeDAV struct {
	mu        sync.Mutex
	calendars []caldav.Calendar
	objects   map[string]*ical.Calendar
	failPut   map[string]bool
	removed   []string
}

func newFakeDAV() *fakeDAV {
	return &fakeDAV{
		calendars: []caldav.Calendar{{Path: "/cal/home/", Name: "Home"}, {Path: "/cal/work/", Name: "Work"}},
		objects:   make(map[string]*ical.Calendar),
		failPut:   make(map[string]bool),
	}
}

func (f *fakeDAV) FindCurrentUserPrincipal(ctx context.Context) (string, error) {
	return "/principals/me/", nil
}

func (f *fakeDAV) FindCalendarHomeSet(ctx context.Context, principal string) (string, error) {
	return "/cal/", nil
}

func (f *fakeDAV) FindCalendars(ctx context.Context, home string) ([]caldav.Calendar, error) {
	return f.calendars, nil
}

func (f *fakeDAV) GetCalendarObject(ctx context.Context, path string) (*caldav.CalendarObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cal, ok := f.objects[path]
	if !ok {
		return nil, errors.New("404 not found")
	}
	return &caldav.CalendarObject{Path: path, Data: cal}, nil
}

func (f *fakeDAV) PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut[path] {
		return nil, errors.New("507 insufficient storage")
	}
	f.objects[path] = cal
	return &caldav.CalendarObject{Path: path, Data: cal}, nil
}

func (f *fakeDAV) QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []caldav.CalendarObject
	for path, cal := range f.objects {
		if strings.HasPrefix(path, calendar) {
			out = append(out, caldav.CalendarObject{Path: path, Data: cal})
		}
	}
	return out, nil
}

func (f *fakeDAV) RemoveAll(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	f.removed = append(f.removed, name)
	return nil
}

func (f *fakeDAV) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for p := range f.objects {
		out = append(out, p)
	}
	return out
}

func newTestSyncer(dav *fakeDAV) *Syncer {
	s := NewSyncer("https://dav.example.com", "user", "secret", nil).WithLocation(time.UTC)
	s.dial = func() (davClient, error) { return dav, nil }
	s.now = func() time.Time { return stamp }
	return s
}

func TestNewSyncer(t *testing.T) {
	s := NewSyncer("https://dav.example.com", "user", "secret", nil)

	assert.Equal(t, "https://dav.example.com", s.baseURL)
	assert.False(t, s.deleteMissing)
	assert.Empty(t, s.calendarPath)
	assert.Equal(t, 30*time.Second, s.timeout)

	s.WithCalendarPath("/cal/work").WithDeleteMissing(true).WithTimeout(5 * time.Second)
	assert.Equal(t, "/cal/work/", s.calendarPath)
	assert.True(t, s.deleteMissing)
	assert.Equal(t, 5*time.Second, s.timeout)
}

func TestSyncer_Sync(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then updates", func(t *testing.T) {
		dav := newFakeDAV()
		s := newTestSyncer(dav)
		schedule := testSchedule(t)

		res, err := s.Sync(ctx, schedule)
		require.NoError(t, err)
		assert.Equal(t, SyncResult{Created: 3}, *res)
		for _, p := range dav.paths() {
			assert.True(t, strings.HasPrefix(p, "/cal/home/"), p)
		}

		res, err = s.Sync(ctx, schedule)
		require.NoError(t, err)
		assert.Equal(t, SyncResult{Updated: 3}, *res)
		assert.Len(t, dav.paths(), 3)
	})

	t.Run("uses pinned calendar", func(t *testing.T) {
		dav := newFakeDAV()
		s := newTestSyncer(dav).WithCalendarPath("/cal/work/")

		_, err := s.Sync(ctx, testSchedule(t))
		require.NoError(t, err)
		for _, p := range dav.paths() {
			assert.True(t, strings.HasPrefix(p, "/cal/work/"), p)
		}
	})

	t.Run("counts failures and continues", func(t *testing.T) {
		dav := newFakeDAV()
		slot := domain.Slot{Weekday: "Tuesday", StartTime: "09:00", EndTime: "10:00", Title: "Standup"}
		dav.failPut[objectPath("/cal/home/", "01/01/2030", slot)] = true
		s := newTestSyncer(dav)

		res, err := s.Sync(ctx, testSchedule(t))
		require.NoError(t, err)
		assert.Equal(t, 1, res.Failed)
		assert.Equal(t, 2, res.Created)
	})

	t.Run("deletes only stale marked events", func(t *testing.T) {
		dav := newFakeDAV()
		foreign := ical.NewCalendar()
		foreignEvent := ical.NewEvent()
		foreignEvent.Props.SetText(ical.PropUID, "someone-else")
		foreign.Children = append(foreign.Children, foreignEvent.Component)
		dav.objects["/cal/home/foreign.ics"] = foreign

		stale, err := SlotCalendar("05/01/2030", domain.Slot{StartTime: "09:00", EndTime: "10:00", Title: "Gone"}, time.UTC, stamp)
		require.NoError(t, err)
		dav.objects["/cal/home/stale.ics"] = stale

		s := newTestSyncer(dav).WithDeleteMissing(true)
		res, err := s.Sync(ctx, testSchedule(t))
		require.NoError(t, err)

		assert.Equal(t, 1, res.Deleted)
		assert.Equal(t, []string{"/cal/home/stale.ics"}, dav.removed)
		assert.Contains(t, dav.paths(), "/cal/home/foreign.ics")
	})

	t.Run("no calendars", func(t *testing.T) {
		dav := newFakeDAV()
		dav.calendars = nil
		_, err := newTestSyncer(dav).Sync(ctx, testSchedule(t))
		assert.ErrorIs(t, err, ErrNoCalendars)
	})
}

func TestSyncer_DeleteSlot(t *testing.T) {
	ctx := context.Background()
	dav := newFakeDAV()
	s := newTestSyncer(dav)
	_, err := s.Sync(ctx, testSchedule(t))
	require.NoError(t, err)

	slot := domain.Slot{Weekday: "Tuesday", StartTime: "09:00", EndTime: "10:00", Title: "Standup"}
	require.NoError(t, s.DeleteSlot(ctx, "01/01/2030", slot))

	assert.Len(t, dav.paths(), 2)
	assert.Equal(t, []string{objectPath("/cal/home/", "01/01/2030", slot)}, dav.removed)
}

func TestSyncer_ListCalendars(t *testing.T) {
	cals, err := newTestSyncer(newFakeDAV()).ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, cals, 2)
	assert.Equal(t, CalendarInfo{Path: "/cal/home/", Name: "Home", Primary: true}, cals[0])
	assert.False(t, cals[1].Primary)
}

func TestIsTimetableEvent(t *testing.T) {
	assert.False(t, isTimetableEvent(nil))
	assert.False(t, isTimetableEvent(&caldav.CalendarObject{}))
	assert.False(t, isTimetableEvent(&caldav.CalendarObject{Data: ical.NewCalendar()}))

	cal, err := SlotCalendar("01/01/2030", domain.Slot{StartTime: "09:00", EndTime: "10:00", Title: "x"}, time.UTC, stamp)
	require.NoError(t, err)
	assert.True(t, isTimetableEvent(&caldav.CalendarObject{Data: cal}))
}
