// Package calendar renders the timetable as iCalendar data and pushes it to
// CalDAV servers.
package calendar

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// PropXTimetable marks events created by this service so sync never touches
// anything else in a shared calendar.
const PropXTimetable = "X-TIMETABLE"

// ProductID is written to every exported VCALENDAR.
const ProductID = "-//Timetable//Slot Export//EN"

var slotNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("timetable:slot"))

// SlotUID derives a stable identifier for a slot. The same date and slot
// identity always yield the same UID, so repeated syncs update in place.
func SlotUID(date string, slot domain.Slot) string {
	key := fmt.Sprintf("%s|%s|%s|%s", date, slot.StartTime, slot.EndTime, slot.Title)
	return uuid.NewSHA1(slotNamespace, []byte(key)).String()
}

// SlotTimes resolves a slot's wall-clock times on date in loc.
func SlotTimes(date string, slot domain.Slot, loc *time.Location) (time.Time, time.Time, error) {
	day, err := domain.ParseDate(date)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, ok := domain.ParseClock(slot.StartTime)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTime, slot.StartTime)
	}
	end, ok := domain.ParseClock(slot.EndTime)
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidTime, slot.EndTime)
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(start) * time.Minute), midnight.Add(time.Duration(end) * time.Minute), nil
}

// NewSlotEvent builds the VEVENT for one slot.
func NewSlotEvent(date string, slot domain.Slot, loc *time.Location, stamp time.Time) (*ical.Event, error) {
	start, end, err := SlotTimes(date, slot, loc)
	if err != nil {
		return nil, err
	}

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, SlotUID(date, slot))
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())
	event.Props.SetText(ical.PropSummary, slot.Title)
	if slot.Weekday != "" {
		event.Props.SetText(ical.PropDescription, slot.String())
	}

	marker := ical.NewProp(PropXTimetable)
	marker.Value = "1"
	event.Props[PropXTimetable] = []ical.Prop{*marker}
	return event, nil
}

func newCalendar() *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	return cal
}

// SlotCalendar wraps a single slot in its own VCALENDAR, the unit CalDAV
// stores per object.
func SlotCalendar(date string, slot domain.Slot, loc *time.Location, stamp time.Time) (*ical.Calendar, error) {
	event, err := NewSlotEvent(date, slot, loc, stamp)
	if err != nil {
		return nil, err
	}
	cal := newCalendar()
	cal.Children = append(cal.Children, event.Component)
	return cal, nil
}

// Export converts the whole schedule into one VCALENDAR, dates in schedule
// order and slots in stored order.
func Export(schedule *domain.Schedule, loc *time.Location, stamp time.Time) (*ical.Calendar, error) {
	cal := newCalendar()
	for _, date := range schedule.Dates() {
		slots, _ := schedule.Slots(date)
		for _, slot := range slots {
			event, err := NewSlotEvent(date, slot, loc, stamp)
			if err != nil {
				return nil, fmt.Errorf("export %s %q: %w", date, slot.Title, err)
			}
			cal.Children = append(cal.Children, event.Component)
		}
	}
	return cal, nil
}

// WriteICS encodes cal to w.
func WriteICS(w io.Writer, cal *ical.Calendar) error {
	return ical.NewEncoder(w).Encode(cal)
}

// ExportICS renders the schedule as iCalendar bytes.
func ExportICS(schedule *domain.Schedule, loc *time.Location, stamp time.Time) ([]byte, error) {
	cal, err := Export(schedule, loc, stamp)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteICS(&buf, cal); err != nil {
		return nil, fmt.Errorf("encode ics: %w", err)
	}
	return buf.Bytes(), nil
}
