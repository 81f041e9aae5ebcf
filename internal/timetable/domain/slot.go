package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the DD/MM/YYYY layout used for schedule keys.
	DateLayout = "02/01/2006"
	// TimeLayout is the 24-hour HH:MM layout used for slot times.
	TimeLayout = "15:04"
)

var (
	ErrInvalidDate      = errors.New("invalid date, expected DD/MM/YYYY")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
	ErrMissingTitle     = errors.New("title is required")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrWeekdayMismatch  = errors.New("weekday does not match date")
)

// Slot is a single titled time range on a date.
type Slot struct {
	Weekday   string `json:"weekday"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Title     string `json:"title"`
}

// Candidate is a slot together with the date it belongs to.
type Candidate struct {
	Date string `json:"date"`
	Slot
}

// NewCandidate builds a candidate from its parts.
func NewCandidate(date, weekday, start, end, title string) Candidate {
	return Candidate{
		Date: date,
		Slot: Slot{Weekday: weekday, StartTime: start, EndTime: end, Title: title},
	}
}

// SameIdentity reports whether two slots share start time, end time and title.
// Weekday is not part of identity.
func (s Slot) SameIdentity(other Slot) bool {
	return canonicalTime(s.StartTime) == canonicalTime(other.StartTime) &&
		canonicalTime(s.EndTime) == canonicalTime(other.EndTime) &&
		s.Title == other.Title
}

// String renders the slot the way it appears in the schedule listing.
func (s Slot) String() string {
	return fmt.Sprintf("(%s) Title: %s, Start Time: %s - End Time: %s", s.Weekday, s.Title, s.StartTime, s.EndTime)
}

// Validate checks the date, both times, the title and the time ordering.
func (c Candidate) Validate() error {
	if err := ValidateDate(c.Date); err != nil {
		return err
	}
	if err := c.ValidateIdentity(); err != nil {
		return err
	}
	start, _ := ParseClock(c.StartTime)
	end, _ := ParseClock(c.EndTime)
	if end <= start {
		return fmt.Errorf("%w: %s - %s", ErrInvalidTimeRange, c.StartTime, c.EndTime)
	}
	return nil
}

// ValidateIdentity checks only the fields needed to locate an existing slot.
func (c Candidate) ValidateIdentity() error {
	if err := ValidateDate(c.Date); err != nil {
		return err
	}
	if _, ok := ParseClock(c.StartTime); !ok {
		return fmt.Errorf("%w: start time %q", ErrInvalidTime, c.StartTime)
	}
	if _, ok := ParseClock(c.EndTime); !ok {
		return fmt.Errorf("%w: end time %q", ErrInvalidTime, c.EndTime)
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrMissingTitle
	}
	return nil
}

// Normalized returns a copy with canonical HH:MM times and a trimmed title.
func (c Candidate) Normalized() Candidate {
	c.Date = strings.TrimSpace(c.Date)
	c.Weekday = strings.TrimSpace(c.Weekday)
	c.Title = strings.TrimSpace(c.Title)
	c.StartTime = canonicalTime(c.StartTime)
	c.EndTime = canonicalTime(c.EndTime)
	return c
}

// ValidateDate checks that date is a real calendar date in DD/MM/YYYY form.
func ValidateDate(date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	return nil
}

// ParseDate parses a zero-padded DD/MM/YYYY date; "1/1/2030" is rejected so
// each day has exactly one key.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// CheckWeekday verifies that weekday names the day of the week of date.
// Matching is case-insensitive and accepts abbreviations such as "Mon".
func CheckWeekday(date, weekday string) error {
	t, err := ParseDate(date)
	if err != nil {
		return err
	}
	want := t.Weekday().String()
	got := strings.ToLower(strings.TrimSpace(weekday))
	if len(got) < 3 || !strings.HasPrefix(strings.ToLower(want), got) {
		return fmt.Errorf("%w: %s is a %s", ErrWeekdayMismatch, date, want)
	}
	return nil
}

// ParseClock returns the minutes since midnight for an HH:MM string.
func ParseClock(value string) (int, bool) {
	t, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func canonicalTime(value string) string {
	minutes, ok := ParseClock(value)
	if !ok {
		return strings.TrimSpace(value)
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
