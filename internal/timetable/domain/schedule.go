package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	ErrDateNotFound     = errors.New("no slots found for date")
	ErrSlotNotFound     = errors.New("slot not found")
	ErrIndexOutOfRange  = errors.New("slot index out of range")
	ErrMalformedPayload = errors.New("malformed timetable document")
)

// UpdateAction describes what an administrative update did.
type UpdateAction string

const (
	UpdateReplaced UpdateAction = "replaced"
	UpdateAppended UpdateAction = "appended"
	UpdateMoved    UpdateAction = "moved"
)

// Schedule maps dates to their ordered slots. Date keys keep the order in
// which they were first added, including across a save/load round trip.
// A date never maps to an empty slice.
type Schedule struct {
	days *orderedmap.OrderedMap[string, []Slot]
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{days: orderedmap.New[string, []Slot]()}
}

func (s *Schedule) init() {
	if s.days == nil {
		s.days = orderedmap.New[string, []Slot]()
	}
}

// Len returns the number of dates with at least one slot.
func (s *Schedule) Len() int {
	if s == nil || s.days == nil {
		return 0
	}
	return s.days.Len()
}

// IsEmpty reports whether the schedule has no dates.
func (s *Schedule) IsEmpty() bool { return s.Len() == 0 }

// Dates returns the date keys in schedule order.
func (s *Schedule) Dates() []string {
	dates := make([]string, 0, s.Len())
	if s.Len() == 0 {
		return dates
	}
	for pair := s.days.Oldest(); pair != nil; pair = pair.Next() {
		dates = append(dates, pair.Key)
	}
	return dates
}

// HasDate reports whether date has any slots.
func (s *Schedule) HasDate(date string) bool {
	_, ok := s.Slots(date)
	return ok
}

// Slots returns a copy of the slots recorded on date.
func (s *Schedule) Slots(date string) ([]Slot, bool) {
	if s.Len() == 0 {
		return nil, false
	}
	slots, ok := s.days.Get(date)
	if !ok {
		return nil, false
	}
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out, true
}

// SetSlots replaces the slots of date. An empty slice removes the date.
func (s *Schedule) SetSlots(date string, slots []Slot) {
	s.init()
	if len(slots) == 0 {
		s.days.Delete(date)
		return
	}
	stored := make([]Slot, len(slots))
	copy(stored, slots)
	s.days.Set(date, stored)
}

// DeleteDate removes a date and all of its slots.
func (s *Schedule) DeleteDate(date string) {
	if s.Len() == 0 {
		return
	}
	s.days.Delete(date)
}

// SlotCount returns the total number of slots across all dates.
func (s *Schedule) SlotCount() int {
	total := 0
	if s.Len() == 0 {
		return total
	}
	for pair := s.days.Oldest(); pair != nil; pair = pair.Next() {
		total += len(pair.Value)
	}
	return total
}

// Conflicts returns the existing slots on the candidate's date that collide
// with it.
func (s *Schedule) Conflicts(c Candidate) []Slot {
	existing, ok := s.Slots(c.Date)
	if !ok {
		return nil
	}
	var hits []Slot
	for _, slot := range existing {
		if slot.Overlaps(c.Slot) {
			hits = append(hits, slot)
		}
	}
	return hits
}

// IndexOf returns the position of the slot matching the identity of slot on
// date, or -1 when there is none.
func (s *Schedule) IndexOf(date string, slot Slot) int {
	existing, ok := s.Slots(date)
	if !ok {
		return -1
	}
	for i, candidate := range existing {
		if candidate.SameIdentity(slot) {
			return i
		}
	}
	return -1
}

// Insert places the candidate at the first position whose start time is not
// earlier than its own, creating the date when needed. Inserting a slot whose
// identity already exists on the date is a no-op and returns false.
func (s *Schedule) Insert(c Candidate) bool {
	existing, ok := s.Slots(c.Date)
	if !ok {
		s.SetSlots(c.Date, []Slot{c.Slot})
		return true
	}
	if s.IndexOf(c.Date, c.Slot) >= 0 {
		return false
	}

	pos := len(existing)
	for i, slot := range existing {
		if compareClock(slot.StartTime, c.StartTime) >= 0 {
			pos = i
			break
		}
	}
	existing = append(existing, Slot{})
	copy(existing[pos+1:], existing[pos:])
	existing[pos] = c.Slot
	s.SetSlots(c.Date, existing)
	return true
}

// Remove deletes the slot matching the candidate's identity and drops the
// date once it has no slots left.
func (s *Schedule) Remove(c Candidate) (Slot, error) {
	existing, ok := s.Slots(c.Date)
	if !ok {
		return Slot{}, fmt.Errorf("%w: %s", ErrDateNotFound, c.Date)
	}
	idx := s.IndexOf(c.Date, c.Slot)
	if idx == -1 {
		return Slot{}, fmt.Errorf("%w: %s %s-%s on %s", ErrSlotNotFound, c.Title, c.StartTime, c.EndTime, c.Date)
	}
	removed := existing[idx]
	existing = append(existing[:idx], existing[idx+1:]...)
	s.SetSlots(c.Date, existing)
	return removed, nil
}

// UpdateAt overrides a slot by position without ordering or duplicate checks.
//
// When date equals oldDate the slot at index is replaced, or the slot is
// appended if index is past the end. Otherwise the slot at index is taken off
// oldDate and appended to date. The displaced slot is returned for replace
// and move; it is nil for append.
func (s *Schedule) UpdateAt(oldDate, date string, index int, slot Slot) (UpdateAction, *Slot, error) {
	if index < 0 {
		return "", nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	old, ok := s.Slots(oldDate)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrDateNotFound, oldDate)
	}

	if date == oldDate {
		if index < len(old) {
			previous := old[index]
			old[index] = slot
			s.SetSlots(date, old)
			return UpdateReplaced, &previous, nil
		}
		s.SetSlots(date, append(old, slot))
		return UpdateAppended, nil, nil
	}

	if index >= len(old) {
		return "", nil, fmt.Errorf("%w: %d on %s", ErrIndexOutOfRange, index, oldDate)
	}
	previous := old[index]
	old = append(old[:index], old[index+1:]...)
	s.SetSlots(oldDate, old)
	target, _ := s.Slots(date)
	s.SetSlots(date, append(target, slot))
	return UpdateMoved, &previous, nil
}

// Render lists every date followed by its tab-indented slots. An empty
// schedule renders as an empty string.
func (s *Schedule) Render() string {
	var b strings.Builder
	for _, date := range s.Dates() {
		slots, _ := s.Slots(date)
		b.WriteString(RenderDate(date, slots))
	}
	return b.String()
}

// RenderDate formats one date block.
func RenderDate(date string, slots []Slot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: \n", date)
	for _, slot := range slots {
		fmt.Fprintf(&b, "\t%s\n", slot)
	}
	return b.String()
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	out := NewSchedule()
	for _, date := range s.Dates() {
		slots, _ := s.Slots(date)
		out.SetSlots(date, slots)
	}
	return out
}

// MarshalJSON writes the schedule as a single object keyed by date in
// schedule order. HTML characters are written literally.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, date := range s.Dates() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(date); err != nil {
			return nil, err
		}
		trimTrailingNewline(&buf)
		buf.WriteByte(':')
		slots, _ := s.Slots(date)
		if err := enc.Encode(slots); err != nil {
			return nil, err
		}
		trimTrailingNewline(&buf)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a date-keyed object, keeping document key order and
// dropping dates without slots.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	days := orderedmap.New[string, []Slot]()
	if err := days.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	s.days = orderedmap.New[string, []Slot]()
	for pair := days.Oldest(); pair != nil; pair = pair.Next() {
		if len(pair.Value) == 0 {
			continue
		}
		s.days.Set(pair.Key, pair.Value)
	}
	return nil
}

// Encode renders the schedule as the persisted document: a JSON object
// indented with four spaces.
func (s *Schedule) Encode() ([]byte, error) {
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "    "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodeSchedule parses a persisted document. Blank input yields an empty
// schedule.
func DecodeSchedule(data []byte) (*Schedule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewSchedule(), nil
	}
	s := NewSchedule()
	if err := json.Unmarshal(data, s); err != nil {
		if errors.Is(err, ErrMalformedPayload) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return s, nil
}

func trimTrailingNewline(buf *bytes.Buffer) {
	if n := buf.Len(); n > 0 && buf.Bytes()[n-1] == '\n' {
		buf.Truncate(n - 1)
	}
}
