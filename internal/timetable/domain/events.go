package domain

import (
	sharedDomain "github.com/felixgeelhaar/timetable/internal/shared/domain"
)

const (
	AggregateType = "Timetable"

	RoutingKeySlotAdded    = "timetable.slot.added"
	RoutingKeySlotRemoved  = "timetable.slot.removed"
	RoutingKeySlotReplaced = "timetable.slot.replaced"
	RoutingKeySlotMoved    = "timetable.slot.moved"
)

// SlotAdded is emitted when a slot is inserted into the schedule
type SlotAdded struct {
	sharedDomain.BaseEvent
	Date string `json:"date"`
	Slot Slot   `json:"slot"`
}

// NewSlotAdded creates a SlotAdded event
func NewSlotAdded(c Candidate) SlotAdded {
	return SlotAdded{
		BaseEvent: sharedDomain.NewBaseEvent(AggregateType, RoutingKeySlotAdded),
		Date:      c.Date,
		Slot:      c.Slot,
	}
}

// SlotRemoved is emitted when a slot is deleted from the schedule
type SlotRemoved struct {
	sharedDomain.BaseEvent
	Date string `json:"date"`
	Slot Slot   `json:"slot"`
}

// NewSlotRemoved creates a SlotRemoved event
func NewSlotRemoved(date string, slot Slot) SlotRemoved {
	return SlotRemoved{
		BaseEvent: sharedDomain.NewBaseEvent(AggregateType, RoutingKeySlotRemoved),
		Date:      date,
		Slot:      slot,
	}
}

// SlotUpdated is emitted by the administrative override, either in place
// (replaced/appended) or across dates (moved).
type SlotUpdated struct {
	sharedDomain.BaseEvent
	OldDate string       `json:"old_date"`
	Date    string       `json:"date"`
	Index   int          `json:"index"`
	Action  UpdateAction `json:"action"`
	Slot    Slot         `json:"slot"`

	// Previous is the slot that was replaced or moved away; nil on append.
	Previous *Slot `json:"previous,omitempty"`
}

// NewSlotUpdated creates a SlotUpdated event
func NewSlotUpdated(oldDate, date string, index int, action UpdateAction, slot Slot, previous *Slot) SlotUpdated {
	key := RoutingKeySlotReplaced
	if action == UpdateMoved {
		key = RoutingKeySlotMoved
	}
	return SlotUpdated{
		BaseEvent: sharedDomain.NewBaseEvent(AggregateType, key),
		OldDate:   oldDate,
		Date:      date,
		Index:     index,
		Action:    action,
		Slot:      slot,
		Previous:  previous,
	}
}
