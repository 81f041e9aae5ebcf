package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// ErrInvalidRequest is returned when an update request is missing fields or
// carries a malformed slot.
var ErrInvalidRequest = errors.New("missing or invalid parameters")

// UpdateRequest addresses a slot by date and position.
type UpdateRequest struct {
	// Date is where the slot should end up.
	Date string
	// OldDate is where the slot currently is. Empty means Date.
	OldDate string
	Index   int
	Slot    domain.Slot
}

// UpdateOutcome describes a completed update.
type UpdateOutcome struct {
	Action  domain.UpdateAction
	Message string
	Slot    domain.Slot
}

// UpdateSlot is the administrative override used by the editor UI. It
// replaces, appends or moves a slot by index without re-sorting and without
// duplicate suppression. It shares the engine lock and store, and still never
// leaves a date without slots.
func (e *Engine) UpdateSlot(ctx context.Context, req UpdateRequest) (UpdateOutcome, error) {
	if req.OldDate == "" {
		req.OldDate = req.Date
	}
	if req.Date == "" {
		return UpdateOutcome{}, fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if req.Index < 0 {
		return UpdateOutcome{}, fmt.Errorf("%w: index must not be negative", ErrInvalidRequest)
	}
	target := domain.Candidate{Date: req.Date, Slot: req.Slot}.Normalized()
	if err := target.ValidateIdentity(); err != nil {
		return UpdateOutcome{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	defer e.flushEvents()
	e.mu.Lock()
	defer e.mu.Unlock()

	schedule, err := e.load(ctx)
	if err != nil {
		return UpdateOutcome{}, err
	}

	action, previous, err := schedule.UpdateAt(req.OldDate, target.Date, req.Index, target.Slot)
	if err != nil {
		return UpdateOutcome{}, err
	}
	if err := e.save(ctx, schedule); err != nil {
		return UpdateOutcome{}, err
	}

	var message string
	switch action {
	case domain.UpdateMoved:
		message = fmt.Sprintf("Moved slot from %s to %s", req.OldDate, target.Date)
	case domain.UpdateAppended:
		message = fmt.Sprintf("Appended new slot to %s", target.Date)
	default:
		message = fmt.Sprintf("Updated slot in %s", target.Date)
	}

	updated := domain.NewSlotUpdated(req.OldDate, target.Date, req.Index, action, target.Slot, previous)
	e.publish(ctx, &updated)
	e.metrics.Counter(MetricSlotsUpdated, 1)
	e.logger.InfoContext(ctx, "slot updated by index",
		"action", action,
		"old_date", req.OldDate,
		"date", target.Date,
		"index", req.Index,
	)

	return UpdateOutcome{Action: action, Message: message, Slot: target.Slot}, nil
}
