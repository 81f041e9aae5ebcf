package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// Remove deletes the slot whose start time, end time and title match the
// candidate. The date disappears from the schedule once it has no slots.
func (e *Engine) Remove(ctx context.Context, c domain.Candidate) (domain.Result, error) {
	results, err := e.RemoveBatch(ctx, []domain.Candidate{c})
	if err != nil {
		return domain.Result{}, err
	}
	return results[0], nil
}

// RemoveBatch removes each candidate and reports one result per candidate.
func (e *Engine) RemoveBatch(ctx context.Context, candidates []domain.Candidate) ([]domain.Result, error) {
	defer e.flushEvents()
	e.mu.Lock()
	defer e.mu.Unlock()

	schedule, err := e.load(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Result, len(candidates))
	var removed []domain.SlotRemoved
	for i, c := range candidates {
		c = c.Normalized()
		if err := c.ValidateIdentity(); err != nil {
			results[i] = domain.Fail(domain.StatusInvalidFormat, err.Error())
			continue
		}

		slot, err := schedule.Remove(c)
		switch {
		case errors.Is(err, domain.ErrDateNotFound):
			results[i] = domain.Fail(domain.StatusNotFound, fmt.Sprintf(
				"No slot removed: there are no events on %s. Ask the customer to try again with the correct information.",
				c.Date))
		case errors.Is(err, domain.ErrSlotNotFound):
			results[i] = domain.Fail(domain.StatusNotFound, fmt.Sprintf(
				"No slot corresponding in the timetable for the event %s. Check if the timings are correct. "+
					"The title may be different in the timetable as well, or the event may be on another date.",
				c.Title))
		case err != nil:
			return nil, err
		default:
			results[i] = domain.Ok(fmt.Sprintf(
				"Successfully deleted event: %s at %s. Do not call this tool anymore.",
				slot.Title, slot.StartTime))
			removed = append(removed, domain.NewSlotRemoved(c.Date, slot))
		}
	}

	if len(removed) == 0 {
		return results, nil
	}
	if err := e.save(ctx, schedule); err != nil {
		return nil, err
	}

	for i := range removed {
		e.publish(ctx, &removed[i])
		e.logger.InfoContext(ctx, "slot removed",
			"date", removed[i].Date,
			"start", removed[i].Slot.StartTime,
			"title", removed[i].Slot.Title,
		)
	}
	e.metrics.Counter(MetricSlotsRemoved, int64(len(removed)))
	return results, nil
}
