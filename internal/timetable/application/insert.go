package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
	"github.com/felixgeelhaar/timetable/pkg/observability"
)

// Insert adds one slot at its chronological position. Re-inserting an
// identical slot succeeds without changing anything. Overlaps are not
// checked here; callers that care run CheckConflicts first.
func (e *Engine) Insert(ctx context.Context, c domain.Candidate) (domain.Result, error) {
	c = c.Normalized()
	if err := c.Validate(); err != nil {
		return domain.Fail(domain.StatusInvalidFormat, err.Error()), nil
	}

	defer e.flushEvents()
	e.mu.Lock()
	defer e.mu.Unlock()

	schedule, err := e.load(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	if !schedule.Insert(c) {
		e.logger.DebugContext(ctx, "duplicate slot ignored", "date", c.Date, "title", c.Title)
		return domain.Ok(fmt.Sprintf("Slot already in the timetable: %s on %s at %s", c.Title, c.Date, c.StartTime)), nil
	}

	if err := e.save(ctx, schedule); err != nil {
		return domain.Result{}, err
	}

	added := domain.NewSlotAdded(c)
	e.publish(ctx, &added)
	e.metrics.Counter(MetricSlotsAdded, 1)
	e.logger.InfoContext(ctx, "slot added",
		"date", c.Date,
		"start", c.StartTime,
		"end", c.EndTime,
		"title", c.Title,
	)

	slots, _ := schedule.Slots(c.Date)
	return domain.Result{
		Status:  domain.StatusOK,
		Message: fmt.Sprintf("Slot added: %s on %s at %s", c.Title, c.Date, c.StartTime),
		Slots:   slots,
	}, nil
}

// InsertBatch inserts candidates in order and stops at the first one that is
// rejected, returning its result. Slots before it stay inserted.
func (e *Engine) InsertBatch(ctx context.Context, candidates []domain.Candidate) (domain.Result, error) {
	if len(candidates) == 0 {
		return domain.Fail(domain.StatusInvalidFormat, "no slots provided"), nil
	}

	defer e.flushEvents()
	e.mu.Lock()
	defer e.mu.Unlock()

	timer := observability.StartTimer("timetable.insert_batch").WithMetrics(e.metrics)
	defer timer.Stop()

	schedule, err := e.load(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	var (
		added   []domain.SlotAdded
		outcome = domain.Ok(domain.MessageSlotsAdded)
	)
	for i, c := range candidates {
		c = c.Normalized()
		if err := c.Validate(); err != nil {
			outcome = domain.Fail(domain.StatusInvalidFormat, fmt.Sprintf("slot %d (%s): %v", i+1, c.Title, err))
			break
		}
		if schedule.Insert(c) {
			added = append(added, domain.NewSlotAdded(c))
		}
	}

	if len(added) == 0 {
		return outcome, nil
	}
	if err := e.save(ctx, schedule); err != nil {
		return domain.Result{}, err
	}

	for i := range added {
		e.publish(ctx, &added[i])
	}
	e.metrics.Counter(MetricSlotsAdded, int64(len(added)))
	e.logger.InfoContext(ctx, "slots added", "count", len(added))
	return outcome, nil
}
