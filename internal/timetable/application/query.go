package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// Conflict messages.
const (
	MessageConflict   = "There is a conflict"
	MessageNoConflict = "There is no conflict"
)

// Check reports whether a single candidate collides with a slot already on
// its date. Conflicting slots are returned in Result.Slots.
func (e *Engine) Check(ctx context.Context, c domain.Candidate) (domain.Result, error) {
	c = c.Normalized()
	if err := c.ValidateIdentity(); err != nil {
		return domain.Fail(domain.StatusInvalidFormat, err.Error()), nil
	}

	schedule, err := e.Snapshot(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	e.metrics.Counter(MetricConflictChecks, 1)
	hits := schedule.Conflicts(c)
	if len(hits) == 0 {
		return domain.Ok(MessageNoConflict), nil
	}
	e.metrics.Counter(MetricConflictsFound, 1)
	return domain.Result{Status: domain.StatusConflict, Message: MessageConflict, Slots: hits}, nil
}

// CheckConflicts returns the subset of candidates that collide with the
// schedule in Result.Conflicts.
func (e *Engine) CheckConflicts(ctx context.Context, candidates []domain.Candidate) (domain.Result, error) {
	normalized := make([]domain.Candidate, len(candidates))
	for i, c := range candidates {
		c = c.Normalized()
		if err := c.ValidateIdentity(); err != nil {
			return domain.Fail(domain.StatusInvalidFormat, fmt.Sprintf("slot %d (%s): %v", i+1, c.Title, err)), nil
		}
		normalized[i] = c
	}

	schedule, err := e.Snapshot(ctx)
	if err != nil {
		return domain.Result{}, err
	}

	var conflicting []domain.Candidate
	for _, c := range normalized {
		if len(schedule.Conflicts(c)) > 0 {
			conflicting = append(conflicting, c)
		}
	}

	e.metrics.Counter(MetricConflictChecks, int64(len(normalized)))
	if len(conflicting) == 0 {
		return domain.Ok(MessageNoConflict), nil
	}
	e.metrics.Counter(MetricConflictsFound, int64(len(conflicting)))
	return domain.Result{
		Status:    domain.StatusConflict,
		Message:   fmt.Sprintf("%s for %d slot(s)", MessageConflict, len(conflicting)),
		Conflicts: conflicting,
	}, nil
}

// Render lists the whole schedule as text.
func (e *Engine) Render(ctx context.Context) (domain.Result, error) {
	schedule, err := e.Snapshot(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	if schedule.IsEmpty() {
		return domain.Fail(domain.StatusEmpty, domain.MessageNoEvents), nil
	}
	return domain.Ok(schedule.Render()), nil
}

// RenderDate returns the ordered slots of one date.
func (e *Engine) RenderDate(ctx context.Context, date string) (domain.Result, error) {
	if err := domain.ValidateDate(date); err != nil {
		return domain.Fail(domain.StatusInvalidFormat, "Input date not in the DD/MM/YYYY format"), nil
	}

	schedule, err := e.Snapshot(ctx)
	if err != nil {
		return domain.Result{}, err
	}
	if schedule.IsEmpty() {
		return domain.Fail(domain.StatusEmpty, domain.MessageNoEvents), nil
	}
	slots, ok := schedule.Slots(date)
	if !ok {
		return domain.Fail(domain.StatusNotFound, domain.MessageNoEventsOnDate), nil
	}
	return domain.Result{
		Status:  domain.StatusOK,
		Message: domain.RenderDate(date, slots),
		Slots:   slots,
	}, nil
}

// ValidateDate checks that date is a real DD/MM/YYYY date and that weekday
// names its day of the week.
func (e *Engine) ValidateDate(date, weekday string) domain.Result {
	if err := domain.CheckWeekday(date, weekday); err != nil {
		return domain.Fail(domain.StatusInvalidFormat, fmt.Sprintf("Error: %v. Please provide a valid date and week day.", err))
	}
	return domain.Ok(domain.MessageValidDate)
}
