package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/timetable/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// ScheduleSource provides the current schedule. A domain.Store satisfies it.
type ScheduleSource interface {
	Load(ctx context.Context) (*domain.Schedule, error)
}

// ScheduleSyncer pushes schedules to a remote calendar.
type ScheduleSyncer interface {
	Sync(ctx context.Context, schedule *domain.Schedule) (*SyncResult, error)
	DeleteSlot(ctx context.Context, date string, slot domain.Slot) error
}

// SyncConsumer keeps a remote calendar in step with slot events. Removals and
// updates that displace a slot delete the old object first; every event then
// triggers a full sync,
// which is idempotent because object names derive from slot identity.
type SyncConsumer struct {
	source ScheduleSource
	syncer ScheduleSyncer
	logger *slog.Logger
}

// NewSyncConsumer creates a consumer for timetable.slot.* events.
func NewSyncConsumer(source ScheduleSource, syncer ScheduleSyncer, logger *slog.Logger) *SyncConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncConsumer{source: source, syncer: syncer, logger: logger}
}

// EventTypes implements eventbus.EventConsumer.
func (c *SyncConsumer) EventTypes() []string {
	return []string{"timetable.slot.*"}
}

// Handle implements eventbus.EventConsumer.
func (c *SyncConsumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	switch event.RoutingKey {
	case domain.RoutingKeySlotRemoved:
		var removed domain.SlotRemoved
		if err := json.Unmarshal(event.Payload, &removed); err != nil {
			return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
		}
		c.deleteObject(ctx, removed.Date, removed.Slot)
	case domain.RoutingKeySlotReplaced, domain.RoutingKeySlotMoved:
		var updated domain.SlotUpdated
		if err := json.Unmarshal(event.Payload, &updated); err != nil {
			return fmt.Errorf("decode %s: %w", event.RoutingKey, err)
		}
		if prev := updated.Previous; prev != nil &&
			(updated.OldDate != updated.Date || !prev.SameIdentity(updated.Slot)) {
			c.deleteObject(ctx, updated.OldDate, *prev)
		}
	}

	schedule, err := c.source.Load(ctx)
	if err != nil {
		return err
	}
	result, err := c.syncer.Sync(ctx, schedule)
	if err != nil {
		return fmt.Errorf("calendar sync: %w", err)
	}
	c.logger.DebugContext(ctx, "calendar synced after event",
		"routing_key", event.RoutingKey,
		"event_id", event.EventID,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
	)
	return nil
}

// deleteObject removes one calendar object. Failures are logged; the full
// sync that follows still runs.
func (c *SyncConsumer) deleteObject(ctx context.Context, date string, slot domain.Slot) {
	if err := c.syncer.DeleteSlot(ctx, date, slot); err != nil {
		c.logger.WarnContext(ctx, "failed to delete calendar object",
			"date", date,
			"title", slot.Title,
			"error", err,
		)
	}
}

var _ eventbus.EventConsumer = (*SyncConsumer)(nil)
