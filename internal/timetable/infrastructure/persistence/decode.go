package persistence

import (
	"log/slog"

	"github.com/felixgeelhaar/timetable/internal/timetable/domain"
)

// decodeOrEmpty parses a stored document. Unreadable content is logged and
// replaced by an empty schedule; corrupt reports whether that happened.
func decodeOrEmpty(logger *slog.Logger, source string, data []byte) (schedule *domain.Schedule, corrupt bool) {
	schedule, err := domain.DecodeSchedule(data)
	if err != nil {
		logger.Warn("timetable document unreadable, starting empty",
			"source", source,
			"error", err,
		)
		return domain.NewSchedule(), true
	}
	return schedule, false
}
