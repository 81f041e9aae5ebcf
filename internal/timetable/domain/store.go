package domain

import "context"

// Store persists the whole schedule as one document.
type Store interface {
	// Load returns the stored schedule. A missing or unreadable document
	// yields an empty schedule; only infrastructure faults return an error.
	Load(ctx context.Context) (*Schedule, error)

	// Save overwrites the stored document with the given schedule.
	Save(ctx context.Context, schedule *Schedule) error
}
