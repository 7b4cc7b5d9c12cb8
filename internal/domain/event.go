package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable append-only operational log record. Events drive
// quota counting, streak analytics, and the admin dashboard; they are never
// updated or deleted.
type Event struct {
	// ID is a ULID: lexicographically sortable by creation time.
	ID         string
	UserID     *uuid.UUID
	Type       EventType
	LatencyMs  *int
	TokenCount *int
	Payload    map[string]any
	CreatedAt  time.Time
}
