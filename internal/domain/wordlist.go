package domain

import (
	"time"

	"github.com/google/uuid"
)

// WordList is a user-defined named collection of cards.
type WordList struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CardCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
