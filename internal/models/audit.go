package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one pipeline event for the audit trail. Writes are
// fire-and-forget; a failed audit write never aborts the caller's primary
// operation.
type AuditEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ActorID    *string   `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Details    string    `json:"details" db:"details"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
