package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModerationEvent is one row of the append-only moderation trail.
type ModerationEvent struct {
	ID        uuid.UUID     `db:"id"`
	ProfileID uuid.UUID     `db:"profile_id"`
	ActorID   *uuid.UUID    `db:"actor_id"`
	Decision  Moderation    `db:"decision"`
	Source    string        `db:"source"`
	Metadata  EventMetadata `db:"metadata"`
	CreatedAt time.Time     `db:"created_at"`
}

// Sources of a moderation decision
const (
	ModerationSourceAPI = "api"
	ModerationSourceCLI = "cli"
)

// PendingMember is a row of the admin review queue.
type PendingMember struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       *string   `json:"full_name"`
	Degree         *string   `json:"degree"`
	Branch         *string   `json:"branch"`
	GraduationYear *int      `json:"graduation_year"`
	Company        *string   `json:"company"`
	Designation    *string   `json:"designation"`
	LinkedIn       *string   `json:"linkedin"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventMetadata holds additional context for moderation events
type EventMetadata map[string]any

// Scan implements sql.Scanner for JSONB
func (m *EventMetadata) Scan(value any) error {
	if value == nil {
		*m = make(EventMetadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*m = EventMetadata(out)
	return nil
}

// Value implements driver.Valuer for JSONB
func (m EventMetadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(m))
}
