package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConversationHealthState string

const (
	HealthWarming ConversationHealthState = "warming"
	HealthActive  ConversationHealthState = "active"
	HealthCooling ConversationHealthState = "cooling"
	HealthDormant ConversationHealthState = "dormant"
	HealthRevived ConversationHealthState = "revived"
)

// Conversation is one per match and is CHM's unit of analysis. Invariant: at
// most one pending nudge at a time (spec §3).
type Conversation struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MatchID         uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex" json:"match_id"`
	LastMessageAt   time.Time               `gorm:"column:last_message_at;not null;index" json:"last_message_at"`
	HealthState     ConversationHealthState `gorm:"column:health_state;not null;default:warming" json:"health_state"`
	PendingNudge    *string                 `gorm:"column:pending_nudge" json:"pending_nudge,omitempty"`
	NudgeGeneratedAt *time.Time             `gorm:"column:nudge_generated_at" json:"nudge_generated_at,omitempty"`

	ArchivedByA bool `gorm:"column:archived_by_a;not null;default:false" json:"archived_by_a"`
	ArchivedByB bool `gorm:"column:archived_by_b;not null;default:false" json:"archived_by_b"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

// HasPendingNudge enforces the at-most-one-pending-nudge invariant at read time.
func (c *Conversation) HasPendingNudge() bool {
	return c != nil && c.PendingNudge != nil && *c.PendingNudge != ""
}
