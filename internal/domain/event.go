package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventVoiceNoteAnalyzed EventType = "voice_note_analyzed"
	EventBioEdited         EventType = "bio_edited"
	EventTypingStarted     EventType = "typing_started"
	EventTypingStopped     EventType = "typing_stopped"
	EventAppOpened         EventType = "app_opened"
	EventAppClosed         EventType = "app_closed"
	EventProfileViewed     EventType = "profile_viewed"
	EventPhotoViewed       EventType = "photo_viewed"
)

// BehavioralEvent is an immutable, append-only record (spec §3). Rows are
// never updated or deleted; aggregators read them in descending sent order.
type BehavioralEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	EventType EventType      `gorm:"column:event_type;not null;index" json:"event_type"`
	EventData datatypes.JSON `gorm:"column:event_data;type:jsonb" json:"event_data,omitempty"`

	ClientTS time.Time `gorm:"column:client_ts;not null" json:"client_ts"`
	ServerTS time.Time `gorm:"column:server_ts;not null;default:now()" json:"server_ts"`
}

func (BehavioralEvent) TableName() string { return "behavioral_events" }

// VoiceNoteAnalyzedPayload is the recognized shape of a
// voice_note_analyzed event's EventData (spec §4.1 voice signals).
type VoiceNoteAnalyzedPayload struct {
	TranscriptWordCount int      `json:"transcript_word_count"`
	UniqueWordCount     int      `json:"unique_word_count"`
	Sentiment           float64  `json:"sentiment"`
	DominantEmotions    []string `json:"dominant_emotions"`
	SpeakingPace        string   `json:"speaking_pace"`
}
