package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MessageContentType string

const (
	MessageContentText  MessageContentType = "text"
	MessageContentImage MessageContentType = "image"
	MessageContentVoice MessageContentType = "voice"
)

// Message belongs to a Conversation; content is an encrypted blob the core
// never decrypts on its own — sentiment/emotion arrive pre-computed (spec §3).
type Message struct {
	ID             uuid.UUID          `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ConversationID uuid.UUID          `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       *uuid.UUID         `gorm:"type:uuid;column:sender_id;index" json:"sender_id,omitempty"`
	ContentBlob    []byte             `gorm:"column:content_blob" json:"-"`
	ContentType    MessageContentType `gorm:"column:content_type;not null;default:text" json:"content_type"`

	// Sentiment and EmotionTag are pre-computed upstream; CHM never derives
	// them itself (spec §1 Non-goals: no novel NLP).
	Sentiment  *float64 `gorm:"column:sentiment" json:"sentiment,omitempty"`
	EmotionTag *string  `gorm:"column:emotion_tag" json:"emotion_tag,omitempty"`

	// CharLen, HasQuestion, EmojiCount, TokenCount and Tokens are denormalized
	// plaintext features computed once at ingestion time, the same way
	// Sentiment and EmotionTag arrive pre-computed; RPB's messaging
	// aggregator and CHM's trend signals read these instead of ContentBlob.
	// Tokens holds the lowercased whitespace-split tokens of this message
	// (unfiltered); vocabulary/topic diversity are corpus-wide set
	// operations, so callers pool Tokens across the whole message window
	// rather than summing a per-message unique count (spec §4.1, §4.5
	// signal 5).
	CharLen     int                         `gorm:"column:char_len;not null;default:0" json:"char_len"`
	HasQuestion bool                        `gorm:"column:has_question;not null;default:false" json:"has_question"`
	EmojiCount  int                         `gorm:"column:emoji_count;not null;default:0" json:"emoji_count"`
	TokenCount  int                         `gorm:"column:token_count;not null;default:0" json:"token_count"`
	Tokens      datatypes.JSONSlice[string] `gorm:"column:tokens;type:jsonb" json:"tokens"`

	SentAt    time.Time  `gorm:"column:sent_at;not null;index" json:"sent_at"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (Message) TableName() string { return "messages" }

// IsDeleted reports soft-deletion via deleted_at (spec §3 Message).
func (m *Message) IsDeleted() bool { return m != nil && m.DeletedAt != nil }
