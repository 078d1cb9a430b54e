package domain

import (
	"time"

	"github.com/google/uuid"
)

type MatchState string

const (
	MatchPending             MatchState = "pending"
	MatchMatched             MatchState = "matched"
	MatchConversationStarted MatchState = "conversation_started"
	MatchDormant             MatchState = "dormant"
	MatchUnmatched           MatchState = "unmatched"
)

// Match holds a pair of users in canonical (sorted) order so a single
// unique index on (user_a_id, user_b_id) enforces one row per pair
// regardless of which side initiated it (spec §3 Match).
type Match struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserAID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair;column:user_a_id" json:"user_a_id"`
	UserBID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_match_pair;column:user_b_id" json:"user_b_id"`

	State MatchState `gorm:"column:state;not null;default:pending" json:"state"`

	// ResonanceScoreSnapshot and WaveformSnapshot freeze the ERS result at the
	// moment the match formed; ERS is not recomputed afterward (spec §4.3).
	ResonanceScoreSnapshot *float64 `gorm:"column:resonance_score_snapshot" json:"resonance_score_snapshot,omitempty"`
	WaveformSnapshot       []byte   `gorm:"column:waveform_snapshot;type:jsonb" json:"waveform_snapshot,omitempty"`

	LikedAtA *time.Time `gorm:"column:liked_at_a" json:"liked_at_a,omitempty"`
	LikedAtB *time.Time `gorm:"column:liked_at_b" json:"liked_at_b,omitempty"`

	ConversationStartedAt *time.Time `gorm:"column:conversation_started_at" json:"conversation_started_at,omitempty"`
	UnmatchedBy           *uuid.UUID `gorm:"type:uuid;column:unmatched_by" json:"unmatched_by,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Match) TableName() string { return "matches" }

// CanonicalPair returns (lo, hi) so callers always build the same ordered
// pair regardless of which user initiated the like (spec §3 Match).
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() <= b.String() {
		return a, b
	}
	return b, a
}

// OtherUser returns the counterpart of userID in the pair, or uuid.Nil if
// userID is neither side.
func (m *Match) OtherUser(userID uuid.UUID) uuid.UUID {
	switch userID {
	case m.UserAID:
		return m.UserBID
	case m.UserBID:
		return m.UserAID
	default:
		return uuid.Nil
	}
}

// IsBothLiked reports whether both sides have recorded a like timestamp.
func (m *Match) IsBothLiked() bool {
	return m != nil && m.LikedAtA != nil && m.LikedAtB != nil
}
