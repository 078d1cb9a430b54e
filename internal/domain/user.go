package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubscriptionTier is one of the billing tiers DFRE's soft-scoring stage
// rewards (spec §4.4 stage 3: subscription boost).
type SubscriptionTier string

const (
	SubscriptionFree    SubscriptionTier = "free"
	SubscriptionPlus    SubscriptionTier = "plus"
	SubscriptionPremium SubscriptionTier = "premium"
)

// User is owned by the (external) auth flow; the core only reads identity,
// geo, activity, and subscription fields and soft-deletes on account closure.
type User struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email       string           `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Lat         *float64         `gorm:"column:lat" json:"lat,omitempty"`
	Lng         *float64         `gorm:"column:lng" json:"lng,omitempty"`
	City        string           `gorm:"column:city" json:"city,omitempty"`
	Country     string           `gorm:"column:country" json:"country,omitempty"`
	Subscription SubscriptionTier `gorm:"column:subscription;not null;default:free" json:"subscription"`
	LastActiveAt time.Time       `gorm:"column:last_active_at;not null;default:now();index" json:"last_active_at"`
	OnboardingComplete bool      `gorm:"column:onboarding_complete;not null;default:false" json:"onboarding_complete"`
	VoiceURL    string           `gorm:"column:voice_url" json:"voice_url,omitempty"`
	Bio         string           `gorm:"column:bio" json:"bio,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

// HasVoiceNote reports whether the user has uploaded a voice note at all,
// independent of whether it has been analyzed yet (spec §4.1 voice signals).
func (u *User) HasVoiceNote() bool {
	return u != nil && u.VoiceURL != ""
}

// DaysSinceActive is used by ERS's recency-decay modifier (spec §4.3).
func (u *User) DaysSinceActive(now time.Time) float64 {
	if u == nil {
		return 9999
	}
	return now.Sub(u.LastActiveAt).Hours() / 24
}
