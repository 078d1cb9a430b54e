package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Archetype string

const (
	ArchetypeSpark  Archetype = "spark"
	ArchetypeAnchor Archetype = "anchor"
	ArchetypeWave   Archetype = "wave"
	ArchetypeEmber  Archetype = "ember"
	ArchetypeStorm  Archetype = "storm"
)

// Archetypes is the iteration order used everywhere a tie must be broken
// deterministically (spec §4.2 classification, §8 scenario 1).
var Archetypes = []Archetype{ArchetypeSpark, ArchetypeAnchor, ArchetypeWave, ArchetypeEmber, ArchetypeStorm}

// ArchetypeColor is the fixed visualization palette (spec GLOSSARY).
var ArchetypeColor = map[Archetype]string{
	ArchetypeSpark:  "#FFD700",
	ArchetypeAnchor: "#4A90D9",
	ArchetypeWave:   "#4AF7C4",
	ArchetypeEmber:  "#FF6B35",
	ArchetypeStorm:  "#C77DFF",
}

type Style string

const (
	StyleExpressive Style = "expressive"
	StylePrecise    Style = "precise"
	StylePoetic     Style = "poetic"
	StyleMinimal    Style = "minimal"
	StyleWitty      Style = "witty"
)

// Styles is the fixed enumeration order for the 5x5 matrices (spec §4.3).
var Styles = []Style{StyleExpressive, StylePrecise, StylePoetic, StyleMinimal, StyleWitty}

// ResonanceProfile is the RPB's output row: one per onboarded user, rebuilt
// wholesale on every pass (spec §3 Resonance Profile).
type ResonanceProfile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`

	Archetype *Archetype `gorm:"column:archetype" json:"archetype,omitempty"`
	Style     *Style     `gorm:"column:style" json:"style,omitempty"`

	// DominantEmotionTags is an ordered list, most-salient first.
	DominantEmotionTags datatypes.JSONSlice[string] `gorm:"column:dominant_emotion_tags;type:jsonb" json:"dominant_emotion_tags"`

	// HourlyActivity is the 24-slot normalized activity array (spec §4.1 session signals).
	HourlyActivity datatypes.JSONSlice[float64] `gorm:"column:hourly_activity;type:jsonb" json:"hourly_activity"`

	VocabularyRichness float64 `gorm:"column:vocabulary_richness" json:"vocabulary_richness"`
	HumorScore         float64 `gorm:"column:humor_score" json:"humor_score"`
	DepthScore         float64 `gorm:"column:depth_score" json:"depth_score"`

	// VectorID references the dense embedding owned by the vector store; the
	// profile row never stores the vector itself (spec §3 Resonance Profile).
	VectorID           string `gorm:"column:vector_id" json:"vector_id,omitempty"`
	EmbeddingGenerated bool   `gorm:"column:embedding_generated;not null;default:false" json:"embedding_generated"`

	CompletenessScore float64 `gorm:"column:completeness_score" json:"completeness_score"`

	RecalculatedAt time.Time `gorm:"column:recalculated_at;not null;default:now()" json:"recalculated_at"`
	ModelVersion   string    `gorm:"column:model_version;not null" json:"model_version"`
}

func (ResonanceProfile) TableName() string { return "resonance_profiles" }

// HourlyArray returns the 24-slot activity array, zero-filled if shorter.
func (p *ResonanceProfile) HourlyArray() [24]float64 {
	var out [24]float64
	if p == nil {
		return out
	}
	for i := 0; i < 24 && i < len(p.HourlyActivity); i++ {
		out[i] = p.HourlyActivity[i]
	}
	return out
}
