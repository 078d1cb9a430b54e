// Package dfre implements the Dynamic Feed Ranking Engine: a five-stage
// pipeline (retrieval, safety filtering, soft scoring, diversity injection,
// paginated caching) that materializes one viewer's ordered discovery feed
// (spec §4.4).
package dfre

import (
	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/ers"
)

// Candidate carries a discovery candidate through every stage; fields are
// filled in progressively rather than recomputed per stage.
type Candidate struct {
	UserID uuid.UUID

	User    *domain.User
	Profile *domain.ResonanceProfile

	VectorScore float64
	ERSResult   *ers.Result

	Freshness      float64
	GhostPenalty   float64
	SubBoost       float64
	ERSNormalized  float64
	DiversityBonus float64

	FinalScore float64
}

// Profile is the outward-facing shape of a ranked candidate (spec §6
// feed.discover response).
type Profile struct {
	UserID         uuid.UUID         `json:"user_id"`
	FinalScore     float64           `json:"final_score"`
	Archetype      *domain.Archetype `json:"archetype,omitempty"`
	WaveformData   *ers.Waveform     `json:"waveform_data,omitempty"`
	ResonanceScore *int              `json:"resonance_score,omitempty"`
}
