// Package ers implements the Emotional Resonance Score engine: a bounded
// pairwise compatibility score with a component breakdown and a
// visualization waveform.
package ers

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

const (
	weightVector    = 30.0
	weightChrono    = 15.0
	weightStyle     = 20.0
	weightDepth     = 15.0
	weightArchetype = 20.0
)

// Breakdown is the per-component contribution to the base score, each
// already weighted (spec §4.3).
type Breakdown struct {
	VectorSimilarity         float64
	ChronobiologicalOverlap  float64
	CommunicationCompatibility float64
	DepthDifferential        float64
	ArchetypeComplementarity float64
}

type Result struct {
	UserAID      uuid.UUID
	UserBID      uuid.UUID
	TotalScore   int
	Breakdown    Breakdown
	Waveform     *Waveform
}

type Engine struct {
	users    postgres.UserRepo
	profiles postgres.ProfileRepo
	cache    cache.Cache
}

func NewEngine(users postgres.UserRepo, profiles postgres.ProfileRepo, c cache.Cache) *Engine {
	return &Engine{users: users, profiles: profiles, cache: c}
}

func cacheKey(a, b uuid.UUID) string {
	lo, hi := domain.CanonicalPair(a, b)
	return "ers:" + lo.String() + ":" + hi.String() + ":score"
}

const scoreTTL = time.Hour

// Score computes the ERS for the pair (userA, userB), optionally overriding
// vector similarity with a value already produced by ANN retrieval (spec
// §4.3). Results are cached under the sorted pair for 1h.
func (e *Engine) Score(ctx context.Context, userAID, userBID uuid.UUID, vectorSimOverride *float64) (*Result, error) {
	const op = "ers.Score"

	var cached Result
	if hit, _ := e.cache.Get(ctx, cacheKey(userAID, userBID), &cached); hit {
		return &cached, nil
	}

	var userA, userB *domain.User
	var profileA, profileB *domain.ResonanceProfile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		userA, err = e.users.GetByID(gctx, nil, userAID)
		return err
	})
	g.Go(func() error {
		var err error
		userB, err = e.users.GetByID(gctx, nil, userBID)
		return err
	})
	g.Go(func() error {
		var err error
		profileA, err = e.profiles.GetByUserID(gctx, nil, userAID)
		return err
	})
	g.Go(func() error {
		var err error
		profileB, err = e.profiles.GetByUserID(gctx, nil, userBID)
		return err
	})
	if err := g.Wait(); err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return nil, err
		}
		return nil, apierr.Classify(op, err)
	}

	vectorSim := 0.5
	if vectorSimOverride != nil {
		vectorSim = *vectorSimOverride
	}

	chrono := chronobiologicalOverlap(profileA.HourlyArray(), profileB.HourlyArray())
	comm := styleCompatibility(profileA.Style, profileB.Style)
	depth := depthDifferential(profileA.DepthScore, profileB.DepthScore)
	arch := archetypeAffinity(profileA.Archetype, profileB.Archetype)

	breakdown := Breakdown{
		VectorSimilarity:           vectorSim * weightVector,
		ChronobiologicalOverlap:    chrono * weightChrono,
		CommunicationCompatibility: comm * weightStyle,
		DepthDifferential:          depth * weightDepth,
		ArchetypeComplementarity:   arch * weightArchetype,
	}

	base := breakdown.VectorSimilarity + breakdown.ChronobiologicalOverlap +
		breakdown.CommunicationCompatibility + breakdown.DepthDifferential +
		breakdown.ArchetypeComplementarity

	geo := geoModifier(userA.Lat, userA.Lng, userB.Lat, userB.Lng)
	recency := recencyModifier(userA.DaysSinceActive(time.Now()), userB.DaysSinceActive(time.Now()))
	completeness := 1.0
	if profileA.Archetype == nil || profileB.Archetype == nil {
		completeness = 0.5
	}
	mutual := 1.0

	total := clamp(base*geo*recency*completeness*mutual, 0, 100)

	waveform := BuildWaveform(userAID, userBID, profileA, profileB)

	result := &Result{
		UserAID:    userAID,
		UserBID:    userBID,
		TotalScore: int(math.Round(total)),
		Breakdown:  breakdown,
		Waveform:   waveform,
	}

	_ = e.cache.Set(ctx, cacheKey(userAID, userBID), result, scoreTTL)

	return result, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chronobiologicalOverlap is per-hour min summed over per-hour max summed;
// 0.5 if either array is entirely empty of data (spec §4.3, §8).
func chronobiologicalOverlap(a, b [24]float64) float64 {
	aEmpty, bEmpty := true, true
	for _, v := range a {
		if v != 0 {
			aEmpty = false
			break
		}
	}
	for _, v := range b {
		if v != 0 {
			bEmpty = false
			break
		}
	}
	if aEmpty || bEmpty {
		return 0.5
	}

	var minSum, maxSum float64
	for i := 0; i < 24; i++ {
		minSum += math.Min(a[i], b[i])
		maxSum += math.Max(a[i], b[i])
	}
	if maxSum == 0 {
		return 0
	}
	return minSum / maxSum
}

// depthDifferential is max(0, 1 - 2*|depthA-depthB|) (spec §4.3, §8).
func depthDifferential(a, b float64) float64 {
	return math.Max(0, 1-2*math.Abs(a-b))
}

// geoModifier applies the Haversine-distance-based multiplier (spec §4.3).
func geoModifier(latA, lngA, latB, lngB *float64) float64 {
	if latA == nil || lngA == nil || latB == nil || lngB == nil {
		return 1.0
	}
	d := haversineKM(*latA, *lngA, *latB, *lngB)
	switch {
	case d <= 50:
		return 1.0
	case d <= 200:
		return 0.95 - (d-50)*0.0005
	default:
		v := 0.95 - (d-50)*0.0005
		return math.Max(0.7, v)
	}
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKM = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

// recencyModifier applies the max-days-since-active decay (spec §4.3).
func recencyModifier(daysA, daysB float64) float64 {
	m := math.Max(daysA, daysB)
	switch {
	case m <= 3:
		return 1.0
	case m <= 7:
		return 1.0 - (m-3)*0.05
	default:
		v := 0.8 - (m-7)*0.03
		return math.Max(0.6, v)
	}
}
