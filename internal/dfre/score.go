package dfre

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resonate/resonate-backend/internal/domain"
)

const (
	weightERS          = 0.40
	weightFreshness    = 0.15
	weightMutual       = 0.15 // reserved; mutual-interest signal is always 0 (spec §4.4 stage 3)
	weightGhostPenalty = 0.15
	weightSubBoost     = 0.15

	ghostPenaltyCap   = 0.5
	ghostPenaltyScale = 0.7

	subBoostPremium = 0.10
	subBoostPlus    = 0.05

	// ersFanOutLimit bounds the implementation-defined concurrency of the
	// per-pair ERS calls (spec §4.4 stage 3, §5).
	ersFanOutLimit = 16
)

// softScore batch-loads candidate profiles and user rows, then computes each
// candidate's freshness, ghost penalty, subscription boost and ERS
// contribution, combining them into the final sort key (spec §4.4 stage 3).
// Results are sorted descending by FinalScore.
func (p *Pipeline) softScore(ctx context.Context, viewerID uuid.UUID, candidates []Candidate) ([]Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.UserID
	}

	users, err := p.deps.Users.GetByIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	userByID := make(map[uuid.UUID]*domain.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	profiles, err := p.deps.Profiles.GetByUserIDs(ctx, nil, ids)
	if err != nil {
		return nil, err
	}
	profileByID := make(map[uuid.UUID]*domain.ResonanceProfile, len(profiles))
	for _, pr := range profiles {
		profileByID[pr.UserID] = pr
	}

	ghostRates, err := p.deps.Matches.GhostRatesByUser(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enriched := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		u, ok := userByID[c.UserID]
		if !ok {
			continue
		}
		c.User = u
		c.Profile = profileByID[c.UserID]
		c.Freshness = freshness(u.LastActiveAt, now)
		c.GhostPenalty = ghostPenalty(ghostRates[c.UserID])
		c.SubBoost = subscriptionBoost(u.Subscription)
		enriched = append(enriched, c)
	}

	if err := p.scoreERSFanOut(ctx, viewerID, enriched); err != nil {
		return nil, err
	}

	for i := range enriched {
		c := &enriched[i]
		c.FinalScore = c.ERSNormalized*weightERS +
			c.Freshness*weightFreshness +
			0*weightMutual +
			(1-c.GhostPenalty)*weightGhostPenalty +
			(1+c.SubBoost)*weightSubBoost
	}

	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].FinalScore > enriched[j].FinalScore
	})

	return enriched, nil
}

// scoreERSFanOut computes the ERS component for every candidate, bounded to
// ersFanOutLimit concurrent calls (spec §4.4 stage 3 "MAY be fanned out
// concurrently (implementation-defined, bounded)").
func (p *Pipeline) scoreERSFanOut(ctx context.Context, viewerID uuid.UUID, candidates []Candidate) error {
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, ersFanOutLimit)

	for i := range candidates {
		i := i
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			vectorSim := candidates[i].VectorScore
			result, err := p.deps.ERS.Score(gctx, viewerID, candidates[i].UserID, &vectorSim)
			if err != nil {
				return err
			}
			candidates[i].ERSNormalized = float64(result.TotalScore) / 100.0
			candidates[i].ERSResult = result
			return nil
		})
	}

	return g.Wait()
}

// freshness rewards recent activity on a step schedule with a linear floor
// beyond 72h (spec §4.4 stage 3).
func freshness(lastActive, now time.Time) float64 {
	hours := now.Sub(lastActive).Hours()
	switch {
	case hours <= 1:
		return 1.0
	case hours <= 24:
		return 0.9
	case hours <= 72:
		return 0.7
	default:
		v := 0.7 - (hours-72)/168
		if v < 0.3 {
			return 0.3
		}
		return v
	}
}

// ghostPenalty scales the candidate's ghost rate, capped at 0.5 (spec §4.4
// stage 3).
func ghostPenalty(ghostRate float64) float64 {
	v := ghostRate * ghostPenaltyScale
	if v > ghostPenaltyCap {
		return ghostPenaltyCap
	}
	return v
}

func subscriptionBoost(tier domain.SubscriptionTier) float64 {
	switch tier {
	case domain.SubscriptionPremium:
		return subBoostPremium
	case domain.SubscriptionPlus:
		return subBoostPlus
	default:
		return 0
	}
}
