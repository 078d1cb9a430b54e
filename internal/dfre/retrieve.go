package dfre

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/store/vectorstore"
)

// candidateTopK and dbScanLimit bound both the ANN query and its database
// fallback to the same 500-candidate ceiling (spec §4.4 stage 1).
const (
	candidateTopK      = 500
	dbScanLimit        = 500
	dbScanActiveWindow = 7 * 24 * time.Hour
)

// retrieved is the stage-1 output: the viewer's own profile plus a slice of
// raw candidates carrying only a user id and a vector score.
type retrieved struct {
	viewerProfile *domain.ResonanceProfile
	candidates    []Candidate
}

// retrieve fetches the viewer's profile and queries the ANN index for
// nearest candidates, using the viewer's own stored vector as the query
// (spec §9 "vector retrieval self-query": fetch the real vector rather than
// querying with zeros). On ANN failure it falls back to a database scan of
// recently active, onboarded, non-deleted users (spec §4.4 stage 1).
func (p *Pipeline) retrieve(ctx context.Context, viewerID uuid.UUID) (*retrieved, error) {
	profile, err := p.deps.Profiles.GetByUserID(ctx, nil, viewerID)
	if err != nil {
		if apierr.Is(err, apierr.KindNotFound) {
			return &retrieved{}, nil
		}
		return nil, err
	}

	candidates, err := p.queryANN(ctx, viewerID)
	if err != nil {
		p.deps.Log.Warn("dfre: ANN query failed, falling back to database scan", "viewer_id", viewerID, "error", err)
		candidates, err = p.scanDatabase(ctx, viewerID)
		if err != nil {
			return nil, err
		}
	}

	return &retrieved{viewerProfile: profile, candidates: candidates}, nil
}

func (p *Pipeline) queryANN(ctx context.Context, viewerID uuid.UUID) ([]Candidate, error) {
	vector, ok, err := p.deps.Vec.FetchVector(ctx, vectorstore.ProfileNamespace, viewerID.String())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierr.NotFound("dfre.queryANN", "viewer has no stored vector")
	}

	matches, err := p.deps.Vec.QueryMatches(ctx, vectorstore.ProfileNamespace, vector, candidateTopK, vectorstore.CandidateFilter{
		ExcludeUserID: viewerID.String(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		id, parseErr := uuid.Parse(m.ID)
		if parseErr != nil {
			continue
		}
		out = append(out, Candidate{UserID: id, VectorScore: m.Score})
	}
	return out, nil
}

func (p *Pipeline) scanDatabase(ctx context.Context, viewerID uuid.UUID) ([]Candidate, error) {
	users, err := p.deps.Users.ListActiveOnboarded(ctx, nil, time.Now().Add(-dbScanActiveWindow), viewerID, dbScanLimit)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(users))
	for _, u := range users {
		out = append(out, Candidate{UserID: u.ID, VectorScore: 0.5})
	}
	return out, nil
}
