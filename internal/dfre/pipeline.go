package dfre

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/ers"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/store/postgres"
	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
	"github.com/resonate/resonate-backend/internal/store/vectorstore"
)

// Deps are the Pipeline's external collaborators, all passed in explicitly
// rather than held as process-wide singletons (spec §9 design notes).
type Deps struct {
	Log *logger.Logger

	Users        postgres.UserRepo
	Profiles     postgres.ProfileRepo
	Matches      postgres.MatchRepo
	BlockReports postgres.BlockReportRepo

	Vec   vectorstore.Store
	Cache cache.Cache
	ERS   *ers.Engine
}

type Pipeline struct {
	deps Deps
}

func NewPipeline(deps Deps) *Pipeline {
	return &Pipeline{deps: deps}
}

// Discover runs the full five-stage pipeline for one viewer (spec §4.4):
// candidate retrieval, safety filtering, soft scoring, diversity injection,
// and paginated caching. An empty response (no error) is returned when the
// viewer has no resonance profile yet.
func (p *Pipeline) Discover(ctx context.Context, viewerID uuid.UUID, cursor string, limit int) (*Response, error) {
	retr, err := p.retrieve(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if retr.viewerProfile == nil {
		return &Response{Profiles: nil, NextCursor: nil, Total: 0, Debug: DebugSummary{}}, nil
	}

	retrievedCount := len(retr.candidates)

	safe, err := p.safetyFilter(ctx, viewerID, retr.candidates)
	if err != nil {
		return nil, err
	}
	afterSafetyCount := len(safe)

	scored, err := p.softScore(ctx, viewerID, safe)
	if err != nil {
		return nil, err
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 {
		effectiveLimit = DefaultPageSize
	}

	pageIndex := 0
	if cursor != "" {
		if n, err := strconv.Atoi(cursor); err == nil && n >= 0 {
			pageIndex = n
		}
	}
	offset := pageIndex * effectiveLimit

	ranked := injectDiversity(scored, offset, effectiveLimit)

	histogram := archetypeHistogram(ranked)
	debug := DebugSummary{
		Retrieved:          retrievedCount,
		AfterSafety:        afterSafetyCount,
		ArchetypeHistogram: histogram,
	}

	return p.paginateAndCache(ctx, viewerID, ranked, cursor, limit, debug)
}

func archetypeHistogram(candidates []Candidate) map[domain.Archetype]int {
	out := map[domain.Archetype]int{}
	for _, c := range candidates {
		out[archetypeOf(c)]++
	}
	return out
}
