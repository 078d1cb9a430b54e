package dfre

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
)

// safetyFilter removes candidates present in the viewer's block set, passed
// set, prior-resonate set, or blocked-by set (all cached), plus anyone found
// in a direct blocks_reports read (spec §4.4 stage 2). The four cache-set
// reads run in parallel (spec §5).
func (p *Pipeline) safetyFilter(ctx context.Context, viewerID uuid.UUID, candidates []Candidate) ([]Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	excluded := make(map[uuid.UUID]struct{})

	var blocked, passed, resonated, blockedBy []string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		blocked, err = p.deps.Cache.SMembers(gctx, cache.Key("user", viewerID.String(), "blocked"))
		return err
	})
	g.Go(func() error {
		var err error
		passed, err = p.deps.Cache.SMembers(gctx, cache.Key("user", viewerID.String(), "passed"))
		return err
	})
	g.Go(func() error {
		var err error
		resonated, err = p.deps.Cache.SMembers(gctx, cache.Key("user", viewerID.String(), "resonated"))
		return err
	})
	g.Go(func() error {
		var err error
		blockedBy, err = p.deps.Cache.SMembers(gctx, cache.Key("user", viewerID.String(), "blocked_by"))
		return err
	})
	if err := g.Wait(); err != nil {
		p.deps.Log.Warn("dfre: safety cache reads failed, falling back to DB-only exclusion", "viewer_id", viewerID, "error", err)
	}
	addAll(excluded, blocked, passed, resonated, blockedBy)

	dbExcluded, err := p.deps.BlockReports.BlockedOrReportedIDs(ctx, nil, viewerID)
	if err != nil {
		return nil, err
	}
	dbBlockedBy, err := p.deps.BlockReports.BlockedByIDs(ctx, nil, viewerID)
	if err != nil {
		return nil, err
	}
	for _, id := range dbExcluded {
		excluded[id] = struct{}{}
	}
	for _, id := range dbBlockedBy {
		excluded[id] = struct{}{}
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := excluded[c.UserID]; ok {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func addAll(dst map[uuid.UUID]struct{}, lists ...[]string) {
	for _, list := range lists {
		for _, raw := range list {
			if id, err := uuid.Parse(raw); err == nil {
				dst[id] = struct{}{}
			}
		}
	}
}
