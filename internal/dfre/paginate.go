package dfre

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
)

// DefaultPageSize is the page length used when the caller omits limit (spec
// §4.4 stage 5, §6 feed.discover).
const DefaultPageSize = 30

const feedCacheTTL = 3 * time.Minute

// DebugSummary accompanies every response for observability (spec §4.4
// stage 5).
type DebugSummary struct {
	Retrieved          int                       `json:"retrieved"`
	AfterSafety        int                       `json:"after_safety"`
	ArchetypeHistogram map[domain.Archetype]int `json:"archetype_histogram"`
}

// Response is the outward shape of feed.discover (spec §6).
type Response struct {
	Profiles   []Profile     `json:"profiles"`
	NextCursor *string       `json:"cursor"`
	Total      int           `json:"total"`
	Debug      DebugSummary  `json:"debug"`
}

// paginateAndCache slices the ranked list at the requested cursor, caches
// both the full ranked list and the emitted page, and renders the public
// response shape (spec §4.4 stage 5).
func (p *Pipeline) paginateAndCache(ctx context.Context, viewerID uuid.UUID, ranked []Candidate, cursor string, limit int, debug DebugSummary) (*Response, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	pageIndex := 0
	if cursor != "" {
		if n, err := strconv.Atoi(cursor); err == nil && n >= 0 {
			pageIndex = n
		}
	}

	rankedKey := cache.Key("user", viewerID.String(), "feed_ranked")
	if err := p.deps.Cache.Set(ctx, rankedKey, ranked, feedCacheTTL); err != nil {
		p.deps.Log.Warn("dfre: failed to cache ranked feed", "viewer_id", viewerID, "error", err)
	}

	start := pageIndex * limit
	end := start + limit
	if start > len(ranked) {
		start = len(ranked)
	}
	if end > len(ranked) {
		end = len(ranked)
	}
	page := ranked[start:end]

	var nextCursor *string
	if end < len(ranked) {
		next := strconv.Itoa(pageIndex + 1)
		nextCursor = &next
	}

	pageKey := cache.Key("user", viewerID.String(), fmt.Sprintf("feed_page_%d", pageIndex))
	if err := p.deps.Cache.Set(ctx, pageKey, page, feedCacheTTL); err != nil {
		p.deps.Log.Warn("dfre: failed to cache feed page", "viewer_id", viewerID, "error", err)
	}

	profiles := make([]Profile, 0, len(page))
	for _, c := range page {
		fp := Profile{
			UserID:     c.UserID,
			FinalScore: c.FinalScore,
		}
		if c.Profile != nil {
			fp.Archetype = c.Profile.Archetype
		}
		if c.ERSResult != nil {
			fp.WaveformData = c.ERSResult.Waveform
			score := c.ERSResult.TotalScore
			fp.ResonanceScore = &score
		}
		profiles = append(profiles, fp)
	}

	return &Response{
		Profiles:   profiles,
		NextCursor: nextCursor,
		Total:      len(ranked),
		Debug:      debug,
	}, nil
}
