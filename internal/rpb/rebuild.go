package rpb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resonate/resonate-backend/internal/clients/airouter"
	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/rpb/signals"
	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
	"github.com/resonate/resonate-backend/internal/store/postgres"
	"github.com/resonate/resonate-backend/internal/store/vectorstore"
)

const ModelVersion = "rpb-v1"

// ProfileNamespace is kept as an alias for callers already referencing
// rpb.ProfileNamespace; the canonical definition lives in vectorstore since
// DFRE reads the same namespace RPB writes (spec §3, §4.4 stage 1).
const ProfileNamespace = vectorstore.ProfileNamespace

// staleThreshold is how fresh a profile must be for the daily pass to skip
// recomputing it (spec §4.2 rebuild orchestration).
const staleThreshold = 48 * time.Hour

type BuilderDeps struct {
	Log *logger.Logger

	Users    postgres.UserRepo
	Events   postgres.EventRepo
	Messages postgres.MessageRepo
	Profiles postgres.ProfileRepo

	Vec      vectorstore.Store
	Embedder airouter.Embedder
	Cache    cache.Cache
}

type Builder struct {
	deps BuilderDeps
}

func NewBuilder(deps BuilderDeps) *Builder {
	return &Builder{deps: deps}
}

type RebuildOutput struct {
	UserID             uuid.UUID
	Skipped            bool
	EmbeddingGenerated bool
	CompletenessScore  float64
}

// Rebuild runs the six aggregators in parallel, classifies sequentially,
// requests an embedding, upserts the vector and the profile row, and
// invalidates the user's cache namespace — in that order (spec §4.2, §5).
func (b *Builder) Rebuild(ctx context.Context, userID uuid.UUID) (*RebuildOutput, error) {
	const op = "rpb.Rebuild"

	user, err := b.deps.Users.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	bundles, err := b.gatherBundles(ctx, user)
	if err != nil {
		return nil, err
	}

	archetype := ClassifyArchetype(bundles)
	style := ClassifyStyle(bundles)
	tags := DominantEmotionTags(bundles)
	depth := DepthScore(bundles)
	completeness := CompletenessScore(bundles)

	hourly := [24]float64{}
	if bundles.Session != nil {
		hourly = bundles.Session.HourlyActivity
	}
	humor := 0.0
	vocab := 0.0
	if bundles.Messaging != nil {
		vocab = bundles.Messaging.VocabularyDiversity
		humor = bundles.Messaging.EmojiRate
	}

	profile := &domain.ResonanceProfile{
		UserID:              userID,
		Archetype:           &archetype,
		Style:               &style,
		DominantEmotionTags: tags,
		HourlyActivity:      hourly[:],
		VocabularyRichness:  vocab,
		HumorScore:          humor,
		DepthScore:          depth,
		CompletenessScore:   completeness,
		RecalculatedAt:      time.Now(),
		ModelVersion:        ModelVersion,
	}

	prompt := BuildEmbeddingPrompt(bundles, user.Bio)
	embeddingGenerated := false
	if result, embedErr := b.deps.Embedder.Embed(ctx, prompt); embedErr == nil {
		vectorID := userID.String()
		upsertErr := b.deps.Vec.Upsert(ctx, ProfileNamespace, []vectorstore.Vector{{
			ID:     vectorID,
			Values: result.Vector,
			Metadata: vectorstore.Metadata{
				UserID:           userID.String(),
				Archetype:        string(archetype),
				Style:            string(style),
				City:             user.City,
				SubscriptionTier: string(user.Subscription),
				LastActiveISO:    user.LastActiveAt.UTC().Format(time.RFC3339),
			},
		}})
		if upsertErr == nil {
			profile.VectorID = vectorID
			embeddingGenerated = true
		} else {
			b.deps.Log.Warn("rpb: vector upsert failed, committing partial profile", "user_id", userID, "error", upsertErr)
		}
	} else {
		b.deps.Log.Warn("rpb: embedding request failed, committing partial profile", "user_id", userID, "error", embedErr)
	}
	profile.EmbeddingGenerated = embeddingGenerated

	if _, err := b.deps.Profiles.Upsert(ctx, nil, profile); err != nil {
		return nil, apierr.Classify(op, err)
	}

	if _, err := b.deps.Cache.ScanDelete(ctx, fmt.Sprintf("resonate:user:%s:*", userID)); err != nil {
		b.deps.Log.Warn("rpb: cache invalidation failed", "user_id", userID, "error", err)
	}

	return &RebuildOutput{
		UserID:             userID,
		EmbeddingGenerated: embeddingGenerated,
		CompletenessScore:  completeness,
	}, nil
}

// RebuildIfStale skips the daily pass when the profile is fresher than 48h
// (spec §4.2 rebuild orchestration).
func (b *Builder) RebuildIfStale(ctx context.Context, userID uuid.UUID) (*RebuildOutput, error) {
	existing, err := b.deps.Profiles.GetByUserID(ctx, nil, userID)
	if err == nil && existing != nil && time.Since(existing.RecalculatedAt) < staleThreshold {
		return &RebuildOutput{UserID: userID, Skipped: true}, nil
	}
	if err != nil && !apierr.Is(err, apierr.KindNotFound) {
		return nil, err
	}
	return b.Rebuild(ctx, userID)
}

func (b *Builder) gatherBundles(ctx context.Context, user *domain.User) (Bundles, error) {
	var bundles Bundles
	now := time.Now()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := signals.Voice(gctx, b.deps.Events, user)
		if err != nil {
			return err
		}
		bundles.Voice = v
		return nil
	})
	g.Go(func() error {
		v, err := signals.Bio(gctx, b.deps.Events, user)
		if err != nil {
			return err
		}
		bundles.Bio = v
		return nil
	})
	g.Go(func() error {
		v, err := signals.Messaging(gctx, b.deps.Messages, user.ID)
		if err != nil {
			return err
		}
		bundles.Messaging = v
		return nil
	})
	g.Go(func() error {
		v, err := signals.Typing(gctx, b.deps.Events, user.ID, now)
		if err != nil {
			return err
		}
		bundles.Typing = v
		return nil
	})
	g.Go(func() error {
		v, err := signals.Session(gctx, b.deps.Events, user.ID, now)
		if err != nil {
			return err
		}
		bundles.Session = v
		return nil
	})
	g.Go(func() error {
		v, err := signals.Browsing(gctx, b.deps.Events, user.ID, now)
		if err != nil {
			return err
		}
		bundles.Browsing = v
		return nil
	})

	if err := g.Wait(); err != nil {
		return Bundles{}, err
	}
	return bundles, nil
}
