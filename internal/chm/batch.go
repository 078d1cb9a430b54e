// Package chm implements the Conversation Health Monitor: five parallel
// signal extractors over a conversation's recent messages, a state machine,
// a nudge generator for the quieter party of a cooling conversation, and the
// batch driver that sweeps every recently active conversation (spec §4.5).
package chm

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/resonate/resonate-backend/internal/clients/airouter"
	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

// recentMessageFetch is the widest window any single signal needs
// (initiative ratio reads up to 100); every signal then narrows it further
// with tail() (spec §4.5 signals 1-5).
const recentMessageFetch = 100

// batchWindow is how far back the batch driver looks for conversations to
// evaluate (spec §4.5 CHM batch driver).
const batchWindow = 7 * 24 * time.Hour

type Deps struct {
	Log *logger.Logger

	Conversations postgres.ConversationRepo
	Messages      postgres.MessageRepo
	Matches       postgres.MatchRepo
	Profiles      postgres.ProfileRepo

	Completer airouter.Completer
}

type Engine struct {
	deps Deps
}

func NewEngine(deps Deps) *Engine {
	return &Engine{deps: deps}
}

// AnalysisResult is the outward shape of a single-conversation pass.
type AnalysisResult struct {
	ConversationID uuid.UUID
	Signals        Signals
	OverallHealth  int
	PrevState      domain.ConversationHealthState
	NewState       domain.ConversationHealthState
	Nudge          *string
}

// Analyze runs the five signal extractors in parallel, advances the state
// machine, and — on a transition into cooling — attempts to generate and
// persist a nudge (spec §4.5, §5). Errors loading the conversation or its
// messages, and errors persisting the update, are returned; failures inside
// nudge generation (match and profile lookups, the completion RPC) degrade
// gracefully per spec §7.
func (e *Engine) Analyze(ctx context.Context, conversationID uuid.UUID) (*AnalysisResult, error) {
	const op = "chm.Analyze"

	conv, err := e.deps.Conversations.GetByID(ctx, nil, conversationID)
	if err != nil {
		return nil, err
	}

	recent, err := e.deps.Messages.ListRecentByConversation(ctx, nil, conversationID, recentMessageFetch)
	if err != nil {
		return nil, apierr.Classify(op, err)
	}

	signals := e.computeSignals(recent)
	daysSinceLastMessage := time.Since(conv.LastMessageAt).Hours() / 24
	prevState := conv.HealthState
	newState := NextState(prevState, daysSinceLastMessage, signals)

	result := &AnalysisResult{
		ConversationID: conversationID,
		Signals:        signals,
		OverallHealth:  signals.OverallHealth(),
		PrevState:      prevState,
		NewState:       newState,
	}

	if newState == prevState {
		return result, nil
	}

	updates := map[string]interface{}{"health_state": newState}

	if newState == domain.HealthCooling && prevState != domain.HealthCooling {
		if nudge := e.tryGenerateNudge(ctx, conv, recent); nudge != nil {
			updates["pending_nudge"] = *nudge
			updates["nudge_generated_at"] = time.Now()
			result.Nudge = nudge
		}
	}

	if err := e.deps.Conversations.UpdateFields(ctx, nil, conversationID, updates); err != nil {
		return nil, apierr.Classify(op, err)
	}

	return result, nil
}

// computeSignals runs the five extractors concurrently (spec §5); each is a
// pure function over the same recent-message slice, so no error can occur.
func (e *Engine) computeSignals(recent []*domain.Message) Signals {
	var s Signals
	var g errgroup.Group

	g.Go(func() error { s.LatencyTrend = latencyTrend(recent); return nil })
	g.Go(func() error { s.LengthTrend = lengthTrend(recent); return nil })
	g.Go(func() error { s.Sentiment = sentimentTrajectory(recent); return nil })
	g.Go(func() error { s.Initiative = initiativeRatio(recent); return nil })
	g.Go(func() error { s.TopicDiversity = topicDiversity(recent); return nil })
	_ = g.Wait()

	return s
}

// tryGenerateNudge is the non-fatal path described in spec §4.5: any
// failure along the way (missing match, missing profile, completion RPC
// error) simply results in a nil nudge, and the caller still persists the
// state transition.
func (e *Engine) tryGenerateNudge(ctx context.Context, conv *domain.Conversation, recent []*domain.Message) *string {
	match, err := e.deps.Matches.GetByID(ctx, nil, conv.MatchID)
	if err != nil || match == nil {
		e.deps.Log.Warn("chm: nudge skipped, match lookup failed", "conversation_id", conv.ID, "error", err)
		return nil
	}

	quietID := QuietParty(recent, match.UserAID, match.UserBID)
	otherID := match.OtherUser(quietID)

	quietProfile, err := e.deps.Profiles.GetByUserID(ctx, nil, quietID)
	if err != nil {
		e.deps.Log.Warn("chm: nudge skipped, quiet party profile missing", "conversation_id", conv.ID, "user_id", quietID, "error", err)
		return nil
	}
	otherProfile, err := e.deps.Profiles.GetByUserID(ctx, nil, otherID)
	if err != nil {
		otherProfile = nil
	}

	archetype := domain.ArchetypeWave
	if quietProfile.Archetype != nil {
		archetype = *quietProfile.Archetype
	}
	style := domain.StyleExpressive
	if quietProfile.Style != nil {
		style = *quietProfile.Style
	}
	var otherTags []string
	if otherProfile != nil {
		otherTags = otherProfile.DominantEmotionTags
	}

	nudge, err := GenerateNudge(ctx, e.deps.Completer, quietProfile.DominantEmotionTags, otherTags, archetype, style, recent)
	if err != nil || nudge == "" {
		e.deps.Log.Warn("chm: nudge generation failed", "conversation_id", conv.ID, "error", err)
		return nil
	}
	return &nudge
}

// BatchResult aggregates one batch-driver pass by outcome bucket (spec §7
// "total, healthy, cooling, dormant, nudgesGenerated").
type BatchResult struct {
	Total           int
	Healthy         int
	Cooling         int
	Dormant         int
	NudgesGenerated int
	Failed          int
}

// RunBatch enumerates every conversation whose last message fell within the
// last 7 days and processes each serially, swallowing and counting
// individual failures (spec §4.5 CHM batch driver, §5 "processes
// conversations serially to bound cost").
func (e *Engine) RunBatch(ctx context.Context) (*BatchResult, error) {
	conversations, err := e.deps.Conversations.ListActiveSince(ctx, nil, time.Now().Add(-batchWindow))
	if err != nil {
		return nil, apierr.Classify("chm.RunBatch", err)
	}

	result := &BatchResult{}
	for _, conv := range conversations {
		result.Total++
		analysis, err := e.Analyze(ctx, conv.ID)
		if err != nil {
			e.deps.Log.Error("chm: batch analysis failed, skipping conversation", "conversation_id", conv.ID, "error", err)
			result.Failed++
			continue
		}
		switch analysis.NewState {
		case domain.HealthCooling:
			result.Cooling++
		case domain.HealthDormant:
			result.Dormant++
		default:
			result.Healthy++
		}
		if analysis.Nudge != nil {
			result.NudgesGenerated++
		}
	}

	return result, nil
}
