package chm

import (
	"testing"

	"github.com/resonate/resonate-backend/internal/domain"
)

// TestNextState_DormantRegardlessOfSignals covers spec §8's monotonicity
// invariant: three or more days of silence always yields dormant, no matter
// how positive the five signals are.
func TestNextState_DormantRegardlessOfSignals(t *testing.T) {
	glowing := Signals{LatencyTrend: 1, LengthTrend: 1, Sentiment: 1, Initiative: 1, TopicDiversity: 1}
	for _, prev := range []domain.ConversationHealthState{
		domain.HealthWarming, domain.HealthActive, domain.HealthCooling, domain.HealthDormant, domain.HealthRevived,
	} {
		if got := NextState(prev, 3.0, glowing); got != domain.HealthDormant {
			t.Fatalf("NextState(prev=%v, days=3.0, glowing signals) = %v, want dormant", prev, got)
		}
		if got := NextState(prev, 10.0, glowing); got != domain.HealthDormant {
			t.Fatalf("NextState(prev=%v, days=10, glowing signals) = %v, want dormant", prev, got)
		}
	}
}

func TestNextState_RevivedAfterDormantSilenceBreak(t *testing.T) {
	s := Signals{}
	got := NextState(domain.HealthDormant, 0.5, s)
	if got != domain.HealthRevived {
		t.Fatalf("NextState(dormant, days=0.5) = %v, want revived", got)
	}
}

func TestNextState_StaysDormantUntilSilenceTrulyBreaks(t *testing.T) {
	// Neutral signals (no negative votes) so the outcome isolates the
	// dormant/revived silence-window logic rather than the vote tally.
	s := Signals{Initiative: 0.5, TopicDiversity: 0.5}
	got := NextState(domain.HealthDormant, 1.5, s)
	if got != domain.HealthDormant {
		t.Fatalf("NextState(dormant, days=1.5) = %v, want dormant (below dormant threshold but not revived)", got)
	}
}

func TestNextState_CoolingOnTwoNegativeSignals(t *testing.T) {
	s := Signals{LatencyTrend: -0.5, LengthTrend: -0.5, Sentiment: 0, Initiative: 0.4, TopicDiversity: 0.4}
	got := NextState(domain.HealthActive, 1.0, s)
	if got != domain.HealthCooling {
		t.Fatalf("NextState with 2 negative signals = %v, want cooling", got)
	}
}

func TestNextState_ActiveOnThreePositiveSignals(t *testing.T) {
	s := Signals{LatencyTrend: 0.5, LengthTrend: 0.2, Sentiment: 0.3, Initiative: 0.3, TopicDiversity: 0.2}
	got := NextState(domain.HealthCooling, 1.0, s)
	if got != domain.HealthActive {
		t.Fatalf("NextState with 3 positive signals = %v, want active", got)
	}
}

func TestNextState_WarmingPromotesOnTwoPositiveSignals(t *testing.T) {
	// Two positive signals aren't enough for a steady-state conversation to
	// flip to active (needs 3), but a warming conversation graduates with
	// just 2 (spec §4.5 warming->active fast path). Initiative and
	// TopicDiversity are pinned at their negative-vote thresholds so they
	// cast neither a negative nor a positive vote.
	s := Signals{LatencyTrend: 0.5, LengthTrend: 0.1, Sentiment: 0, Initiative: 0.3, TopicDiversity: 0.3}
	got := NextState(domain.HealthWarming, 1.0, s)
	if got != domain.HealthActive {
		t.Fatalf("NextState(warming, 2 positive signals) = %v, want active", got)
	}
}

func TestNextState_WarmingHoldsWithFewerThanTwoPositiveSignals(t *testing.T) {
	s := Signals{Initiative: 0.3, TopicDiversity: 0.3}
	got := NextState(domain.HealthWarming, 1.0, s)
	if got != domain.HealthWarming {
		t.Fatalf("NextState(warming, no positive signals) = %v, want warming", got)
	}
}

func TestNextState_SteadyStateHoldsWhenNeitherThresholdCrossed(t *testing.T) {
	s := Signals{LatencyTrend: 0.1, LengthTrend: 0, Sentiment: 0, Initiative: 0.3, TopicDiversity: 0.3}
	got := NextState(domain.HealthActive, 1.0, s)
	if got != domain.HealthActive {
		t.Fatalf("NextState(active, ambiguous signals) = %v, want active to persist", got)
	}
}

func TestOverallHealth_Bounds(t *testing.T) {
	best := Signals{LatencyTrend: 1, LengthTrend: 1, Sentiment: 1, Initiative: 1, TopicDiversity: 1}
	if v := best.OverallHealth(); v != 100 {
		t.Fatalf("OverallHealth(best) = %d, want 100", v)
	}
	worst := Signals{LatencyTrend: -1, LengthTrend: -1, Sentiment: -1, Initiative: 0, TopicDiversity: 0}
	if v := worst.OverallHealth(); v != 0 {
		t.Fatalf("OverallHealth(worst) = %d, want 0", v)
	}
}
