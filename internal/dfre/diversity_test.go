package dfre

import (
	"testing"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
)

func archCand(arch domain.Archetype, score float64) Candidate {
	a := arch
	return Candidate{
		UserID:     uuid.New(),
		Profile:    &domain.ResonanceProfile{Archetype: &a},
		FinalScore: score,
	}
}

// TestInjectDiversity_CapsShareOfDominantArchetype covers spec §8's
// diversity invariant: given at least 10 candidates, no more than
// ceil(0.8*limit) of the returned page may share one archetype.
func TestInjectDiversity_CapsShareOfDominantArchetype(t *testing.T) {
	limit := 10
	var ranked []Candidate
	// 10 wave candidates, scored highest to lowest, fill the page entirely.
	for i := 0; i < 10; i++ {
		ranked = append(ranked, archCand(domain.ArchetypeWave, float64(100-i)))
	}
	// A lookahead tail of non-wave candidates available for substitution.
	for i := 0; i < 5; i++ {
		ranked = append(ranked, archCand(domain.ArchetypeSpark, float64(50-i)))
	}

	out := injectDiversity(ranked, 0, limit)
	page := out[:limit]

	counts := map[domain.Archetype]int{}
	for _, c := range page {
		counts[archetypeOf(c)]++
	}

	maxAllowed := 8 // ceil(0.8*10)
	if counts[domain.ArchetypeWave] > maxAllowed {
		t.Fatalf("dominant archetype share = %d, want <= %d", counts[domain.ArchetypeWave], maxAllowed)
	}
	if counts[domain.ArchetypeSpark] == 0 {
		t.Fatalf("expected at least one substituted spark candidate, got none")
	}
}

func TestInjectDiversity_NoSwapWhenAlreadyDiverse(t *testing.T) {
	limit := 10
	var ranked []Candidate
	archs := []domain.Archetype{
		domain.ArchetypeSpark, domain.ArchetypeAnchor, domain.ArchetypeWave,
		domain.ArchetypeEmber, domain.ArchetypeStorm,
	}
	for i := 0; i < 10; i++ {
		ranked = append(ranked, archCand(archs[i%len(archs)], float64(100-i)))
	}

	out := injectDiversity(ranked, 0, limit)
	for i, c := range out[:limit] {
		if c.DiversityBonus != 0 {
			t.Fatalf("candidate %d unexpectedly marked with a diversity bonus in an already-diverse page", i)
		}
	}
}

func TestInjectDiversity_NoSwapWithoutLookaheadTail(t *testing.T) {
	// All 10 candidates share one archetype and there is no tail to draw
	// substitutes from, so the page must remain exactly as ranked.
	limit := 10
	var ranked []Candidate
	for i := 0; i < 10; i++ {
		ranked = append(ranked, archCand(domain.ArchetypeWave, float64(100-i)))
	}

	out := injectDiversity(ranked, 0, limit)
	if len(out) != limit {
		t.Fatalf("len(out) = %d, want %d", len(out), limit)
	}
	for i, c := range out {
		if archetypeOf(c) != domain.ArchetypeWave {
			t.Fatalf("candidate %d archetype = %v, want wave (no substitutes available)", i, archetypeOf(c))
		}
	}
}

func TestInjectDiversity_EmptyRankedIsNoop(t *testing.T) {
	out := injectDiversity(nil, 0, 10)
	if len(out) != 0 {
		t.Fatalf("injectDiversity(nil) = %v, want empty", out)
	}
}
