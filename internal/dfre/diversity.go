package dfre

import (
	"math"
	"sort"

	"github.com/resonate/resonate-backend/internal/domain"
)

// diversityLookahead is how far past the page size the injection stage looks
// for substitute candidates of an under-represented archetype (spec §4.4
// stage 4).
const diversityLookahead = 10

// diversityBonusValue is the marker applied to an injected entry (spec §4.4
// stage 4); it does not alter FinalScore, only flags the entry for the
// feed response.
const diversityBonusValue = 0.1

// injectDiversity operates on the window of limit+10 ranked candidates
// starting at offset (the page currently being materialized) and, if one
// archetype dominates the page beyond the 20%-non-dominant floor, swaps the
// lowest-scoring dominant-archetype entries with the highest-scoring
// different-archetype entries drawn from the lookahead tail (spec §4.4
// stage 4, §8 "Diversity invariant"). Mutates ranked in place and returns it.
func injectDiversity(ranked []Candidate, offset, limit int) []Candidate {
	if limit <= 0 || offset >= len(ranked) {
		return ranked
	}

	windowEnd := offset + limit + diversityLookahead
	if windowEnd > len(ranked) {
		windowEnd = len(ranked)
	}
	window := ranked[offset:windowEnd]

	pageLen := limit
	if pageLen > len(window) {
		pageLen = len(window)
	}
	page := window[:pageLen]
	tail := window[pageLen:]

	counts := map[domain.Archetype]int{}
	for _, c := range page {
		counts[archetypeOf(c)]++
	}

	dominant := domain.Archetype("")
	dominantCount := -1
	for _, a := range domain.Archetypes {
		if counts[a] > dominantCount {
			dominantCount = counts[a]
			dominant = a
		}
	}

	nonDominantTarget := int(math.Ceil(0.2 * float64(limit)))
	nonDominantCount := pageLen - dominantCount
	shortfall := nonDominantTarget - nonDominantCount
	if shortfall <= 0 || len(tail) == 0 {
		return ranked
	}

	dominantIdx := make([]int, 0, pageLen)
	for i, c := range page {
		if archetypeOf(c) == dominant {
			dominantIdx = append(dominantIdx, i)
		}
	}
	sort.SliceStable(dominantIdx, func(i, j int) bool {
		return page[dominantIdx[i]].FinalScore < page[dominantIdx[j]].FinalScore
	})

	replacementIdx := make([]int, 0, len(tail))
	for i, c := range tail {
		if archetypeOf(c) != dominant {
			replacementIdx = append(replacementIdx, i)
		}
	}
	sort.SliceStable(replacementIdx, func(i, j int) bool {
		return tail[replacementIdx[i]].FinalScore > tail[replacementIdx[j]].FinalScore
	})

	swaps := shortfall
	if swaps > len(dominantIdx) {
		swaps = len(dominantIdx)
	}
	if swaps > len(replacementIdx) {
		swaps = len(replacementIdx)
	}

	for i := 0; i < swaps; i++ {
		pageIdx := dominantIdx[i]
		tailIdx := replacementIdx[i]
		page[pageIdx], tail[tailIdx] = tail[tailIdx], page[pageIdx]
		page[pageIdx].DiversityBonus = diversityBonusValue
	}

	sort.SliceStable(page, func(i, j int) bool { return page[i].FinalScore > page[j].FinalScore })

	return ranked
}

func archetypeOf(c Candidate) domain.Archetype {
	if c.Profile == nil || c.Profile.Archetype == nil {
		return domain.ArchetypeWave
	}
	return *c.Profile.Archetype
}
