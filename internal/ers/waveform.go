package ers

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
)

const waveformBins = 64

// Waveform is the visualization payload synthesized alongside the score:
// a 64-bin frequency array per user plus a blended hex color (spec §4.3).
type Waveform struct {
	BinsA []float64
	BinsB []float64
	Color string
}

// BuildWaveform renders both sides' frequency bins from their archetype and
// depth score, plus the blended palette color (spec §4.3, GLOSSARY).
func BuildWaveform(userAID, userBID uuid.UUID, profileA, profileB *domain.ResonanceProfile) *Waveform {
	archA := domain.ArchetypeWave
	if profileA != nil && profileA.Archetype != nil {
		archA = *profileA.Archetype
	}
	archB := domain.ArchetypeWave
	if profileB != nil && profileB.Archetype != nil {
		archB = *profileB.Archetype
	}

	var depthA, depthB float64
	if profileA != nil {
		depthA = profileA.DepthScore
	}
	if profileB != nil {
		depthB = profileB.DepthScore
	}

	seed := waveformSeed(userAID, userBID)
	rng := rand.New(rand.NewSource(seed))

	binsA := make([]float64, waveformBins)
	binsB := make([]float64, waveformBins)
	for i := 0; i < waveformBins; i++ {
		phaseA := float64(i) / waveformBins * 2 * math.Pi
		phaseB := phaseA + 0.5
		binsA[i] = math.Sin(phaseA+depthA*3) * archetypeFactor(archA, i, rng)
		binsB[i] = math.Sin(phaseB+depthB*3) * archetypeFactor(archB, i, rng)
	}

	return &Waveform{
		BinsA: binsA,
		BinsB: binsB,
		Color: blendColors(domain.ArchetypeColor[archA], domain.ArchetypeColor[archB]),
	}
}

// waveformSeed resolves the open question on storm-archetype determinism
// (spec §9): the generator is seeded from the sorted pair of user ids so the
// same pair always renders the same waveform, including storm's noise term.
func waveformSeed(a, b uuid.UUID) int64 {
	lo, hi := domain.CanonicalPair(a, b)
	h := fnv.New64a()
	_, _ = h.Write([]byte(lo.String() + ":" + hi.String()))
	return int64(h.Sum64())
}

// archetypeFactor shapes each bin per archetype: spark spiky, anchor smooth,
// wave flowing, ember pulsing, storm chaotic (spec §4.3).
func archetypeFactor(a domain.Archetype, bin int, rng *rand.Rand) float64 {
	t := float64(bin) / waveformBins
	switch a {
	case domain.ArchetypeSpark:
		if bin%4 == 0 {
			return 1.4
		}
		return 0.3
	case domain.ArchetypeAnchor:
		return 0.6 + 0.1*math.Cos(2*math.Pi*t)
	case domain.ArchetypeWave:
		return 0.5 + 0.5*math.Sin(4*math.Pi*t)
	case domain.ArchetypeEmber:
		return 0.7 + 0.3*math.Abs(math.Sin(8*math.Pi*t))
	case domain.ArchetypeStorm:
		return 0.4 + rng.Float64()*0.8
	default:
		return 0.5
	}
}

func blendColors(hexA, hexB string) string {
	ra, ga, ba := hexToRGB(hexA)
	rb, gb, bb := hexToRGB(hexB)
	return rgbToHex((ra+rb)/2, (ga+gb)/2, (ba+bb)/2)
}

func hexToRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	var r, g, b int
	_, _ = fmt.Sscanf(hex[1:3], "%02x", &r)
	_, _ = fmt.Sscanf(hex[3:5], "%02x", &g)
	_, _ = fmt.Sscanf(hex[5:7], "%02x", &b)
	return r, g, b
}

func rgbToHex(r, g, b int) string {
	const hexDigits = "0123456789abcdef"
	clampByte := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	r, g, b = clampByte(r), clampByte(g), clampByte(b)
	buf := make([]byte, 7)
	buf[0] = '#'
	put := func(off, v int) {
		buf[off] = hexDigits[v>>4]
		buf[off+1] = hexDigits[v&0xf]
	}
	put(1, r)
	put(3, g)
	put(5, b)
	return string(buf)
}
