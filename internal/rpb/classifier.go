package rpb

import (
	"math"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/rpb/signals"
)

// Bundles is the record-of-optionals RPB's classifier operates on — every
// field may be nil, and every predicate below must tolerate that (spec §9
// "heterogeneous signal bundles").
type Bundles struct {
	Voice     *signals.VoiceBundle
	Bio       *signals.BioBundle
	Messaging *signals.MessagingBundle
	Typing    *signals.TypingBundle
	Session   *signals.SessionBundle
	Browsing  *signals.BrowsingBundle
}

// ClassifyArchetype accumulates an additive indicator score per archetype
// and returns the highest, breaking ties by iteration order
// spark, anchor, wave, ember, storm (spec §4.2). Default wave when every
// bundle is absent.
func ClassifyArchetype(b Bundles) domain.Archetype {
	if b.Voice == nil && b.Bio == nil && b.Messaging == nil && b.Typing == nil && b.Session == nil && b.Browsing == nil {
		return domain.ArchetypeWave
	}

	scores := map[domain.Archetype]float64{
		domain.ArchetypeSpark:  0,
		domain.ArchetypeAnchor: 0,
		domain.ArchetypeWave:   0,
		domain.ArchetypeEmber:  0,
		domain.ArchetypeStorm:  0,
	}

	if b.Voice != nil {
		if b.Voice.SpeakingPace == "fast" {
			scores[domain.ArchetypeSpark] += 0.3
		}
		if b.Voice.SpeakingPace == "slow" {
			scores[domain.ArchetypeAnchor] += 0.3
		}
		if b.Voice.SpeakingPace == "moderate" {
			scores[domain.ArchetypeWave] += 0.2
		}
		if b.Voice.Sentiment > 0.3 {
			scores[domain.ArchetypeEmber] += 0.3
		}
		if b.Voice.Sentiment < -0.2 {
			scores[domain.ArchetypeStorm] += 0.25
		}
	}

	if b.Messaging != nil {
		if b.Messaging.EmojiRate > 0.5 {
			scores[domain.ArchetypeSpark] += 0.2
		}
		if b.Messaging.QuestionRate > 0.3 {
			scores[domain.ArchetypeSpark] += 0.2
		}
		if b.Messaging.AvgCharLength > 60 {
			scores[domain.ArchetypeAnchor] += 0.1
		}
		if b.Messaging.VocabularyDiversity > 0.3 && b.Messaging.VocabularyDiversity <= 0.6 {
			scores[domain.ArchetypeWave] += 0.2
		}
		if b.Messaging.VocabularyDiversity > 0.6 {
			scores[domain.ArchetypeEmber] += 0.25
		}
		if b.Messaging.EmojiRate > 0.7 {
			scores[domain.ArchetypeStorm] += 0.2
		}
	}

	if b.Typing != nil {
		if b.Typing.MeanBurstMS < 2000 {
			scores[domain.ArchetypeSpark] += 0.15
		}
		if b.Typing.CadenceVarianceMS < 500 {
			scores[domain.ArchetypeAnchor] += 0.25
		}
		if b.Typing.CadenceVarianceMS > 1500 && b.Typing.CadenceVarianceMS <= 2000 {
			scores[domain.ArchetypeEmber] += 0.15
		}
		if b.Typing.CadenceVarianceMS > 2000 {
			scores[domain.ArchetypeStorm] += 0.3
		}
	}

	if b.Session != nil {
		if b.Session.SessionsPerDay > 3 {
			scores[domain.ArchetypeSpark] += 0.15
		}
		if b.Session.SessionsPerDay >= 0.5 && b.Session.SessionsPerDay <= 2 {
			scores[domain.ArchetypeAnchor] += 0.2
		}
		if b.Session.SessionsPerDay > 5 {
			scores[domain.ArchetypeStorm] += 0.15
		}
	}

	if b.Bio != nil {
		if b.Bio.Style == "moderate" {
			scores[domain.ArchetypeAnchor] += 0.15
			scores[domain.ArchetypeWave] += 0.2
		}
	}

	if b.Browsing != nil {
		if b.Browsing.PhotoDwellRatio >= 0.3 && b.Browsing.PhotoDwellRatio <= 0.7 {
			scores[domain.ArchetypeWave] += 0.2
		}
		if b.Browsing.BioReadRate > 0.7 {
			scores[domain.ArchetypeEmber] += 0.2
		}
		if b.Browsing.PhotoDwellRatio > 0.8 {
			scores[domain.ArchetypeStorm] += 0.1
		}
	}

	best := domain.Archetype("")
	bestScore := -1.0
	for _, a := range domain.Archetypes {
		if scores[a] > bestScore {
			bestScore = scores[a]
			best = a
		}
	}
	return best
}

// ClassifyStyle runs the decision cascade over messaging and bio bundles
// (spec §4.2). Default expressive when neither is present.
func ClassifyStyle(b Bundles) domain.Style {
	if b.Messaging == nil && b.Bio == nil {
		return domain.StyleExpressive
	}

	avgLen := 0.0
	if b.Messaging != nil {
		avgLen = b.Messaging.AvgCharLength
	}
	bioMinimal := b.Bio != nil && b.Bio.Style == "minimal"

	switch {
	case avgLen < 30 && bioMinimal:
		return domain.StyleMinimal
	case b.Messaging != nil && b.Messaging.VocabularyDiversity > 0.6 && b.Messaging.EmojiRate < 0.2 && b.Messaging.AvgCharLength > 40:
		return domain.StylePrecise
	case b.Messaging != nil && b.Messaging.VocabularyDiversity > 0.7 && b.Messaging.AvgCharLength > 60 && b.Voice != nil && b.Voice.VocabularyRichness > 0.7:
		return domain.StylePoetic
	case b.Messaging != nil && b.Messaging.QuestionRate > 0.3 && b.Messaging.EmojiRate > 0.3:
		return domain.StyleWitty
	default:
		return domain.StyleExpressive
	}
}

// DominantEmotionTags takes from the voice bundle when present, else empty
// (spec §4.2).
func DominantEmotionTags(b Bundles) []string {
	if b.Voice == nil {
		return nil
	}
	return b.Voice.DominantEmotions
}

// DepthScore averages up to three contributions; a bundle only contributes
// when it carries a meaningful signal, not merely when it is present — the
// worked cold-start scenario (spec §8 scenario 1) has a voice bundle with no
// transcript data and still yields the 0.5 "no contributors" default.
func DepthScore(b Bundles) float64 {
	var sum float64
	var n int

	if b.Messaging != nil {
		sum += math.Min(b.Messaging.AvgCharLength/100, 1)*0.4 + b.Messaging.QuestionRate*0.3 + b.Messaging.VocabularyDiversity*0.3
		n++
	}
	if b.Voice != nil && b.Voice.TranscriptWordCount > 0 {
		sum += b.Voice.VocabularyRichness * 0.5
		n++
	}
	if b.Browsing != nil {
		sum += b.Browsing.BioReadRate * 0.5
		n++
	}

	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

// CompletenessScore is the weighted sum in [0,100] of signal presence
// (spec §4.1).
func CompletenessScore(b Bundles) float64 {
	var total float64

	if b.Voice != nil {
		total += 25
	}
	if b.Bio != nil {
		total += 15
	}
	if b.Messaging != nil {
		total += 20 * math.Min(float64(b.Messaging.TotalCount)/50, 1)
	}
	if b.Typing != nil {
		total += 10
	}
	if b.Session != nil {
		activeDays := 0
		for _, v := range b.Session.HourlyActivity {
			if v > 0.1 {
				activeDays++
			}
		}
		total += 15 * math.Min(float64(activeDays)/7, 1)
	}
	if b.Browsing != nil {
		total += 15
	}

	return total
}
