package rpb

import (
	"fmt"
	"strings"
)

// BuildEmbeddingPrompt deterministically renders a natural-language
// paragraph describing pace, message shape, typing cadence, peak
// time-of-day bucket, browsing preference, and bio text (spec §4.2).
func BuildEmbeddingPrompt(b Bundles, bio string) string {
	var sb strings.Builder
	sb.WriteString("This person")

	if b.Voice != nil {
		sb.WriteString(fmt.Sprintf(" speaks at a %s pace", b.Voice.SpeakingPace))
	}

	if b.Messaging != nil {
		shape := "brief"
		switch {
		case b.Messaging.AvgCharLength > 80:
			shape = "long, detailed"
		case b.Messaging.AvgCharLength > 30:
			shape = "moderate-length"
		}
		sb.WriteString(fmt.Sprintf(", writes %s messages with a question rate of %.2f", shape, b.Messaging.QuestionRate))
	}

	if b.Typing != nil {
		cadence := "steady"
		if b.Typing.CadenceVarianceMS > 1500 {
			cadence = "bursty"
		}
		sb.WriteString(fmt.Sprintf(", types with a %s cadence", cadence))
	}

	if b.Session != nil {
		sb.WriteString(fmt.Sprintf(", is most active around %s", peakHourBucket(b.Session.HourlyActivity)))
	}

	if b.Browsing != nil {
		preference := "balanced browsing habits"
		if b.Browsing.PhotoDwellRatio > 0.6 {
			preference = "a strong preference for photos over bios"
		} else if b.Browsing.PhotoDwellRatio < 0.3 {
			preference = "a strong preference for reading bios over photos"
		}
		sb.WriteString(fmt.Sprintf(", and shows %s", preference))
	}

	sb.WriteString(".")

	if strings.TrimSpace(bio) != "" {
		sb.WriteString(" Their bio reads: \"")
		sb.WriteString(strings.TrimSpace(bio))
		sb.WriteString("\"")
	}

	return sb.String()
}

func peakHourBucket(hourly [24]float64) string {
	peak := 0
	best := -1.0
	for h, v := range hourly {
		if v > best {
			best = v
			peak = h
		}
	}
	switch {
	case peak >= 5 && peak < 12:
		return "the morning"
	case peak >= 12 && peak < 17:
		return "the afternoon"
	case peak >= 17 && peak < 21:
		return "the evening"
	default:
		return "late night"
	}
}
