package chm

import "github.com/resonate/resonate-backend/internal/domain"

// Negative/positive thresholds a signal must cross to count toward the
// cooling/active vote tallies (spec §4.5 state machine).
const (
	latencyNegative    = -0.3
	lengthNegative     = -0.3
	sentimentNegative  = -0.2
	initiativeNegative = 0.3
	diversityNegative  = 0.3

	latencyPositive    = 0.2
	lengthPositive     = 0.0
	sentimentPositive  = 0.0
	initiativePositive = 0.5
	diversityPositive  = 0.5
)

// dormantThresholdDays is the silence window past which a conversation is
// dormant regardless of its signals (spec §4.5, §8 "CHM state monotonicity
// under starvation").
const dormantThresholdDays = 3.0

// revivedThresholdDays is how recent the last message must be for a
// previously dormant conversation to be marked revived (spec §4.5).
const revivedThresholdDays = 1.0

// NextState runs the CHM state machine given the previous health state, the
// number of days since the conversation's last message, and the five
// computed signals (spec §4.5).
func NextState(prev domain.ConversationHealthState, daysSinceLastMessage float64, s Signals) domain.ConversationHealthState {
	if daysSinceLastMessage >= dormantThresholdDays {
		return domain.HealthDormant
	}

	if prev == domain.HealthDormant && daysSinceLastMessage < revivedThresholdDays {
		return domain.HealthRevived
	}

	neg := 0
	if s.LatencyTrend < latencyNegative {
		neg++
	}
	if s.LengthTrend < lengthNegative {
		neg++
	}
	if s.Sentiment < sentimentNegative {
		neg++
	}
	if s.Initiative < initiativeNegative {
		neg++
	}
	if s.TopicDiversity < diversityNegative {
		neg++
	}
	if neg >= 2 {
		return domain.HealthCooling
	}

	pos := 0
	if s.LatencyTrend > latencyPositive {
		pos++
	}
	if s.LengthTrend > lengthPositive {
		pos++
	}
	if s.Sentiment > sentimentPositive {
		pos++
	}
	if s.Initiative > initiativePositive {
		pos++
	}
	if s.TopicDiversity > diversityPositive {
		pos++
	}
	if pos >= 3 {
		return domain.HealthActive
	}

	if prev == domain.HealthWarming {
		if pos >= 2 {
			return domain.HealthActive
		}
		return domain.HealthWarming
	}

	return prev
}
