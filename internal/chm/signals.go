package chm

import (
	"time"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
)

// Signals is the five-component health vector computed per conversation.
type Signals struct {
	LatencyTrend   float64
	LengthTrend    float64
	Sentiment      float64
	Initiative     float64
	TopicDiversity float64
}

// OverallHealth combines the five signals into a single [0,100] score (spec
// §4.5 "Overall health").
func (s Signals) OverallHealth() int {
	v := ((s.LatencyTrend+1)/2)*25 +
		((s.LengthTrend+1)/2)*20 +
		((s.Sentiment+1)/2)*20 +
		s.Initiative*20 +
		s.TopicDiversity*15
	return int(round(v))
}

func round(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// latencyTrend computes the inter-response-time trend over the most recent
// 50 messages, considering only transitions between adjacent messages with
// different senders (spec §4.5 signal 1). messages MUST be in ascending
// sent-time order.
func latencyTrend(messages []*domain.Message) float64 {
	recent := tail(messages, 50)
	var gaps []float64
	for i := 1; i < len(recent); i++ {
		prev, cur := recent[i-1], recent[i]
		if prev.SenderID == nil || cur.SenderID == nil || *prev.SenderID == *cur.SenderID {
			continue
		}
		gaps = append(gaps, cur.SentAt.Sub(prev.SentAt).Seconds())
	}
	if len(recent) < 4 || len(gaps) < 3 {
		return 0
	}
	olderAvg, recentAvg := splitAverage(gaps)
	if olderAvg == 0 {
		return 0
	}
	return clamp(1-recentAvg/olderAvg, -1, 1)
}

// lengthTrend computes the character-length trend over the most recent 50
// messages (spec §4.5 signal 2).
func lengthTrend(messages []*domain.Message) float64 {
	recent := tail(messages, 50)
	if len(recent) < 6 {
		return 0
	}
	lengths := make([]float64, len(recent))
	for i, m := range recent {
		lengths[i] = float64(m.CharLen)
	}
	olderAvg, recentAvg := splitAverage(lengths)
	if olderAvg == 0 {
		return 0
	}
	return clamp(recentAvg/olderAvg-1, -1, 1)
}

// sentimentTrajectory computes the sentiment trend over the most recent 30
// messages carrying a non-null sentiment score (spec §4.5 signal 3).
func sentimentTrajectory(messages []*domain.Message) float64 {
	recent := tail(messages, 30)
	var scored []float64
	for _, m := range recent {
		if m.Sentiment != nil {
			scored = append(scored, *m.Sentiment)
		}
	}
	if len(scored) < 4 {
		return 0
	}
	olderAvg, recentAvg := splitAverage(scored)
	return clamp(recentAvg-olderAvg, -1, 1)
}

// initiativeRatio computes the balance of session-starting senders over the
// most recent 100 messages in chronological order; a new session begins
// whenever the gap to the previous message exceeds two hours (spec §4.5
// signal 4).
func initiativeRatio(messages []*domain.Message) float64 {
	recent := tail(messages, 100)
	if len(recent) == 0 {
		return 0.5
	}

	starters := make(map[uuid.UUID]int)
	var last time.Time
	for i, m := range recent {
		if m.SenderID == nil {
			continue
		}
		isStart := i == 0 || m.SentAt.Sub(last) > 2*time.Hour
		if isStart {
			starters[*m.SenderID]++
		}
		last = m.SentAt
	}

	if len(starters) < 2 {
		if len(starters) == 1 {
			return 0.2
		}
		return 0.5
	}

	min, max := -1, -1
	for _, count := range starters {
		if min == -1 || count < min {
			min = count
		}
		if count > max {
			max = count
		}
	}
	if max == 0 {
		return 0.5
	}
	return float64(min) / float64(max)
}

// topicDiversity estimates vocabulary breadth over the most recent 30
// messages using the pre-computed per-message tokens, since message content
// is an encrypted blob the core never reads directly (spec §1 Non-goals, §3
// Message). Tokens longer than 3 characters are pooled across the whole
// window into a single set: raw = distinct tokens / total qualifying token
// occurrences, mapped onto [0,1] (spec §4.5 signal 5). This is a corpus-wide
// set operation, not a sum of per-message unique counts — a word repeated
// across messages counts once toward "distinct".
func topicDiversity(messages []*domain.Message) float64 {
	recent := tail(messages, 30)
	if len(recent) < 5 {
		return 0.5
	}
	seen := make(map[string]struct{})
	var total int
	for _, m := range recent {
		for _, t := range m.Tokens {
			if len(t) <= 3 {
				continue
			}
			total++
			seen[t] = struct{}{}
		}
	}
	if total == 0 {
		return 0.5
	}
	raw := float64(len(seen)) / float64(total)
	return clamp((raw-0.2)/0.5, 0, 1)
}

// tail returns the most recent n messages, preserving ascending order.
func tail(messages []*domain.Message, n int) []*domain.Message {
	if len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}

// splitAverage splits a series at its midpoint into an older half and a
// newer half and returns both averages (spec §4.5 signals 1-3, midpoint
// split).
func splitAverage(series []float64) (olderAvg, recentAvg float64) {
	mid := len(series) / 2
	older := series[:mid]
	recent := series[mid:]
	return avg(older), avg(recent)
}

func avg(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
