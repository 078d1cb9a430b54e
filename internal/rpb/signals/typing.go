package signals

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

const typingLookback = 90 * 24 * time.Hour

// Typing extracts the typing-cadence bundle by pairing typing_started with
// the next typing_stopped event in client-timestamp order. Returns nil with
// fewer than 5 starts (spec §4.1).
func Typing(ctx context.Context, events postgres.EventRepo, userID uuid.UUID, now time.Time) (*TypingBundle, error) {
	rows, err := events.ListByUserSince(ctx, nil, userID,
		[]domain.EventType{domain.EventTypingStarted, domain.EventTypingStopped}, now.Add(-typingLookback))
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ClientTS.Before(rows[j].ClientTS) })

	var startCount int
	var durationsMS []float64
	var pendingStart *time.Time
	for _, e := range rows {
		switch e.EventType {
		case domain.EventTypingStarted:
			startCount++
			ts := e.ClientTS
			pendingStart = &ts
		case domain.EventTypingStopped:
			if pendingStart != nil {
				durationsMS = append(durationsMS, e.ClientTS.Sub(*pendingStart).Seconds()*1000)
				pendingStart = nil
			}
		}
	}

	if startCount < 5 {
		return nil, nil
	}

	mean := meanOf(durationsMS)
	variance := 0.0
	for _, d := range durationsMS {
		diff := d - mean
		variance += diff * diff
	}
	if len(durationsMS) > 0 {
		variance /= float64(len(durationsMS))
	}

	return &TypingBundle{
		MeanBurstMS:       mean,
		CadenceVarianceMS: math.Sqrt(variance),
	}, nil
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
