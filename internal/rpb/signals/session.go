package signals

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

const sessionLookback = 7 * 24 * time.Hour

// Session extracts the hourly-activity and session-cadence bundle from
// app_opened/app_closed events over the last 7 days. Returns nil with fewer
// than 3 opens (spec §4.1).
func Session(ctx context.Context, events postgres.EventRepo, userID uuid.UUID, now time.Time) (*SessionBundle, error) {
	rows, err := events.ListByUserSince(ctx, nil, userID,
		[]domain.EventType{domain.EventAppOpened, domain.EventAppClosed}, now.Add(-sessionLookback))
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ClientTS.Before(rows[j].ClientTS) })

	var raw [24]float64
	var opens int
	var pendingOpen *time.Time
	var durationsMS []float64

	for _, e := range rows {
		switch e.EventType {
		case domain.EventAppOpened:
			opens++
			raw[e.ClientTS.Hour()]++
			ts := e.ClientTS
			pendingOpen = &ts
		case domain.EventAppClosed:
			if pendingOpen != nil {
				durationsMS = append(durationsMS, e.ClientTS.Sub(*pendingOpen).Seconds()*1000)
				pendingOpen = nil
			}
		}
	}

	if opens < 3 {
		return nil, nil
	}

	maxSlot := 0.0
	for _, v := range raw {
		if v > maxSlot {
			maxSlot = v
		}
	}
	var normalized [24]float64
	if maxSlot > 0 {
		for i, v := range raw {
			normalized[i] = v / maxSlot
		}
	}

	return &SessionBundle{
		HourlyActivity: normalized,
		MeanDurationMS: meanOf(durationsMS),
		SessionsPerDay: float64(opens) / 7.0,
	}, nil
}
