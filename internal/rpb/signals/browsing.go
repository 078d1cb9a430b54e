package signals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

const browsingLookback = 30 * 24 * time.Hour

// defaultAvgDwellMS and defaultBioReadRate stand in for dwell-time telemetry
// the event payloads do not yet carry (spec §4.1 browsing signals).
const (
	defaultAvgDwellMS   = 8000.0
	defaultBioReadRate  = 0.6
)

// Browsing extracts the browsing-behavior bundle from profile_viewed and
// photo_viewed events. Returns nil with fewer than 3 profile views (spec §4.1).
func Browsing(ctx context.Context, events postgres.EventRepo, userID uuid.UUID, now time.Time) (*BrowsingBundle, error) {
	rows, err := events.ListByUserSince(ctx, nil, userID,
		[]domain.EventType{domain.EventProfileViewed, domain.EventPhotoViewed}, now.Add(-browsingLookback))
	if err != nil {
		return nil, err
	}

	var profileViews, photoViews int
	sessions := map[uuid.UUID]struct{}{}
	for _, e := range rows {
		switch e.EventType {
		case domain.EventProfileViewed:
			profileViews++
			sessions[e.SessionID] = struct{}{}
		case domain.EventPhotoViewed:
			photoViews++
		}
	}

	if profileViews < 3 {
		return nil, nil
	}

	dwellRatio := 0.0
	if profileViews > 0 {
		dwellRatio = float64(photoViews) / float64(profileViews)
	}

	viewsPerSession := float64(profileViews)
	if len(sessions) > 0 {
		viewsPerSession = float64(profileViews) / float64(len(sessions))
	}

	return &BrowsingBundle{
		PhotoDwellRatio:        dwellRatio,
		AvgDwellMS:             defaultAvgDwellMS,
		BioReadRate:            defaultBioReadRate,
		ProfileViewsPerSession: viewsPerSession,
	}, nil
}
