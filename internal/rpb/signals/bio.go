package signals

import (
	"context"
	"strings"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

// bioDeletionRateConstant is the coarse deletion rate reported whenever any
// edit events exist; the source data does not distinguish insertions from
// deletions (spec §4.1 bio signals).
const bioDeletionRateConstant = 0.15

// Bio extracts the bio bundle from the user's bio text and bio_edited
// events. Returns nil if the user has no bio at all (spec §4.1).
func Bio(ctx context.Context, events postgres.EventRepo, user *domain.User) (*BioBundle, error) {
	if strings.TrimSpace(user.Bio) == "" {
		return nil, nil
	}

	wordCount := len(strings.Fields(user.Bio))

	edits, err := events.ListByUserAndType(ctx, nil, user.ID, domain.EventBioEdited, 0)
	if err != nil {
		return nil, err
	}
	editCount := len(edits)

	deletionRate := 0.0
	if editCount > 0 {
		deletionRate = bioDeletionRateConstant
	}

	var style string
	switch {
	case wordCount < 20:
		style = "minimal"
	case wordCount > 80:
		style = "expressive"
	default:
		style = "moderate"
	}

	return &BioBundle{
		WordCount:    wordCount,
		EditCount:    editCount,
		DeletionRate: deletionRate,
		Style:        style,
	}, nil
}
