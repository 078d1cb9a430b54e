package signals

import (
	"context"
	"encoding/json"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

// Voice extracts the voice bundle from the user's most recent
// voice_note_analyzed event. Returns nil if the user has no voice note at
// all; returns a zero-initialized bundle with default pace "moderate" if a
// voice note exists but no analysis event has landed yet (spec §4.1).
func Voice(ctx context.Context, events postgres.EventRepo, user *domain.User) (*VoiceBundle, error) {
	if !user.HasVoiceNote() {
		return nil, nil
	}

	rows, err := events.ListByUserAndType(ctx, nil, user.ID, domain.EventVoiceNoteAnalyzed, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &VoiceBundle{SpeakingPace: "moderate"}, nil
	}

	var payload domain.VoiceNoteAnalyzedPayload
	if err := json.Unmarshal(rows[0].EventData, &payload); err != nil {
		return &VoiceBundle{SpeakingPace: "moderate"}, nil
	}

	richness := 0.0
	if payload.TranscriptWordCount > 0 {
		richness = float64(payload.UniqueWordCount) / float64(payload.TranscriptWordCount)
	}

	pace := payload.SpeakingPace
	if pace == "" {
		pace = "moderate"
	}

	return &VoiceBundle{
		TranscriptWordCount: payload.TranscriptWordCount,
		VocabularyRichness:  richness,
		Sentiment:           payload.Sentiment,
		DominantEmotions:    payload.DominantEmotions,
		SpeakingPace:        pace,
	}, nil
}
