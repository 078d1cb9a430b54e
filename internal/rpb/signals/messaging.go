package signals

import (
	"context"

	"github.com/google/uuid"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

const messagingSampleSize = 500

// Messaging extracts the messaging bundle from the user's most recent
// messages. Returns nil with fewer than 3 messages (spec §4.1).
func Messaging(ctx context.Context, messages postgres.MessageRepo, userID uuid.UUID) (*MessagingBundle, error) {
	rows, err := messages.ListBySender(ctx, nil, userID, messagingSampleSize)
	if err != nil {
		return nil, err
	}
	if len(rows) < 3 {
		return nil, nil
	}

	var totalChars, questionCount, emojiCount, tokenCount int
	uniqueTokens := make(map[string]struct{})
	for _, m := range rows {
		totalChars += m.CharLen
		if m.HasQuestion {
			questionCount++
		}
		emojiCount += m.EmojiCount
		tokenCount += m.TokenCount
		for _, t := range m.Tokens {
			uniqueTokens[t] = struct{}{}
		}
	}

	// Vocabulary diversity is a corpus-wide set operation over the whole
	// window, not a sum of per-message unique counts: the same word
	// repeated across messages must count once (spec §4.1).
	n := float64(len(rows))
	diversity := 0.0
	if tokenCount > 0 {
		diversity = float64(len(uniqueTokens)) / float64(tokenCount)
	}

	return &MessagingBundle{
		AvgCharLength:       float64(totalChars) / n,
		QuestionRate:        float64(questionCount) / n,
		EmojiRate:           float64(emojiCount) / n,
		VocabularyDiversity: diversity,
		TotalCount:          len(rows),
	}, nil
}
