package chm

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/domain"
)

func tokenMessage(sentAt time.Time, tokens ...string) *domain.Message {
	return &domain.Message{
		ID:     uuid.New(),
		SentAt: sentAt,
		Tokens: tokens,
	}
}

// TestTopicDiversity_PoolsTokensAcrossWholeWindow covers the regression
// where diversity was computed by summing per-message unique-token counts
// instead of deduplicating tokens across the whole window: a word repeated
// in every message ("yeah") must count once toward the distinct set, not
// once per message (spec §4.5 signal 5).
func TestTopicDiversity_PoolsTokensAcrossWholeWindow(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	var messages []*domain.Message
	for i := 0; i < 6; i++ {
		// "yeah" (len 4, qualifies) repeats in every message; only the
		// per-message unique words should grow the distinct set.
		messages = append(messages, tokenMessage(base.Add(time.Duration(i)*time.Minute), "yeah", "whatever"))
	}

	got := topicDiversity(messages)

	// raw = distinct/total = 2/12 = 0.1666..., well below the 0.2 floor,
	// so signal should clamp to 0 even though each message individually
	// looks "fully diverse" (2 unique / 2 total per message).
	if got != 0 {
		t.Fatalf("topicDiversity() = %v, want 0 (repetitive corpus should read as low diversity)", got)
	}
}

func TestTopicDiversity_FiltersShortTokens(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	var messages []*domain.Message
	for i := 0; i < 5; i++ {
		messages = append(messages, tokenMessage(base.Add(time.Duration(i)*time.Minute), "ok", "lol", "um"))
	}

	got := topicDiversity(messages)
	if got != 0.5 {
		t.Fatalf("topicDiversity() = %v, want 0.5 (no tokens longer than 3 chars => no qualifying data)", got)
	}
}

func TestTopicDiversity_InsufficientMessages(t *testing.T) {
	base := time.Now()
	messages := []*domain.Message{
		tokenMessage(base, "hello", "world"),
		tokenMessage(base.Add(time.Minute), "foo", "bar"),
	}
	if got := topicDiversity(messages); got != 0.5 {
		t.Fatalf("topicDiversity() = %v, want 0.5 default with fewer than 5 messages", got)
	}
}
