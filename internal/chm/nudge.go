package chm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/resonate/resonate-backend/internal/clients/airouter"
	"github.com/resonate/resonate-backend/internal/domain"
)

// NudgeSystemPrompt is sent verbatim on every nudge-generation request
// (spec §6 Completion interface).
const NudgeSystemPrompt = "You are a conversation catalyst for a dating app. " +
	"Your job is to generate ONE specific, curious question that could naturally " +
	"restart a cooling conversation. Rules: Under 25 words; Must be a question " +
	"(end with ?); Reference ONE of the provided interest tags if possible; " +
	"Never generic; Never guilt-trippy; Should spark genuine curiosity; Match the " +
	"energy of the archetype provided."

// recentMessageWindow bounds how many of the last messages decide who the
// quiet party is (spec §4.5 nudge generation).
const recentMessageWindow = 10

// recentMessageQuoteCount is how many of the most recent messages are
// summarized into the nudge prompt (spec §4.5 nudge generation).
const recentMessageQuoteCount = 3

// QuietParty identifies the participant who sent fewer of the last 10
// messages; ties favor userA (spec §4.5 nudge generation).
func QuietParty(messages []*domain.Message, userA, userB uuid.UUID) uuid.UUID {
	window := tail(messages, recentMessageWindow)

	var countA, countB int
	for _, m := range window {
		if m.SenderID == nil {
			continue
		}
		switch *m.SenderID {
		case userA:
			countA++
		case userB:
			countB++
		}
	}
	if countA <= countB {
		return userA
	}
	return userB
}

// buildNudgeUserPrompt renders the structured user prompt: interest tags,
// archetype, style, and the content of the most recent messages (spec §4.5
// nudge generation).
func buildNudgeUserPrompt(quietTags []string, otherTags []string, archetype domain.Archetype, style domain.Style, recent []*domain.Message) string {
	var sb strings.Builder

	tags := append(append([]string{}, quietTags...), otherTags...)
	if len(tags) > 0 {
		sb.WriteString(fmt.Sprintf("Interest tags: %s\n", strings.Join(tags, ", ")))
	} else {
		sb.WriteString("Interest tags: none available\n")
	}
	sb.WriteString(fmt.Sprintf("Archetype: %s\n", archetype))
	sb.WriteString(fmt.Sprintf("Communication style: %s\n", style))

	quoted := tail(recent, recentMessageQuoteCount)
	if len(quoted) == 0 {
		sb.WriteString("Recent messages: none available")
		return sb.String()
	}
	sb.WriteString("Recent messages:\n")
	for _, m := range quoted {
		sb.WriteString(fmt.Sprintf("- %s\n", messagePreview(m)))
	}
	return sb.String()
}

// messagePreview never reads ContentBlob directly (it is encrypted); the
// emotion tag is the closest proxy the core has to message content (spec §1
// Non-goals: no novel NLP; §3 Message).
func messagePreview(m *domain.Message) string {
	if m.EmotionTag != nil && *m.EmotionTag != "" {
		return fmt.Sprintf("(%s message, emotion: %s)", m.ContentType, *m.EmotionTag)
	}
	return fmt.Sprintf("(%s message)", m.ContentType)
}

// GenerateNudge requests a completion for the quiet party of a cooling
// conversation and trims the result (spec §4.5 nudge generation). A failure
// here is always non-fatal to the caller: the state transition persists with
// no nudge.
func GenerateNudge(ctx context.Context, completer airouter.Completer, quietTags, otherTags []string, archetype domain.Archetype, style domain.Style, recent []*domain.Message) (string, error) {
	prompt := buildNudgeUserPrompt(quietTags, otherTags, archetype, style, recent)
	text, err := completer.Complete(ctx, NudgeSystemPrompt, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
