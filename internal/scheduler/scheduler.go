// Package scheduler is the narrow external collaborator the core dispatches
// through: a registry of cron-scheduled and event-triggered handlers (spec
// §6 Scheduler). The scheduler itself — the cron loop, the event bus — is an
// out-of-scope external system; this package only defines the interface the
// core registers against and the handler-result shape every job reports,
// mirroring the Deps/Input/Output handler convention the teacher uses for
// its Temporal-driven jobs (internal/jobs/pipeline/*).
package scheduler

import "context"

// HandlerFunc is a cron-triggered job: no input beyond the invocation
// context, a deadline propagated by the caller (spec §5).
type HandlerFunc func(ctx context.Context) error

// EventHandlerFunc is an event-triggered job; payload is the raw event body
// (spec §6 event payloads: voice-note-uploaded, profile-rebuilt,
// account-deleted).
type EventHandlerFunc func(ctx context.Context, payload []byte) error

// Scheduler is the interface the core registers its jobs against. A
// production implementation backs RegisterCron with a cron expression
// parser and RegisterEvent with a subscription to the named event bus
// topic; neither is implemented in this module (spec §1 out of scope:
// scheduler consumed as a cron + event-trigger interface).
type Scheduler interface {
	RegisterCron(id, cronExpr string, handler HandlerFunc) error
	RegisterEvent(id, eventName string, handler EventHandlerFunc) error
}

// Event names the core reacts to (spec §6).
const (
	EventVoiceNoteUploaded = "resonate/voice-note-uploaded"
	EventProfileRebuilt    = "resonate/profile-rebuilt"
	EventAccountDeleted    = "resonate/account-deleted"
)

// Cron expressions the core registers (spec §6).
const (
	CronDailyRebuild = "0 3 * * *"
	CronCHMBatch     = "0 */4 * * *"
)

// Job ids, stable identifiers a Scheduler implementation uses for
// observability and idempotent re-registration.
const (
	JobRebuildOnVoiceNote = "rpb.rebuild.voice_note_uploaded"
	JobDailyRebuild       = "rpb.rebuild.daily"
	JobCHMBatch           = "chm.batch"
)

// VoiceNoteUploadedPayload is the event body for EventVoiceNoteUploaded
// (spec §6).
type VoiceNoteUploadedPayload struct {
	UserID   string `json:"userId"`
	AudioURL string `json:"audioUrl"`
}

// ProfileRebuiltPayload is the event body for EventProfileRebuilt (spec §6).
type ProfileRebuiltPayload struct {
	UserID string `json:"userId"`
}

// AccountDeletedPayload is the event body for EventAccountDeleted (spec §6).
type AccountDeletedPayload struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
