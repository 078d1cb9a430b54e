package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/scheduler"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

// dailyRebuildBatchSize bounds how many users a single daily-rebuild pass
// touches, the same defensive cap the teacher applies to its batch jobs
// (internal/jobs/pipeline/*, "limit" parameters throughout).
const dailyRebuildBatchSize = 5000

// dailyRebuildLookback is how far back a user must have been active to be
// considered for the daily rebuild pass (spec §4.2 rebuild orchestration).
const dailyRebuildLookback = 30 * 24 * time.Hour

func dailyRebuildCutoff() time.Time {
	return time.Now().Add(-dailyRebuildLookback)
}

// App is the assembled process: every client, repo, and service, wired once
// at startup, mirroring the teacher's internal/app.App.
type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
}

// New wires the full dependency graph: logger, config, Postgres connection,
// clients, repos, services — and, if sched is non-nil, registers the two
// cron jobs and the voice-note-uploaded event handler (spec §6). sched is accepted
// rather than constructed here because the scheduler itself (the cron loop,
// the event bus) is an external system out of this module's scope (spec §1).
func New(ctx context.Context, sched scheduler.Scheduler) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	db, err := postgres.Connect(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init clients: %w", err)
	}

	repos := wireRepos(db, log)
	services := wireServices(db, log, repos, clients)

	a := &App{
		Log:      log,
		DB:       db,
		Cfg:      cfg,
		Clients:  clients,
		Repos:    repos,
		Services: services,
	}

	if sched != nil {
		if err := a.registerJobs(sched); err != nil {
			log.Sync()
			return nil, fmt.Errorf("register scheduled jobs: %w", err)
		}
	} else {
		log.Warn("no scheduler provided, daily rebuild / CHM batch / event-triggered rebuilds will not run")
	}

	return a, nil
}

// registerJobs wires the two cron jobs (daily rebuild, CHM batch) and the
// voice-note-uploaded event handler, each wrapped in the retry policy spec §5
// assigns it. No handler is registered for the profile-rebuilt or
// account-deleted events.
func (a *App) registerJobs(sched scheduler.Scheduler) error {
	if err := sched.RegisterCron(scheduler.JobDailyRebuild, scheduler.CronDailyRebuild, a.dailyRebuildHandler); err != nil {
		return err
	}
	if err := sched.RegisterCron(scheduler.JobCHMBatch, scheduler.CronCHMBatch, a.chmBatchHandler); err != nil {
		return err
	}
	if err := sched.RegisterEvent(scheduler.JobRebuildOnVoiceNote, scheduler.EventVoiceNoteUploaded, a.voiceNoteUploadedHandler); err != nil {
		return err
	}
	return nil
}

func (a *App) dailyRebuildHandler(ctx context.Context) error {
	return scheduler.Do(ctx, scheduler.RetryDailyRebuild, func(ctx context.Context) error {
		users, err := a.Repos.Users.ListActiveOnboarded(ctx, nil, dailyRebuildCutoff(), uuid.Nil, dailyRebuildBatchSize)
		if err != nil {
			return err
		}
		for _, u := range users {
			if _, err := a.Services.RPB.RebuildIfStale(ctx, u.ID); err != nil {
				a.Log.Error("daily rebuild: failed for user, continuing", "user_id", u.ID, "error", err)
			}
		}
		return nil
	})
}

func (a *App) chmBatchHandler(ctx context.Context) error {
	return scheduler.Do(ctx, scheduler.RetryCHMBatch, func(ctx context.Context) error {
		result, err := a.Services.CHM.RunBatch(ctx)
		if err != nil {
			return err
		}
		a.Log.Info("chm batch complete",
			"total", result.Total, "healthy", result.Healthy,
			"cooling", result.Cooling, "dormant", result.Dormant,
			"nudges_generated", result.NudgesGenerated, "failed", result.Failed)
		return nil
	})
}

func (a *App) voiceNoteUploadedHandler(ctx context.Context, payload []byte) error {
	var p scheduler.VoiceNoteUploadedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode voice-note-uploaded payload: %w", err)
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id in voice-note-uploaded payload: %w", err)
	}
	return scheduler.Do(ctx, scheduler.RetryVoiceNoteRebuild, func(ctx context.Context) error {
		_, err := a.Services.RPB.Rebuild(ctx, userID)
		return err
	})
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
