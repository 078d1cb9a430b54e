package app

import (
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/store/postgres"
)

// Repos holds every Profile Store repository, one per aggregate (spec §3).
type Repos struct {
	Users         postgres.UserRepo
	Profiles      postgres.ProfileRepo
	Events        postgres.EventRepo
	Messages      postgres.MessageRepo
	Matches       postgres.MatchRepo
	Conversations postgres.ConversationRepo
	BlockReports  postgres.BlockReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:         postgres.NewUserRepo(db, log),
		Profiles:      postgres.NewProfileRepo(db, log),
		Events:        postgres.NewEventRepo(db, log),
		Messages:      postgres.NewMessageRepo(db, log),
		Matches:       postgres.NewMatchRepo(db, log),
		Conversations: postgres.NewConversationRepo(db, log),
		BlockReports:  postgres.NewBlockReportRepo(db, log),
	}
}
