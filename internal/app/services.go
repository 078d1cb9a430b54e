package app

import (
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/chm"
	"github.com/resonate/resonate-backend/internal/dfre"
	"github.com/resonate/resonate-backend/internal/ers"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/rpb"
)

// Services holds the four core engines, each wired from Repos and Clients.
type Services struct {
	RPB  *rpb.Builder
	ERS  *ers.Engine
	DFRE *dfre.Pipeline
	CHM  *chm.Engine
}

func wireServices(db *gorm.DB, log *logger.Logger, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	ersEngine := ers.NewEngine(repos.Users, repos.Profiles, clients.Cache)

	rpbBuilder := rpb.NewBuilder(rpb.BuilderDeps{
		Log:      log.With("component", "rpb"),
		Users:    repos.Users,
		Events:   repos.Events,
		Messages: repos.Messages,
		Profiles: repos.Profiles,
		Vec:      clients.Vector,
		Embedder: clients.AIRouter,
		Cache:    clients.Cache,
	})

	dfrePipeline := dfre.NewPipeline(dfre.Deps{
		Log:          log.With("component", "dfre"),
		Users:        repos.Users,
		Profiles:     repos.Profiles,
		Matches:      repos.Matches,
		BlockReports: repos.BlockReports,
		Vec:          clients.Vector,
		Cache:        clients.Cache,
		ERS:          ersEngine,
	})

	chmEngine := chm.NewEngine(chm.Deps{
		Log:           log.With("component", "chm"),
		Conversations: repos.Conversations,
		Messages:      repos.Messages,
		Matches:       repos.Matches,
		Profiles:      repos.Profiles,
		Completer:     clients.AIRouter,
	})

	return Services{
		RPB:  rpbBuilder,
		ERS:  ersEngine,
		DFRE: dfrePipeline,
		CHM:  chmEngine,
	}
}
