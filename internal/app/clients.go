package app

import (
	"fmt"

	"github.com/resonate/resonate-backend/internal/clients/airouter"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"github.com/resonate/resonate-backend/internal/platform/qdrant"
	cache "github.com/resonate/resonate-backend/internal/store/rediscache"
	"github.com/resonate/resonate-backend/internal/store/vectorstore"
)

// Clients holds every external collaborator the core depends on through the
// narrow interfaces in spec §6: the embedding/completion router, the vector
// store adapter, and the cache adapter.
type Clients struct {
	AIRouter airouter.Client
	Vector   vectorstore.Store
	Cache    cache.Cache
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	router, err := airouter.New(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init airouter client: %w", err)
	}

	qdrantCfg, err := qdrant.ResolveConfigFromEnv()
	if err != nil {
		return Clients{}, fmt.Errorf("resolve qdrant config: %w", err)
	}
	vec, err := qdrant.NewVectorStore(log, qdrantCfg)
	if err != nil {
		return Clients{}, fmt.Errorf("init vector store: %w", err)
	}

	c, err := cache.New(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init cache: %w", err)
	}

	return Clients{
		AIRouter: router,
		Vector:   vec,
		Cache:    c,
	}, nil
}
