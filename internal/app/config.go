package app

import (
	"github.com/resonate/resonate-backend/internal/platform/envutil"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

// Config is the process-wide configuration assembled once at startup,
// mirroring internal/app/config.go's LoadConfig shape in the teacher.
type Config struct {
	LogMode string
}

// LoadConfig reads the handful of env vars the wiring layer itself needs;
// every client package (airouter, rediscache, qdrant, postgres) resolves
// its own env vars at construction time instead of threading them through
// Config, the way the teacher's clients do (internal/clients/openai.NewClient).
func LoadConfig(log *logger.Logger) Config {
	return Config{
		LogMode: envutil.String(log, "LOG_MODE", "development"),
	}
}
