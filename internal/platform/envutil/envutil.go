// Package envutil loads typed configuration values from the environment,
// falling back to a default when a value is absent or unparsable; an
// unparsable value is logged as a warning, an absent one is not.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/resonate/resonate-backend/internal/platform/logger"
)

func String(log *logger.Logger, name, def string) string {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func Int(log *logger.Logger, name string, def int) int {
	raw, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("env var not an int, using default", "name", name, "value", raw, "default", def)
		}
		return def
	}
	return i
}

func Float(log *logger.Logger, name string, def float64) float64 {
	raw, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		if log != nil {
			log.Warn("env var not a float, using default", "name", name, "value", raw, "default", def)
		}
		return def
	}
	return f
}

func Duration(log *logger.Logger, name string, def time.Duration) time.Duration {
	raw, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		if log != nil {
			log.Warn("env var not a duration, using default", "name", name, "value", raw, "default", def)
		}
		return def
	}
	return d
}

func Bool(log *logger.Logger, name string, def bool) bool {
	raw, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Warn("env var not a bool, using default", "name", name, "value", raw, "default", def)
		}
		return def
	}
}
