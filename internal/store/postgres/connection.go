package postgres

import (
	"fmt"

	"github.com/resonate/resonate-backend/internal/platform/envutil"
	"github.com/resonate/resonate-backend/internal/platform/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Connect opens the relational store and ensures the uuid-ossp extension
// used by every table's default primary key generator is present.
func Connect(log *logger.Logger) (*gorm.DB, error) {
	host := envutil.String(log, "POSTGRES_HOST", "localhost")
	port := envutil.Int(log, "POSTGRES_PORT", 5432)
	user := envutil.String(log, "POSTGRES_USER", "resonate")
	password := envutil.String(log, "POSTGRES_PASSWORD", "")
	dbname := envutil.String(log, "POSTGRES_DB", "resonate")
	sslmode := envutil.String(log, "POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres.Connect: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("postgres.Connect: enable uuid-ossp: %w", err)
	}

	return db, nil
}
