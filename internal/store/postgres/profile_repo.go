package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

type ProfileRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.ResonanceProfile, error)
	GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.ResonanceProfile, error)
	Upsert(ctx context.Context, tx *gorm.DB, p *domain.ResonanceProfile) (*domain.ResonanceProfile, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return &profileRepo{db: db, log: log.With("repo", "ProfileRepo")}
}

func (r *profileRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *profileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.ResonanceProfile, error) {
	const op = "ProfileRepo.GetByUserID"
	var p domain.ResonanceProfile
	err := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "resonance profile not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &p, nil
}

func (r *profileRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.ResonanceProfile, error) {
	const op = "ProfileRepo.GetByUserIDs"
	if len(userIDs) == 0 {
		return nil, nil
	}
	var out []*domain.ResonanceProfile
	if err := r.conn(tx).WithContext(ctx).Where("user_id IN ?", userIDs).Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

// Upsert rewrites the whole profile row on every RPB rebuild pass (spec §4.1
// rebuild: "wholesale" recomputation, never an incremental patch).
func (r *profileRepo) Upsert(ctx context.Context, tx *gorm.DB, p *domain.ResonanceProfile) (*domain.ResonanceProfile, error) {
	const op = "ProfileRepo.Upsert"
	err := r.conn(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(p).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return p, nil
}
