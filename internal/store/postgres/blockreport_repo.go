package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

type BlockReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, b *domain.BlockReport) (*domain.BlockReport, error)
	// BlockedOrReportedIDs returns every user reporterID has blocked or
	// reported, excluded unconditionally from that user's feed candidates
	// (spec §4.4 stage 2).
	BlockedOrReportedIDs(ctx context.Context, tx *gorm.DB, reporterID uuid.UUID) ([]uuid.UUID, error)
	// BlockedByIDs returns every user who has blocked userID, since safety
	// exclusion must be symmetric (spec §4.4 stage 2).
	BlockedByIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
}

type blockReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBlockReportRepo(db *gorm.DB, log *logger.Logger) BlockReportRepo {
	return &blockReportRepo{db: db, log: log.With("repo", "BlockReportRepo")}
}

func (r *blockReportRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *blockReportRepo) Create(ctx context.Context, tx *gorm.DB, b *domain.BlockReport) (*domain.BlockReport, error) {
	const op = "BlockReportRepo.Create"
	err := r.conn(tx).WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reporter_id"}, {Name: "reported_id"}, {Name: "type"}},
		DoNothing: true,
	}).Create(b).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return b, nil
}

func (r *blockReportRepo) BlockedOrReportedIDs(ctx context.Context, tx *gorm.DB, reporterID uuid.UUID) ([]uuid.UUID, error) {
	const op = "BlockReportRepo.BlockedOrReportedIDs"
	var ids []uuid.UUID
	err := r.conn(tx).WithContext(ctx).Model(&domain.BlockReport{}).
		Where("reporter_id = ?", reporterID).
		Distinct().
		Pluck("reported_id", &ids).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return ids, nil
}

func (r *blockReportRepo) BlockedByIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	const op = "BlockReportRepo.BlockedByIDs"
	var ids []uuid.UUID
	err := r.conn(tx).WithContext(ctx).Model(&domain.BlockReport{}).
		Where("reported_id = ? AND type = ?", userID, domain.BlockReportBlock).
		Distinct().
		Pluck("reporter_id", &ids).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return ids, nil
}
