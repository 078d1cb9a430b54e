package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	TouchLastActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// ListActiveOnboarded returns users active since the given cutoff, not
	// deleted, with onboarding complete, excluding excludeID if non-nil and
	// bounded to limit rows. Used by RPB's daily rebuild pass and by DFRE's
	// database-scan fallback for candidate retrieval (spec §4.2, §4.4 stage 1).
	ListActiveOnboarded(ctx context.Context, tx *gorm.DB, since time.Time, excludeID uuid.UUID, limit int) ([]*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo {
	return &userRepo{db: db, log: log.With("repo", "UserRepo")}
}

func (r *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error) {
	const op = "UserRepo.GetByID"
	var u domain.User
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "user not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error) {
	const op = "UserRepo.GetByIDs"
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*domain.User
	if err := r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	const op = "UserRepo.GetByEmail"
	var u domain.User
	err := r.conn(tx).WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "user not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	const op = "UserRepo.Create"
	if err := r.conn(tx).WithContext(ctx).Create(u).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return u, nil
}

func (r *userRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	const op = "UserRepo.UpdateFields"
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if err := r.conn(tx).WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

func (r *userRepo) TouchLastActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	const op = "UserRepo.TouchLastActive"
	if err := r.conn(tx).WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_active_at", gorm.Expr("now()")).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

func (r *userRepo) ListActiveOnboarded(ctx context.Context, tx *gorm.DB, since time.Time, excludeID uuid.UUID, limit int) ([]*domain.User, error) {
	const op = "UserRepo.ListActiveOnboarded"
	q := r.conn(tx).WithContext(ctx).
		Where("last_active_at >= ? AND onboarding_complete = ?", since, true)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*domain.User
	if err := q.Order("last_active_at DESC").Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}
