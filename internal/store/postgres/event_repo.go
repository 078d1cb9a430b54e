package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/apierr"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, e *domain.BehavioralEvent) (*domain.BehavioralEvent, error)
	ListByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, types []domain.EventType, since time.Time) ([]*domain.BehavioralEvent, error)
	ListByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType domain.EventType, limit int) ([]*domain.BehavioralEvent, error)
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, log *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: log.With("repo", "EventRepo")}
}

func (r *eventRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, e *domain.BehavioralEvent) (*domain.BehavioralEvent, error) {
	const op = "EventRepo.Create"
	if err := r.conn(tx).WithContext(ctx).Create(e).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return e, nil
}

// ListByUserSince returns events in descending server-time order (spec
// §4.1); the Typing and Session aggregators re-sort the rows by client
// timestamp, and Browsing only counts them.
func (r *eventRepo) ListByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, types []domain.EventType, since time.Time) ([]*domain.BehavioralEvent, error) {
	const op = "EventRepo.ListByUserSince"
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND server_ts >= ?", userID, since).
		Order("server_ts DESC")
	if len(types) > 0 {
		q = q.Where("event_type IN ?", types)
	}
	var out []*domain.BehavioralEvent
	if err := q.Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

func (r *eventRepo) ListByUserAndType(ctx context.Context, tx *gorm.DB, userID uuid.UUID, eventType domain.EventType, limit int) ([]*domain.BehavioralEvent, error) {
	const op = "EventRepo.ListByUserAndType"
	var out []*domain.BehavioralEvent
	q := r.conn(tx).WithContext(ctx).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Order("server_ts DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}
