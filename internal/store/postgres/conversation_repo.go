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

type ConversationRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Conversation, error)
	GetByMatchID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*domain.Conversation, error)
	Create(ctx context.Context, tx *gorm.DB, c *domain.Conversation) (*domain.Conversation, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// ListActiveSince returns every conversation whose last_message_at falls
	// within the given cutoff, the unit of work for CHM's periodic batch
	// driver (spec §4.5 CHM batch driver: "last 7 days").
	ListActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*domain.Conversation, error)
	// ClearNudge atomically clears a pending nudge once delivered or superseded,
	// preserving the at-most-one-pending-nudge invariant (spec §3 Conversation).
	ClearNudge(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *conversationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Conversation, error) {
	const op = "ConversationRepo.GetByID"
	var c domain.Conversation
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "conversation not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &c, nil
}

func (r *conversationRepo) GetByMatchID(ctx context.Context, tx *gorm.DB, matchID uuid.UUID) (*domain.Conversation, error) {
	const op = "ConversationRepo.GetByMatchID"
	var c domain.Conversation
	err := r.conn(tx).WithContext(ctx).Where("match_id = ?", matchID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "conversation not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &c, nil
}

func (r *conversationRepo) Create(ctx context.Context, tx *gorm.DB, c *domain.Conversation) (*domain.Conversation, error) {
	const op = "ConversationRepo.Create"
	if err := r.conn(tx).WithContext(ctx).Create(c).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return c, nil
}

func (r *conversationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	const op = "ConversationRepo.UpdateFields"
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Conversation{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

func (r *conversationRepo) ListActiveSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*domain.Conversation, error) {
	const op = "ConversationRepo.ListActiveSince"
	var out []*domain.Conversation
	if err := r.conn(tx).WithContext(ctx).
		Where("last_message_at >= ?", since).
		Order("last_message_at ASC").
		Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

func (r *conversationRepo) ClearNudge(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	const op = "ConversationRepo.ClearNudge"
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"pending_nudge":      nil,
			"nudge_generated_at": nil,
			"updated_at":         time.Now(),
		}).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}
