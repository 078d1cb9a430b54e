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

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *domain.Message) (*domain.Message, error)
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) ([]*domain.Message, error)
	LastByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*domain.Message, error)
	CountSince(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) (int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// ListBySender returns a sender's own messages in descending sent order,
	// the feed RPB's messaging aggregator reads from (spec §4.1).
	ListBySender(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, limit int) ([]*domain.Message, error)
	// ListRecentByConversation returns the most recent limit messages for a
	// conversation in ascending sent order, the window CHM's five signal
	// extractors all read from (spec §4.5).
	ListRecentByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit int) ([]*domain.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, log *logger.Logger) MessageRepo {
	return &messageRepo{db: db, log: log.With("repo", "MessageRepo")}
}

func (r *messageRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *messageRepo) Create(ctx context.Context, tx *gorm.DB, m *domain.Message) (*domain.Message, error) {
	const op = "MessageRepo.Create"
	if err := r.conn(tx).WithContext(ctx).Create(m).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return m, nil
}

// ListByConversation returns messages in ascending sent order, which is the
// order CHM's signal computations assume (spec §4.5).
func (r *messageRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) ([]*domain.Message, error) {
	const op = "MessageRepo.ListByConversation"
	q := r.conn(tx).WithContext(ctx).
		Where("conversation_id = ? AND deleted_at IS NULL", conversationID)
	if !since.IsZero() {
		q = q.Where("sent_at >= ?", since)
	}
	var out []*domain.Message
	if err := q.Order("sent_at ASC").Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

func (r *messageRepo) LastByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID) (*domain.Message, error) {
	const op = "MessageRepo.LastByConversation"
	var m domain.Message
	err := r.conn(tx).WithContext(ctx).
		Where("conversation_id = ? AND deleted_at IS NULL", conversationID).
		Order("sent_at DESC").
		Limit(1).
		Find(&m).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	if m.ID == uuid.Nil {
		return nil, nil
	}
	return &m, nil
}

func (r *messageRepo) CountSince(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, since time.Time) (int64, error) {
	const op = "MessageRepo.CountSince"
	var count int64
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Message{}).
		Where("conversation_id = ? AND sent_at >= ? AND deleted_at IS NULL", conversationID, since).
		Count(&count).Error; err != nil {
		return 0, apierr.Classify(op, err)
	}
	return count, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	const op = "MessageRepo.MarkRead"
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", gorm.Expr("now()")).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

// ListRecentByConversation fetches the most recent limit messages ordered
// newest-first, then reverses them so callers always receive ascending sent
// order regardless of how many rows exist (spec §4.5 signal extractors).
func (r *messageRepo) ListRecentByConversation(ctx context.Context, tx *gorm.DB, conversationID uuid.UUID, limit int) ([]*domain.Message, error) {
	const op = "MessageRepo.ListRecentByConversation"
	q := r.conn(tx).WithContext(ctx).
		Where("conversation_id = ? AND deleted_at IS NULL", conversationID).
		Order("sent_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*domain.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *messageRepo) ListBySender(ctx context.Context, tx *gorm.DB, senderID uuid.UUID, limit int) ([]*domain.Message, error) {
	const op = "MessageRepo.ListBySender"
	q := r.conn(tx).WithContext(ctx).
		Where("sender_id = ? AND deleted_at IS NULL", senderID).
		Order("sent_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*domain.Message
	if err := q.Find(&out).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}
