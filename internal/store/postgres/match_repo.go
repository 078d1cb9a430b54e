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

type MatchRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Match, error)
	GetByPair(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (*domain.Match, error)
	Create(ctx context.Context, tx *gorm.DB, m *domain.Match) (*domain.Match, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	ListActiveForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Match, error)
	// GhostRatesByUser computes, for each given user, the fraction of their
	// 20 most recent matched-or-later matches that never reached
	// conversation_started (spec §4.4 stage 3 ghost penalty). It resolves the
	// reference implementation's per-candidate N+1 query into a single
	// batched aggregate (spec §9 design notes, ghost penalty scan).
	GhostRatesByUser(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]float64, error)
}

type matchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMatchRepo(db *gorm.DB, log *logger.Logger) MatchRepo {
	return &matchRepo{db: db, log: log.With("repo", "MatchRepo")}
}

func (r *matchRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *matchRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Match, error) {
	const op = "MatchRepo.GetByID"
	var m domain.Match
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.NotFound(op, "match not found")
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &m, nil
}

func (r *matchRepo) GetByPair(ctx context.Context, tx *gorm.DB, a, b uuid.UUID) (*domain.Match, error) {
	const op = "MatchRepo.GetByPair"
	lo, hi := domain.CanonicalPair(a, b)
	var m domain.Match
	err := r.conn(tx).WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", lo, hi).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return &m, nil
}

func (r *matchRepo) Create(ctx context.Context, tx *gorm.DB, m *domain.Match) (*domain.Match, error) {
	const op = "MatchRepo.Create"
	lo, hi := domain.CanonicalPair(m.UserAID, m.UserBID)
	m.UserAID, m.UserBID = lo, hi
	if err := r.conn(tx).WithContext(ctx).Create(m).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	return m, nil
}

func (r *matchRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	const op = "MatchRepo.UpdateFields"
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	if err := r.conn(tx).WithContext(ctx).Model(&domain.Match{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return apierr.Classify(op, err)
	}
	return nil
}

func (r *matchRepo) ListActiveForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Match, error) {
	const op = "MatchRepo.ListActiveForUser"
	var out []*domain.Match
	err := r.conn(tx).WithContext(ctx).
		Where("(user_a_id = ? OR user_b_id = ?) AND state NOT IN ?", userID, userID, []domain.MatchState{domain.MatchUnmatched}).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, apierr.Classify(op, err)
	}
	return out, nil
}

type ghostRateRow struct {
	UserID       uuid.UUID
	GhostedCount int64
	TotalCount   int64
}

func (r *matchRepo) GhostRatesByUser(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	const op = "MatchRepo.GhostRatesByUser"
	out := make(map[uuid.UUID]float64, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	for _, id := range userIDs {
		out[id] = 0
	}

	// per_user flattens each match into one row per participating side, then
	// a window function ranks each user's matches by recency so only the 20
	// most recent ones (per spec) feed the aggregate.
	const query = `
WITH per_user AS (
	SELECT user_a_id AS user_id, conversation_started_at, created_at FROM matches
	WHERE user_a_id IN ? AND state <> 'pending'
	UNION ALL
	SELECT user_b_id AS user_id, conversation_started_at, created_at FROM matches
	WHERE user_b_id IN ? AND state <> 'pending'
),
ranked AS (
	SELECT user_id, conversation_started_at,
		ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY created_at DESC) AS rn
	FROM per_user
)
SELECT user_id,
	COUNT(*) FILTER (WHERE conversation_started_at IS NULL) AS ghosted_count,
	COUNT(*) AS total_count
FROM ranked
WHERE rn <= 20
GROUP BY user_id
`
	var rows []ghostRateRow
	if err := r.conn(tx).WithContext(ctx).Raw(query, userIDs, userIDs).Scan(&rows).Error; err != nil {
		return nil, apierr.Classify(op, err)
	}
	for _, row := range rows {
		if row.TotalCount == 0 {
			out[row.UserID] = 0
			continue
		}
		out[row.UserID] = float64(row.GhostedCount) / float64(row.TotalCount)
	}
	return out, nil
}
