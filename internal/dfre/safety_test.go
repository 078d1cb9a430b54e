package dfre

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/domain"
	"github.com/resonate/resonate-backend/internal/platform/logger"
)

// fakeSafetyCache answers SMembers from a fixed map and no-ops everything
// else, the way ers's fakeCache stubs the narrow Cache interface for tests
// that never need a real Redis.
type fakeSafetyCache struct {
	sets map[string][]string
}

func (f *fakeSafetyCache) Get(ctx context.Context, key string, out any) (bool, error) {
	return false, nil
}
func (f *fakeSafetyCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (f *fakeSafetyCache) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeSafetyCache) ScanDelete(ctx context.Context, pattern string) (int, error) {
	return 0, nil
}
func (f *fakeSafetyCache) SAdd(ctx context.Context, key string, members ...string) error {
	return nil
}
func (f *fakeSafetyCache) SIsMember(ctx context.Context, key, member string) (bool, error) {
	return false, nil
}
func (f *fakeSafetyCache) SMembers(ctx context.Context, key string) ([]string, error) {
	return f.sets[key], nil
}
func (f *fakeSafetyCache) Ping(ctx context.Context) error { return nil }

type fakeBlockReportRepo struct {
	blockedOrReported map[uuid.UUID][]uuid.UUID
	blockedBy         map[uuid.UUID][]uuid.UUID
}

func (f *fakeBlockReportRepo) Create(ctx context.Context, tx *gorm.DB, b *domain.BlockReport) (*domain.BlockReport, error) {
	return b, nil
}
func (f *fakeBlockReportRepo) BlockedOrReportedIDs(ctx context.Context, tx *gorm.DB, reporterID uuid.UUID) ([]uuid.UUID, error) {
	return f.blockedOrReported[reporterID], nil
}
func (f *fakeBlockReportRepo) BlockedByIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	return f.blockedBy[userID], nil
}

// TestSafetyFilter_ExcludesBlockedCandidate covers spec §8 scenario 4: a
// candidate the viewer has blocked (via the DB block/report table) never
// appears in the safety-filtered output even when every cache set is empty.
func TestSafetyFilter_ExcludesBlockedCandidate(t *testing.T) {
	viewer := uuid.New()
	blockedUser := uuid.New()
	okUser := uuid.New()

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	p := &Pipeline{deps: Deps{
		Log:   log,
		Cache: &fakeSafetyCache{sets: map[string][]string{}},
		BlockReports: &fakeBlockReportRepo{
			blockedOrReported: map[uuid.UUID][]uuid.UUID{viewer: {blockedUser}},
		},
	}}

	candidates := []Candidate{
		{UserID: blockedUser},
		{UserID: okUser},
	}

	out, err := p.safetyFilter(context.Background(), viewer, candidates)
	if err != nil {
		t.Fatalf("safetyFilter: %v", err)
	}
	if len(out) != 1 || out[0].UserID != okUser {
		t.Fatalf("safetyFilter result = %+v, want only %v", out, okUser)
	}
}

// TestSafetyFilter_ExcludesCacheBlockedSet covers the cache-backed exclusion
// path, independent of the DB block/report table.
func TestSafetyFilter_ExcludesCacheBlockedSet(t *testing.T) {
	viewer := uuid.New()
	blockedUser := uuid.New()
	okUser := uuid.New()

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}

	p := &Pipeline{deps: Deps{
		Log: log,
		Cache: &fakeSafetyCache{sets: map[string][]string{
			"resonate:user:" + viewer.String() + ":blocked": {blockedUser.String()},
		}},
		BlockReports: &fakeBlockReportRepo{},
	}}

	candidates := []Candidate{
		{UserID: blockedUser},
		{UserID: okUser},
	}

	out, err := p.safetyFilter(context.Background(), viewer, candidates)
	if err != nil {
		t.Fatalf("safetyFilter: %v", err)
	}
	if len(out) != 1 || out[0].UserID != okUser {
		t.Fatalf("safetyFilter result = %+v, want only %v", out, okUser)
	}
}

func TestSafetyFilter_EmptyInputShortCircuits(t *testing.T) {
	p := &Pipeline{}
	out, err := p.safetyFilter(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("safetyFilter: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("safetyFilter(nil) = %v, want empty", out)
	}
}
