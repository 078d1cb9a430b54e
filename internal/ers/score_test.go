package ers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/resonate/resonate-backend/internal/domain"
)

// fakeUserRepo and fakeProfileRepo satisfy the narrow repo interfaces with an
// in-memory map, the way the teacher's handler tests stub repos directly
// rather than hitting Postgres (internal/data/repos/testutil is reserved for
// integration tests that need a real database).
type fakeUserRepo struct {
	byID map[uuid.UUID]*domain.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.User, error) {
	var out []*domain.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	return nil, errNotFound
}
func (f *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, u *domain.User) (*domain.User, error) {
	return u, nil
}
func (f *fakeUserRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return nil
}
func (f *fakeUserRepo) TouchLastActive(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return nil
}
func (f *fakeUserRepo) ListActiveOnboarded(ctx context.Context, tx *gorm.DB, since time.Time, excludeID uuid.UUID, limit int) ([]*domain.User, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	byUser map[uuid.UUID]*domain.ResonanceProfile
}

func (f *fakeProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.ResonanceProfile, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}
func (f *fakeProfileRepo) GetByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*domain.ResonanceProfile, error) {
	var out []*domain.ResonanceProfile
	for _, id := range userIDs {
		if p, ok := f.byUser[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeProfileRepo) Upsert(ctx context.Context, tx *gorm.DB, p *domain.ResonanceProfile) (*domain.ResonanceProfile, error) {
	f.byUser[p.UserID] = p
	return p, nil
}

type fakeCache struct{}

func (fakeCache) Get(ctx context.Context, key string, out any) (bool, error) { return false, nil }
func (fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (fakeCache) Delete(ctx context.Context, key string) error                   { return nil }
func (fakeCache) ScanDelete(ctx context.Context, pattern string) (int, error)    { return 0, nil }
func (fakeCache) SAdd(ctx context.Context, key string, members ...string) error  { return nil }
func (fakeCache) SIsMember(ctx context.Context, key, member string) (bool, error) { return false, nil }
func (fakeCache) SMembers(ctx context.Context, key string) ([]string, error)     { return nil, nil }
func (fakeCache) Ping(ctx context.Context) error                                { return nil }

var errNotFound = notFoundErr{}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

func buildProfile(userID uuid.UUID, arch domain.Archetype, style domain.Style, depth float64, hourly [24]float64) *domain.ResonanceProfile {
	h := make([]float64, 24)
	copy(h, hourly[:])
	return &domain.ResonanceProfile{
		UserID:     userID,
		Archetype:  &arch,
		Style:      &style,
		DepthScore: depth,
		HourlyActivity: h,
	}
}

func newTestEngine(users map[uuid.UUID]*domain.User, profiles map[uuid.UUID]*domain.ResonanceProfile) *Engine {
	return NewEngine(&fakeUserRepo{byID: users}, &fakeProfileRepo{byUser: profiles}, fakeCache{})
}

func ptr(f float64) *float64 { return &f }

func TestScore_IdenticalTwins(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	hourly := [24]float64{}
	hourly[10] = 0.5

	users := map[uuid.UUID]*domain.User{
		userA: {ID: userA, Lat: ptr(40.6782), Lng: ptr(-73.9442), LastActiveAt: now.Add(-time.Hour)},
		userB: {ID: userB, Lat: ptr(40.6782), Lng: ptr(-73.9442), LastActiveAt: now.Add(-time.Hour)},
	}
	profiles := map[uuid.UUID]*domain.ResonanceProfile{
		userA: buildProfile(userA, domain.ArchetypeWave, domain.StylePoetic, 0.8, hourly),
		userB: buildProfile(userB, domain.ArchetypeWave, domain.StylePoetic, 0.8, hourly),
	}

	engine := newTestEngine(users, profiles)
	sim := 0.95
	result, err := engine.Score(context.Background(), userA, userB, &sim)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// spec §8 scenario 2: 0.95*30 + 1*15 + 0.85*20 + 1*15 + 0.85*20 = 92.5 -> 93
	if result.TotalScore != 93 {
		t.Fatalf("TotalScore = %d, want 93", result.TotalScore)
	}
}

func TestScore_NoOverlapSchedule(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	hourlyA := [24]float64{}
	hourlyA[2] = 1
	hourlyB := [24]float64{}
	hourlyB[14] = 1

	users := map[uuid.UUID]*domain.User{
		userA: {ID: userA, LastActiveAt: now},
		userB: {ID: userB, LastActiveAt: now},
	}
	profiles := map[uuid.UUID]*domain.ResonanceProfile{
		userA: buildProfile(userA, domain.ArchetypeWave, domain.StylePoetic, 0.5, hourlyA),
		userB: buildProfile(userB, domain.ArchetypeWave, domain.StylePoetic, 0.5, hourlyB),
	}

	engine := newTestEngine(users, profiles)
	sim := 0.5
	result, err := engine.Score(context.Background(), userA, userB, &sim)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	// spec §8 scenario 3: 0.5*30 + 0*15 + 0.85*20 + 1*15 + 0.85*20 = 64
	if result.TotalScore != 64 {
		t.Fatalf("TotalScore = %d, want 64", result.TotalScore)
	}
}

func TestScore_SymmetricAndBounded(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	now := time.Now()
	hourlyA := [24]float64{}
	hourlyA[5], hourlyA[6] = 0.4, 0.6
	hourlyB := [24]float64{}
	hourlyB[5], hourlyB[6] = 0.6, 0.4

	users := map[uuid.UUID]*domain.User{
		userA: {ID: userA, Lat: ptr(40.0), Lng: ptr(-73.0), LastActiveAt: now.Add(-2 * time.Hour)},
		userB: {ID: userB, Lat: ptr(40.1), Lng: ptr(-73.1), LastActiveAt: now.Add(-3 * time.Hour)},
	}
	profiles := map[uuid.UUID]*domain.ResonanceProfile{
		userA: buildProfile(userA, domain.ArchetypeSpark, domain.StyleExpressive, 0.3, hourlyA),
		userB: buildProfile(userB, domain.ArchetypeEmber, domain.StyleWitty, 0.7, hourlyB),
	}

	fwd := newTestEngine(users, profiles)
	sim := 0.6
	forward, err := fwd.Score(context.Background(), userA, userB, &sim)
	if err != nil {
		t.Fatalf("Score forward: %v", err)
	}
	if forward.TotalScore < 0 || forward.TotalScore > 100 {
		t.Fatalf("TotalScore out of bounds: %d", forward.TotalScore)
	}

	bwd := newTestEngine(users, profiles)
	backward, err := bwd.Score(context.Background(), userB, userA, &sim)
	if err != nil {
		t.Fatalf("Score backward: %v", err)
	}
	if forward.TotalScore != backward.TotalScore {
		t.Fatalf("score not symmetric: forward=%d backward=%d", forward.TotalScore, backward.TotalScore)
	}
}

func TestChronobiologicalOverlap(t *testing.T) {
	peak := [24]float64{}
	peak[3] = 1
	if v := chronobiologicalOverlap(peak, peak); v != 1 {
		t.Fatalf("identical peaks = %v, want 1", v)
	}

	a := [24]float64{}
	a[1] = 1
	b := [24]float64{}
	b[20] = 1
	if v := chronobiologicalOverlap(a, b); v != 0 {
		t.Fatalf("disjoint peaks = %v, want 0", v)
	}

	empty := [24]float64{}
	if v := chronobiologicalOverlap(empty, peak); v != 0.5 {
		t.Fatalf("empty array = %v, want 0.5", v)
	}
}

func TestDepthDifferential(t *testing.T) {
	if v := depthDifferential(0.4, 0.4); v != 1 {
		t.Fatalf("depthDiff(x,x) = %v, want 1", v)
	}
	if v := depthDifferential(0, 0.5); v != 0 {
		t.Fatalf("depthDiff(0,0.5) = %v, want 0", v)
	}
	closer := depthDifferential(0.1, 0.2)
	farther := depthDifferential(0.1, 0.4)
	if closer <= farther {
		t.Fatalf("depthDiff not monotonically non-increasing: closer=%v farther=%v", closer, farther)
	}
}
