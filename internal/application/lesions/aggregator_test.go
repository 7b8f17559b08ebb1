package lesions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/patients"
)

type fakeDirectory struct {
	mu sync.Mutex

	lesions []domain.Lesion
	listErr error

	scans    map[domain.ID][]domain.Scan
	scanErrs map[domain.ID]error

	comparison      *domain.Comparison
	comparisonErr   error
	comparisonCalls int

	created []domain.Lesion
	deleted []domain.ID
}

func (f *fakeDirectory) List(ctx context.Context) ([]domain.Lesion, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.lesions, nil
}

func (f *fakeDirectory) Create(ctx context.Context, nickname, bodyPart string) (*domain.Lesion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := domain.Lesion{ID: domain.ID(len(f.created) + 1), Nickname: nickname, BodyPart: bodyPart}
	f.created = append(f.created, l)
	return &l, nil
}

func (f *fakeDirectory) Delete(ctx context.Context, id domain.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeDirectory) Scans(ctx context.Context, id domain.ID) ([]domain.Scan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.scanErrs[id]; err != nil {
		return nil, err
	}
	return f.scans[id], nil
}

func (f *fakeDirectory) Comparison(ctx context.Context, id domain.ID) (*domain.Comparison, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comparisonCalls++
	if f.comparisonErr != nil {
		return nil, f.comparisonErr
	}
	return f.comparison, nil
}

type fakeAuth struct {
	profile *patients.Profile
	err     error
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (*patients.Identity, error) {
	return nil, nil
}

func (f *fakeAuth) Signup(ctx context.Context, email, password, fullName string) error {
	return nil
}

func (f *fakeAuth) Profile(ctx context.Context) (*patients.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

type fakeCache struct {
	lesions   []domain.Lesion
	fetchedAt time.Time
	putCalls  int
}

func (f *fakeCache) PutSummaries(ctx context.Context, ls []domain.Lesion, fetchedAt time.Time) error {
	f.putCalls++
	f.lesions = append([]domain.Lesion(nil), ls...)
	f.fetchedAt = fetchedAt
	return nil
}

func (f *fakeCache) Summaries(ctx context.Context) ([]domain.Lesion, time.Time, error) {
	return f.lesions, f.fetchedAt, nil
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC)
}

func scanAt(t time.Time, url string) domain.Scan {
	return domain.Scan{SubmittedAt: t, ImageURL: url}
}

func TestLoadDashboardAllSettled(t *testing.T) {
	dir := &fakeDirectory{
		lesions: []domain.Lesion{
			{ID: 1, Nickname: "left arm mole"},
			{ID: 2, Nickname: "shoulder spot"},
			{ID: 3, Nickname: "new freckle"},
		},
		scans: map[domain.ID][]domain.Scan{
			// Out of order on purpose.
			1: {scanAt(day(1), "old.png"), scanAt(day(20), "new.png"), scanAt(day(10), "mid.png")},
			3: {},
		},
		scanErrs: map[domain.ID]error{
			2: derrors.New(derrors.KindServer, "scan history unavailable"),
		},
	}
	auth := &fakeAuth{profile: &patients.Profile{FullName: "Ada Perez"}}
	cache := &fakeCache{}
	agg := &Aggregator{Directory: dir, Auth: auth, Cache: cache}

	dash, err := agg.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("LoadDashboard failed: %v", err)
	}
	if dash.Profile == nil || dash.Profile.FullName != "Ada Perez" {
		t.Errorf("Unexpected profile: %+v", dash.Profile)
	}
	if len(dash.Lesions) != 3 {
		t.Fatalf("One failed history fetch must not drop lesions, got %d of 3", len(dash.Lesions))
	}

	byID := map[domain.ID]domain.Lesion{}
	for _, l := range dash.Lesions {
		byID[l.ID] = l
	}

	if got := byID[1]; got.ScanCount != 3 || got.LatestImage != "new.png" {
		t.Errorf("Lesion 1 summary wrong: %+v", got)
	}
	if got := byID[1]; got.LastSeenAt == nil || !got.LastSeenAt.Equal(day(20)) {
		t.Errorf("Lesion 1 last seen wrong: %v", got.LastSeenAt)
	}
	if got := byID[2]; got.ScanCount != 0 || got.LastSeenAt != nil {
		t.Errorf("Failed lesion must read as never scanned: %+v", got)
	}
	if got := byID[3]; got.ScanCount != 0 {
		t.Errorf("Empty history must read as zero scans: %+v", got)
	}

	if cache.putCalls != 1 {
		t.Errorf("Expected one cache write, got %d", cache.putCalls)
	}
}

func TestLoadDashboardAuthErrorEscalates(t *testing.T) {
	dir := &fakeDirectory{lesions: []domain.Lesion{{ID: 1}}}
	auth := &fakeAuth{err: derrors.New(derrors.KindAuth, "token expired")}
	agg := &Aggregator{Directory: dir, Auth: auth}

	if _, err := agg.LoadDashboard(context.Background()); !derrors.IsAuth(err) {
		t.Fatalf("Expected auth error to escalate, got %v", err)
	}
}

func TestLoadDashboardProfileFailureIsNonFatal(t *testing.T) {
	dir := &fakeDirectory{lesions: []domain.Lesion{{ID: 1}}}
	auth := &fakeAuth{err: derrors.New(derrors.KindServer, "profile lookup failed")}
	agg := &Aggregator{Directory: dir, Auth: auth}

	dash, err := agg.LoadDashboard(context.Background())
	if err != nil {
		t.Fatalf("Profile failure must not fail the dashboard: %v", err)
	}
	if dash.Profile != nil {
		t.Errorf("Expected no profile, got %+v", dash.Profile)
	}
	if len(dash.Lesions) != 1 {
		t.Errorf("Expected the lesion list regardless, got %d", len(dash.Lesions))
	}
}

func TestCachedDashboardIsStale(t *testing.T) {
	cache := &fakeCache{
		lesions:   []domain.Lesion{{ID: 4, Nickname: "back mole"}},
		fetchedAt: day(5),
	}
	agg := &Aggregator{Cache: cache}

	dash, err := agg.CachedDashboard(context.Background())
	if err != nil {
		t.Fatalf("CachedDashboard failed: %v", err)
	}
	if !dash.Stale {
		t.Error("Cached dashboard must be flagged stale")
	}
	if len(dash.Lesions) != 1 || !dash.FetchedAt.Equal(day(5)) {
		t.Errorf("Unexpected snapshot: %+v", dash)
	}
}

func TestCreateValidation(t *testing.T) {
	dir := &fakeDirectory{}
	agg := &Aggregator{Directory: dir}

	testCases := []struct {
		name     string
		nickname string
		bodyPart string
	}{
		{"missing nickname", "", "left arm"},
		{"missing body part", "mole", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := agg.Create(context.Background(), tc.nickname, tc.bodyPart)
			if derrors.KindOf(err) != derrors.KindInvalidInput {
				t.Fatalf("Expected invalid_input, got %v", err)
			}
			if len(dir.created) != 0 {
				t.Errorf("Expected no create request, got %d", len(dir.created))
			}
		})
	}

	l, err := agg.Create(context.Background(), "mole", "left arm")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if l.Nickname != "mole" || l.BodyPart != "left arm" {
		t.Errorf("Unexpected created lesion: %+v", l)
	}
}
