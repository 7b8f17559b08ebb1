package lesions

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"

	"github.com/YahyaMohamed3/Dermsense-sub000/internal/application"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/derrors"
	domain "github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/lesions"
	"github.com/YahyaMohamed3/Dermsense-sub000/internal/domain/patients"
)

// Aggregator builds the lesion dashboard: the tracked-lesion list enriched
// with derived summary fields computed from each lesion's scan history.
type Aggregator struct {
	Directory domain.Directory
	Auth      patients.Authenticator
	Cache     domain.Cache // optional write-through snapshot
	Clock     application.Clock
}

// Dashboard is the aggregated view the UI renders.
type Dashboard struct {
	Profile   *patients.Profile `json:"profile,omitempty"`
	Lesions   []domain.Lesion   `json:"lesions"`
	FetchedAt time.Time         `json:"fetched_at"`
	Stale     bool              `json:"stale"` // true when served from the local cache
}

// LoadDashboard fetches the lesion list, then the scan history of every
// lesion concurrently, joining all-settled: one failing history fetch leaves
// that lesion in the list with ScanCount 0 instead of blanking the
// dashboard. Derived fields are recomputed from scratch on every load.
func (a *Aggregator) LoadDashboard(ctx context.Context) (*Dashboard, error) {
	dash := &Dashboard{FetchedAt: a.now()}

	profile, err := a.Auth.Profile(ctx)
	switch {
	case err == nil:
		dash.Profile = profile
	case derrors.IsAuth(err):
		// Expired credential: escalate instead of rendering a half dashboard.
		return nil, err
	default:
		// Greeting is decoration; the dashboard renders without it.
		log.WithError(err).Warn("profile fetch failed")
	}

	list, err := a.Directory.List(ctx)
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.Lesion, len(list))
	var wg sync.WaitGroup
	for i := range list {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			enriched[i] = a.enrich(ctx, list[i])
		}(i)
	}
	wg.Wait()
	dash.Lesions = enriched

	if a.Cache != nil {
		if err := a.Cache.PutSummaries(ctx, enriched, dash.FetchedAt); err != nil {
			log.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return dash, nil
}

// enrich computes a lesion's derived fields from its own history fetch.
// Failure is non-fatal: the lesion stays on the dashboard with ScanCount 0.
func (a *Aggregator) enrich(ctx context.Context, l domain.Lesion) domain.Lesion {
	l.ScanCount = 0
	l.LastSeenAt = nil
	l.LatestImage = ""

	history, err := a.Directory.Scans(ctx, l.ID)
	if err != nil {
		log.WithError(err).WithField("lesion_id", l.ID).Warn("scan history fetch failed")
		return l
	}
	if len(history) == 0 {
		return l
	}
	SortNewestFirst(history)
	l.ScanCount = len(history)
	seen := history[0].SubmittedAt
	l.LastSeenAt = &seen
	l.LatestImage = history[0].ImageURL
	return l
}

// CachedDashboard returns the last successful snapshot, for rendering when
// the lesion list itself is unreachable. Always flagged stale.
func (a *Aggregator) CachedDashboard(ctx context.Context) (*Dashboard, error) {
	if a.Cache == nil {
		return nil, derrors.New(derrors.KindNetwork, "dashboard unavailable and no local snapshot configured")
	}
	ls, fetchedAt, err := a.Cache.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{Lesions: ls, FetchedAt: fetchedAt, Stale: true}, nil
}

// Create registers a new tracked lesion. Fire-and-confirm: the caller
// appends the returned server representation on success and keeps its list
// untouched on failure.
func (a *Aggregator) Create(ctx context.Context, nickname, bodyPart string) (*domain.Lesion, error) {
	if nickname == "" || bodyPart == "" {
		return nil, derrors.New(derrors.KindInvalidInput, "both a nickname and a body part are required")
	}
	return a.Directory.Create(ctx, nickname, bodyPart)
}

// Delete removes a lesion and all of its scans. Same fire-and-confirm
// contract as Create.
func (a *Aggregator) Delete(ctx context.Context, id domain.ID) error {
	return a.Directory.Delete(ctx, id)
}

func (a *Aggregator) now() time.Time {
	if a.Clock != nil {
		return a.Clock.Now()
	}
	return application.SystemClock{}.Now()
}

// SortNewestFirst orders scans by SubmittedAt descending. The service is
// believed to return newest-first already, but the client never trusts
// transport order.
func SortNewestFirst(scans []domain.Scan) {
	sort.SliceStable(scans, func(i, j int) bool {
		return scans[i].SubmittedAt.After(scans[j].SubmittedAt)
	})
}
