package tracker

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/store"
	"github.com/MrSnakeDoc/statusboard/internal/store/memory"
	"github.com/MrSnakeDoc/statusboard/internal/store/sqlite"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable clock shared by concurrent submissions.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type engine struct {
	name string
	open func(t *testing.T) store.Store
}

var engines = []engine{
	{"memory", func(t *testing.T) store.Store { return memory.New() }},
	{"sqlite", func(t *testing.T) store.Store {
		s, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "tracker.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}},
}

// forEachEngine runs fn once per storage engine with a fresh tracker.
func forEachEngine(t *testing.T, fn func(t *testing.T, tr *Tracker, clock *fakeClock)) {
	for _, e := range engines {
		t.Run(e.name, func(t *testing.T) {
			clock := &fakeClock{now: base}
			tr := New(e.open(t), logger.Nop(), WithClock(clock.Now), WithMetrics(metrics.New()))
			fn(t, tr, clock)
		})
	}
}

func mustRegister(t *testing.T, tr *Tracker, name string) *domain.Service {
	t.Helper()
	svc, err := tr.Register(context.Background(), domain.RegisterInput{
		Name:     name,
		Category: "Streaming",
		Website:  "https://status.example.com",
	})
	require.NoError(t, err)
	return svc
}

func submitN(t *testing.T, tr *Tracker, serviceID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := tr.Submit(context.Background(), domain.SubmitInput{ServiceID: serviceID, ProblemType: domain.ProblemOutage})
		require.NoError(t, err)
	}
}

func TestRegister(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		svc := mustRegister(t, tr, "Café")
		assert.Equal(t, "cafe", svc.NormalizedName)
		assert.Equal(t, domain.StatusOperational, svc.Status)
		assert.Equal(t, domain.TrendDown, svc.Trend)
		assert.Zero(t, svc.ReportsCount)
		assert.Equal(t, strings.ToLower(svc.ID), svc.ID)
		assert.True(t, svc.CreatedAt.Equal(base))

		for _, dup := range []string{"cafe", "  CAFE  "} {
			_, err := tr.Register(context.Background(), domain.RegisterInput{Name: dup, Category: "Food", Website: "https://cafe.example.com"})
			require.ErrorIs(t, err, domain.ErrConflict, dup)

			var conflict *domain.ConflictError
			require.True(t, errors.As(err, &conflict))
			assert.Equal(t, domain.CodeServiceExists, conflict.Code)
		}

		services, err := tr.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, services, 1)
	})
}

func TestRegisterValidation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		_, err := tr.Register(context.Background(), domain.RegisterInput{Name: "Netflix", Category: "Streaming", Website: "not a url"})
		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "website", vErr.Field)

		services, err := tr.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, services)
	})
}

func TestRegisterIgnoresClientID(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		svc, err := tr.Register(context.Background(), domain.RegisterInput{
			ID: "chosen", Name: "Twitch", Category: "Streaming", Website: "https://twitch.tv",
		})
		require.NoError(t, err)
		assert.NotEqual(t, "chosen", svc.ID)
	})
}

func TestImportKeepsCatalogID(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		svc, err := tr.Import(context.Background(), domain.RegisterInput{
			ID: "YouTube", Name: "YouTube", Category: "Streaming", Website: "https://youtube.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "youtube", svc.ID)

		_, err = tr.Import(context.Background(), domain.RegisterInput{
			ID: "youtube", Name: "YouTube", Category: "Streaming", Website: "https://youtube.com",
		})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestFindByNameOrSlug(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		ctx := context.Background()
		netflix := mustRegister(t, tr, "Netflix")
		dessert := mustRegister(t, tr, "Crème Brûlée")

		tests := []struct {
			name    string
			token   string
			wantID  string
			wantErr error
		}{
			{"exact id", netflix.ID, netflix.ID, nil},
			{"upper-cased id", strings.ToUpper(netflix.ID), netflix.ID, nil},
			{"normalized name", "creme brulee", dessert.ID, nil},
			{"display name any case", "NETFLIX", netflix.ID, nil},
			{"display name with accents", "crème brûlée", dessert.ID, nil},
			{"padded token", "  netflix  ", netflix.ID, nil},
			{"empty token", "   ", "", domain.ErrNotFound},
			{"no fuzzy matching", "Netflx", "", domain.ErrNotFound},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, err := tr.FindByNameOrSlug(ctx, tt.token)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, svc.ID)
			})
		}

		_, err := tr.FindByID(ctx, strings.ToUpper(netflix.ID))
		assert.ErrorIs(t, err, domain.ErrNotFound, "FindByID is exact")
	})
}

func TestSubmitUpdatesService(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "Instagram")

		report, err := tr.Submit(ctx, domain.SubmitInput{
			ServiceID:   svc.ID,
			ProblemType: "  slow ",
			Description: " feed takes ages ",
			Location:    "Lyon",
		})
		require.NoError(t, err)
		assert.Equal(t, svc.ID, report.ServiceID)
		assert.Equal(t, "Instagram", report.ServiceName)
		assert.Equal(t, domain.ProblemSlow, report.ProblemType)
		assert.Equal(t, "feed takes ages", report.Description)
		assert.True(t, report.Timestamp.Equal(base))

		got, err := tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, got.ReportsCount)
		assert.Equal(t, domain.TrendUp, got.Trend)
		assert.Equal(t, domain.StatusOperational, got.Status)

		reports, err := tr.ByService(ctx, svc.ID)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, report.ID, reports[0].ID)
		assert.Equal(t, "Lyon", reports[0].Location)
	})
}

func TestSubmitValidation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		svc := mustRegister(t, tr, "Discord")

		_, err := tr.Submit(context.Background(), domain.SubmitInput{ServiceID: svc.ID, ProblemType: "bored"})
		var vErr *domain.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "problemType", vErr.Field)

		_, err = tr.Submit(context.Background(), domain.SubmitInput{ProblemType: domain.ProblemOutage})
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "serviceId", vErr.Field)

		count, err := tr.CountWithinWindow(context.Background(), 0)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestWindowWiderThanDuration(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "Netflix")

		clock.Set(base.AddDate(-40, 0, 0))
		submitN(t, tr, svc.ID, 1)
		clock.Set(base)
		submitN(t, tr, svc.ID, 1)

		tests := []struct {
			hours int
			want  int
		}{
			{24, 1},
			{2_000_000, 2},
			{3_000_000, 2},
			{math.MaxInt, 2},
		}
		for _, tt := range tests {
			reports, err := tr.WithinWindow(ctx, tt.hours)
			require.NoError(t, err)
			assert.Len(t, reports, tt.want, "window %d", tt.hours)

			count, err := tr.CountWithinWindow(ctx, tt.hours)
			require.NoError(t, err)
			assert.Equal(t, tt.want, count, "window %d", tt.hours)
		}

		clock.Set(base.Add(-time.Hour))
		count, err := tr.CountWithinWindow(ctx, math.MaxInt)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "upper bound still applies")
	})
}

func TestSubmitUnknownServiceHasNoSideEffects(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "Spotify")

		_, err := tr.Submit(ctx, domain.SubmitInput{ServiceID: "does-not-exist", ProblemType: domain.ProblemOutage})
		require.ErrorIs(t, err, domain.ErrNotFound)

		reports, err := tr.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, reports)

		got, err := tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.Zero(t, got.ReportsCount)
		assert.Equal(t, domain.TrendDown, got.Trend)
	})
}

func TestStatusEscalation(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "Netflix")

		submitN(t, tr, svc.ID, 20)
		got, err := tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 20, got.ReportsCount)
		assert.Equal(t, domain.StatusOperational, got.Status)

		submitN(t, tr, svc.ID, 1)
		got, err = tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 21, got.ReportsCount)
		assert.Equal(t, domain.StatusDegraded, got.Status)

		submitN(t, tr, svc.ID, 80)
		got, err = tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 101, got.ReportsCount)
		assert.Equal(t, domain.StatusDown, got.Status)

		submitN(t, tr, svc.ID, 1)
		got, err = tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDown, got.Status, "down never demotes")
	})
}

func TestListOrdering(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		zeta := mustRegister(t, tr, "Zeta")
		alpha := mustRegister(t, tr, "Alpha")
		beta := mustRegister(t, tr, "Beta")
		submitN(t, tr, zeta.ID, 5)
		submitN(t, tr, alpha.ID, 50)
		submitN(t, tr, beta.ID, 5)

		services, err := tr.List(context.Background())
		require.NoError(t, err)
		require.Len(t, services, 3)
		assert.Equal(t, []string{"Alpha", "Beta", "Zeta"}, names(services))

		top, err := tr.Top(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"Alpha", "Beta"}, names(top))

		top, err = tr.Top(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, top, 3)
	})
}

func TestReportWindow(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "WhatsApp")

		clock.Set(base.Add(-25 * time.Hour))
		old, err := tr.Submit(ctx, domain.SubmitInput{ServiceID: svc.ID, ProblemType: domain.ProblemConnection})
		require.NoError(t, err)

		clock.Set(base.Add(-1 * time.Hour))
		recent, err := tr.Submit(ctx, domain.SubmitInput{ServiceID: svc.ID, ProblemType: domain.ProblemSlow})
		require.NoError(t, err)

		clock.Set(base)
		window, err := tr.WithinWindow(ctx, 24)
		require.NoError(t, err)
		require.Len(t, window, 1)
		assert.Equal(t, recent.ID, window[0].ID)

		count, err := tr.CountWithinWindow(ctx, 24)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		all, err := tr.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{recent.ID, old.ID}, reportIDs(all))

		latest, err := tr.Recent(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{recent.ID}, reportIDs(latest))

		combined, err := tr.Reports(ctx, ReportQuery{ServiceID: svc.ID, WindowHours: 48, Limit: 5})
		require.NoError(t, err)
		assert.Len(t, combined, 2)

		got, err := tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 2, got.ReportsCount, "lifetime count ignores the window")
	})
}

func TestConcurrentSubmissions(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		ctx := context.Background()
		svc := mustRegister(t, tr, "Twitter")
		submitN(t, tr, svc.ID, 20)

		var wg sync.WaitGroup
		errs := make(chan error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := tr.Submit(ctx, domain.SubmitInput{ServiceID: svc.ID, ProblemType: domain.ProblemOutage})
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := tr.FindByID(ctx, svc.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 22, got.ReportsCount)
		assert.Equal(t, domain.StatusDegraded, got.Status)
	})
}

func TestConcurrentRegistration(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, _ *fakeClock) {
		var wg sync.WaitGroup
		results := make(chan error, 2)
		for _, name := range []string{"Café", "cafe"} {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				_, err := tr.Register(context.Background(), domain.RegisterInput{
					Name: name, Category: "Food", Website: "https://cafe.example.com",
				})
				results <- err
			}(name)
		}
		wg.Wait()
		close(results)

		var successes, conflicts int
		for err := range results {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, successes)
		assert.Equal(t, 1, conflicts)
	})
}

func TestStats(t *testing.T) {
	forEachEngine(t, func(t *testing.T, tr *Tracker, clock *fakeClock) {
		ctx := context.Background()
		busy := mustRegister(t, tr, "Amazon")
		quiet := mustRegister(t, tr, "eBay")
		mustRegister(t, tr, "Etsy")

		clock.Set(base.Add(-30 * time.Hour))
		submitN(t, tr, busy.ID, 21)
		clock.Set(base.Add(-2 * time.Hour))
		submitN(t, tr, quiet.ID, 3)
		clock.Set(base)

		stats, err := tr.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, Stats{TotalServices: 3, Operational: 2, Issues: 1, ReportsLast24h: 3}, stats)
	})
}

// failingStore breaks every atomic unit after fn has staged its writes.
type failingStore struct {
	store.Store
}

func (f failingStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	return f.Store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return errors.New("disk full")
	})
}

func TestStorageFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	healthy := New(mem, logger.Nop())
	svc := mustRegister(t, healthy, "Slack")

	broken := New(failingStore{Store: mem}, logger.Nop())
	_, err := broken.Submit(ctx, domain.SubmitInput{ServiceID: svc.ID, ProblemType: domain.ProblemOutage})
	require.ErrorIs(t, err, domain.ErrStorage)

	var sErr *domain.StorageError
	require.True(t, errors.As(err, &sErr))
	assert.Equal(t, "submit report", sErr.Op)

	got, err := healthy.FindByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ReportsCount)

	reports, err := healthy.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, reports)

	_, err = broken.Register(ctx, domain.RegisterInput{Name: "Teams", Category: "Work", Website: "https://teams.microsoft.com"})
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func names(services []*domain.Service) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}

func reportIDs(reports []*domain.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}
