// Package storetest holds the behavioural contract every storage engine
// must satisfy. Engine packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// Factory returns a fresh, empty store. The factory owns cleanup.
type Factory func(t *testing.T) store.Store

// base is truncated to the second so every engine round-trips it exactly.
var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// Run executes the whole contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("InsertAndLookup", func(t *testing.T) { testInsertAndLookup(t, newStore(t)) })
	t.Run("DuplicateNormalizedName", func(t *testing.T) { testDuplicateNormalizedName(t, newStore(t)) })
	t.Run("RollbackOnError", func(t *testing.T) { testRollbackOnError(t, newStore(t)) })
	t.Run("UpdateService", func(t *testing.T) { testUpdateService(t, newStore(t)) })
	t.Run("ReportsOrderingAndFilter", func(t *testing.T) { testReportsOrderingAndFilter(t, newStore(t)) })
	t.Run("ReportForUnknownService", func(t *testing.T) { testReportForUnknownService(t, newStore(t)) })
	t.Run("ConcurrentIncrements", func(t *testing.T) { testConcurrentIncrements(t, newStore(t)) })
	t.Run("ConcurrentRegistration", func(t *testing.T) { testConcurrentRegistration(t, newStore(t)) })
}

// MustInsert registers svc in its own unit of work.
func MustInsert(t *testing.T, s store.Store, svc *domain.Service) {
	t.Helper()
	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertService(ctx, svc)
	})
	require.NoError(t, err)
}

func newService(id, name string) *domain.Service {
	return domain.NewService(id, name, "Streaming", "", "https://"+id+".example.com", base)
}

func testInsertAndLookup(t *testing.T, s store.Store) {
	ctx := context.Background()
	svc := newService("svc-netflix", "Netflix")
	MustInsert(t, s, svc)

	got, err := s.ServiceByID(ctx, "svc-netflix")
	require.NoError(t, err)
	assert.Equal(t, "Netflix", got.Name)
	assert.Equal(t, "netflix", got.NormalizedName)
	assert.Equal(t, domain.StatusOperational, got.Status)
	assert.Equal(t, domain.TrendDown, got.Trend)
	assert.EqualValues(t, 0, got.ReportsCount)

	got, err = s.ServiceByNormalizedName(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, "svc-netflix", got.ID)

	_, err = s.ServiceByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.ServiceByNormalizedName(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	services, err := s.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func testDuplicateNormalizedName(t *testing.T, s store.Store) {
	MustInsert(t, s, newService("svc-1", "Café"))

	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertService(ctx, newService("svc-2", "  CAFE  "))
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)

	services, err := s.ListServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func testRollbackOnError(t *testing.T, s store.Store) {
	ctx := context.Background()
	MustInsert(t, s, newService("svc-1", "YouTube"))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		svc, err := tx.ServiceByID(ctx, "svc-1")
		if err != nil {
			return err
		}
		if err := tx.InsertReport(ctx, &domain.Report{
			ID: "r-1", ServiceID: svc.ID, ServiceName: svc.Name,
			ProblemType: domain.ProblemSlow, Timestamp: base,
		}); err != nil {
			return err
		}
		domain.RecordReport(svc)
		if err := tx.UpdateService(ctx, svc); err != nil {
			return err
		}
		if err := tx.InsertService(ctx, newService("svc-2", "Twitch")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	svc, err := s.ServiceByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, svc.ReportsCount)
	assert.Equal(t, domain.TrendDown, svc.Trend)

	_, err = s.ServiceByID(ctx, "svc-2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := s.CountReports(ctx, domain.ReportFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testUpdateService(t *testing.T, s store.Store) {
	ctx := context.Background()
	MustInsert(t, s, newService("svc-1", "Amazon"))

	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		svc, err := tx.ServiceByID(ctx, "svc-1")
		if err != nil {
			return err
		}
		svc.ReportsCount = 101
		svc.Status = domain.StatusDown
		svc.Trend = domain.TrendUp
		svc.UpdatedAt = base.Add(time.Minute)
		return tx.UpdateService(ctx, svc)
	})
	require.NoError(t, err)

	svc, err := s.ServiceByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 101, svc.ReportsCount)
	assert.Equal(t, domain.StatusDown, svc.Status)
	assert.Equal(t, domain.TrendUp, svc.Trend)

	err = s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.ServiceByID(ctx, "ghost")
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testReportsOrderingAndFilter(t *testing.T, s store.Store) {
	ctx := context.Background()
	MustInsert(t, s, newService("svc-a", "Instagram"))
	MustInsert(t, s, newService("svc-b", "WhatsApp"))

	reports := []*domain.Report{
		{ID: "r-old", ServiceID: "svc-a", ServiceName: "Instagram", ProblemType: domain.ProblemSlow, Timestamp: base.Add(-25 * time.Hour)},
		{ID: "r-recent", ServiceID: "svc-a", ServiceName: "Instagram", ProblemType: domain.ProblemOutage, Description: "down", Location: "Paris", Timestamp: base.Add(-1 * time.Hour)},
		{ID: "r-mid", ServiceID: "svc-b", ServiceName: "WhatsApp", ProblemType: domain.ProblemConnection, Timestamp: base.Add(-2 * time.Hour)},
	}
	err := s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		for _, r := range reports {
			if err := tx.InsertReport(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	all, err := s.ListReports(ctx, domain.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"r-recent", "r-mid", "r-old"}, reportIDs(all))
	assert.Equal(t, "Paris", all[0].Location)
	assert.Equal(t, "down", all[0].Description)
	assert.True(t, all[0].Timestamp.Equal(base.Add(-time.Hour)))

	limited, err := s.ListReports(ctx, domain.ReportFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"r-recent", "r-mid"}, reportIDs(limited))

	window := domain.ReportFilter{Since: base.Add(-24 * time.Hour), Until: base}
	recent, err := s.ListReports(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, []string{"r-recent", "r-mid"}, reportIDs(recent))

	count, err := s.CountReports(ctx, window)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	byService, err := s.ListReports(ctx, domain.ReportFilter{ServiceID: "svc-a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r-recent", "r-old"}, reportIDs(byService))
}

func testReportForUnknownService(t *testing.T, s store.Store) {
	err := s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
		return tx.InsertReport(ctx, &domain.Report{
			ID: "r-ghost", ServiceID: "ghost", ServiceName: "Ghost",
			ProblemType: domain.ProblemSlow, Timestamp: base,
		})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	count, err := s.CountReports(context.Background(), domain.ReportFilter{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testConcurrentIncrements(t *testing.T, s store.Store) {
	ctx := context.Background()
	svc := newService("svc-1", "Netflix")
	svc.ReportsCount = 20
	MustInsert(t, s, svc)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- s.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
				current, err := tx.ServiceByID(ctx, "svc-1")
				if err != nil {
					return err
				}
				if err := tx.InsertReport(ctx, &domain.Report{
					ID: fmt.Sprintf("r-%d", i), ServiceID: current.ID, ServiceName: current.Name,
					ProblemType: domain.ProblemOutage, Timestamp: base,
				}); err != nil {
					return err
				}
				domain.RecordReport(current)
				return tx.UpdateService(ctx, current)
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.ServiceByID(ctx, "svc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 20+workers, got.ReportsCount)
	assert.Equal(t, domain.StatusDegraded, got.Status)

	count, err := s.CountReports(ctx, domain.ReportFilter{ServiceID: "svc-1"})
	require.NoError(t, err)
	assert.Equal(t, workers, count)
}

func testConcurrentRegistration(t *testing.T, s store.Store) {
	names := []string{"Café", "cafe", "  CAFE  ", "CAFÉ", "café"}

	var wg sync.WaitGroup
	results := make(chan error, len(names))
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results <- s.Atomic(context.Background(), func(ctx context.Context, tx store.Tx) error {
				if _, err := tx.ServiceByNormalizedName(ctx, domain.NormalizeName(name)); err == nil {
					return domain.ErrServiceExists
				} else if !errors.Is(err, domain.ErrNotFound) {
					return err
				}
				return tx.InsertService(ctx, newService(fmt.Sprintf("svc-%d", i), name))
			})
		}(i, name)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
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
	assert.Equal(t, len(names)-1, conflicts)

	services, err := s.ListServices(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 1)
}

func reportIDs(reports []*domain.Report) []string {
	ids := make([]string, len(reports))
	for i, r := range reports {
		ids[i] = r.ID
	}
	return ids
}
