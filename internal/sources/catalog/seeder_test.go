package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/store/memory"
	"github.com/MrSnakeDoc/statusboard/internal/tracker"
)

func TestSeederIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tr := tracker.New(memory.New(), logger.Nop())
	seeder := NewSeeder(writeCatalog(t, sampleCatalog), tr, logger.Nop())

	res, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Loaded: 3, Registered: 3, Skipped: 1}, res)

	svc, err := tr.FindByID(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, "Streaming", svc.Category)
	assert.Equal(t, "Films et séries en streaming", svc.Description)

	res, err = seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{Loaded: 3, Existing: 3, Skipped: 1}, res)

	services, err := tr.List(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 3)
}

func TestSeederKeepsExistingServices(t *testing.T) {
	ctx := context.Background()
	tr := tracker.New(memory.New(), logger.Nop())
	existing, err := tr.Register(ctx, domain.RegisterInput{Name: "NETFLIX", Category: "Video", Website: "https://netflix.com"})
	require.NoError(t, err)

	res, err := NewSeeder(writeCatalog(t, sampleCatalog), tr, logger.Nop()).Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Registered)
	assert.Equal(t, 1, res.Existing)

	svc, err := tr.FindByNameOrSlug(ctx, "netflix")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, svc.ID)
	assert.Equal(t, "Video", svc.Category)
}

type failingImporter struct{}

func (failingImporter) Import(context.Context, domain.RegisterInput) (*domain.Service, error) {
	return nil, &domain.StorageError{Op: "register service", Err: errors.New("connection reset")}
}

func TestSeederStopsOnStorageFailure(t *testing.T) {
	_, err := NewSeeder(writeCatalog(t, sampleCatalog), failingImporter{}, logger.Nop()).Seed(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestSeederMissingFile(t *testing.T) {
	_, err := NewSeeder("/nonexistent/catalog.yaml", failingImporter{}, logger.Nop()).Seed(context.Background())
	assert.Error(t, err)
}
