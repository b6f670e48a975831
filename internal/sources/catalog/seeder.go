package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
)

// Importer registers catalog entries. *tracker.Tracker implements it.
type Importer interface {
	Import(ctx context.Context, in domain.RegisterInput) (*domain.Service, error)
}

// Result summarizes one seeding pass.
type Result struct {
	Loaded     int
	Registered int
	Existing   int
	Skipped    int
}

// Seeder loads the catalog and registers every entry that is not
// registered yet.
type Seeder struct {
	loader   *Loader
	importer Importer
	logger   logger.Logger
}

// NewSeeder creates a seeder for the catalog at filePath.
func NewSeeder(filePath string, importer Importer, log logger.Logger) *Seeder {
	return &Seeder{
		loader:   NewLoader(filePath),
		importer: importer,
		logger:   log,
	}
}

// Source returns the catalog file path.
func (s *Seeder) Source() string { return s.loader.Path() }

// Seed runs one pass. Entries whose name is already taken count as
// existing; any other registration error aborts the pass.
func (s *Seeder) Seed(ctx context.Context) (Result, error) {
	config, err := s.loader.Load()
	if err != nil {
		return Result{}, err
	}

	inputs, skipped, err := Map(config)
	for _, sk := range skipped {
		s.logger.Warn("skipping catalog entry",
			logger.String("category", sk.Category),
			logger.String("name", sk.Name),
			logger.String("reason", sk.Reason))
	}
	if err != nil {
		return Result{Skipped: len(skipped)}, err
	}

	res := Result{Loaded: len(inputs), Skipped: len(skipped)}
	for _, in := range inputs {
		_, err := s.importer.Import(ctx, in)
		switch {
		case err == nil:
			res.Registered++
		case errors.Is(err, domain.ErrConflict):
			res.Existing++
		default:
			return res, fmt.Errorf("failed to register %q: %w", in.Name, err)
		}
	}

	s.logger.Info("catalog seeded",
		logger.String("source", s.loader.Path()),
		logger.Int("loaded", res.Loaded),
		logger.Int("registered", res.Registered),
		logger.Int("existing", res.Existing),
		logger.Int("skipped", res.Skipped))
	return res, nil
}
