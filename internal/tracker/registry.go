package tracker

import (
	"context"
	"errors"
	"strings"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/metrics"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// DefaultTopLimit is the size of the most-reported list when none is given.
const DefaultTopLimit = 5

// Register adds a new service. Registration fails with a *ConflictError
// when another service already has the same normalized name. in.ID is
// ignored; a fresh identifier is always generated.
func (t *Tracker) Register(ctx context.Context, in domain.RegisterInput) (*domain.Service, error) {
	in.ID = ""
	return t.register(ctx, in, metrics.SourceAPI)
}

// Import registers a catalog entry, keeping its identifier when set.
func (t *Tracker) Import(ctx context.Context, in domain.RegisterInput) (*domain.Service, error) {
	return t.register(ctx, in, metrics.SourceCatalog)
}

func (t *Tracker) register(ctx context.Context, in domain.RegisterInput, source string) (*domain.Service, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	id := in.ID
	if id == "" {
		id = t.newID()
	}
	svc := domain.NewService(id, in.Name, in.Category, in.Description, in.Website, t.timestamp())

	err := t.store.Atomic(ctx, func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.ServiceByNormalizedName(ctx, svc.NormalizedName); err == nil {
			return domain.ErrServiceExists
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return tx.InsertService(ctx, svc)
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			t.metrics.RegistrationConflict()
			t.log.Debug("service already registered",
				logger.String("name", svc.Name),
				logger.String("normalized_name", svc.NormalizedName),
				logger.String("source", source))
			return nil, err
		}
		return nil, classify("register service", err)
	}

	t.metrics.ServiceRegistered(source)
	t.log.Info("service registered",
		logger.String("service_id", svc.ID),
		logger.String("name", svc.Name),
		logger.String("category", svc.Category),
		logger.String("source", source))
	return svc, nil
}

// FindByID looks a service up by its exact identifier.
func (t *Tracker) FindByID(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := t.store.ServiceByID(ctx, id)
	if err != nil {
		return nil, classify("find service", err)
	}
	return svc, nil
}

// FindByNameOrSlug resolves a user-supplied token. It tries, in order, a
// case-insensitive identifier match, an exact normalized-name match and a
// case-insensitive display-name match. No fuzzy matching is done.
func (t *Tracker) FindByNameOrSlug(ctx context.Context, token string) (*domain.Service, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNotFound
	}

	// Identifiers are always lowercase.
	svc, err := t.store.ServiceByID(ctx, strings.ToLower(token))
	if err == nil {
		return svc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, classify("find service", err)
	}

	svc, err = t.store.ServiceByNormalizedName(ctx, token)
	if err == nil {
		return svc, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, classify("find service", err)
	}

	services, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range services {
		if strings.EqualFold(s.Name, token) {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

// List returns every service, most reported first, ties by name.
func (t *Tracker) List(ctx context.Context) ([]*domain.Service, error) {
	services, err := t.store.ListServices(ctx)
	if err != nil {
		return nil, classify("list services", err)
	}
	domain.SortServices(services)
	return services, nil
}

// Top returns the first limit services of List. A non-positive limit
// means DefaultTopLimit.
func (t *Tracker) Top(ctx context.Context, limit int) ([]*domain.Service, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	services, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(services) > limit {
		services = services[:limit]
	}
	return services, nil
}
