// Package memory is an in-process storage engine. State is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// Store keeps services and reports in memory.
// A single RWMutex guards all state; atomic units hold the write lock for
// their whole duration.
type Store struct {
	mu       sync.RWMutex
	services map[string]*domain.Service // ID -> Service
	byName   map[string]string          // NormalizedName -> ID
	reports  []*domain.Report           // insertion order
}

var _ store.Store = (*Store)(nil)

// New creates an empty memory store.
func New() *Store {
	return &Store{
		services: make(map[string]*domain.Service),
		byName:   make(map[string]string),
	}
}

// Engine returns the engine name.
func (s *Store) Engine() string { return store.EngineMemory }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// Atomic runs fn under the store lock and applies its staged writes only
// when fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		s:        s,
		services: make(map[string]*domain.Service),
		byName:   make(map[string]string),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// ServiceByID retrieves a service by ID
func (s *Store) ServiceByID(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneService(svc), nil
}

// ServiceByNormalizedName retrieves a service by its normalized name
func (s *Store) ServiceByNormalizedName(_ context.Context, normalized string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[normalized]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneService(s.services[id]), nil
}

// ListServices returns all services
func (s *Store) ListServices(_ context.Context) ([]*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	services := make([]*domain.Service, 0, len(s.services))
	for _, svc := range s.services {
		services = append(services, cloneService(svc))
	}
	return services, nil
}

// ListReports returns matching reports, newest first
func (s *Store) ListReports(_ context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := make([]*domain.Report, 0)
	// Walk backwards so equal timestamps keep newest-inserted first.
	for i := len(s.reports) - 1; i >= 0; i-- {
		if filter.Match(s.reports[i]) {
			r := *s.reports[i]
			reports = append(reports, &r)
		}
	}
	domain.SortReports(reports)
	return domain.ApplyLimit(reports, filter.Limit), nil
}

// CountReports counts matching reports
func (s *Store) CountReports(_ context.Context, filter domain.ReportFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.reports {
		if filter.Match(r) {
			count++
		}
	}
	return count, nil
}

// memTx stages writes until the unit commits. It runs with s.mu held.
type memTx struct {
	s        *Store
	services map[string]*domain.Service
	byName   map[string]string
	reports  []*domain.Report
}

func (tx *memTx) ServiceByID(_ context.Context, id string) (*domain.Service, error) {
	if svc, ok := tx.services[id]; ok {
		return cloneService(svc), nil
	}
	if svc, ok := tx.s.services[id]; ok {
		return cloneService(svc), nil
	}
	return nil, domain.ErrNotFound
}

func (tx *memTx) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	if id, ok := tx.byName[normalized]; ok {
		return tx.ServiceByID(ctx, id)
	}
	if id, ok := tx.s.byName[normalized]; ok {
		return tx.ServiceByID(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (tx *memTx) InsertService(ctx context.Context, svc *domain.Service) error {
	if _, err := tx.ServiceByNormalizedName(ctx, svc.NormalizedName); err == nil {
		return domain.ErrServiceExists
	}
	if _, err := tx.ServiceByID(ctx, svc.ID); err == nil {
		return fmt.Errorf("service id %s: %w", svc.ID, domain.ErrServiceExists)
	}
	tx.services[svc.ID] = cloneService(svc)
	tx.byName[svc.NormalizedName] = svc.ID
	return nil
}

func (tx *memTx) UpdateService(ctx context.Context, svc *domain.Service) error {
	current, err := tx.ServiceByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	if current.NormalizedName != svc.NormalizedName {
		return fmt.Errorf("normalized name of service %s is immutable", svc.ID)
	}
	tx.services[svc.ID] = cloneService(svc)
	return nil
}

func (tx *memTx) InsertReport(ctx context.Context, report *domain.Report) error {
	if _, err := tx.ServiceByID(ctx, report.ServiceID); err != nil {
		return err
	}
	r := *report
	tx.reports = append(tx.reports, &r)
	return nil
}

func (tx *memTx) commit() {
	for id, svc := range tx.services {
		tx.s.services[id] = svc
	}
	for name, id := range tx.byName {
		tx.s.byName[name] = id
	}
	tx.s.reports = append(tx.s.reports, tx.reports...)
}

func cloneService(svc *domain.Service) *domain.Service {
	c := *svc
	return &c
}
