// Package redis is the Redis storage engine. Services and reports are
// JSON documents; report timelines are sorted sets scored in microseconds.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
	"github.com/MrSnakeDoc/statusboard/internal/store"
)

// DefaultMaxTxRetries bounds optimistic transaction attempts.
const DefaultMaxTxRetries = 10

// ErrContention is returned when a unit of work keeps losing WATCH races.
var ErrContention = errors.New("redis transaction contention")

// Options tunes the store.
type Options struct {
	Prefix       string
	MaxTxRetries int
}

// Store implements store.Store on Redis.
type Store struct {
	client     *redis.Client
	keys       Keys
	maxRetries int
}

var _ store.Store = (*Store)(nil)

// NewStore creates a new Redis store.
func NewStore(client *redis.Client, opts Options) *Store {
	if opts.MaxTxRetries <= 0 {
		opts.MaxTxRetries = DefaultMaxTxRetries
	}
	return &Store{
		client:     client,
		keys:       NewKeys(opts.Prefix),
		maxRetries: opts.MaxTxRetries,
	}
}

// Engine returns the engine name.
func (s *Store) Engine() string { return store.EngineRedis }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

// Close closes the client.
func (s *Store) Close() error { return s.client.Close() }

// Atomic runs fn with WATCH on every key it reads and applies its writes
// in one MULTI/EXEC. When a watched key changes before EXEC the whole unit
// is retried, up to the configured attempt limit.
func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := newTx(rtx, s.keys)
			if err := fn(ctx, tx); err != nil {
				return err
			}
			if len(tx.writes) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, write := range tx.writes {
					write(ctx, pipe)
				}
				return nil
			})
			return err
		})
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: gave up after %d attempts", ErrContention, s.maxRetries)
}

// ServiceByID retrieves a service by ID.
func (s *Store) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	return getService(ctx, s.client, s.keys.Service(id))
}

// ServiceByNormalizedName retrieves a service by normalized name.
func (s *Store) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	id, err := s.client.Get(ctx, s.keys.ServiceName(normalized)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve service name: %w", err)
	}
	return s.ServiceByID(ctx, id)
}

// ListServices retrieves all services.
func (s *Store) ListServices(ctx context.Context) ([]*domain.Service, error) {
	ids, err := s.client.SMembers(ctx, s.keys.AllServices()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get service IDs: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Service{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.Service(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get services: %w", err)
	}

	services := make([]*domain.Service, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var svc domain.Service
		if err := json.Unmarshal([]byte(data), &svc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal service %s: %w", ids[i], err)
		}
		services = append(services, &svc)
	}
	return services, nil
}

// ListReports returns matching reports newest first.
func (s *Store) ListReports(ctx context.Context, filter domain.ReportFilter) ([]*domain.Report, error) {
	rng := &redis.ZRangeBy{Min: minScore(filter.Since), Max: maxScore(filter.Until)}
	if filter.Limit > 0 {
		rng.Count = int64(filter.Limit)
	}
	ids, err := s.client.ZRevRangeByScore(ctx, s.timelineFor(filter), rng).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read report timeline: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Report{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.Report(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}

	reports := make([]*domain.Report, 0, len(values))
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		var r domain.Report
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report %s: %w", ids[i], err)
		}
		reports = append(reports, &r)
	}
	return reports, nil
}

// CountReports counts matching reports.
func (s *Store) CountReports(ctx context.Context, filter domain.ReportFilter) (int, error) {
	n, err := s.client.ZCount(ctx, s.timelineFor(filter), minScore(filter.Since), maxScore(filter.Until)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return int(n), nil
}

func (s *Store) timelineFor(filter domain.ReportFilter) string {
	if filter.ServiceID != "" {
		return s.keys.ServiceReports(filter.ServiceID)
	}
	return s.keys.Timeline()
}

// getter is implemented by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getService(ctx context.Context, g getter, key string) (*domain.Service, error) {
	data, err := g.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	var svc domain.Service
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal service: %w", err)
	}
	return &svc, nil
}
