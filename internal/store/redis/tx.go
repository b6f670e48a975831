package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

type writeFunc func(ctx context.Context, pipe redis.Pipeliner)

// redisTx watches every key it reads and buffers writes for EXEC. Staged
// services are visible to later reads of the same unit.
type redisTx struct {
	rtx      *redis.Tx
	keys     Keys
	services map[string]*domain.Service
	byName   map[string]string
	writes   []writeFunc
}

func newTx(rtx *redis.Tx, keys Keys) *redisTx {
	return &redisTx{
		rtx:      rtx,
		keys:     keys,
		services: make(map[string]*domain.Service),
		byName:   make(map[string]string),
	}
}

func (t *redisTx) watchGet(ctx context.Context, key string) *redis.StringCmd {
	if err := t.rtx.Watch(ctx, key).Err(); err != nil {
		cmd := redis.NewStringCmd(ctx)
		cmd.SetErr(err)
		return cmd
	}
	return t.rtx.Get(ctx, key)
}

func (t *redisTx) ServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	if svc, ok := t.services[id]; ok {
		c := *svc
		return &c, nil
	}

	data, err := t.watchGet(ctx, t.keys.Service(id)).Bytes()
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

func (t *redisTx) ServiceByNormalizedName(ctx context.Context, normalized string) (*domain.Service, error) {
	if id, ok := t.byName[normalized]; ok {
		return t.ServiceByID(ctx, id)
	}

	id, err := t.watchGet(ctx, t.keys.ServiceName(normalized)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve service name: %w", err)
	}
	return t.ServiceByID(ctx, id)
}

func (t *redisTx) InsertService(ctx context.Context, svc *domain.Service) error {
	if _, err := t.ServiceByNormalizedName(ctx, svc.NormalizedName); err == nil {
		return domain.ErrServiceExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := t.ServiceByID(ctx, svc.ID); err == nil {
		return fmt.Errorf("service id %s: %w", svc.ID, domain.ErrServiceExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	data, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	c := *svc
	t.services[svc.ID] = &c
	t.byName[svc.NormalizedName] = svc.ID

	serviceKey := t.keys.Service(svc.ID)
	nameKey := t.keys.ServiceName(svc.NormalizedName)
	allKey := t.keys.AllServices()
	t.writes = append(t.writes, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, serviceKey, data, 0)
		pipe.Set(ctx, nameKey, svc.ID, 0)
		pipe.SAdd(ctx, allKey, svc.ID)
	})
	return nil
}

func (t *redisTx) UpdateService(ctx context.Context, svc *domain.Service) error {
	current, err := t.ServiceByID(ctx, svc.ID)
	if err != nil {
		return err
	}
	if current.NormalizedName != svc.NormalizedName {
		return fmt.Errorf("normalized name of service %s is immutable", svc.ID)
	}

	data, err := json.Marshal(svc)
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	c := *svc
	t.services[svc.ID] = &c

	key := t.keys.Service(svc.ID)
	t.writes = append(t.writes, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, key, data, 0)
	})
	return nil
}

func (t *redisTx) InsertReport(ctx context.Context, report *domain.Report) error {
	if _, err := t.ServiceByID(ctx, report.ServiceID); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	member := redis.Z{Score: score(report.Timestamp), Member: report.ID}
	reportKey := t.keys.Report(report.ID)
	timelineKey := t.keys.Timeline()
	serviceKey := t.keys.ServiceReports(report.ServiceID)
	t.writes = append(t.writes, func(ctx context.Context, pipe redis.Pipeliner) {
		pipe.Set(ctx, reportKey, data, 0)
		pipe.ZAdd(ctx, timelineKey, member)
		pipe.ZAdd(ctx, serviceKey, member)
	})
	return nil
}
