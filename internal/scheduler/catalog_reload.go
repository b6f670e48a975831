package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/statusboard/internal/logger"
	"github.com/MrSnakeDoc/statusboard/internal/sources/catalog"
)

// Seeder runs one catalog seeding pass. *catalog.Seeder implements it.
type Seeder interface {
	Seed(ctx context.Context) (catalog.Result, error)
	Source() string
}

// ReloadState describes the outcome of the latest catalog pass.
type ReloadState struct {
	Source     string
	LastReload time.Time
	LastResult catalog.Result
	LastError  string
	Runs       int
}

// CatalogReloader seeds the catalog at startup, then on every interval
// tick and on manual trigger.
type CatalogReloader struct {
	seeder        Seeder
	logger        logger.Logger
	interval      time.Duration
	now           func() time.Time
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu    sync.RWMutex
	state ReloadState
}

// NewCatalogReloader creates a new catalog reloader. A non-positive
// interval disables periodic reloads; manual triggers still work.
func NewCatalogReloader(
	seeder Seeder,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *CatalogReloader {
	return &CatalogReloader{
		seeder:        seeder,
		logger:        log,
		interval:      interval,
		now:           time.Now,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		state:         ReloadState{Source: seeder.Source()},
	}
}

// Start seeds immediately, then reloads in the background until Stop or
// ctx cancellation.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	if err := cr.Reload(ctx); err != nil {
		return fmt.Errorf("initial catalog seeding failed: %w", err)
	}

	go func() {
		var tick <-chan time.Time
		if cr.interval > 0 {
			ticker := time.NewTicker(cr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual catalog reload triggered")
				if err := cr.Reload(ctx); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the background loop. It is safe to call more than once.
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
}

// Reload runs one seeding pass and records its outcome.
func (cr *CatalogReloader) Reload(ctx context.Context) error {
	cr.logger.Info("reloading catalog", logger.String("source", cr.seeder.Source()))

	res, err := cr.seeder.Seed(ctx)

	cr.mu.Lock()
	cr.state.LastReload = cr.now()
	cr.state.LastResult = res
	cr.state.Runs++
	cr.state.LastError = ""
	if err != nil {
		cr.state.LastError = err.Error()
	}
	cr.mu.Unlock()

	return err
}

// State returns a snapshot of the latest pass.
func (cr *CatalogReloader) State() ReloadState {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.state
}
