package tracker

import (
	"context"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

// StatsWindowHours is the window of Stats.ReportsLast24h.
const StatsWindowHours = 24

// Stats summarizes the board.
type Stats struct {
	TotalServices  int `json:"totalServices"`
	Operational    int `json:"operational"`
	Issues         int `json:"issues"`
	ReportsLast24h int `json:"reportsLast24h"`
}

// Stats counts services by health and reports of the last day.
func (t *Tracker) Stats(ctx context.Context) (Stats, error) {
	services, err := t.store.ListServices(ctx)
	if err != nil {
		return Stats{}, classify("stats", err)
	}

	stats := Stats{TotalServices: len(services)}
	for _, svc := range services {
		if svc.Status == domain.StatusOperational {
			stats.Operational++
		} else {
			stats.Issues++
		}
	}

	stats.ReportsLast24h, err = t.CountWithinWindow(ctx, StatsWindowHours)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}
