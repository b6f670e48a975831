package catalog

import (
	"fmt"

	"github.com/MrSnakeDoc/statusboard/internal/domain"
)

// Skipped describes a catalog entry that could not be mapped.
type Skipped struct {
	Category string
	Name     string
	Reason   string
}

// Map converts a catalog into registration inputs, in file order. Entries
// that fail validation are reported in skipped instead.
func Map(config Config) (inputs []domain.RegisterInput, skipped []Skipped, err error) {
	for _, group := range config {
		for category, entries := range group {
			for _, entryMap := range entries {
				for name, entry := range entryMap {
					in := domain.RegisterInput{
						ID:          entry.ID,
						Name:        name,
						Category:    category,
						Description: entry.Description,
						Website:     entry.Website,
					}
					in.Normalize()
					if vErr := in.Validate(); vErr != nil {
						skipped = append(skipped, Skipped{Category: category, Name: name, Reason: vErr.Error()})
						continue
					}
					inputs = append(inputs, in)
				}
			}
		}
	}

	if len(inputs) == 0 {
		return nil, skipped, fmt.Errorf("no valid services found in catalog")
	}
	return inputs, skipped, nil
}
