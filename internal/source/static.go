// FilePath: internal/source/static.go
package source

import (
	"context"
	"sync"

	"github.com/blitt001/ha-opensensemap/internal/models"
)

// Static serves fixed readings from memory. It backs the "static" scheme
// for configs that pin values, and doubles as the test double for Provider.
type Static struct {
	mu       sync.RWMutex
	readings map[string]models.Reading
}

// NewStatic creates a static source with the given initial readings.
func NewStatic(readings map[string]models.Reading) *Static {
	if readings == nil {
		readings = make(map[string]models.Reading)
	}
	return &Static{readings: readings}
}

// Set stores or replaces the reading for a reference.
func (s *Static) Set(ref string, reading models.Reading) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings[ref] = reading
}

// Get returns the stored reading; a missing reference is unavailable.
func (s *Static) Get(_ context.Context, ref string) (models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reading, ok := s.readings[ref]
	if !ok {
		return models.Reading{Available: false}, nil
	}
	reading.Available = reading.Available && usable(reading.Value)
	return reading, nil
}
