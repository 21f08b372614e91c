// FilePath: internal/source/source.go

// Package source resolves local source references to live sensor readings.
// A reference carries a scheme selecting the backend, e.g.
// "redis://sensor.outdoor.temperature" or "mqtt://home/livingroom/pm25".
package source

import (
	"context"
	"io"
	"strings"

	"github.com/blitt001/ha-opensensemap/internal/errors"
	"github.com/blitt001/ha-opensensemap/internal/models"
)

// Provider resolves a local source reference to its current reading.
// A reading with Available == false means the source exists but has no
// usable value right now; a returned error means the reference could not
// be resolved at all. Callers treat both as "unavailable".
type Provider interface {
	Get(ctx context.Context, ref string) (models.Reading, error)
}

// usable reports whether a raw state value is worth forwarding. Sources
// report "unknown" or "unavailable" as sentinels for missing data.
func usable(value string) bool {
	return value != "" && value != "unknown" && value != "unavailable"
}

// Mux dispatches references to backends by scheme.
type Mux struct {
	backends map[string]Provider
}

// NewMux creates an empty source multiplexer.
func NewMux() *Mux {
	return &Mux{backends: make(map[string]Provider)}
}

// Register attaches a backend for a scheme such as "redis" or "mqtt".
func (m *Mux) Register(scheme string, p Provider) {
	m.backends[scheme] = p
}

// Get resolves the reference through the backend named by its scheme.
func (m *Mux) Get(ctx context.Context, ref string) (models.Reading, error) {
	scheme, rest, ok := strings.Cut(ref, "://")
	if !ok {
		return models.Reading{}, errors.NewValidationError(
			"source reference missing scheme: "+ref, nil)
	}
	backend, ok := m.backends[scheme]
	if !ok {
		return models.Reading{}, errors.NewNotFoundError(
			"no source backend for scheme "+scheme, nil)
	}
	return backend.Get(ctx, rest)
}

// Close releases every backend that holds a connection.
func (m *Mux) Close() error {
	var firstErr error
	for _, backend := range m.backends {
		if closer, ok := backend.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
