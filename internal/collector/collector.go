// FilePath: internal/collector/collector.go

// Package collector gathers current readings for the configured sensor
// mapping and turns them into an upload payload.
package collector

import (
	"context"
	"strconv"

	nuts "github.com/vaudience/go-nuts"

	"github.com/blitt001/ha-opensensemap/internal/convert"
	"github.com/blitt001/ha-opensensemap/internal/models"
	"github.com/blitt001/ha-opensensemap/internal/source"
)

// CheckAvailability resolves every active mapping entry and returns the
// source references that are absent or unavailable, in mapping order.
// A non-empty result gates the whole cycle, distinct from the per-entry
// skips Collect performs.
func CheckAvailability(ctx context.Context, mapping models.SensorMapping, src source.Provider) []string {
	var unavailable []string
	for _, entry := range mapping.ActiveEntries() {
		reading, err := src.Get(ctx, entry.SourceRef)
		if err != nil || !reading.Available {
			unavailable = append(unavailable, entry.SourceRef)
		}
	}
	return unavailable
}

// Collect reads every active mapping entry, converts it to the canonical
// unit and formats it for upload, keyed by remote sensor ID. Entries that
// are unavailable or unparseable are skipped silently; an empty result is
// a valid outcome meaning there is nothing to upload this cycle.
func Collect(ctx context.Context, mapping models.SensorMapping, src source.Provider) map[string]string {
	data := make(map[string]string)
	for _, entry := range mapping.ActiveEntries() {
		reading, err := src.Get(ctx, entry.SourceRef)
		if err != nil || !reading.Available {
			nuts.L.Debugf("[Collector] Skipping %s: unavailable", entry.SourceRef)
			continue
		}

		value, err := strconv.ParseFloat(reading.Value, 64)
		if err != nil {
			nuts.L.Debugf("[Collector] Could not parse %s value %q: %v",
				entry.SourceRef, reading.Value, err)
			continue
		}

		value = convert.Convert(entry.Kind, value, reading.Unit)
		data[entry.SensorID] = convert.FormatValue(value)
	}
	return data
}
