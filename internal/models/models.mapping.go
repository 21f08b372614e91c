// FilePath: internal/models/models.mapping.go
package models

// MeasurementKind identifies one of the supported measurement channels.
type MeasurementKind string

const (
	PM25        MeasurementKind = "pm25"
	PM10        MeasurementKind = "pm10"
	Temperature MeasurementKind = "temperature"
	Humidity    MeasurementKind = "humidity"
	Pressure    MeasurementKind = "pressure"
)

// KindOrder is the fixed iteration order for sensor mappings. Availability
// messages and payload assembly follow this order.
var KindOrder = []MeasurementKind{PM25, PM10, Temperature, Humidity, Pressure}

// MappingEntry pairs an openSenseMap sensor ID with the local source that
// supplies its readings.
type MappingEntry struct {
	Kind      MeasurementKind `json:"kind"`
	SensorID  string          `json:"sensor_id"`
	SourceRef string          `json:"source_ref"`
}

// Active reports whether the entry is fully configured. Entries missing
// either side are ignored by the collector.
func (e MappingEntry) Active() bool {
	return e.SensorID != "" && e.SourceRef != ""
}

// SensorMapping is the ordered set of configured mapping entries.
type SensorMapping []MappingEntry

// ActiveEntries returns the entries that have both a sensor ID and a source.
func (m SensorMapping) ActiveEntries() []MappingEntry {
	active := make([]MappingEntry, 0, len(m))
	for _, entry := range m {
		if entry.Active() {
			active = append(active, entry)
		}
	}
	return active
}

// Reading is a point-in-time value reported by a local source.
type Reading struct {
	Value     string `json:"value"`
	Unit      string `json:"unit"`
	Available bool   `json:"available"`
}
