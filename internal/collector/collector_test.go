// FilePath: internal/collector/collector_test.go
package collector

import (
	"context"
	"reflect"
	"testing"

	"github.com/blitt001/ha-opensensemap/internal/models"
	"github.com/blitt001/ha-opensensemap/internal/source"
)

const (
	idTemp = "5c91d6a2e3b1fa001a2b3c4e"
	idHum  = "5c91d6a2e3b1fa001a2b3c4f"
	idPM25 = "5c91d6a2e3b1fa001a2b3c50"
)

func testMapping() models.SensorMapping {
	return models.SensorMapping{
		{Kind: models.PM25, SensorID: idPM25, SourceRef: "pm25"},
		{Kind: models.PM10}, // inactive
		{Kind: models.Temperature, SensorID: idTemp, SourceRef: "temp"},
		{Kind: models.Humidity, SensorID: idHum, SourceRef: "hum"},
		{Kind: models.Pressure}, // inactive
	}
}

func Test_Collect_Cases(t *testing.T) {
	tests := []struct {
		name     string
		readings map[string]models.Reading
		want     map[string]string
	}{
		{
			name: "all sources present and converted",
			readings: map[string]models.Reading{
				"pm25": {Value: "12.3", Unit: "µg/m³", Available: true},
				"temp": {Value: "72", Unit: "°F", Available: true},
				"hum":  {Value: "0.45", Unit: "", Available: true},
			},
			want: map[string]string{
				idPM25: "12.30",
				idTemp: "22.22",
				idHum:  "45.00",
			},
		},
		{
			name: "unavailable entry skipped silently",
			readings: map[string]models.Reading{
				"pm25": {Value: "unavailable", Available: true},
				"temp": {Value: "21.5", Unit: "°C", Available: true},
			},
			want: map[string]string{idTemp: "21.50"},
		},
		{
			name: "unparseable value skipped silently",
			readings: map[string]models.Reading{
				"pm25": {Value: "12.3", Unit: "µg/m³", Available: true},
				"temp": {Value: "nan-thanks", Unit: "°C", Available: true},
				"hum":  {Value: "45", Unit: "%", Available: true},
			},
			want: map[string]string{idPM25: "12.30", idHum: "45.00"},
		},
		{
			name:     "nothing available yields empty payload",
			readings: map[string]models.Reading{},
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := source.NewStatic(tt.readings)
			got := Collect(context.Background(), testMapping(), src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Collect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_CheckAvailability_Cases(t *testing.T) {
	tests := []struct {
		name     string
		readings map[string]models.Reading
		want     []string
	}{
		{
			name: "all available",
			readings: map[string]models.Reading{
				"pm25": {Value: "12.3", Available: true},
				"temp": {Value: "21.5", Available: true},
				"hum":  {Value: "45", Available: true},
			},
			want: nil,
		},
		{
			name: "one unavailable, in mapping order",
			readings: map[string]models.Reading{
				"pm25": {Value: "12.3", Available: true},
				"hum":  {Value: "45", Available: true},
			},
			want: []string{"temp"},
		},
		{
			name:     "all unavailable listed in mapping order",
			readings: map[string]models.Reading{},
			want:     []string{"pm25", "temp", "hum"},
		},
		{
			name: "sentinel state counts as unavailable",
			readings: map[string]models.Reading{
				"pm25": {Value: "unknown", Available: true},
				"temp": {Value: "21.5", Available: true},
				"hum":  {Value: "45", Available: true},
			},
			want: []string{"pm25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := source.NewStatic(tt.readings)
			got := CheckAvailability(context.Background(), testMapping(), src)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckAvailability() = %v, want %v", got, tt.want)
			}
		})
	}
}
