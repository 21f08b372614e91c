// FilePath: internal/convert/convert.go

// Package convert normalizes raw sensor readings into the canonical units
// expected by the openSenseMap API: °C for temperature, Pa for pressure and
// percent for humidity. Particulate readings pass through unchanged.
package convert

import (
	"strconv"

	"github.com/blitt001/ha-opensensemap/internal/models"
)

// Convert maps a raw value with its source unit to the canonical unit for
// the given measurement kind. It is pure: same inputs, same output, and
// converting an already-canonical value is a no-op.
func Convert(kind models.MeasurementKind, value float64, unit string) float64 {
	switch kind {
	case models.Temperature:
		if unit == "°F" || unit == "F" {
			return (value - 32) * 5 / 9
		}
	case models.Pressure:
		switch unit {
		case "hPa", "mbar", "":
			return value * 100
		case "inHg":
			return value * 3386.39
		case "psi":
			return value * 6894.76
		}
		// Already Pa or an unrecognized unit, leave untouched.
	case models.Humidity:
		if value > 0 && value <= 1 {
			return value * 100
		}
	}
	return value
}

// FormatValue renders a converted value the way the API expects it:
// a string with exactly two decimal places.
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
