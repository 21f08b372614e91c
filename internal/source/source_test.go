// FilePath: internal/source/source_test.go
package source

import (
	"context"
	"testing"

	"github.com/blitt001/ha-opensensemap/internal/errors"
	"github.com/blitt001/ha-opensensemap/internal/models"
)

func Test_Static_Get_Cases(t *testing.T) {
	static := NewStatic(map[string]models.Reading{
		"temp":    {Value: "21.5", Unit: "°C", Available: true},
		"unknown": {Value: "unknown", Unit: "", Available: true},
		"empty":   {Value: "", Unit: "", Available: true},
	})

	tests := []struct {
		name          string
		ref           string
		wantValue     string
		wantAvailable bool
	}{
		{name: "present reading", ref: "temp", wantValue: "21.5", wantAvailable: true},
		{name: "unknown sentinel is unavailable", ref: "unknown", wantValue: "unknown", wantAvailable: false},
		{name: "empty value is unavailable", ref: "empty", wantValue: "", wantAvailable: false},
		{name: "missing ref is unavailable", ref: "nope", wantValue: "", wantAvailable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := static.Get(context.Background(), tt.ref)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reading.Value != tt.wantValue {
				t.Errorf("Value = %q, want %q", reading.Value, tt.wantValue)
			}
			if reading.Available != tt.wantAvailable {
				t.Errorf("Available = %v, want %v", reading.Available, tt.wantAvailable)
			}
		})
	}
}

func Test_Static_Set_Overwrites(t *testing.T) {
	static := NewStatic(nil)
	static.Set("hum", models.Reading{Value: "0.45", Available: true})

	reading, err := static.Get(context.Background(), "hum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reading.Available || reading.Value != "0.45" {
		t.Errorf("got %+v, want available reading 0.45", reading)
	}

	static.Set("hum", models.Reading{Value: "unavailable", Available: true})
	reading, _ = static.Get(context.Background(), "hum")
	if reading.Available {
		t.Error("sentinel value should report unavailable")
	}
}

func Test_Mux_Dispatch(t *testing.T) {
	mux := NewMux()
	mux.Register("static", NewStatic(map[string]models.Reading{
		"fixed.temp": {Value: "20.0", Unit: "°C", Available: true},
	}))

	t.Run("routes by scheme and strips it", func(t *testing.T) {
		reading, err := mux.Get(context.Background(), "static://fixed.temp")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reading.Value != "20.0" {
			t.Errorf("Value = %q, want %q", reading.Value, "20.0")
		}
	})

	t.Run("unknown scheme is not found", func(t *testing.T) {
		_, err := mux.Get(context.Background(), "carrier-pigeon://roof")
		if err == nil {
			t.Fatal("expected error for unknown scheme")
		}
		if !errors.IsNotFound(err) {
			t.Errorf("error is not a not-found error: %v", err)
		}
	})

	t.Run("missing scheme is a validation error", func(t *testing.T) {
		_, err := mux.Get(context.Background(), "no-scheme-here")
		if err == nil {
			t.Fatal("expected error for missing scheme")
		}
		if !errors.IsValidation(err) {
			t.Errorf("error is not a validation error: %v", err)
		}
	})
}
