package geo

import (
	"context"
	"errors"
	"testing"
)

func TestFixed(t *testing.T) {
	f, err := NewFixed(29.9511, -90.0715)
	if err != nil {
		t.Fatalf("NewFixed: %v", err)
	}
	pos, err := f.CurrentPosition(context.Background())
	if err != nil || pos.Lat != 29.9511 || pos.Lon != -90.0715 {
		t.Errorf("pos = %+v, err = %v", pos, err)
	}
}

func TestNewFixed_Range(t *testing.T) {
	tests := []struct{ lat, lon float64 }{
		{91, 0}, {-91, 0}, {0, 181}, {0, -181},
	}
	for _, tt := range tests {
		if _, err := NewFixed(tt.lat, tt.lon); err == nil {
			t.Errorf("NewFixed(%v, %v) should fail", tt.lat, tt.lon)
		}
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{Reason: "turned off in config"}.CurrentPosition(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}
