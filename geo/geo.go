// Package geo provides position sources for the map view.
package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/nathoo/questroux/types"
)

// ErrUnavailable is returned when no position can be sampled.
var ErrUnavailable = errors.New("location unavailable")

// Fixed always reports the same configured position.
type Fixed struct {
	Pos types.Position
}

// NewFixed validates the coordinates and returns a fixed locator.
func NewFixed(lat, lon float64) (*Fixed, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude %v out of range", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude %v out of range", lon)
	}
	return &Fixed{Pos: types.Position{Lat: lat, Lon: lon}}, nil
}

// CurrentPosition returns the fixed position.
func (f *Fixed) CurrentPosition(ctx context.Context) (types.Position, error) {
	if err := ctx.Err(); err != nil {
		return types.Position{}, err
	}
	return f.Pos, nil
}

// Disabled never has a position.
type Disabled struct {
	Reason string
}

// CurrentPosition always fails.
func (d Disabled) CurrentPosition(context.Context) (types.Position, error) {
	if d.Reason != "" {
		return types.Position{}, fmt.Errorf("%w: %s", ErrUnavailable, d.Reason)
	}
	return types.Position{}, ErrUnavailable
}
