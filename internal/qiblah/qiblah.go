// Package qiblah computes the great-circle direction from an observer to the Kaaba.
package qiblah

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNotConfigured is returned for the (0,0) coordinate, which means the
	// location setting was never filled in.
	ErrNotConfigured = errors.New("qiblah: location not configured")
	ErrOutOfRange    = errors.New("qiblah: coordinate out of range")
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Kaaba is the fixed destination of every bearing.
var Kaaba = Coordinate{Latitude: 21.4225, Longitude: 39.8262}

// IsZero reports whether c is the unset (0,0) sentinel.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrOutOfRange, c.Latitude)
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrOutOfRange, c.Longitude)
	}
	return nil
}

type Cardinal string

const (
	North     Cardinal = "N"
	NorthEast Cardinal = "NE"
	East      Cardinal = "E"
	SouthEast Cardinal = "SE"
	South     Cardinal = "S"
	SouthWest Cardinal = "SW"
	West      Cardinal = "W"
	NorthWest Cardinal = "NW"
)

var cardinals = [8]Cardinal{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// Bearing is a direction in degrees clockwise from true north, in [0, 360).
type Bearing struct {
	Degrees  float64  `json:"degrees"`
	Cardinal Cardinal `json:"cardinal"`
}

// Calculate returns the bearing from c to the Kaaba. The unset (0,0)
// coordinate yields ErrNotConfigured instead of a misleading 0°/N.
func Calculate(c Coordinate) (Bearing, error) {
	if c.IsZero() {
		return Bearing{}, ErrNotConfigured
	}
	deg := BearingTo(c, Kaaba)
	return Bearing{Degrees: deg, Cardinal: CardinalFor(deg)}, nil
}

// BearingTo returns the initial great-circle bearing from one point to another,
// normalized to [0, 360). Coincident points give 0.
func BearingTo(from, to Coordinate) float64 {
	phi1 := radians(from.Latitude)
	phi2 := radians(to.Latitude)
	dLambda := radians(to.Longitude - from.Longitude)

	x := math.Cos(phi2) * math.Sin(dLambda)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)

	deg := math.Mod(degrees(math.Atan2(x, y))+360, 360)
	// -1e-15 + 360 rounds to exactly 360
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// CardinalFor labels deg with one of eight 45° sectors centred on N, NE, E, ...
// Sector boundaries (22.5, 67.5, ...) round half away from zero, so 22.5 is NE.
func CardinalFor(deg float64) Cardinal {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return cardinals[int(math.Round(deg/45))%8]
}

func radians(d float64) float64 { return d * math.Pi / 180 }

func degrees(r float64) float64 { return r * 180 / math.Pi }
