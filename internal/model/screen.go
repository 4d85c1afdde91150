package model

import (
	"time"
	_ "time/tzdata"

	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

// Screen represents a Sekine TV display and the place it is installed.
type Screen struct {
	ID        int       `db:"id"           json:"id"`
	DeviceID  *string   `db:"device_id"    json:"device_id"`
	Name      string    `db:"name"         json:"name"`
	Location  *string   `db:"location"     json:"location"`
	Latitude  *float64  `db:"latitude"     json:"latitude"`
	Longitude *float64  `db:"longitude"    json:"longitude"`
	Timezone  *string   `db:"timezone"     json:"timezone"`
	Paired    bool      `db:"paired"       json:"paired"`
	CreatedAt time.Time `db:"created_at"   json:"created_at"`
	CreatedBy int       `db:"created_by"   json:"created_by"`
	UpdatedAt time.Time `db:"updated_at"   json:"updated_at"`
}

// Coordinate returns the stored location, or the unset (0,0) coordinate when
// either half is missing.
func (s Screen) Coordinate() qiblah.Coordinate {
	if s.Latitude == nil || s.Longitude == nil {
		return qiblah.Coordinate{}
	}
	return qiblah.Coordinate{Latitude: *s.Latitude, Longitude: *s.Longitude}
}

// Zone resolves the screen's IANA timezone, falling back to UTC.
func (s Screen) Zone() *time.Location {
	if s.Timezone == nil || *s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
