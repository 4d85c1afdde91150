package prayer

import (
	"context"
	"time"

	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

// Canonical labels, in the order they occur during a day.
const (
	Fajr    = "Fajr"
	Sunrise = "Sunrise"
	Dhuhr   = "Dhuhr"
	Asr     = "Asr"
	Maghrib = "Maghrib"
	Isha    = "Isha"
)

var Order = []string{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// DefaultSchedule is a placeholder table used until a real calculation
// source is configured for a screen.
var DefaultSchedule = []Entry{
	{Label: Fajr, Hour: 5, Minute: 23},
	{Label: Sunrise, Hour: 6, Minute: 45},
	{Label: Dhuhr, Hour: 12, Minute: 15},
	{Label: Asr, Hour: 15, Minute: 30},
	{Label: Maghrib, Hour: 18, Minute: 5},
	{Label: Isha, Hour: 19, Minute: 30},
}

// Provider yields the day's prayer times for a location.
type Provider interface {
	Timings(ctx context.Context, at qiblah.Coordinate, day time.Time) ([]Entry, error)
}

// StaticProvider ignores location and date and serves DefaultSchedule.
type StaticProvider struct{}

func (StaticProvider) Timings(context.Context, qiblah.Coordinate, time.Time) ([]Entry, error) {
	out := make([]Entry, len(DefaultSchedule))
	copy(out, DefaultSchedule)
	return out, nil
}
