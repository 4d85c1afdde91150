// Package prayer marks which daily prayer is next and formats countdowns to it.
package prayer

import (
	"fmt"
	"time"
)

// Entry is one scheduled time of day, e.g. Asr at 15:30.
type Entry struct {
	Label  string `json:"label"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

func (e Entry) minutes() int { return e.Hour*60 + e.Minute }

// Clock renders the entry as "HH:MM".
func (e Entry) Clock() string { return fmt.Sprintf("%02d:%02d", e.Hour, e.Minute) }

// Slot is an Entry evaluated against a point in time.
type Slot struct {
	Label    string `json:"label"`
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	IsNext   bool   `json:"is_next"`
	IsPassed bool   `json:"is_passed"`
}

// Resolve flags each entry as passed, next, or upcoming relative to now.
// Entries are expected in ascending order for a single day; the scan never
// wraps past midnight, so after the last entry nothing is marked next.
func Resolve(entries []Entry, now time.Time) []Slot {
	current := now.Hour()*60 + now.Minute()
	out := make([]Slot, len(entries))
	found := false
	for i, e := range entries {
		s := Slot{Label: e.Label, Hour: e.Hour, Minute: e.Minute}
		switch m := e.minutes(); {
		case !found && m > current:
			s.IsNext = true
			found = true
		case m <= current:
			s.IsPassed = true
		}
		out[i] = s
	}
	return out
}

// Next returns the slot flagged IsNext.
func Next(slots []Slot) (Slot, bool) {
	for _, s := range slots {
		if s.IsNext {
			return s, true
		}
	}
	return Slot{}, false
}

// Countdown formats the time left until hour:minute as "2h 15m" or "45m".
// A target at or before now is taken to mean the same wall-clock time
// tomorrow, so across a DST change the countdown is 23h or 25h away.
func Countdown(hour, minute int, now time.Time) string {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	left := target.Sub(now)
	h := int(left / time.Hour)
	m := int((left % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
