// Package announcer pushes the upcoming prayer to paired screens over MQTT
// whenever it changes.
package announcer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/model"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
)

// CommandNextPrayer is the command type TVs receive on their topic.
const CommandNextPrayer = "prayer.next"

// ScreenLister returns screens that are paired and have a location.
type ScreenLister interface {
	ListAnnounceableScreens() ([]model.Screen, error)
}

// Publisher delivers a payload to one device's command topic.
type Publisher interface {
	Publish(deviceID string, payload []byte) error
}

// Command is the JSON body published to a TV.
type Command struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Time      string `json:"time"`
	Countdown string `json:"countdown"`
}

// announced is what a screen was last told, and where it was sent.
type announced struct {
	deviceID string
	zone     string
	label    string
}

type Announcer struct {
	screens   ScreenLister
	provider  prayer.Provider
	publisher Publisher
	interval  time.Duration
	now       func() time.Time

	mu   sync.Mutex
	last map[int]announced // by screen id
}

func New(screens ScreenLister, provider prayer.Provider, publisher Publisher, interval time.Duration) *Announcer {
	return &Announcer{
		screens:   screens,
		provider:  provider,
		publisher: publisher,
		interval:  interval,
		now:       time.Now,
		last:      make(map[int]announced),
	}
}

// WithClock replaces the wall clock, for tests.
func (a *Announcer) WithClock(now func() time.Time) *Announcer {
	a.now = now
	return a
}

// Run ticks every interval until ctx is cancelled.
func (a *Announcer) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", a.interval).Msg("prayer announcer started")
	a.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("prayer announcer stopped")
			return
		case <-ticker.C:
			a.Tick(ctx)
		}
	}
}

// Tick resolves the next prayer for every announceable screen and publishes
// it when it differs from the last one sent. It returns how many commands
// were published.
func (a *Announcer) Tick(ctx context.Context) int {
	screens, err := a.screens.ListAnnounceableScreens()
	if err != nil {
		log.Error().Err(err).Msg("announcer could not list screens")
		return 0
	}

	sent := 0
	for _, s := range screens {
		if ctx.Err() != nil {
			break
		}
		ok, err := a.announce(ctx, s)
		if err != nil {
			log.Warn().Err(err).Int("screen_id", s.ID).Msg("prayer announcement failed")
			continue
		}
		if ok {
			sent++
		}
	}
	return sent
}

func (a *Announcer) announce(ctx context.Context, s model.Screen) (bool, error) {
	if s.DeviceID == nil {
		return false, nil
	}
	coord := s.Coordinate()
	if coord.IsZero() {
		return false, nil
	}

	zone := s.Zone()
	now := a.now().In(zone)
	entries, err := a.provider.Timings(ctx, coord, now)
	if err != nil {
		return false, err
	}

	next, ok := prayer.Next(prayer.Resolve(entries, now))
	if !ok {
		// past the last prayer; tomorrow's first is next
		tomorrow, err := a.provider.Timings(ctx, coord, now.AddDate(0, 0, 1))
		if err != nil {
			return false, err
		}
		if len(tomorrow) == 0 {
			return false, nil
		}
		next = prayer.Slot{Label: tomorrow[0].Label, Hour: tomorrow[0].Hour, Minute: tomorrow[0].Minute, IsNext: true}
	}

	// a re-paired screen or a new timezone gets a fresh announcement
	current := announced{deviceID: *s.DeviceID, zone: zone.String(), label: next.Label}
	a.mu.Lock()
	unchanged := a.last[s.ID] == current
	a.mu.Unlock()
	if unchanged {
		return false, nil
	}

	payload, err := json.Marshal(Command{
		Type:      CommandNextPrayer,
		Label:     next.Label,
		Time:      prayer.Entry{Hour: next.Hour, Minute: next.Minute}.Clock(),
		Countdown: prayer.Countdown(next.Hour, next.Minute, now),
	})
	if err != nil {
		return false, err
	}
	if err := a.publisher.Publish(*s.DeviceID, payload); err != nil {
		return false, err
	}

	a.mu.Lock()
	a.last[s.ID] = current
	a.mu.Unlock()

	log.Info().Int("screen_id", s.ID).Str("device_id", *s.DeviceID).Str("label", next.Label).Msg("announced next prayer")
	return true, nil
}
