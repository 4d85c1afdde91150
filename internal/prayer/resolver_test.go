package prayer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

func at(h, m int) time.Time {
	return time.Date(2025, time.August, 5, h, m, 0, 0, time.UTC)
}

func TestResolveMidday(t *testing.T) {
	slots := Resolve(DefaultSchedule, at(13, 0))
	require.Len(t, slots, 6)

	for _, s := range slots[:3] {
		assert.True(t, s.IsPassed, s.Label)
		assert.False(t, s.IsNext, s.Label)
	}
	assert.Equal(t, Asr, slots[3].Label)
	assert.True(t, slots[3].IsNext)
	assert.False(t, slots[3].IsPassed)
	for _, s := range slots[4:] {
		assert.False(t, s.IsPassed, s.Label)
		assert.False(t, s.IsNext, s.Label)
	}
}

func TestResolveAfterLastSlot(t *testing.T) {
	slots := Resolve(DefaultSchedule, at(20, 0))
	for _, s := range slots {
		assert.True(t, s.IsPassed, s.Label)
		assert.False(t, s.IsNext, s.Label)
	}
	_, ok := Next(slots)
	assert.False(t, ok)
}

func TestResolveBeforeFirstSlot(t *testing.T) {
	slots := Resolve(DefaultSchedule, at(1, 0))
	next, ok := Next(slots)
	require.True(t, ok)
	assert.Equal(t, Fajr, next.Label)
	for _, s := range slots {
		assert.False(t, s.IsPassed, s.Label)
	}
}

func TestResolveExactSlotTimeIsPassed(t *testing.T) {
	slots := Resolve(DefaultSchedule, at(12, 15))
	assert.True(t, slots[2].IsPassed)
	assert.True(t, slots[3].IsNext)
}

func TestResolveEmpty(t *testing.T) {
	slots := Resolve(nil, at(9, 0))
	assert.NotNil(t, slots)
	assert.Empty(t, slots)
}

func TestResolveInvariantAllMinutes(t *testing.T) {
	for m := 0; m < 24*60; m++ {
		slots := Resolve(DefaultSchedule, at(m/60, m%60))
		nextIdx := -1
		for i, s := range slots {
			if s.IsNext {
				if nextIdx != -1 {
					t.Fatalf("%02d:%02d: more than one next slot", m/60, m%60)
				}
				nextIdx = i
			}
			if s.IsNext && s.IsPassed {
				t.Fatalf("%02d:%02d: %s both next and passed", m/60, m%60, s.Label)
			}
		}
		if nextIdx == -1 {
			continue
		}
		for i, s := range slots {
			if i < nextIdx && !s.IsPassed {
				t.Fatalf("%02d:%02d: %s precedes next but is not passed", m/60, m%60, s.Label)
			}
			if i > nextIdx && (s.IsPassed || s.IsNext) {
				t.Fatalf("%02d:%02d: %s follows next but is flagged", m/60, m%60, s.Label)
			}
		}
	}
}

func TestResolveReturnsFreshSlice(t *testing.T) {
	a := Resolve(DefaultSchedule, at(13, 0))
	a[0].Label = "changed"
	b := Resolve(DefaultSchedule, at(13, 0))
	assert.Equal(t, Fajr, b[0].Label)
	assert.Equal(t, Fajr, DefaultSchedule[0].Label)
}

func TestCountdown(t *testing.T) {
	assert.Equal(t, "2h 15m", Countdown(15, 30, at(13, 15)))
	assert.Equal(t, "30m", Countdown(15, 30, at(15, 0)))
	// same minute means tomorrow
	assert.Equal(t, "24h 0m", Countdown(15, 30, at(15, 30)))
	assert.Equal(t, "9h 53m", Countdown(5, 23, at(19, 30)))
}

func TestCountdownAcrossDSTChange(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	// clocks go forward at 01:00 on 30 March 2025
	spring := time.Date(2025, time.March, 29, 23, 0, 0, 0, london)
	assert.Equal(t, "5h 23m", Countdown(5, 23, spring))

	// and back at 02:00 on 26 October 2025
	autumn := time.Date(2025, time.October, 25, 23, 0, 0, 0, london)
	assert.Equal(t, "7h 23m", Countdown(5, 23, autumn))
}

func TestCountdownFloorsSeconds(t *testing.T) {
	now := time.Date(2025, time.August, 5, 13, 15, 30, 0, time.UTC)
	assert.Equal(t, "2h 14m", Countdown(15, 30, now))
}

func TestStaticProviderReturnsCopy(t *testing.T) {
	got, err := StaticProvider{}.Timings(context.Background(), qiblah.Coordinate{}, at(0, 0))
	require.NoError(t, err)
	assert.Equal(t, DefaultSchedule, got)
	got[0].Hour = 9
	assert.Equal(t, 5, DefaultSchedule[0].Hour)
}

func TestEntryClock(t *testing.T) {
	assert.Equal(t, "05:23", Entry{Hour: 5, Minute: 23}.Clock())
}
