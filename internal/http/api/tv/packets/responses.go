package packets

import (
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

// RESPONSES FOR /api/tv/*

type RegisterPairingCodeResponse struct {
	DeviceID  string `json:"device_id"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

type ConnectResponse struct {
	ScreenID int    `json:"screen_id"`
	Topic    string `json:"topic"`
}

// QiblahResponse carries either a bearing or configured=false when the
// screen's location was never set.
type QiblahResponse struct {
	Configured bool              `json:"configured"`
	From       qiblah.Coordinate `json:"from"`
	Degrees    *float64          `json:"degrees,omitempty"`
	Cardinal   qiblah.Cardinal   `json:"cardinal,omitempty"`
}

type PrayerSlotResponse struct {
	prayer.Slot
	Time      string `json:"time"` // "HH:MM"
	Countdown string `json:"countdown,omitempty"`
}

type PrayersResponse struct {
	Configured bool                 `json:"configured"`
	Location   *string              `json:"location,omitempty"`
	Date       string               `json:"date,omitempty"`
	Now        string               `json:"now,omitempty"`
	Timezone   string               `json:"timezone,omitempty"`
	Prayers    []PrayerSlotResponse `json:"prayers,omitempty"`
	// Tomorrow is set once today's last prayer has passed.
	Tomorrow *PrayerSlotResponse `json:"tomorrow,omitempty"`
}
