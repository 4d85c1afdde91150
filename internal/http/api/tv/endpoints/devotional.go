package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/sekine/internal/model"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
)

type DevotionalController struct {
	store    db.Store
	provider prayer.Provider
	now      func() time.Time
}

// DevotionalModule serves qiblah and prayer-time data to TVs. now is the
// wall clock; tests pass a fixed one.
func DevotionalModule(store db.Store, provider prayer.Provider, now func() time.Time) api.Module {
	if now == nil {
		now = time.Now
	}
	ctl := &DevotionalController{store: store, provider: provider, now: now}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/qiblah", ctl.qiblahForCoordinate)
		c.PUBLIC_GET("/screens/:device_id/qiblah", ctl.qiblahForScreen)
		c.PUBLIC_GET("/screens/:device_id/prayers", ctl.prayersForScreen)
	})
}

func qiblahResponse(from qiblah.Coordinate) packets.QiblahResponse {
	b, err := qiblah.Calculate(from)
	if errors.Is(err, qiblah.ErrNotConfigured) {
		return packets.QiblahResponse{Configured: false, From: from}
	}
	return packets.QiblahResponse{Configured: true, From: from, Degrees: &b.Degrees, Cardinal: b.Cardinal}
}

// GET /api/tv/qiblah?lat=..&lon=..
func (d *DevotionalController) qiblahForCoordinate(ctx *gin.Context) (any, *api.APIError) {
	lat, err := strconv.ParseFloat(ctx.Query("lat"), 64)
	if err != nil {
		return nil, api.BadRequest("invalid lat")
	}
	lon, err := strconv.ParseFloat(ctx.Query("lon"), 64)
	if err != nil {
		return nil, api.BadRequest("invalid lon")
	}
	from := qiblah.Coordinate{Latitude: lat, Longitude: lon}
	if err := from.Validate(); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	return qiblahResponse(from), nil
}

func (d *DevotionalController) screen(ctx *gin.Context) (model.Screen, *api.APIError) {
	screen, err := d.store.GetScreenByDeviceID(ctx.Param("device_id"))
	if errors.Is(err, db.ErrNotFound) {
		return model.Screen{}, api.NotFound("screen not found")
	}
	if err != nil {
		log.Error().Err(err).Str("device_id", ctx.Param("device_id")).Msg("screen lookup failed")
		return model.Screen{}, api.Internal("could not load screen")
	}
	return screen, nil
}

// GET /api/tv/screens/:device_id/qiblah
func (d *DevotionalController) qiblahForScreen(ctx *gin.Context) (any, *api.APIError) {
	screen, apiErr := d.screen(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return qiblahResponse(screen.Coordinate()), nil
}

func slotResponse(s prayer.Slot, now time.Time) packets.PrayerSlotResponse {
	out := packets.PrayerSlotResponse{
		Slot: s,
		Time: prayer.Entry{Hour: s.Hour, Minute: s.Minute}.Clock(),
	}
	if s.IsNext {
		out.Countdown = prayer.Countdown(s.Hour, s.Minute, now)
	}
	return out
}

// GET /api/tv/screens/:device_id/prayers
func (d *DevotionalController) prayersForScreen(ctx *gin.Context) (any, *api.APIError) {
	screen, apiErr := d.screen(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	coord := screen.Coordinate()
	if coord.IsZero() {
		return packets.PrayersResponse{Configured: false}, nil
	}

	zone := screen.Zone()
	now := d.now().In(zone)

	entries, err := d.provider.Timings(ctx.Request.Context(), coord, now)
	if err != nil {
		log.Error().Err(err).Int("screen_id", screen.ID).Msg("failed to get prayer times")
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "failed to get prayer times"}
	}

	slots := prayer.Resolve(entries, now)
	resp := packets.PrayersResponse{
		Configured: true,
		Location:   screen.Location,
		Date:       strings.ToUpper(now.Format("January 2, 2006")),
		Now:        now.Format("15:04"),
		Timezone:   zone.String(),
		Prayers:    make([]packets.PrayerSlotResponse, len(slots)),
	}
	for i, s := range slots {
		resp.Prayers[i] = slotResponse(s, now)
	}

	// Resolve never wraps past midnight; after the last prayer look at
	// tomorrow's first one instead.
	if _, ok := prayer.Next(slots); !ok && len(slots) > 0 {
		tomorrow, err := d.provider.Timings(ctx.Request.Context(), coord, now.AddDate(0, 0, 1))
		if err != nil {
			log.Warn().Err(err).Int("screen_id", screen.ID).Msg("could not load tomorrow's prayer times")
		} else if len(tomorrow) > 0 {
			first := tomorrow[0]
			next := slotResponse(prayer.Slot{Label: first.Label, Hour: first.Hour, Minute: first.Minute, IsNext: true}, now)
			resp.Tomorrow = &next
		}
	}
	return resp, nil
}
