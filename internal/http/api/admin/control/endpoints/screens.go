package endpoints

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/sekine/internal/model"
	"github.com/Nixie-Tech-LLC/sekine/internal/qiblah"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

// CodeRedeemer exchanges a pairing code shown on a TV for its device id.
// Lookup peeks without consuming the code.
type CodeRedeemer interface {
	Lookup(ctx context.Context, code string) (string, error)
	Redeem(ctx context.Context, code string) (string, error)
}

// Presence knows which TVs are connected to their command topic.
type Presence interface {
	Online(deviceID string) bool
	Forget(deviceID string)
}

type TvController struct {
	store    db.Store
	pairings CodeRedeemer
	presence Presence
}

func newTvController(store db.Store, pairings CodeRedeemer, presence Presence) *TvController {
	return &TvController{store: store, pairings: pairings, presence: presence}
}

// ScreenModule mounts all authenticated /screens endpoints.
func ScreenModule(store db.Store, pairings CodeRedeemer, presence Presence) api.Module {
	ctl := newTvController(store, pairings, presence)
	return api.ModuleFunc(func(c *api.Controller) {
		// CRUD
		c.GET("/screens", ctl.listScreens)
		c.POST("/screens", ctl.createScreen)
		c.GET("/screens/:id", ctl.getScreen)
		c.PUT("/screens/:id", ctl.updateScreen)
		c.DELETE("/screens/:id", ctl.deleteScreen)

		// where the screen hangs
		c.PUT("/screens/:id/location", ctl.setLocation)

		// pairing
		c.POST("/screens/pair", ctl.pairScreen)
	})
}

func (t *TvController) screenResponse(s model.Screen) packets.ScreenResponse {
	return packets.ScreenResponse{
		ID:        s.ID,
		DeviceID:  s.DeviceID,
		Name:      s.Name,
		Location:  s.Location,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		Timezone:  s.Timezone,
		Paired:    s.Paired,
		Online:    s.DeviceID != nil && t.presence.Online(*s.DeviceID),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

// ownedScreen loads the screen named by the :id param and checks the caller owns it.
func (t *TvController) ownedScreen(ctx *gin.Context, user *model.User) (model.Screen, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Screen{}, api.BadRequest("invalid id")
	}
	return t.owned(id, user)
}

func (t *TvController) owned(id int, user *model.User) (model.Screen, *api.APIError) {
	screen, err := t.store.GetScreenByID(id)
	if errors.Is(err, db.ErrNotFound) {
		return model.Screen{}, api.NotFound("screen not found")
	}
	if err != nil {
		log.Error().Err(err).Int("screen_id", id).Msg("screen lookup failed")
		return model.Screen{}, api.Internal("could not load screen")
	}
	if screen.CreatedBy != user.ID {
		log.Warn().
			Int("user_id", user.ID).
			Int("screen_owner", screen.CreatedBy).
			Msg("forbidden access to screen")
		return model.Screen{}, api.Forbidden()
	}
	return screen, nil
}

// GET /api/admin/screens
func (t *TvController) listScreens(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := t.store.ListScreens(user.ID)
	if err != nil {
		return nil, api.Internal("could not list screens")
	}
	out := make([]packets.ScreenResponse, 0, len(all))
	for _, s := range all {
		out = append(out, t.screenResponse(s))
	}
	return out, nil
}

// POST /api/admin/screens
func (t *TvController) createScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screen, err := t.store.CreateScreen(request.Name, request.Location, user.ID)
	if err != nil {
		return nil, api.Internal("could not create screen")
	}
	log.Info().Int("screen_id", screen.ID).Int("user_id", user.ID).Msg("screen created")
	return t.screenResponse(screen), nil
}

// GET /api/admin/screens/:id
func (t *TvController) getScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return t.screenResponse(screen), nil
}

// PUT /api/admin/screens/:id
func (t *TvController) updateScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if err := t.store.UpdateScreen(screen.ID, request.Name, request.Location); err != nil {
		return nil, api.Internal("could not update screen")
	}

	updated, err := t.store.GetScreenByID(screen.ID)
	if err != nil {
		return nil, api.Internal("could not load screen")
	}
	return t.screenResponse(updated), nil
}

// DELETE /api/admin/screens/:id
func (t *TvController) deleteScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := t.store.DeleteScreen(screen.ID); err != nil {
		return nil, api.Internal("could not delete screen")
	}
	if screen.DeviceID != nil {
		t.presence.Forget(*screen.DeviceID)
	}
	return gin.H{"message": "deleted"}, nil
}

// PUT /api/admin/screens/:id/location
func (t *TvController) setLocation(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	screen, apiErr := t.ownedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetLocationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	coord := qiblah.Coordinate{Latitude: *request.Latitude, Longitude: *request.Longitude}
	if err := coord.Validate(); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	if request.Timezone != nil {
		if _, err := time.LoadLocation(*request.Timezone); err != nil {
			return nil, api.BadRequest("unknown timezone")
		}
	}

	if err := t.store.SetScreenCoordinates(screen.ID, coord.Latitude, coord.Longitude, request.Timezone); err != nil {
		return nil, api.Internal("could not save location")
	}

	updated, err := t.store.GetScreenByID(screen.ID)
	if err != nil {
		return nil, api.Internal("could not load screen")
	}
	log.Info().
		Int("screen_id", screen.ID).
		Float64("lat", coord.Latitude).
		Float64("lon", coord.Longitude).
		Msg("screen location updated")
	return t.screenResponse(updated), nil
}

// POST /api/admin/screens/pair
func (t *TvController) pairScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.PairScreenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screen, apiErr := t.owned(request.ScreenID, user)
	if apiErr != nil {
		return nil, apiErr
	}

	deviceID, err := t.pairings.Lookup(ctx.Request.Context(), request.PairingCode)
	if errors.Is(err, redis.ErrUnknownCode) {
		return nil, api.NotFound("could not find device for pairing code")
	}
	if err != nil {
		log.Error().Err(err).Msg("pairing code lookup failed")
		return nil, api.Internal("could not redeem pairing code")
	}

	// the code stays redeemable if the device is held elsewhere
	holder, err := t.store.GetScreenByDeviceID(deviceID)
	switch {
	case err == nil && holder.ID != screen.ID:
		log.Warn().Str("device_id", deviceID).Int("held_by", holder.ID).Msg("device already paired")
		return nil, api.Conflict("device is already paired to another screen")
	case err != nil && !errors.Is(err, db.ErrNotFound):
		log.Error().Err(err).Str("device_id", deviceID).Msg("device lookup failed")
		return nil, api.Internal("could not check pairing status")
	}

	if _, err := t.pairings.Redeem(ctx.Request.Context(), request.PairingCode); err != nil {
		if errors.Is(err, redis.ErrUnknownCode) {
			return nil, api.NotFound("could not find device for pairing code")
		}
		log.Error().Err(err).Msg("pairing code redeem failed")
		return nil, api.Internal("could not redeem pairing code")
	}

	err = t.store.PairScreen(screen.ID, deviceID)
	if errors.Is(err, db.ErrDeviceTaken) {
		return nil, api.Conflict("device is already paired to another screen")
	}
	if err != nil {
		return nil, api.Internal("could not pair screen")
	}
	if screen.DeviceID != nil && *screen.DeviceID != deviceID {
		t.presence.Forget(*screen.DeviceID)
	}

	log.Info().Int("screen_id", screen.ID).Str("device_id", deviceID).Msg("screen paired")
	return gin.H{"success": "screen paired successfully", "device_id": deviceID}, nil
}
