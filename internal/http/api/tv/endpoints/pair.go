package endpoints

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/sekine/internal/mqtt"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

// CodeRegistrar stores the pairing code a TV is currently displaying.
type CodeRegistrar interface {
	Register(ctx context.Context, code, deviceID string) error
}

// DeviceTracker remembers which TVs are listening on their command topic.
type DeviceTracker interface {
	Track(deviceID string)
}

type PairingController struct {
	store   db.Store
	codes   CodeRegistrar
	devices DeviceTracker
}

func PairingModule(store db.Store, codes CodeRegistrar, devices DeviceTracker) api.Module {
	ctl := &PairingController{store: store, codes: codes, devices: devices}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/register", ctl.registerPairingCode)
		c.PUBLIC_POST("/connect", ctl.connect)
	})
}

// registerPairingCode checks that the device isn't already paired and stores
// the code it displays so an admin can redeem it.
func (p *PairingController) registerPairingCode(ctx *gin.Context) (any, *api.APIError) {
	var request packets.RegisterPairingCodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	paired, err := p.store.IsDevicePaired(request.DeviceID)
	if err != nil {
		log.Error().Err(err).Str("device_id", request.DeviceID).Msg("pairing status lookup failed")
		return nil, api.Internal("could not check pairing status")
	}
	if paired {
		log.Warn().Str("device_id", request.DeviceID).Msg("screen is already paired")
		return nil, api.BadRequest("screen is already paired")
	}

	if err := p.codes.Register(ctx.Request.Context(), request.PairingCode, request.DeviceID); err != nil {
		return nil, api.Internal("could not store pairing code")
	}

	return packets.RegisterPairingCodeResponse{
		DeviceID:  request.DeviceID,
		ExpiresIn: int(redis.PairingTTL.Seconds()),
	}, nil
}

// connect lets a paired TV announce it is subscribed to its command topic.
func (p *PairingController) connect(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ConnectRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	screen, err := p.store.GetScreenByDeviceID(request.DeviceID)
	if errors.Is(err, db.ErrNotFound) || (err == nil && !screen.Paired) {
		log.Warn().Str("device_id", request.DeviceID).Msg("connect from unpaired device")
		return nil, api.Unauthorized("unauthorized device")
	}
	if err != nil {
		return nil, api.Internal("could not load screen")
	}

	p.devices.Track(request.DeviceID)
	return packets.ConnectResponse{ScreenID: screen.ID, Topic: mqtt.CommandTopic(request.DeviceID)}, nil
}
