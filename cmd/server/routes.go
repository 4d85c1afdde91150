package main

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/sekine/internal/config"
	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/sekine/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/sekine/internal/http/api/admin/control/endpoints"
	clientapi "github.com/Nixie-Tech-LLC/sekine/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/sekine/internal/mqtt"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

// Services are the dependencies handed to the API modules.
type Services struct {
	Store    db.Store
	Pairings *redis.Pairings
	Devices  *mqtt.Hub
	Provider prayer.Provider
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(cfg.JWTSecret, svc.Store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
		Users:     svc.Store,
	},
		adminapi.ScreenModule(svc.Store, svc.Pairings, svc.Devices),
		// session endpoints that require auth
		authapi.AuthSessionModule(cfg.JWTSecret, svc.Store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		clientapi.PairingModule(svc.Store, svc.Pairings, svc.Devices),
		clientapi.DevotionalModule(svc.Store, svc.Provider, nil),
	)
}
