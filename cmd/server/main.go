package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/sekine/internal/aladhan"
	"github.com/Nixie-Tech-LLC/sekine/internal/announcer"
	"github.com/Nixie-Tech-LLC/sekine/internal/config"
	"github.com/Nixie-Tech-LLC/sekine/internal/db"
	"github.com/Nixie-Tech-LLC/sekine/internal/mqtt"
	"github.com/Nixie-Tech-LLC/sekine/internal/prayer"
	"github.com/Nixie-Tech-LLC/sekine/internal/redis"
)

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
}

func prayerProvider(cfg *config.Config, kv redis.KV) prayer.Provider {
	if cfg.PrayerProvider == "aladhan" {
		log.Info().Int("method", cfg.AladhanMethod).Dur("cache_ttl", cfg.TimingsCacheTTL).Msg("using aladhan prayer times")
		return redis.NewCachedProvider(aladhan.New(cfg.AladhanBaseURL, cfg.AladhanMethod), kv, cfg.TimingsCacheTTL)
	}
	log.Info().Msg("using static prayer schedule")
	return prayer.StaticProvider{}
}

func main() {
	// a missing .env is fine, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer conn.Close()

	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(conn)

	rdb := redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
	defer rdb.Close()
	kv := redis.NewKV(rdb)

	hub, err := mqtt.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer hub.Close()

	provider := prayerProvider(cfg, kv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go announcer.New(store, provider, hub, cfg.AnnounceInterval).Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, Services{
		Store:    store,
		Pairings: redis.NewPairings(kv),
		Devices:  hub,
		Provider: provider,
	})

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
