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
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/playmatatu/minigolf/internal/api"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/database"
	"github.com/playmatatu/minigolf/internal/game"
	"github.com/playmatatu/minigolf/internal/logger"
	"github.com/playmatatu/minigolf/internal/migrations"
	"github.com/playmatatu/minigolf/internal/redis"
	"github.com/playmatatu/minigolf/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg)
	log := logger.For("server")

	params, err := game.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.TuningFile).Msg("invalid physics tuning")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sqlx.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			fatalOrWarn(cfg, err, "database unavailable")
		} else {
			defer db.Close()
			if cfg.MigrateOnStart {
				if err := migrations.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
					log.Fatal().Err(err).Msg("failed to run migrations")
				}
			}
		}
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(cfg.RedisURL)
		if err != nil {
			fatalOrWarn(cfg, err, "redis unavailable")
		} else {
			defer rdb.Close()
		}
	}

	manager := game.NewSessionManager(ctx, db, rdb, cfg, params)
	hub := ws.NewHub()
	go hub.Run(ctx)
	manager.SetBroadcaster(hub)

	game.StartIdleWorker(ctx, manager, rdb, cfg)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, manager, hub, db, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Int("tick_hz", cfg.TickRateHz).Msg("starting minigolf server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, s := range manager.ListSessions() {
		manager.EndSession(s.Token, game.StatusEnded)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}

// fatalOrWarn stops production servers on a storage failure. Elsewhere the
// server keeps running with that storage disabled.
func fatalOrWarn(cfg *config.Config, err error, msg string) {
	if cfg.Environment == "production" {
		log.Fatal().Err(err).Msg(msg)
	}
	log.Warn().Err(err).Msg(msg + "; continuing without it")
}
