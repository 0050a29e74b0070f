package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/user-access/internal/auth"
	"github.com/iliyamo/user-access/internal/config"
	"github.com/iliyamo/user-access/internal/database"
	"github.com/iliyamo/user-access/internal/handler"
	"github.com/iliyamo/user-access/internal/middleware"
	"github.com/iliyamo/user-access/internal/queue"
	"github.com/iliyamo/user-access/internal/repository"
	"github.com/iliyamo/user-access/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	roles := repository.NewRoleRepo(db)

	codec := auth.NewCodec(cfg.JWTSecret)
	issuer := auth.NewIssuer(codec, sessions,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour)
	validator := auth.NewValidator(codec, sessions, roles)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn().Msg("redis unavailable, rate limiting disabled")
	}
	limit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	authHandler := handler.NewAuthHandler(cfg, users, sessions, issuer, validator)
	userHandler := handler.NewUserHandler(cfg, users, roles)

	go queue.StartAuthConsumer()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, authHandler, userHandler, validator, limit)

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
	if err := e.Start(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
