package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meganote_dashboard/internal/config"
	"meganote_dashboard/internal/devapi"
	"meganote_dashboard/internal/middleware"
	"meganote_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadDevAPIConfig()
	logger := utils.NewLogger(cfg.Env)
	if envErr != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	store := devapi.NewStore()
	if err := devapi.Seed(store); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed store")
	}
	logger.Info().Str("password", devapi.DemoPassword).Msg("seeded demo accounts alice, mark, erin, olaf")

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), middleware.Recoverer(logger))
	devapi.NewServer(store, utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpirationHours), logger).RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("dev backend starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	logger.Info().Msg("dev backend exiting")
}
