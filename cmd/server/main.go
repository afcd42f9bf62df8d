package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meganote_dashboard/internal/apiclient"
	"meganote_dashboard/internal/config"
	"meganote_dashboard/internal/handler"
	"meganote_dashboard/internal/middleware"
	"meganote_dashboard/internal/notice"
	"meganote_dashboard/internal/repository"
	"meganote_dashboard/internal/service"
	"meganote_dashboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const noticeCapacity = 50

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// --- Configuration ---
	cfg := config.LoadAppConfig()
	logger := utils.NewLogger(cfg.Env)
	if envErr != nil {
		logger.Info().Msg("no .env file found, relying on environment variables")
	}

	// --- Client-state store: PostgreSQL when configured, memory otherwise ---
	var (
		stateRepo repository.StateRepository
		pinger    handler.Pinger
	)
	dbCfg, err := config.LoadDBConfig()
	switch {
	case errors.Is(err, config.ErrDBNotConfigured):
		logger.Warn().Msg("DB_* not set; client state will not survive a restart")
		stateRepo = repository.NewMemoryStateRepository()
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to load DB config")
	default:
		dbPool, err := config.ConnectDB(context.Background(), dbCfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer dbPool.Close()

		if err := config.AutoMigrate(context.Background(), dbPool, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to auto-migrate database")
		}
		stateRepo = repository.NewStateRepository(dbPool)
		pinger = dbPool
	}

	// --- Session and services ---
	notices := notice.NewQueue(noticeCapacity)
	base := apiclient.New(cfg.APIURL, cfg.APITimeout, logger)
	sessions := service.NewSessionManager(base, stateRepo, notices, logger)

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
	sessions.Restore(restoreCtx)
	cancelRestore()
	logger.Info().Str("session", string(sessions.State().Status())).Msg("session restored")

	noteService := service.NewNoteService(sessions, notices, cfg.PageSize, logger)
	userService := service.NewUserService(sessions, notices, cfg.PageSize, logger)
	prefsService := service.NewPrefsService(stateRepo, logger)

	// --- Handlers ---
	noteHandler := handler.NewNoteHandler(noteService, userService, cfg.SearchDebounce, logger)
	userHandler := handler.NewUserHandler(userService, cfg.SearchDebounce, logger)
	defer noteHandler.Close()
	defer userHandler.Close()

	// --- Setup Gin Router ---
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestLogger(logger), middleware.Recoverer(logger))

	handler.Router{
		Sessions:   sessions,
		CORSOrigin: cfg.CORSOrigin,
		Auth:       handler.NewAuthHandler(sessions, notices),
		Prefs:      handler.NewPrefsHandler(prefsService, pinger),
		Notes:      noteHandler,
		Users:      userHandler,
	}.Mount(engine)

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: engine,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("api", cfg.APIURL).Msg("dashboard starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exiting")
}
