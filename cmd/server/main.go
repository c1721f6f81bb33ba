package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dmarkov/jamsync/internal/adapters/http"
	signalws "github.com/dmarkov/jamsync/internal/adapters/signal"
	"github.com/dmarkov/jamsync/internal/app"
	"github.com/dmarkov/jamsync/internal/catalog"
	"github.com/dmarkov/jamsync/internal/config"
	"github.com/dmarkov/jamsync/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	registry := app.NewRegistry(cfg.RoomGracePeriod)
	provider := catalog.NewMockProvider()

	ctl := &signalws.SignalWSController{
		Registry:       registry,
		Recommender:    core.Recommender{Catalog: provider},
		CatalogTimeout: cfg.CatalogTimeout,
		ReadLimit:      cfg.ReadLimit,
		CreateLimiter:  signalws.NewRoomRateLimiter(cfg.CreateRoomLimit, cfg.CreateRoomInterval),
	}

	r := router.SetupRouter(ctx, cfg, ctl, registry, provider)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("jamsync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
