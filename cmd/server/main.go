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
	"github.com/spf13/afero"

	"github.com/sorsu/tiktalk/internal/adapters/httpapi"
	"github.com/sorsu/tiktalk/internal/adapters/ws"
	"github.com/sorsu/tiktalk/internal/app"
	"github.com/sorsu/tiktalk/internal/config"
	"github.com/sorsu/tiktalk/internal/moderation"
	"github.com/sorsu/tiktalk/internal/storage"
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
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store := storage.New(afero.NewOsFs(), cfg.DataDir)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize data files")
	}

	bans := moderation.NewBanList(store)
	reports := moderation.NewReports(store)
	actions := moderation.NewActionLog(store)
	gate := moderation.NewGate(bans, reports)

	orch := app.NewOrchestrator(gate)

	reportLimiter := ws.NewIPRateLimiter(cfg.ReportRateLimit, cfg.ReportRateWindow)
	wsCtl := ws.NewController(orch, cfg.ReadLimit, cfg.PingPeriod, reportLimiter)

	admin := &httpapi.AdminAPI{
		Orch:    orch,
		Bans:    bans,
		Reports: reports,
		Actions: actions,
		Store:   store,
	}

	r := httpapi.SetupRouter(cfg, wsCtl, admin)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("TikTalk server started")
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
