package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flujo/internal/config"
	"flujo/internal/infra"
	"flujo/internal/repository"
	"flujo/internal/router"
	"flujo/internal/service"
	"flujo/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tasas := infra.NewTasasClient(
		cfg.TasasURL, cfg.TasasAPIKey,
		time.Duration(cfg.TasasTimeoutSec)*time.Second,
		time.Duration(cfg.TasasCacheTTLHr)*time.Hour,
		rdb,
	)
	mailer := infra.NewMailer(cfg)

	// The scheduler is wired here (composition root) so the background loop
	// shares the exact service instances the HTTP surface uses.
	proyectoRepo := repository.NewProyectoRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	worker.StartScheduler(ctx, worker.SchedulerConfig{
		Estado:       service.NewEstadoService(pagoRepo, gastoRepo),
		Cronograma:   service.NewCronogramaService(proyectoRepo, pagoRepo),
		Recurrente:   service.NewRecurrenteService(gastoRepo),
		ProyectoRepo: proyectoRepo,
		RDB:          rdb,
		Mailer:       mailer,
		Cfg:          cfg,
	})

	r := router.New(cfg, db, rdb, tasas)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("flujo backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
