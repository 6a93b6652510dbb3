package main

// One-shot runner for the scheduler pass (sweep, horizon extension, monthly
// materialization). Meant for cron / manual operation against the same
// database the server uses.

import (
	"context"
	"os"
	"time"

	"flujo/internal/config"
	"flujo/internal/infra"
	"flujo/internal/repository"
	"flujo/internal/service"
	"flujo/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	// Redis is optional here: without it the pass still runs, relying on the
	// optimistic cursors for correctness.
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without locks")
		rdb = nil
	}

	proyectoRepo := repository.NewProyectoRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	gastoRepo := repository.NewGastoRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	worker.RunOnce(ctx, worker.SchedulerConfig{
		Estado:       service.NewEstadoService(pagoRepo, gastoRepo),
		Cronograma:   service.NewCronogramaService(proyectoRepo, pagoRepo),
		Recurrente:   service.NewRecurrenteService(gastoRepo),
		ProyectoRepo: proyectoRepo,
		RDB:          rdb,
		Mailer:       infra.NewMailer(cfg),
		Cfg:          cfg,
	}, time.Now())

	log.Info().Msg("jobs: pass completed")
}
