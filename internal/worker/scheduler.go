package worker

// scheduler.go
// Background goroutine that keeps the financial calendar current:
//   - daily: marks overdue payments / accrued expenses and emails a summary
//   - daily: re-expands payment plans whose generated horizon ran short
//   - monthly: materializes due recurring expense templates (guarded by a
//     Redis month marker so multiple instances run it once)
// Every step is idempotent, so a missed or repeated tick is harmless.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"flujo/internal/config"
	"flujo/internal/infra"
	"flujo/internal/repository"
	"flujo/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SchedulerConfig holds all dependencies for the scheduler goroutine.
type SchedulerConfig struct {
	Estado       service.EstadoService
	Cronograma   service.CronogramaService
	Recurrente   service.RecurrenteService
	ProyectoRepo repository.ProyectoRepository
	RDB          *redis.Client
	Mailer       *infra.Mailer
	Cfg          *config.Config
}

// StartScheduler launches the background goroutine. It runs one pass
// immediately and then ticks at the configured interval, respecting the
// context for graceful shutdown.
func StartScheduler(ctx context.Context, cfg SchedulerConfig) {
	go func() {
		intervalo := time.Duration(cfg.Cfg.BarridoIntervaloHr) * time.Hour
		if intervalo <= 0 {
			intervalo = 24 * time.Hour
		}
		ticker := time.NewTicker(intervalo)
		defer ticker.Stop()

		log.Info().Dur("intervalo", intervalo).Msg("scheduler: started")
		RunOnce(ctx, cfg, time.Now())

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("scheduler: shutting down")
				return
			case <-ticker.C:
				RunOnce(ctx, cfg, time.Now())
			}
		}
	}()
}

// RunOnce executes a full scheduler pass at the given instant. Exposed so the
// jobs command can trigger a pass without the ticker.
func RunOnce(ctx context.Context, cfg SchedulerConfig, ahora time.Time) {
	barrerVencidos(ctx, cfg, ahora)
	extenderCronogramas(ctx, cfg, ahora)
	materializarMensual(ctx, cfg, ahora)
}

func barrerVencidos(ctx context.Context, cfg SchedulerConfig, ahora time.Time) {
	resultado, err := cfg.Estado.Barrer(ctx, ahora)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: barrido de vencidos falló")
		return
	}
	if resultado == nil {
		return
	}
	total := len(resultado.PagosVencidos) + len(resultado.CausadosVencidos)
	if total == 0 || cfg.Mailer == nil || cfg.Cfg.EmailFinanzas == "" {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Barrido del %s\n\n", ahora.Format("2006-01-02"))
	if n := len(resultado.PagosVencidos); n > 0 {
		fmt.Fprintf(&b, "Pagos de clientes vencidos: %d\n", n)
		for i := range resultado.PagosVencidos {
			p := &resultado.PagosVencidos[i]
			fmt.Fprintf(&b, "  - %s %s %s (vencía %s)\n",
				p.Tipo, p.Monto.String(), p.Moneda, p.Fecha.Format("2006-01-02"))
		}
	}
	if n := len(resultado.CausadosVencidos); n > 0 {
		fmt.Fprintf(&b, "Gastos causados vencidos: %d\n", n)
		for i := range resultado.CausadosVencidos {
			c := &resultado.CausadosVencidos[i]
			fmt.Fprintf(&b, "  - %s %s %s (vencía %s)\n",
				c.Descripcion, c.Monto.String(), c.Moneda, c.FechaVencimiento.Format("2006-01-02"))
		}
	}

	asunto := fmt.Sprintf("Vencimientos del día: %d registros", total)
	if err := cfg.Mailer.SendResumen(cfg.Cfg.EmailFinanzas, asunto, b.String()); err != nil {
		log.Warn().Err(err).Msg("scheduler: no se pudo enviar el resumen de vencidos")
	}
}

func extenderCronogramas(ctx context.Context, cfg SchedulerConfig, ahora time.Time) {
	proyectos, err := cfg.ProyectoRepo.ListActivosConPlan(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: listar proyectos activos falló")
		return
	}

	for i := range proyectos {
		p := &proyectos[i]
		meses, err := cfg.Cronograma.HorizonteCubierto(ctx, p.ID, ahora)
		if err != nil {
			log.Error().Err(err).Str("proyecto_id", p.ID.String()).
				Msg("scheduler: horizonte cubierto falló")
			continue
		}
		if meses >= cfg.Cfg.HorizonteMinMeses {
			continue
		}

		clave := LockPlan(p.ID)
		ok, err := AcquireLock(ctx, cfg.RDB, clave)
		if err != nil || !ok {
			continue
		}
		generados, err := cfg.Cronograma.GenerarPagos(ctx, p.ID, cfg.Cfg.HorizonteMeses, ahora)
		ReleaseLock(ctx, cfg.RDB, clave)

		switch {
		case errors.Is(err, service.ErrCursorDesactualizado):
			// another instance got there first, its run covers this plan
		case err != nil:
			log.Error().Err(err).Str("proyecto_id", p.ID.String()).
				Msg("scheduler: extender cronograma falló")
		case len(generados) > 0:
			log.Info().Str("proyecto_id", p.ID.String()).Int("pagos", len(generados)).
				Msg("scheduler: cronograma extendido")
		}
	}
}

func materializarMensual(ctx context.Context, cfg SchedulerConfig, ahora time.Time) {
	if cfg.RDB != nil {
		marca := "jobs:materializacion:" + ahora.Format("2006-01")
		ok, err := cfg.RDB.SetNX(ctx, marca, "1", 45*24*time.Hour).Result()
		if err != nil {
			log.Warn().Err(err).Msg("scheduler: marca mensual inaccesible, se materializa igual")
		} else if !ok {
			return // this month already ran; materialization is also idempotent
		}
	}

	generados, err := cfg.Recurrente.MaterializarVencidos(ctx, ahora)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: materialización de recurrentes falló")
		return
	}
	if len(generados) > 0 {
		log.Info().Int("gastos_causados", len(generados)).
			Msg("scheduler: gastos recurrentes materializados")
	}
}
