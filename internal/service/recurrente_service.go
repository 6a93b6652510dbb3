package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flujo/internal/calendario"
	"flujo/internal/model"
	"flujo/internal/moneda"
	"flujo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RecurrenteService materializes recurring expense templates into discrete
// GastoCausado rows.
//
// Each template carries a ProximoPago cursor: the earliest occurrence not yet
// turned into a row. Materialization emits one row per boundary from the
// cursor up to and including the as-of date (catch-up: a template ignored for
// three months produces three rows on the next run), then advances the cursor
// one frequency step past the last boundary emitted. The cursor only moves
// after the rows were persisted, so a crash between the two repeats the
// insert attempt instead of silently skipping cycles.
type RecurrenteService interface {
	// Materializar processes a single template. Paused templates and templates
	// whose cursor is still in the future produce nothing, with no error.
	Materializar(ctx context.Context, recurrenteID uuid.UUID, ahora time.Time) ([]model.GastoCausado, error)
	// MaterializarVencidos processes every active template whose cursor is due.
	MaterializarVencidos(ctx context.Context, ahora time.Time) ([]model.GastoCausado, error)
	// CambiarEstado pauses or resumes a template. Pausing freezes the cursor
	// where it stands; resuming does not touch it, the next materialization
	// catches up the missed cycles.
	CambiarEstado(ctx context.Context, recurrenteID uuid.UUID, estado string) (*model.GastoRecurrente, error)
}

type recurrenteService struct {
	gastoRepo repository.GastoRepository
}

func NewRecurrenteService(gastoRepo repository.GastoRepository) RecurrenteService {
	return &recurrenteService{gastoRepo: gastoRepo}
}

func (s *recurrenteService) Materializar(ctx context.Context, recurrenteID uuid.UUID, ahora time.Time) ([]model.GastoCausado, error) {
	rec, err := s.gastoRepo.FindRecurrenteByID(ctx, recurrenteID)
	if err != nil {
		return nil, fmt.Errorf("gasto recurrente no encontrado: %w", err)
	}
	return s.materializar(ctx, rec, ahora)
}

func (s *recurrenteService) MaterializarVencidos(ctx context.Context, ahora time.Time) ([]model.GastoCausado, error) {
	corte := calendario.Fecha(ahora)
	vencidos, err := s.gastoRepo.ListRecurrentesVencidos(ctx, corte)
	if err != nil {
		return nil, fmt.Errorf("listar gastos recurrentes vencidos: %w", err)
	}

	var todos []model.GastoCausado
	for i := range vencidos {
		generados, err := s.materializar(ctx, &vencidos[i], ahora)
		if err != nil {
			// one bad template must not starve the rest
			if errors.Is(err, ErrCursorDesactualizado) {
				log.Warn().Str("recurrente_id", vencidos[i].ID.String()).
					Msg("materialización concurrente detectada, se omite en esta corrida")
				continue
			}
			log.Error().Err(err).Str("recurrente_id", vencidos[i].ID.String()).
				Msg("error materializando gasto recurrente")
			continue
		}
		todos = append(todos, generados...)
	}
	return todos, nil
}

func (s *recurrenteService) materializar(ctx context.Context, rec *model.GastoRecurrente, ahora time.Time) ([]model.GastoCausado, error) {
	if rec.Estado != model.RecurrenteActivo {
		return nil, nil
	}
	if err := calendario.Valida(rec.Frecuencia); err != nil {
		return nil, fmt.Errorf("gasto recurrente %s: %w", rec.ID, err)
	}

	corte := calendario.Fecha(ahora)
	cursor := calendario.Fecha(rec.ProximoPago)
	if cursor.After(corte) {
		return nil, nil
	}

	// The start date's day-of-month anchors every monthly-multiple step, so a
	// Jan 31 template lands on Feb 28/29 and returns to the 31st in March.
	anclaje := calendario.Fecha(rec.FechaInicio).Day()
	monto, err := moneda.Redondear(rec.Monto, rec.Moneda)
	if err != nil {
		return nil, fmt.Errorf("gasto recurrente %s: %w", rec.ID, err)
	}

	var generados []model.GastoCausado
	for !cursor.After(corte) {
		generados = append(generados, model.GastoCausado{
			Descripcion:      rec.Descripcion,
			FechaVencimiento: cursor,
			Monto:            monto,
			Moneda:           rec.Moneda,
			Categoria:        rec.Categoria,
			MetodoPago:       rec.MetodoPago,
			Estado:           model.CausadoPendiente,
			EsRecurrente:     true,
			RecurrenteID:     &rec.ID,
		})
		cursor, err = calendario.Avanzar(cursor, rec.Frecuencia, anclaje)
		if err != nil {
			return nil, fmt.Errorf("gasto recurrente %s: %w", rec.ID, err)
		}
	}
	if len(generados) == 0 {
		return nil, nil
	}

	if err := s.gastoRepo.CreateCausadosBatch(ctx, generados); err != nil {
		return nil, fmt.Errorf("persistir gastos causados: %w", err)
	}
	rec.ProximoPago = cursor
	if err := s.gastoRepo.UpdateCursorRecurrente(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrVersionObsoleta) {
			return generados, ErrCursorDesactualizado
		}
		return generados, fmt.Errorf("avanzar cursor de gasto recurrente: %w", err)
	}

	log.Info().
		Str("recurrente_id", rec.ID.String()).
		Int("generados", len(generados)).
		Time("proximo_pago", cursor).
		Msg("gasto recurrente materializado")
	return generados, nil
}

func (s *recurrenteService) CambiarEstado(ctx context.Context, recurrenteID uuid.UUID, estado string) (*model.GastoRecurrente, error) {
	if estado != model.RecurrenteActivo && estado != model.RecurrentePausado {
		return nil, fmt.Errorf("%w: estado %q", ErrEstadoInvalido, estado)
	}
	rec, err := s.gastoRepo.FindRecurrenteByID(ctx, recurrenteID)
	if err != nil {
		return nil, fmt.Errorf("gasto recurrente no encontrado: %w", err)
	}
	if rec.Estado == estado {
		return rec, nil
	}
	rec.Estado = estado
	if err := s.gastoRepo.UpdateRecurrente(ctx, rec); err != nil {
		return nil, fmt.Errorf("actualizar gasto recurrente: %w", err)
	}
	return rec, nil
}
