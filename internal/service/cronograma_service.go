package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"flujo/internal/calendario"
	"flujo/internal/model"
	"flujo/internal/moneda"
	"flujo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// OcurrenciaPreview is one projected charge of PreviewRecurrente.
type OcurrenciaPreview struct {
	Fecha time.Time       `json:"fecha"`
	Monto decimal.Decimal `json:"monto"`
}

// CronogramaService expands payment plans into concrete scheduled payments.
//
// Expansion is idempotent: each plan carries cursors with the last generated
// installment and occurrence numbers, reconciled against what is actually
// persisted, so re-invocation with the same or a larger horizon only appends
// events strictly after the latest existing row — never re-emitting or
// shifting rows already generated.
type CronogramaService interface {
	// GenerarPagos expands the project's plan over the next `meses` months of
	// wall-clock coverage counted from ahora, persists the new payments and
	// advances the plan cursors. Returns the rows created by this call.
	GenerarPagos(ctx context.Context, proyectoID uuid.UUID, meses int, ahora time.Time) ([]model.Pago, error)
	// PreviewRecurrente projects `cantidad` occurrences of a recurring charge
	// without touching persistence.
	PreviewRecurrente(fechaInicio time.Time, frecuencia string, monto decimal.Decimal, monedaCobro string, cantidad int) ([]OcurrenciaPreview, error)
	// HorizonteCubierto reports how many months of schedule a project already
	// has generated ahead of ahora.
	HorizonteCubierto(ctx context.Context, proyectoID uuid.UUID, ahora time.Time) (int, error)
}

type cronogramaService struct {
	proyectoRepo repository.ProyectoRepository
	pagoRepo     repository.PagoRepository
}

func NewCronogramaService(proyectoRepo repository.ProyectoRepository, pagoRepo repository.PagoRepository) CronogramaService {
	return &cronogramaService{proyectoRepo: proyectoRepo, pagoRepo: pagoRepo}
}

// ── GenerarPagos ──────────────────────────────────────────────────────────────

func (s *cronogramaService) GenerarPagos(ctx context.Context, proyectoID uuid.UUID, meses int, ahora time.Time) ([]model.Pago, error) {
	if meses <= 0 {
		meses = 12
	}
	proyecto, err := s.proyectoRepo.FindByID(ctx, proyectoID)
	if err != nil {
		return nil, fmt.Errorf("proyecto no encontrado: %w", err)
	}
	if proyecto.Plan == nil {
		return nil, fmt.Errorf("%w: el proyecto no tiene plan de pagos", ErrPlanInvalido)
	}
	plan := proyecto.Plan
	if err := validarPlan(plan); err != nil {
		return nil, err
	}

	// Reconcile cursors against persisted rows: a previous run may have
	// persisted payments and then failed to record the cursor advance. The
	// persisted maximum wins, so a re-run never duplicates.
	maxCuota, err := s.pagoRepo.MaxNumeroCuota(ctx, proyecto.ID, model.TipoImplementacion)
	if err != nil {
		return nil, err
	}
	maxOcurrencia, err := s.pagoRepo.MaxNumeroCuota(ctx, proyecto.ID, model.TipoRecurrente)
	if err != nil {
		return nil, err
	}
	if maxCuota > plan.UltimaCuotaGenerada {
		plan.UltimaCuotaGenerada = maxCuota
	}
	if maxOcurrencia > plan.UltimaOcurrenciaGenerada {
		plan.UltimaOcurrenciaGenerada = maxOcurrencia
	}

	pagos, ultimaCuota, ultimaOcurrencia, err := expandirPlan(proyecto, plan, calendario.Fecha(ahora), meses)
	if err != nil {
		return nil, err
	}
	if len(pagos) == 0 {
		return []model.Pago{}, nil
	}

	if err := s.pagoRepo.CreateBatch(ctx, pagos); err != nil {
		return nil, fmt.Errorf("persistir pagos generados: %w", err)
	}

	// Cursors only advance after the rows are durably persisted.
	plan.UltimaCuotaGenerada = ultimaCuota
	plan.UltimaOcurrenciaGenerada = ultimaOcurrencia
	if err := s.proyectoRepo.UpdateCursorPlan(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrVersionObsoleta) {
			return nil, fmt.Errorf("%w: plan %s", ErrCursorDesactualizado, plan.ID)
		}
		return nil, fmt.Errorf("avanzar cursor del plan: %w", err)
	}

	log.Info().
		Str("proyecto_id", proyecto.ID.String()).
		Int("generados", len(pagos)).
		Int("ultima_cuota", ultimaCuota).
		Int("ultima_ocurrencia", ultimaOcurrencia).
		Msg("cronograma: pagos generados")

	return pagos, nil
}

// expandirPlan computes the not-yet-generated payments of a plan up to
// horizonte months after desde. Returns the new rows plus the cursor values
// they advance to.
func expandirPlan(proyecto *model.Proyecto, plan *model.PlanPago, desde time.Time, meses int) ([]model.Pago, int, int, error) {
	horizonte := desde.AddDate(0, meses, 0)
	inicio := calendario.Fecha(proyecto.FechaInicio)

	var pagos []model.Pago
	ultimaCuota := plan.UltimaCuotaGenerada
	ultimaOcurrencia := plan.UltimaOcurrenciaGenerada

	if plan.RequiereImplementacion() {
		cuotas, err := moneda.RepartirCuotas(*plan.ImplementacionTotal, plan.ImplementacionCuotas, *plan.ImplementacionMoneda)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("%w: %v", ErrPlanInvalido, err)
		}
		for i := plan.UltimaCuotaGenerada + 1; i <= plan.ImplementacionCuotas; i++ {
			fecha, err := calendario.Ocurrencia(inicio, model.FrecuenciaMensual, inicio.Day(), i-1)
			if err != nil {
				return nil, 0, 0, err
			}
			if fecha.After(horizonte) {
				break
			}
			numero := i
			pagos = append(pagos, model.Pago{
				ProyectoID:  proyecto.ID,
				ClienteID:   proyecto.ClienteID,
				Monto:       cuotas[i-1],
				Moneda:      *plan.ImplementacionMoneda,
				Fecha:       fecha,
				Estado:      model.PagoPendiente,
				Tipo:        model.TipoImplementacion,
				NumeroCuota: &numero,
			})
			ultimaCuota = i
		}
	}

	if plan.RequiereRecurrente() {
		gracia := plan.RecurrentePeriodosGracia
		descuento := plan.RecurrentePeriodosDescuento
		dia := 0
		if plan.RecurrenteDiaCobro != nil {
			dia = *plan.RecurrenteDiaCobro
		}
		for k := 0; ; k++ {
			fecha, err := calendario.Ocurrencia(inicio, *plan.RecurrenteFrecuencia, dia, k)
			if err != nil {
				return nil, 0, 0, err
			}
			if fecha.After(horizonte) {
				break
			}
			indice := k + 1
			if indice <= plan.UltimaOcurrenciaGenerada {
				continue // already generated by a previous run
			}
			if indice <= gracia {
				continue // free period — no payment emitted
			}
			monto := *plan.RecurrenteMonto
			if indice <= gracia+descuento {
				monto, err = moneda.AplicarDescuento(monto, plan.RecurrenteDescuentoPct, *plan.RecurrenteMoneda)
			} else {
				monto, err = moneda.Redondear(monto, *plan.RecurrenteMoneda)
			}
			if err != nil {
				return nil, 0, 0, fmt.Errorf("%w: %v", ErrPlanInvalido, err)
			}
			numero := indice
			pagos = append(pagos, model.Pago{
				ProyectoID:  proyecto.ID,
				ClienteID:   proyecto.ClienteID,
				Monto:       monto,
				Moneda:      *plan.RecurrenteMoneda,
				Fecha:       fecha,
				Estado:      model.PagoPendiente,
				Tipo:        model.TipoRecurrente,
				NumeroCuota: &numero,
			})
			ultimaOcurrencia = indice
		}
	}

	// Mixed plans interleave both branches: by date, implementation first on ties.
	sort.SliceStable(pagos, func(i, j int) bool {
		if !pagos[i].Fecha.Equal(pagos[j].Fecha) {
			return pagos[i].Fecha.Before(pagos[j].Fecha)
		}
		return pagos[i].Tipo == model.TipoImplementacion && pagos[j].Tipo == model.TipoRecurrente
	})

	return pagos, ultimaCuota, ultimaOcurrencia, nil
}

// ── PreviewRecurrente ─────────────────────────────────────────────────────────

func (s *cronogramaService) PreviewRecurrente(fechaInicio time.Time, frecuencia string, monto decimal.Decimal, monedaCobro string, cantidad int) ([]OcurrenciaPreview, error) {
	if err := calendario.Valida(frecuencia); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlanInvalido, err)
	}
	if cantidad <= 0 {
		cantidad = 12
	}
	redondeado, err := moneda.Redondear(monto, monedaCobro)
	if err != nil {
		return nil, err
	}
	proyeccion := make([]OcurrenciaPreview, 0, cantidad)
	for k := 0; k < cantidad; k++ {
		fecha, err := calendario.Ocurrencia(fechaInicio, frecuencia, fechaInicio.Day(), k)
		if err != nil {
			return nil, err
		}
		proyeccion = append(proyeccion, OcurrenciaPreview{Fecha: fecha, Monto: redondeado})
	}
	return proyeccion, nil
}

// ── HorizonteCubierto ─────────────────────────────────────────────────────────

func (s *cronogramaService) HorizonteCubierto(ctx context.Context, proyectoID uuid.UUID, ahora time.Time) (int, error) {
	ultima, err := s.pagoRepo.UltimaFechaGenerada(ctx, proyectoID)
	if err != nil {
		return 0, err
	}
	if ultima.IsZero() {
		return 0, nil
	}
	return calendario.MesesCubiertos(calendario.Fecha(ahora), ultima), nil
}

// ── Validation ────────────────────────────────────────────────────────────────

func validarPlan(plan *model.PlanPago) error {
	switch plan.Tipo {
	case model.PlanFeeUnico, model.PlanFeeCuotas, model.PlanSuscripcion, model.PlanMixto:
	default:
		return fmt.Errorf("%w: tipo de plan %q", ErrPlanInvalido, plan.Tipo)
	}
	if plan.RequiereImplementacion() {
		if plan.ImplementacionTotal == nil || plan.ImplementacionMoneda == nil {
			return fmt.Errorf("%w: falta el sub-plan de implementación para tipo %q", ErrPlanInvalido, plan.Tipo)
		}
		if plan.ImplementacionCuotas < 1 {
			return fmt.Errorf("%w: numero de cuotas %d", ErrPlanInvalido, plan.ImplementacionCuotas)
		}
	}
	if plan.RequiereRecurrente() {
		if plan.RecurrenteMonto == nil || plan.RecurrenteMoneda == nil || plan.RecurrenteFrecuencia == nil {
			return fmt.Errorf("%w: falta el sub-plan recurrente para tipo %q", ErrPlanInvalido, plan.Tipo)
		}
		frec := *plan.RecurrenteFrecuencia
		if frec == model.FrecuenciaDiaria {
			return fmt.Errorf("%w: frecuencia %q no valida para planes de pago", ErrPlanInvalido, frec)
		}
		if err := calendario.Valida(frec); err != nil {
			return fmt.Errorf("%w: %v", ErrPlanInvalido, err)
		}
		if calendario.EsMensual(frec) && plan.RecurrenteDiaCobro != nil {
			if dia := *plan.RecurrenteDiaCobro; dia < 1 || dia > 31 {
				return fmt.Errorf("%w: dia de cobro %d fuera de rango [1,31]", ErrPlanInvalido, dia)
			}
		}
	}
	return nil
}
