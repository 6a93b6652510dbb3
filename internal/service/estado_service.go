package service

import (
	"context"
	"fmt"
	"time"

	"flujo/internal/calendario"
	"flujo/internal/model"
	"flujo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ResultadoBarrido summarizes one overdue sweep.
type ResultadoBarrido struct {
	PagosVencidos    []model.Pago
	CausadosVencidos []model.GastoCausado
}

// EstadoService drives the payment / accrued-expense status machine.
//
// The sweep is a pure function of the injected "now": running it twice at the
// same instant changes nothing, and records are processed in (due date, id)
// order so an interrupted run resumes deterministically. "Pagado"/"pagado" is
// terminal for the sweep; only explicit status updates touch paid rows.
type EstadoService interface {
	// Barrer transitions every Pendiente payment and pendiente accrued expense
	// whose date passed strictly before ahora to Vencido/vencido. Each
	// transition persists individually, so a cancelled run leaves no record in
	// an inconsistent state.
	Barrer(ctx context.Context, ahora time.Time) (*ResultadoBarrido, error)
	// ActualizarEstadoPago applies an explicit status change. Marking Pagado
	// requires a paid date (back-dated settlement is allowed); any other
	// status clears it.
	ActualizarEstadoPago(ctx context.Context, pagoID uuid.UUID, estado string, fechaPago *time.Time, numeroFactura *string) (*model.Pago, error)
	// PagarCausado marks an accrued expense paid on the given date.
	PagarCausado(ctx context.Context, causadoID uuid.UUID, fechaPago time.Time, metodoPago string, comprobanteRef *string) (*model.GastoCausado, error)
}

type estadoService struct {
	pagoRepo  repository.PagoRepository
	gastoRepo repository.GastoRepository
}

func NewEstadoService(pagoRepo repository.PagoRepository, gastoRepo repository.GastoRepository) EstadoService {
	return &estadoService{pagoRepo: pagoRepo, gastoRepo: gastoRepo}
}

// ── Barrer ────────────────────────────────────────────────────────────────────

func (s *estadoService) Barrer(ctx context.Context, ahora time.Time) (*ResultadoBarrido, error) {
	hoy := calendario.Fecha(ahora)
	resultado := &ResultadoBarrido{}

	pagos, err := s.pagoRepo.ListPendientesHasta(ctx, hoy)
	if err != nil {
		return nil, fmt.Errorf("barrido de pagos: %w", err)
	}
	for i := range pagos {
		if err := ctx.Err(); err != nil {
			return resultado, err
		}
		pagos[i].Estado = model.PagoVencido
		if err := s.pagoRepo.Update(ctx, &pagos[i]); err != nil {
			return resultado, fmt.Errorf("marcar pago %s vencido: %w", pagos[i].ID, err)
		}
		resultado.PagosVencidos = append(resultado.PagosVencidos, pagos[i])
	}

	causados, err := s.gastoRepo.ListCausadosPendientesHasta(ctx, hoy)
	if err != nil {
		return resultado, fmt.Errorf("barrido de gastos causados: %w", err)
	}
	for i := range causados {
		if err := ctx.Err(); err != nil {
			return resultado, err
		}
		causados[i].Estado = model.CausadoVencido
		if err := s.gastoRepo.UpdateCausado(ctx, &causados[i]); err != nil {
			return resultado, fmt.Errorf("marcar gasto causado %s vencido: %w", causados[i].ID, err)
		}
		resultado.CausadosVencidos = append(resultado.CausadosVencidos, causados[i])
	}

	if n := len(resultado.PagosVencidos) + len(resultado.CausadosVencidos); n > 0 {
		log.Info().
			Int("pagos", len(resultado.PagosVencidos)).
			Int("gastos_causados", len(resultado.CausadosVencidos)).
			Time("corte", hoy).
			Msg("barrido: registros marcados vencidos")
	}
	return resultado, nil
}

// ── ActualizarEstadoPago ──────────────────────────────────────────────────────

func (s *estadoService) ActualizarEstadoPago(ctx context.Context, pagoID uuid.UUID, estado string, fechaPago *time.Time, numeroFactura *string) (*model.Pago, error) {
	pago, err := s.pagoRepo.FindByID(ctx, pagoID)
	if err != nil {
		return nil, fmt.Errorf("pago no encontrado: %w", err)
	}

	switch estado {
	case model.PagoPagado:
		if fechaPago == nil {
			return nil, fmt.Errorf("%w: marcar Pagado requiere fecha de pago", ErrEstadoInvalido)
		}
		f := calendario.Fecha(*fechaPago)
		pago.FechaPago = &f
	case model.PagoPendiente, model.PagoVencido:
		// paid_date is non-null iff Pagado
		pago.FechaPago = nil
	default:
		return nil, fmt.Errorf("%w: estado %q", ErrEstadoInvalido, estado)
	}
	pago.Estado = estado
	if numeroFactura != nil {
		pago.NumeroFactura = numeroFactura
	}

	if err := s.pagoRepo.Update(ctx, pago); err != nil {
		return nil, fmt.Errorf("actualizar pago: %w", err)
	}
	return pago, nil
}

// ── PagarCausado ──────────────────────────────────────────────────────────────

func (s *estadoService) PagarCausado(ctx context.Context, causadoID uuid.UUID, fechaPago time.Time, metodoPago string, comprobanteRef *string) (*model.GastoCausado, error) {
	causado, err := s.gastoRepo.FindCausadoByID(ctx, causadoID)
	if err != nil {
		return nil, fmt.Errorf("gasto causado no encontrado: %w", err)
	}
	if causado.Estado == model.CausadoPagado {
		return causado, nil // already settled — idempotent
	}

	f := calendario.Fecha(fechaPago)
	causado.Estado = model.CausadoPagado
	causado.FechaPago = &f
	if metodoPago != "" {
		causado.MetodoPago = metodoPago
	}
	if comprobanteRef != nil {
		causado.ComprobanteRef = comprobanteRef
	}

	if err := s.gastoRepo.UpdateCausado(ctx, causado); err != nil {
		return nil, fmt.Errorf("actualizar gasto causado: %w", err)
	}
	return causado, nil
}
