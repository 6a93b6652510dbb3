package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"flujo/internal/calendario"
	"flujo/internal/model"
	"flujo/internal/moneda"
	"flujo/internal/repository"

	"github.com/shopspring/decimal"
)

// MovimientoCaja is one realized cash event, converted to the report currency.
type MovimientoCaja struct {
	Fecha       time.Time       `json:"fecha"`
	Descripcion string          `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	Tipo        string          `json:"tipo"` // "ingreso" | "egreso"
	Monto       decimal.Decimal `json:"monto"`
	Saldo       decimal.Decimal `json:"saldo"`
}

// FlujoCaja is the aggregated view over a window, in a single currency.
type FlujoCaja struct {
	Moneda        string           `json:"moneda"`
	Desde         *time.Time       `json:"desde,omitempty"`
	Hasta         *time.Time       `json:"hasta,omitempty"`
	TotalIngresos decimal.Decimal  `json:"total_ingresos"`
	TotalEgresos  decimal.Decimal  `json:"total_egresos"`
	Neto          decimal.Decimal  `json:"neto"`
	Movimientos   []MovimientoCaja `json:"movimientos"`
}

// FlujoCajaService builds the realized cash-flow statement.
//
// Only settled money moves the needle: Pagado payments and pagado accrued
// expenses enter by their settlement date, never their due date. Each line is
// converted and rounded individually before summation, and a missing exchange
// rate aborts the report rather than silently assuming parity.
type FlujoCajaService interface {
	Flujo(ctx context.Context, monedaReporte string, desde, hasta *time.Time, ahora time.Time) (*FlujoCaja, error)
	// TotalEnMoneda sums payment rows in one currency, converting and rounding
	// line by line. Backs the mixed-currency totals of the payment listings.
	TotalEnMoneda(ctx context.Context, pagos []model.Pago, monedaReporte string) (decimal.Decimal, error)
}

type flujoCajaService struct {
	pagoRepo    repository.PagoRepository
	gastoRepo   repository.GastoRepository
	ingresoRepo repository.IngresoRepository
	tasas       moneda.FuenteTasas
}

func NewFlujoCajaService(pagoRepo repository.PagoRepository, gastoRepo repository.GastoRepository, ingresoRepo repository.IngresoRepository, tasas moneda.FuenteTasas) FlujoCajaService {
	return &flujoCajaService{pagoRepo: pagoRepo, gastoRepo: gastoRepo, ingresoRepo: ingresoRepo, tasas: tasas}
}

func (s *flujoCajaService) Flujo(ctx context.Context, monedaReporte string, desde, hasta *time.Time, ahora time.Time) (*FlujoCaja, error) {
	if monedaReporte == "" {
		monedaReporte = model.MonedaCOP
	}
	if desde != nil {
		f := calendario.Fecha(*desde)
		desde = &f
	}
	if hasta != nil {
		f := calendario.Fecha(*hasta)
		hasta = &f
	}

	movs, err := s.recolectar(ctx, monedaReporte, desde, hasta)
	if err != nil {
		return nil, err
	}

	// Chronological, then income before expense on the same day so intraday
	// balances never dip below their end-of-day value spuriously.
	sort.SliceStable(movs, func(i, j int) bool {
		if !movs[i].Fecha.Equal(movs[j].Fecha) {
			return movs[i].Fecha.Before(movs[j].Fecha)
		}
		return movs[i].Tipo == "ingreso" && movs[j].Tipo == "egreso"
	})

	flujo := &FlujoCaja{
		Moneda:        monedaReporte,
		Desde:         desde,
		Hasta:         hasta,
		TotalIngresos: decimal.Zero,
		TotalEgresos:  decimal.Zero,
	}
	saldo := decimal.Zero
	for i := range movs {
		if movs[i].Tipo == "ingreso" {
			flujo.TotalIngresos = flujo.TotalIngresos.Add(movs[i].Monto)
			saldo = saldo.Add(movs[i].Monto)
		} else {
			flujo.TotalEgresos = flujo.TotalEgresos.Add(movs[i].Monto)
			saldo = saldo.Sub(movs[i].Monto)
		}
		movs[i].Saldo = saldo
	}
	flujo.Neto = flujo.TotalIngresos.Sub(flujo.TotalEgresos)
	flujo.Movimientos = movs
	return flujo, nil
}

func (s *flujoCajaService) recolectar(ctx context.Context, monedaReporte string, desde, hasta *time.Time) ([]MovimientoCaja, error) {
	var movs []MovimientoCaja

	pagos, err := s.pagoRepo.ListPagadosEntre(ctx, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("listar pagos cobrados: %w", err)
	}
	for i := range pagos {
		p := &pagos[i]
		if p.FechaPago == nil {
			continue
		}
		monto, err := s.convertir(ctx, p.Monto, p.Moneda, monedaReporte)
		if err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Pago %s", p.Tipo)
		if p.NumeroCuota != nil {
			desc = fmt.Sprintf("%s cuota %d", desc, *p.NumeroCuota)
		}
		movs = append(movs, MovimientoCaja{
			Fecha:       calendario.Fecha(*p.FechaPago),
			Descripcion: desc,
			Categoria:   "Pagos de proyectos",
			Tipo:        "ingreso",
			Monto:       monto,
		})
	}

	ingresos, err := s.ingresoRepo.ListEntre(ctx, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("listar ingresos: %w", err)
	}
	for i := range ingresos {
		monto, err := s.convertir(ctx, ingresos[i].Monto, ingresos[i].Moneda, monedaReporte)
		if err != nil {
			return nil, err
		}
		movs = append(movs, MovimientoCaja{
			Fecha:       calendario.Fecha(ingresos[i].Fecha),
			Descripcion: ingresos[i].Descripcion,
			Categoria:   ingresos[i].Tipo,
			Tipo:        "ingreso",
			Monto:       monto,
		})
	}

	gastos, err := s.gastoRepo.ListGastosEntre(ctx, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("listar gastos: %w", err)
	}
	for i := range gastos {
		monto, err := s.convertir(ctx, gastos[i].Monto, gastos[i].Moneda, monedaReporte)
		if err != nil {
			return nil, err
		}
		movs = append(movs, MovimientoCaja{
			Fecha:       calendario.Fecha(gastos[i].Fecha),
			Descripcion: gastos[i].Descripcion,
			Categoria:   gastos[i].Categoria,
			Tipo:        "egreso",
			Monto:       monto,
		})
	}

	causados, err := s.gastoRepo.ListCausadosPagadosEntre(ctx, desde, hasta)
	if err != nil {
		return nil, fmt.Errorf("listar gastos causados pagados: %w", err)
	}
	for i := range causados {
		c := &causados[i]
		if c.FechaPago == nil {
			continue
		}
		monto, err := s.convertir(ctx, c.Monto, c.Moneda, monedaReporte)
		if err != nil {
			return nil, err
		}
		movs = append(movs, MovimientoCaja{
			Fecha:       calendario.Fecha(*c.FechaPago),
			Descripcion: c.Descripcion,
			Categoria:   c.Categoria,
			Tipo:        "egreso",
			Monto:       monto,
		})
	}

	return movs, nil
}

func (s *flujoCajaService) TotalEnMoneda(ctx context.Context, pagos []model.Pago, monedaReporte string) (decimal.Decimal, error) {
	if monedaReporte == "" {
		monedaReporte = model.MonedaCOP
	}
	total := decimal.Zero
	for i := range pagos {
		monto, err := convertirMonto(ctx, s.tasas, pagos[i].Monto, pagos[i].Moneda, monedaReporte)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(monto)
	}
	return total, nil
}

func (s *flujoCajaService) convertir(ctx context.Context, monto decimal.Decimal, desde, hasta string) (decimal.Decimal, error) {
	return convertirMonto(ctx, s.tasas, monto, desde, hasta)
}

// convertirMonto rounds within the same currency and otherwise resolves a rate
// and converts, rounding to the target minor unit.
func convertirMonto(ctx context.Context, tasas moneda.FuenteTasas, monto decimal.Decimal, desde, hasta string) (decimal.Decimal, error) {
	if desde == hasta {
		return moneda.Redondear(monto, hasta)
	}
	tasa, err := tasas.Tasa(ctx, desde, hasta)
	if err != nil {
		return decimal.Zero, fmt.Errorf("conversión %s→%s: %w", desde, hasta, err)
	}
	return moneda.Convertir(monto, desde, hasta, tasa)
}
