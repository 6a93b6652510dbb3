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

// mesesVentana is how many full calendar months feed the trailing averages.
const mesesVentana = 6

// SerieMensual is one month of the trailing window, in the report currency.
type SerieMensual struct {
	Periodo  string          `json:"periodo"` // YYYY-MM
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
}

// TotalPagosEstado summarizes the scheduled payments carrying one status.
type TotalPagosEstado struct {
	Estado   string          `json:"estado"`
	Cantidad int             `json:"cantidad"`
	Total    decimal.Decimal `json:"total"`
}

// Metricas are the headline cash health figures, all in the report currency.
//
// Averages come from the trailing full calendar months: the current month is
// always excluded because a partial month drags every average down. Runway is
// nil when the burn rate is zero or negative (the business is not burning
// cash), never a fake "infinite" number.
type Metricas struct {
	Moneda                string             `json:"moneda"`
	SaldoActual           decimal.Decimal    `json:"saldo_actual"`
	PromedioIngresos      *decimal.Decimal   `json:"promedio_ingresos"`
	PromedioEgresos       *decimal.Decimal   `json:"promedio_egresos"`
	BurnRate              *decimal.Decimal   `json:"burn_rate"`
	RunwayMeses           *decimal.Decimal   `json:"runway_meses"`
	FechaBreakEven        *time.Time         `json:"fecha_break_even"`
	MesesAnalizados       int                `json:"meses_analizados"`
	HistorialInsuficiente bool               `json:"historial_insuficiente"`
	Serie                 []SerieMensual     `json:"serie"`
	TotalesPagos          []TotalPagosEstado `json:"totales_pagos"`
}

type MetricasService interface {
	Calcular(ctx context.Context, monedaReporte string, ahora time.Time) (*Metricas, error)
}

type metricasService struct {
	flujo    FlujoCajaService
	pagoRepo repository.PagoRepository
	tasas    moneda.FuenteTasas
}

func NewMetricasService(flujo FlujoCajaService, pagoRepo repository.PagoRepository, tasas moneda.FuenteTasas) MetricasService {
	return &metricasService{flujo: flujo, pagoRepo: pagoRepo, tasas: tasas}
}

func (s *metricasService) Calcular(ctx context.Context, monedaReporte string, ahora time.Time) (*Metricas, error) {
	if monedaReporte == "" {
		monedaReporte = model.MonedaCOP
	}
	hoy := calendario.Fecha(ahora)

	// Current balance is the all-time net of realized movements up to today.
	saldoFlujo, err := s.flujo.Flujo(ctx, monedaReporte, nil, &hoy, ahora)
	if err != nil {
		return nil, fmt.Errorf("saldo actual: %w", err)
	}

	m := &Metricas{
		Moneda:      monedaReporte,
		SaldoActual: saldoFlujo.Neto,
	}
	if m.TotalesPagos, err = s.totalesPagos(ctx, monedaReporte); err != nil {
		return nil, err
	}

	// Trailing window: the N full months before the current one.
	inicioMesActual := time.Date(hoy.Year(), hoy.Month(), 1, 0, 0, 0, 0, time.UTC)
	finVentana := inicioMesActual.AddDate(0, 0, -1)
	inicioVentana := inicioMesActual.AddDate(0, -mesesVentana, 0)

	ventana, err := s.flujo.Flujo(ctx, monedaReporte, &inicioVentana, &finVentana, ahora)
	if err != nil {
		return nil, fmt.Errorf("ventana de métricas: %w", err)
	}
	m.Serie = serieMensual(ventana.Movimientos)

	meses := len(m.Serie)
	m.MesesAnalizados = meses
	if meses == 0 {
		m.HistorialInsuficiente = true
		return m, nil
	}

	divisor := decimal.NewFromInt(int64(meses))
	promIngresos := ventana.TotalIngresos.Div(divisor).Round(2)
	promEgresos := ventana.TotalEgresos.Div(divisor).Round(2)
	burn := promEgresos.Sub(promIngresos)
	m.PromedioIngresos = &promIngresos
	m.PromedioEgresos = &promEgresos
	m.BurnRate = &burn

	if burn.LessThanOrEqual(decimal.Zero) {
		// Net positive or flat: runway and break-even stay undefined.
		return m, nil
	}
	if m.SaldoActual.LessThanOrEqual(decimal.Zero) {
		cero := decimal.Zero
		m.RunwayMeses = &cero
		fin := calendario.FinDeMes(hoy)
		m.FechaBreakEven = &fin
		return m, nil
	}

	runway := m.SaldoActual.Div(burn).Round(1)
	m.RunwayMeses = &runway

	// Project today forward by the runway (whole months plus the fractional
	// remainder in days) and snap to the end of that month.
	enteros := int(runway.IntPart())
	fraccion := runway.Sub(decimal.NewFromInt(int64(enteros)))
	dias := int(fraccion.Mul(decimal.NewFromInt(30)).IntPart())
	agotamiento := hoy.AddDate(0, enteros, dias)
	fin := calendario.FinDeMes(agotamiento)
	m.FechaBreakEven = &fin
	return m, nil
}

// serieMensual groups the window movements into per-month income/expense
// buckets. Only months carrying at least one movement appear, so a business
// two months old is averaged over two months and not diluted over an empty
// six.
func serieMensual(movs []MovimientoCaja) []SerieMensual {
	porMes := map[string]*SerieMensual{}
	for i := range movs {
		periodo := movs[i].Fecha.Format("2006-01")
		mes, ok := porMes[periodo]
		if !ok {
			mes = &SerieMensual{Periodo: periodo, Ingresos: decimal.Zero, Egresos: decimal.Zero}
			porMes[periodo] = mes
		}
		if movs[i].Tipo == "ingreso" {
			mes.Ingresos = mes.Ingresos.Add(movs[i].Monto)
		} else {
			mes.Egresos = mes.Egresos.Add(movs[i].Monto)
		}
	}

	serie := make([]SerieMensual, 0, len(porMes))
	for _, mes := range porMes {
		serie = append(serie, *mes)
	}
	sort.Slice(serie, func(i, j int) bool { return serie[i].Periodo < serie[j].Periodo })
	return serie
}

// totalesPagos sums every scheduled payment per status, converted to the
// report currency.
func (s *metricasService) totalesPagos(ctx context.Context, monedaReporte string) ([]TotalPagosEstado, error) {
	pagos, err := s.pagoRepo.List(ctx, repository.PagoFilter{})
	if err != nil {
		return nil, fmt.Errorf("totales de pagos: %w", err)
	}

	estados := []string{model.PagoPendiente, model.PagoPagado, model.PagoVencido}
	totales := make([]TotalPagosEstado, len(estados))
	indice := map[string]int{}
	for i, estado := range estados {
		totales[i] = TotalPagosEstado{Estado: estado, Total: decimal.Zero}
		indice[estado] = i
	}

	for i := range pagos {
		pos, ok := indice[pagos[i].Estado]
		if !ok {
			continue
		}
		monto, err := convertirMonto(ctx, s.tasas, pagos[i].Monto, pagos[i].Moneda, monedaReporte)
		if err != nil {
			return nil, err
		}
		totales[pos].Cantidad++
		totales[pos].Total = totales[pos].Total.Add(monto)
	}
	return totales, nil
}
