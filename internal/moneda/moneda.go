// Package moneda implements the two-currency conversion and rounding rules.
//
// Amounts are always rounded to the currency minor unit immediately after a
// conversion (round-then-sum, never sum-then-round) so that aggregated totals
// match per-invoice expectations.
package moneda

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"flujo/internal/model"
)

// ErrMonedaDesconocida is returned for any currency outside {COP, USD}.
var ErrMonedaDesconocida = fmt.Errorf("moneda desconocida")

// ErrTasaNoDisponible is returned when the rate source cannot supply a usable
// rate. Conversions NEVER default to rate=1 across currencies.
var ErrTasaNoDisponible = fmt.Errorf("tasa de cambio no disponible")

// FuenteTasas supplies the exchange rate between two currencies as of a moment
// in time. Implementations live in infra (HTTP provider + cached fallback).
type FuenteTasas interface {
	Tasa(ctx context.Context, desde, hasta string) (decimal.Decimal, error)
}

// decimales returns the minor unit exponent per currency: COP is handled in
// whole pesos, USD in cents.
func decimales(moneda string) (int32, error) {
	switch moneda {
	case model.MonedaCOP:
		return 0, nil
	case model.MonedaUSD:
		return 2, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrMonedaDesconocida, moneda)
	}
}

// Redondear rounds an amount half-up to the currency's minor unit.
// decimal.Round rounds half away from zero, which is half-up for the positive
// amounts this system deals in.
func Redondear(monto decimal.Decimal, moneda string) (decimal.Decimal, error) {
	exp, err := decimales(moneda)
	if err != nil {
		return decimal.Zero, err
	}
	return monto.Round(exp), nil
}

// Convertir converts an amount between currencies with the given rate and
// rounds the result to the target currency's minor unit (half-up).
// Same-currency conversion is the identity (still rounded).
func Convertir(monto decimal.Decimal, desde, hasta string, tasa decimal.Decimal) (decimal.Decimal, error) {
	if _, err := decimales(desde); err != nil {
		return decimal.Zero, err
	}
	exp, err := decimales(hasta)
	if err != nil {
		return decimal.Zero, err
	}
	if desde == hasta {
		return monto.Round(exp), nil
	}
	if tasa.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: tasa %s→%s = %s", ErrTasaNoDisponible, desde, hasta, tasa)
	}
	return monto.Mul(tasa).Round(exp), nil
}

// AplicarDescuento reduces an amount by a percentage and rounds half-up to the
// currency minor unit, matching the per-invoice rounding of discounted
// recurring occurrences.
func AplicarDescuento(monto decimal.Decimal, pct decimal.Decimal, moneda string) (decimal.Decimal, error) {
	exp, err := decimales(moneda)
	if err != nil {
		return decimal.Zero, err
	}
	factor := decimal.NewFromInt(1).Sub(pct.Div(decimal.NewFromInt(100)))
	return monto.Mul(factor).Round(exp), nil
}

// RepartirCuotas splits a total into n equal installments at the currency's
// minor unit, assigning the remainder to the first installment so the parts
// sum back to the total exactly.
func RepartirCuotas(total decimal.Decimal, n int, moneda string) ([]decimal.Decimal, error) {
	if n < 1 {
		return nil, fmt.Errorf("numero de cuotas invalido: %d", n)
	}
	exp, err := decimales(moneda)
	if err != nil {
		return nil, err
	}
	base := total.Div(decimal.NewFromInt(int64(n))).RoundDown(exp)
	cuotas := make([]decimal.Decimal, n)
	resto := total.Sub(base.Mul(decimal.NewFromInt(int64(n))))
	for i := range cuotas {
		cuotas[i] = base
	}
	cuotas[0] = cuotas[0].Add(resto)
	return cuotas, nil
}
