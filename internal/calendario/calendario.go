// Package calendario centralizes the frequency arithmetic every generator in
// the system shares: payment schedule expansion, recurring expense
// materialization and the pure preview endpoint all step dates through here so
// they can never drift apart.
package calendario

import (
	"fmt"
	"time"

	"flujo/internal/model"
)

// ErrFrecuenciaInvalida is returned for an unknown frequency value.
var ErrFrecuenciaInvalida = fmt.Errorf("frecuencia invalida")

// diasPorPeriodo maps the day-based frequencies to their step in days.
var diasPorPeriodo = map[string]int{
	model.FrecuenciaDiaria:    1,
	model.FrecuenciaSemanal:   7,
	model.FrecuenciaQuincenal: 14,
}

// mesesPorPeriodo maps the month-based frequencies to their step in months.
var mesesPorPeriodo = map[string]int{
	model.FrecuenciaMensual:    1,
	model.FrecuenciaBimensual:  2,
	model.FrecuenciaTrimestral: 3,
	model.FrecuenciaSemestral:  6,
	model.FrecuenciaAnual:      12,
}

// EsMensual reports whether the frequency steps in calendar months.
func EsMensual(frecuencia string) bool {
	_, ok := mesesPorPeriodo[frecuencia]
	return ok
}

// Valida returns ErrFrecuenciaInvalida for values outside the known enum.
func Valida(frecuencia string) error {
	if _, ok := diasPorPeriodo[frecuencia]; ok {
		return nil
	}
	if _, ok := mesesPorPeriodo[frecuencia]; ok {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrFrecuenciaInvalida, frecuencia)
}

// DiasDelMes returns the number of days in the month of the given date.
func DiasDelMes(anio int, mes time.Month) int {
	return time.Date(anio, mes+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// clampDia clamps a day-of-month to the length of the target month.
func clampDia(anio int, mes time.Month, dia int) int {
	if max := DiasDelMes(anio, mes); dia > max {
		return max
	}
	return dia
}

// Fecha normalizes a timestamp to a date (midnight UTC). All schedule
// arithmetic operates on normalized dates.
func Fecha(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Ocurrencia computes the k-th occurrence (k = 0 for the first) of a schedule
// starting at inicio. Month-based frequencies are anchored to diaAnclaje and
// clamped to the target month's length, so a day-31 anchor lands on Feb 28/29
// without shifting later occurrences. Day-based frequencies ignore diaAnclaje.
func Ocurrencia(inicio time.Time, frecuencia string, diaAnclaje, k int) (time.Time, error) {
	inicio = Fecha(inicio)
	if dias, ok := diasPorPeriodo[frecuencia]; ok {
		return inicio.AddDate(0, 0, k*dias), nil
	}
	meses, ok := mesesPorPeriodo[frecuencia]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrFrecuenciaInvalida, frecuencia)
	}
	if diaAnclaje <= 0 {
		diaAnclaje = inicio.Day()
	}
	// Advance year/month arithmetically, then clamp the anchored day.
	// time.AddDate would normalize Feb 31 into March instead of clamping.
	total := int(inicio.Month()) - 1 + k*meses
	anio := inicio.Year() + total/12
	mes := time.Month(total%12 + 1)
	return time.Date(anio, mes, clampDia(anio, mes, diaAnclaje), 0, 0, 0, 0, time.UTC), nil
}

// Avanzar returns the occurrence one frequency step after fecha, keeping the
// month-based day anchor. Used to advance the next_payment cursor.
func Avanzar(fecha time.Time, frecuencia string, diaAnclaje int) (time.Time, error) {
	if diaAnclaje <= 0 && EsMensual(frecuencia) {
		diaAnclaje = fecha.Day()
	}
	return Ocurrencia(fecha, frecuencia, diaAnclaje, 1)
}

// FechaDesdeTexto parses the YYYY-MM-DD wire format into a normalized date.
func FechaDesdeTexto(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha invalida %q: %w", s, err)
	}
	return t, nil
}

// MesesCubiertos approximates how many whole months of coverage lie between
// two dates (used by the scheduler to decide when a plan's generated horizon
// has fallen below the minimum look-ahead).
func MesesCubiertos(desde, hasta time.Time) int {
	desde, hasta = Fecha(desde), Fecha(hasta)
	if hasta.Before(desde) {
		return 0
	}
	meses := (hasta.Year()-desde.Year())*12 + int(hasta.Month()) - int(desde.Month())
	if hasta.Day() < desde.Day() {
		meses--
	}
	if meses < 0 {
		return 0
	}
	return meses
}

// FinDeMes returns the last day of the month containing t.
func FinDeMes(t time.Time) time.Time {
	t = Fecha(t)
	return time.Date(t.Year(), t.Month(), DiasDelMes(t.Year(), t.Month()), 0, 0, 0, 0, time.UTC)
}
