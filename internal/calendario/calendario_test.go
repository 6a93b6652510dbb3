package calendario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flujo/internal/model"
)

func fecha(anio int, mes time.Month, dia int) time.Time {
	return time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC)
}

func TestOcurrenciaDiasFijos(t *testing.T) {
	inicio := fecha(2024, time.January, 15)

	f, err := Ocurrencia(inicio, model.FrecuenciaSemanal, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, fecha(2024, time.January, 29), f)

	// quincenal avanza exactamente 14 días, no medio mes
	f, err = Ocurrencia(inicio, model.FrecuenciaQuincenal, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, fecha(2024, time.January, 29), f)

	f, err = Ocurrencia(inicio, model.FrecuenciaDiaria, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, fecha(2024, time.January, 25), f)
}

func TestOcurrenciaMensualConservaAnclaje(t *testing.T) {
	// inicio el 31: febrero se acorta, marzo vuelve al 31
	inicio := fecha(2024, time.January, 31)

	f, err := Ocurrencia(inicio, model.FrecuenciaMensual, 31, 1)
	require.NoError(t, err)
	assert.Equal(t, fecha(2024, time.February, 29), f, "2024 es bisiesto")

	f, err = Ocurrencia(inicio, model.FrecuenciaMensual, 31, 2)
	require.NoError(t, err)
	assert.Equal(t, fecha(2024, time.March, 31), f)

	// año no bisiesto
	f, err = Ocurrencia(fecha(2025, time.January, 31), model.FrecuenciaMensual, 31, 1)
	require.NoError(t, err)
	assert.Equal(t, fecha(2025, time.February, 28), f)
}

func TestOcurrenciaMensualCruzaAnio(t *testing.T) {
	inicio := fecha(2024, time.November, 15)

	f, err := Ocurrencia(inicio, model.FrecuenciaTrimestral, 15, 1)
	require.NoError(t, err)
	assert.Equal(t, fecha(2025, time.February, 15), f)

	f, err = Ocurrencia(inicio, model.FrecuenciaAnual, 15, 2)
	require.NoError(t, err)
	assert.Equal(t, fecha(2026, time.November, 15), f)
}

func TestAvanzarMantieneAnclajeTrasMesCorto(t *testing.T) {
	// al avanzar desde el 28-feb con anclaje 30, marzo recupera el día 30
	f, err := Avanzar(fecha(2025, time.February, 28), model.FrecuenciaMensual, 30)
	require.NoError(t, err)
	assert.Equal(t, fecha(2025, time.March, 30), f)
}

func TestValida(t *testing.T) {
	assert.NoError(t, Valida(model.FrecuenciaMensual))
	assert.NoError(t, Valida(model.FrecuenciaQuincenal))
	assert.ErrorIs(t, Valida("Lunar"), ErrFrecuenciaInvalida)
	assert.ErrorIs(t, Valida(""), ErrFrecuenciaInvalida)
}

func TestMesesCubiertos(t *testing.T) {
	assert.Equal(t, 3, MesesCubiertos(fecha(2024, time.January, 10), fecha(2024, time.April, 10)))
	assert.Equal(t, 2, MesesCubiertos(fecha(2024, time.January, 10), fecha(2024, time.April, 9)))
	assert.Equal(t, 0, MesesCubiertos(fecha(2024, time.April, 10), fecha(2024, time.January, 10)))
}

func TestFinDeMes(t *testing.T) {
	assert.Equal(t, fecha(2024, time.February, 29), FinDeMes(fecha(2024, time.February, 3)))
	assert.Equal(t, fecha(2025, time.April, 30), FinDeMes(fecha(2025, time.April, 30)))
}

func TestFechaNormaliza(t *testing.T) {
	conHora := time.Date(2024, time.June, 5, 17, 42, 3, 0, time.FixedZone("X", -5*3600))
	assert.Equal(t, fecha(2024, time.June, 5), Fecha(conHora))
}
