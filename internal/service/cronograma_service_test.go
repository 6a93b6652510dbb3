package service

import (
	"context"
	"testing"
	"time"

	"flujo/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proyectoConPlan(repo *fakeProyectoRepo, inicio time.Time, plan *model.PlanPago) *model.Proyecto {
	return repo.agregar(&model.Proyecto{
		Nombre:      "Portal corporativo",
		FechaInicio: inicio,
		Estado:      model.ProyectoActivo,
		Plan:        plan,
	})
}

func TestGenerarPagosFeeCuotasRepartoCOP(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 15), &model.PlanPago{
		Tipo:                 model.PlanFeeCuotas,
		ImplementacionTotal:  ptr(dec("1000000")),
		ImplementacionMoneda: ptr(model.MonedaCOP),
		ImplementacionCuotas: 3,
	})

	generados, err := svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, generados, 3)

	assert.Equal(t, fecha(2024, time.January, 15), generados[0].Fecha)
	assert.Equal(t, fecha(2024, time.February, 15), generados[1].Fecha)
	assert.Equal(t, fecha(2024, time.March, 15), generados[2].Fecha)

	// el residuo del reparto en pesos enteros cae en la primera cuota
	assert.True(t, dec("333334").Equal(generados[0].Monto))
	assert.True(t, dec("333333").Equal(generados[1].Monto))
	assert.True(t, dec("333333").Equal(generados[2].Monto))

	for i, g := range generados {
		assert.Equal(t, model.PagoPendiente, g.Estado)
		assert.Equal(t, model.TipoImplementacion, g.Tipo)
		require.NotNil(t, g.NumeroCuota)
		assert.Equal(t, i+1, *g.NumeroCuota)
	}
	assert.Equal(t, 3, p.Plan.UltimaCuotaGenerada)
}

func TestGenerarPagosEsIdempotente(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 15), &model.PlanPago{
		Tipo:                 model.PlanFeeCuotas,
		ImplementacionTotal:  ptr(dec("1000000")),
		ImplementacionMoneda: ptr(model.MonedaCOP),
		ImplementacionCuotas: 3,
	})

	primera, err := svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, primera, 3)

	// la segunda corrida con el mismo horizonte no emite nada nuevo
	segunda, err := svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	require.NoError(t, err)
	assert.Empty(t, segunda)
	assert.Len(t, pagos.pagos, 3)
}

func TestGenerarPagosReconciliaCursorPerdido(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 15), &model.PlanPago{
		Tipo:                 model.PlanFeeCuotas,
		ImplementacionTotal:  ptr(dec("1000000")),
		ImplementacionMoneda: ptr(model.MonedaCOP),
		ImplementacionCuotas: 3,
	})

	// simula una corrida previa que persistió 2 cuotas pero no avanzó el cursor
	for i := 1; i <= 2; i++ {
		n := i
		f, _ := time.Parse("2006-01-02", "2024-01-15")
		require.NoError(t, pagos.Create(context.Background(), &model.Pago{
			ProyectoID:  p.ID,
			ClienteID:   p.ClienteID,
			Monto:       dec("333333"),
			Moneda:      model.MonedaCOP,
			Fecha:       f.AddDate(0, i-1, 0),
			Estado:      model.PagoPendiente,
			Tipo:        model.TipoImplementacion,
			NumeroCuota: &n,
		}))
	}

	generados, err := svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	require.NoError(t, err)
	require.Len(t, generados, 1, "solo la cuota faltante")
	assert.Equal(t, 3, *generados[0].NumeroCuota)
	assert.Len(t, pagos.pagos, 3)
}

func TestGenerarPagosSuscripcionGraciaYDescuento(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 10), &model.PlanPago{
		Tipo:                        model.PlanSuscripcion,
		RecurrenteMonto:             ptr(dec("100")),
		RecurrenteMoneda:            ptr(model.MonedaUSD),
		RecurrenteFrecuencia:        ptr(model.FrecuenciaMensual),
		RecurrenteDiaCobro:          ptr(10),
		RecurrentePeriodosGracia:    1,
		RecurrentePeriodosDescuento: 2,
		RecurrenteDescuentoPct:      dec("50"),
	})

	generados, err := svc.GenerarPagos(context.Background(), p.ID, 4, fecha(2024, time.January, 1))
	require.NoError(t, err)
	// ocurrencias hasta 2024-05-01: ene(gracia), feb, mar, abr
	require.Len(t, generados, 3)

	assert.Equal(t, fecha(2024, time.February, 10), generados[0].Fecha)
	assert.True(t, dec("50").Equal(generados[0].Monto), "ocurrencia 2 con descuento")
	assert.True(t, dec("50").Equal(generados[1].Monto), "ocurrencia 3 con descuento")
	assert.True(t, dec("100").Equal(generados[2].Monto), "ocurrencia 4 a precio pleno")

	// la numeración es absoluta: la gracia cuenta aunque no se emita
	assert.Equal(t, 2, *generados[0].NumeroCuota)
	assert.Equal(t, 4, *generados[2].NumeroCuota)
	assert.Equal(t, 4, p.Plan.UltimaOcurrenciaGenerada)
}

func TestGenerarPagosMixtoIntercalaOrdenado(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.March, 1), &model.PlanPago{
		Tipo:                 model.PlanMixto,
		ImplementacionTotal:  ptr(dec("600")),
		ImplementacionMoneda: ptr(model.MonedaUSD),
		ImplementacionCuotas: 2,
		RecurrenteMonto:      ptr(dec("80")),
		RecurrenteMoneda:     ptr(model.MonedaUSD),
		RecurrenteFrecuencia: ptr(model.FrecuenciaMensual),
		RecurrenteDiaCobro:   ptr(1),
	})

	generados, err := svc.GenerarPagos(context.Background(), p.ID, 3, fecha(2024, time.March, 1))
	require.NoError(t, err)
	require.NotEmpty(t, generados)

	// orden cronológico; en fechas iguales la implementación va primero
	for i := 1; i < len(generados); i++ {
		antes, ahora := generados[i-1], generados[i]
		require.False(t, ahora.Fecha.Before(antes.Fecha))
		if ahora.Fecha.Equal(antes.Fecha) {
			assert.False(t, antes.Tipo == model.TipoRecurrente && ahora.Tipo == model.TipoImplementacion)
		}
	}
	assert.Equal(t, model.TipoImplementacion, generados[0].Tipo)
	assert.Equal(t, model.TipoRecurrente, generados[1].Tipo)
	assert.Equal(t, generados[0].Fecha, generados[1].Fecha)
}

func TestGenerarPagosPlanInvalido(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	casos := []struct {
		nombre string
		plan   *model.PlanPago
	}{
		{"tipo desconocido", &model.PlanPago{Tipo: "Barter"}},
		{"suscripcion sin monto", &model.PlanPago{
			Tipo:                 model.PlanSuscripcion,
			RecurrenteFrecuencia: ptr(model.FrecuenciaMensual),
		}},
		{"frecuencia diaria en plan", &model.PlanPago{
			Tipo:                 model.PlanSuscripcion,
			RecurrenteMonto:      ptr(dec("10")),
			RecurrenteMoneda:     ptr(model.MonedaUSD),
			RecurrenteFrecuencia: ptr(model.FrecuenciaDiaria),
		}},
		{"dia de cobro fuera de rango", &model.PlanPago{
			Tipo:                 model.PlanSuscripcion,
			RecurrenteMonto:      ptr(dec("10")),
			RecurrenteMoneda:     ptr(model.MonedaUSD),
			RecurrenteFrecuencia: ptr(model.FrecuenciaMensual),
			RecurrenteDiaCobro:   ptr(32),
		}},
	}
	for _, caso := range casos {
		t.Run(caso.nombre, func(t *testing.T) {
			p := proyectoConPlan(proyectos, fecha(2024, time.January, 1), caso.plan)
			_, err := svc.GenerarPagos(context.Background(), p.ID, 6, fecha(2024, time.January, 1))
			assert.ErrorIs(t, err, ErrPlanInvalido)
		})
	}
}

func TestGenerarPagosConflictoDeCursor(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 15), &model.PlanPago{
		Tipo:                 model.PlanFeeUnico,
		ImplementacionTotal:  ptr(dec("5000")),
		ImplementacionMoneda: ptr(model.MonedaUSD),
		ImplementacionCuotas: 1,
	})
	proyectos.conflictoCursor = true

	_, err := svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	assert.ErrorIs(t, err, ErrCursorDesactualizado)
}

func TestPreviewRecurrenteNoPersiste(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	proyeccion, err := svc.PreviewRecurrente(fecha(2024, time.January, 31), model.FrecuenciaMensual, dec("100.555"), model.MonedaUSD, 3)
	require.NoError(t, err)
	require.Len(t, proyeccion, 3)

	assert.Equal(t, fecha(2024, time.January, 31), proyeccion[0].Fecha)
	assert.Equal(t, fecha(2024, time.February, 29), proyeccion[1].Fecha)
	assert.Equal(t, fecha(2024, time.March, 31), proyeccion[2].Fecha)
	for _, o := range proyeccion {
		assert.True(t, dec("100.56").Equal(o.Monto))
	}
	assert.Empty(t, pagos.pagos, "preview jamás escribe")
}

func TestPreviewRecurrenteFrecuenciaInvalida(t *testing.T) {
	svc := NewCronogramaService(newFakeProyectoRepo(), &fakePagoRepo{})
	_, err := svc.PreviewRecurrente(fecha(2024, time.January, 1), "Lunar", dec("1"), model.MonedaCOP, 3)
	assert.ErrorIs(t, err, ErrPlanInvalido)
}

func TestHorizonteCubierto(t *testing.T) {
	proyectos := newFakeProyectoRepo()
	pagos := &fakePagoRepo{}
	svc := NewCronogramaService(proyectos, pagos)

	p := proyectoConPlan(proyectos, fecha(2024, time.January, 15), &model.PlanPago{
		Tipo:                 model.PlanFeeCuotas,
		ImplementacionTotal:  ptr(dec("1000000")),
		ImplementacionMoneda: ptr(model.MonedaCOP),
		ImplementacionCuotas: 6,
	})

	meses, err := svc.HorizonteCubierto(context.Background(), p.ID, fecha(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, meses, "sin pagos generados no hay cobertura")

	_, err = svc.GenerarPagos(context.Background(), p.ID, 12, fecha(2024, time.January, 1))
	require.NoError(t, err)

	// última cuota el 2024-06-15: cinco meses completos desde el 1 de enero
	meses, err = svc.HorizonteCubierto(context.Background(), p.ID, fecha(2024, time.January, 1))
	require.NoError(t, err)
	assert.Equal(t, 5, meses)
}
