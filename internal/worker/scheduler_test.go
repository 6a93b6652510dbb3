package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"flujo/internal/config"
	"flujo/internal/model"
	"flujo/internal/repository"
	"flujo/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Los fakes comparten un registro de llamadas para poder afirmar el orden de
// las fases de una pasada.

type registro struct {
	llamadas []string
}

func (r *registro) anotar(fase string) { r.llamadas = append(r.llamadas, fase) }

type fakeEstado struct {
	reg       *registro
	resultado *service.ResultadoBarrido
	err       error
}

var _ service.EstadoService = (*fakeEstado)(nil)

func (f *fakeEstado) Barrer(_ context.Context, _ time.Time) (*service.ResultadoBarrido, error) {
	f.reg.anotar("barrer")
	return f.resultado, f.err
}

func (f *fakeEstado) ActualizarEstadoPago(context.Context, uuid.UUID, string, *time.Time, *string) (*model.Pago, error) {
	panic("no usado por el scheduler")
}

func (f *fakeEstado) PagarCausado(context.Context, uuid.UUID, time.Time, string, *string) (*model.GastoCausado, error) {
	panic("no usado por el scheduler")
}

type fakeCronograma struct {
	reg       *registro
	horizonte map[uuid.UUID]int
	err       error
	generados []uuid.UUID
}

var _ service.CronogramaService = (*fakeCronograma)(nil)

func (f *fakeCronograma) GenerarPagos(_ context.Context, proyectoID uuid.UUID, _ int, _ time.Time) ([]model.Pago, error) {
	f.reg.anotar("generar")
	f.generados = append(f.generados, proyectoID)
	if f.err != nil {
		return nil, f.err
	}
	return []model.Pago{{ID: uuid.New(), ProyectoID: proyectoID}}, nil
}

func (f *fakeCronograma) PreviewRecurrente(time.Time, string, decimal.Decimal, string, int) ([]service.OcurrenciaPreview, error) {
	panic("no usado por el scheduler")
}

func (f *fakeCronograma) HorizonteCubierto(_ context.Context, proyectoID uuid.UUID, _ time.Time) (int, error) {
	return f.horizonte[proyectoID], nil
}

type fakeRecurrente struct {
	reg    *registro
	pasadas int
}

var _ service.RecurrenteService = (*fakeRecurrente)(nil)

func (f *fakeRecurrente) Materializar(context.Context, uuid.UUID, time.Time) ([]model.GastoCausado, error) {
	panic("no usado por el scheduler")
}

func (f *fakeRecurrente) MaterializarVencidos(context.Context, time.Time) ([]model.GastoCausado, error) {
	f.reg.anotar("materializar")
	f.pasadas++
	return nil, nil
}

func (f *fakeRecurrente) CambiarEstado(context.Context, uuid.UUID, string) (*model.GastoRecurrente, error) {
	panic("no usado por el scheduler")
}

type fakeProyectos struct {
	activos []model.Proyecto
}

var _ repository.ProyectoRepository = (*fakeProyectos)(nil)

func (f *fakeProyectos) CreateCliente(context.Context, *model.Cliente) error { return nil }
func (f *fakeProyectos) CreateProyecto(context.Context, *model.Proyecto) error { return nil }
func (f *fakeProyectos) ListProyectos(context.Context) ([]model.Proyecto, error) { return nil, nil }
func (f *fakeProyectos) FindByID(context.Context, uuid.UUID) (*model.Proyecto, error) {
	return nil, nil
}
func (f *fakeProyectos) FindPlanByProyecto(context.Context, uuid.UUID) (*model.PlanPago, error) {
	return nil, nil
}
func (f *fakeProyectos) ListActivosConPlan(context.Context) ([]model.Proyecto, error) {
	return f.activos, nil
}
func (f *fakeProyectos) CreatePlan(context.Context, *model.PlanPago) error { return nil }
func (f *fakeProyectos) UpdateCursorPlan(context.Context, *model.PlanPago) error { return nil }

func nuevoSchedulerFixture(proyectos ...model.Proyecto) (*registro, *fakeEstado, *fakeCronograma, *fakeRecurrente, SchedulerConfig) {
	reg := &registro{}
	estado := &fakeEstado{reg: reg, resultado: &service.ResultadoBarrido{}}
	cronograma := &fakeCronograma{reg: reg, horizonte: map[uuid.UUID]int{}}
	recurrente := &fakeRecurrente{reg: reg}
	cfg := SchedulerConfig{
		Estado:       estado,
		Cronograma:   cronograma,
		Recurrente:   recurrente,
		ProyectoRepo: &fakeProyectos{activos: proyectos},
		Cfg:          &config.Config{HorizonteMeses: 12, HorizonteMinMeses: 3},
	}
	return reg, estado, cronograma, recurrente, cfg
}

func TestRunOnceBarreAntesDeExtender(t *testing.T) {
	p := model.Proyecto{ID: uuid.New()}
	reg, _, cronograma, _, cfg := nuevoSchedulerFixture(p)
	cronograma.horizonte[p.ID] = 0 // sin cobertura, debe regenerar

	RunOnce(context.Background(), cfg, fecha(2024, time.July, 1))

	// el barrido marca vencidos antes de que la expansión mire los cronogramas
	require.Equal(t, []string{"barrer", "generar", "materializar"}, reg.llamadas)
	assert.Equal(t, []uuid.UUID{p.ID}, cronograma.generados)
}

func TestRunOnceOmiteProyectosConHorizonteCubierto(t *testing.T) {
	corto := model.Proyecto{ID: uuid.New()}
	cubierto := model.Proyecto{ID: uuid.New()}
	_, _, cronograma, _, cfg := nuevoSchedulerFixture(corto, cubierto)
	cronograma.horizonte[corto.ID] = 1
	cronograma.horizonte[cubierto.ID] = 12

	RunOnce(context.Background(), cfg, fecha(2024, time.July, 1))

	assert.Equal(t, []uuid.UUID{corto.ID}, cronograma.generados)
}

func TestRunOnceToleraCursorDesactualizado(t *testing.T) {
	// otra instancia ganó la carrera del cursor: la pasada sigue sin error
	p := model.Proyecto{ID: uuid.New()}
	_, _, cronograma, recurrente, cfg := nuevoSchedulerFixture(p)
	cronograma.err = service.ErrCursorDesactualizado

	RunOnce(context.Background(), cfg, fecha(2024, time.July, 1))

	assert.Equal(t, 1, recurrente.pasadas, "la materialización corre aunque la expansión pierda la carrera")
}

func TestRunOnceSigueSiElBarridoFalla(t *testing.T) {
	_, estado, _, recurrente, cfg := nuevoSchedulerFixture()
	estado.err = errors.New("base de datos caída")

	RunOnce(context.Background(), cfg, fecha(2024, time.July, 1))

	assert.Equal(t, 1, recurrente.pasadas)
}

func TestMaterializarSinRedisCorreSiempre(t *testing.T) {
	// sin Redis no hay marca mensual: cada pasada materializa y la
	// idempotencia del servicio evita duplicados
	_, _, _, recurrente, cfg := nuevoSchedulerFixture()

	RunOnce(context.Background(), cfg, fecha(2024, time.July, 1))
	RunOnce(context.Background(), cfg, fecha(2024, time.July, 2))

	assert.Equal(t, 2, recurrente.pasadas)
}

func TestLocksSinClienteSiempreAdquieren(t *testing.T) {
	ok, err := AcquireLock(context.Background(), nil, LockPlan(uuid.New()))
	require.NoError(t, err)
	assert.True(t, ok)
	ReleaseLock(context.Background(), nil, LockRecurrente(uuid.New()))
}

func fecha(anio int, mes time.Month, dia int) time.Time {
	return time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC)
}
