package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"flujo/internal/model"
	"flujo/internal/moneda"
	"flujo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ── In-memory ProyectoRepository ─────────────────────────────────────────────

type fakeProyectoRepo struct {
	proyectos map[uuid.UUID]*model.Proyecto
	// when set, the next cursor update loses the optimistic race
	conflictoCursor bool
}

var _ repository.ProyectoRepository = (*fakeProyectoRepo)(nil)

func newFakeProyectoRepo() *fakeProyectoRepo {
	return &fakeProyectoRepo{proyectos: make(map[uuid.UUID]*model.Proyecto)}
}

func (r *fakeProyectoRepo) agregar(p *model.Proyecto) *model.Proyecto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ClienteID == uuid.Nil {
		p.ClienteID = uuid.New()
	}
	if p.Plan != nil && p.Plan.ID == uuid.Nil {
		p.Plan.ID = uuid.New()
		p.Plan.ProyectoID = p.ID
	}
	r.proyectos[p.ID] = p
	return p
}

func (r *fakeProyectoRepo) CreateCliente(_ context.Context, c *model.Cliente) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (r *fakeProyectoRepo) CreateProyecto(_ context.Context, p *model.Proyecto) error {
	r.agregar(p)
	return nil
}

func (r *fakeProyectoRepo) ListProyectos(_ context.Context) ([]model.Proyecto, error) {
	var out []model.Proyecto
	for _, p := range r.proyectos {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProyectoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proyecto, error) {
	p, ok := r.proyectos[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return p, nil
}

func (r *fakeProyectoRepo) FindPlanByProyecto(_ context.Context, proyectoID uuid.UUID) (*model.PlanPago, error) {
	p, ok := r.proyectos[proyectoID]
	if !ok || p.Plan == nil {
		return nil, errors.New("not found")
	}
	return p.Plan, nil
}

func (r *fakeProyectoRepo) ListActivosConPlan(_ context.Context) ([]model.Proyecto, error) {
	var out []model.Proyecto
	for _, p := range r.proyectos {
		if p.Estado == model.ProyectoActivo && p.Plan != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProyectoRepo) CreatePlan(_ context.Context, plan *model.PlanPago) error {
	p, ok := r.proyectos[plan.ProyectoID]
	if !ok {
		return errors.New("not found")
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	p.Plan = plan
	return nil
}

func (r *fakeProyectoRepo) UpdateCursorPlan(_ context.Context, plan *model.PlanPago) error {
	if r.conflictoCursor {
		r.conflictoCursor = false
		return repository.ErrVersionObsoleta
	}
	plan.Version++
	return nil
}

// ── In-memory PagoRepository ─────────────────────────────────────────────────

type fakePagoRepo struct {
	pagos []model.Pago
}

var _ repository.PagoRepository = (*fakePagoRepo)(nil)

func (r *fakePagoRepo) Create(_ context.Context, p *model.Pago) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pagos = append(r.pagos, *p)
	return nil
}

func (r *fakePagoRepo) CreateBatch(_ context.Context, pagos []model.Pago) error {
	for i := range pagos {
		if pagos[i].ID == uuid.Nil {
			pagos[i].ID = uuid.New()
		}
		r.pagos = append(r.pagos, pagos[i])
	}
	return nil
}

func (r *fakePagoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pago, error) {
	for i := range r.pagos {
		if r.pagos[i].ID == id {
			copia := r.pagos[i]
			return &copia, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakePagoRepo) Update(_ context.Context, p *model.Pago) error {
	for i := range r.pagos {
		if r.pagos[i].ID == p.ID {
			r.pagos[i] = *p
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakePagoRepo) List(_ context.Context, f repository.PagoFilter) ([]model.Pago, error) {
	var out []model.Pago
	for _, p := range r.pagos {
		if f.ProyectoID != nil && p.ProyectoID != *f.ProyectoID {
			continue
		}
		if f.ClienteID != nil && p.ClienteID != *f.ClienteID {
			continue
		}
		if f.Estado != "" && p.Estado != f.Estado {
			continue
		}
		if f.Desde != nil && p.Fecha.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && p.Fecha.After(*f.Hasta) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *fakePagoRepo) ListPendientesHasta(_ context.Context, corte time.Time) ([]model.Pago, error) {
	var out []model.Pago
	for _, p := range r.pagos {
		if p.Estado == model.PagoPendiente && p.Fecha.Before(corte) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Fecha.Before(out[j].Fecha) })
	return out, nil
}

func (r *fakePagoRepo) ListPagadosEntre(_ context.Context, desde, hasta *time.Time) ([]model.Pago, error) {
	var out []model.Pago
	for _, p := range r.pagos {
		if p.Estado != model.PagoPagado || p.FechaPago == nil {
			continue
		}
		if desde != nil && p.FechaPago.Before(*desde) {
			continue
		}
		if hasta != nil && p.FechaPago.After(*hasta) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePagoRepo) MaxNumeroCuota(_ context.Context, proyectoID uuid.UUID, tipo string) (int, error) {
	max := 0
	for _, p := range r.pagos {
		if p.ProyectoID == proyectoID && p.Tipo == tipo && p.NumeroCuota != nil && *p.NumeroCuota > max {
			max = *p.NumeroCuota
		}
	}
	return max, nil
}

func (r *fakePagoRepo) UltimaFechaGenerada(_ context.Context, proyectoID uuid.UUID) (time.Time, error) {
	var ultima time.Time
	for _, p := range r.pagos {
		if p.ProyectoID == proyectoID && p.Fecha.After(ultima) {
			ultima = p.Fecha
		}
	}
	return ultima, nil
}

// ── In-memory GastoRepository ────────────────────────────────────────────────

type fakeGastoRepo struct {
	gastos      []model.Gasto
	causados    []model.GastoCausado
	recurrentes map[uuid.UUID]*model.GastoRecurrente
	// when set, the next cursor update loses the optimistic race
	conflictoCursor bool
}

var _ repository.GastoRepository = (*fakeGastoRepo)(nil)

func newFakeGastoRepo() *fakeGastoRepo {
	return &fakeGastoRepo{recurrentes: make(map[uuid.UUID]*model.GastoRecurrente)}
}

func (r *fakeGastoRepo) agregarRecurrente(def *model.GastoRecurrente) *model.GastoRecurrente {
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	r.recurrentes[def.ID] = def
	return def
}

func (r *fakeGastoRepo) CreateGasto(_ context.Context, g *model.Gasto) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	r.gastos = append(r.gastos, *g)
	return nil
}

func (r *fakeGastoRepo) ListGastosEntre(_ context.Context, desde, hasta *time.Time) ([]model.Gasto, error) {
	var out []model.Gasto
	for _, g := range r.gastos {
		if desde != nil && g.Fecha.Before(*desde) {
			continue
		}
		if hasta != nil && g.Fecha.After(*hasta) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeGastoRepo) CreateCausado(_ context.Context, c *model.GastoCausado) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.causados = append(r.causados, *c)
	return nil
}

func (r *fakeGastoRepo) CreateCausadosBatch(_ context.Context, causados []model.GastoCausado) error {
	for i := range causados {
		if err := r.CreateCausado(context.Background(), &causados[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeGastoRepo) FindCausadoByID(_ context.Context, id uuid.UUID) (*model.GastoCausado, error) {
	for i := range r.causados {
		if r.causados[i].ID == id {
			copia := r.causados[i]
			return &copia, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeGastoRepo) UpdateCausado(_ context.Context, c *model.GastoCausado) error {
	for i := range r.causados {
		if r.causados[i].ID == c.ID {
			r.causados[i] = *c
			return nil
		}
	}
	return errors.New("not found")
}

func (r *fakeGastoRepo) ListCausadosPendientesHasta(_ context.Context, corte time.Time) ([]model.GastoCausado, error) {
	var out []model.GastoCausado
	for _, c := range r.causados {
		if c.Estado == model.CausadoPendiente && c.FechaVencimiento.Before(corte) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FechaVencimiento.Before(out[j].FechaVencimiento) })
	return out, nil
}

func (r *fakeGastoRepo) ListCausadosPagadosEntre(_ context.Context, desde, hasta *time.Time) ([]model.GastoCausado, error) {
	var out []model.GastoCausado
	for _, c := range r.causados {
		if c.Estado != model.CausadoPagado || c.FechaPago == nil {
			continue
		}
		if desde != nil && c.FechaPago.Before(*desde) {
			continue
		}
		if hasta != nil && c.FechaPago.After(*hasta) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeGastoRepo) CreateRecurrente(_ context.Context, def *model.GastoRecurrente) error {
	r.agregarRecurrente(def)
	return nil
}

func (r *fakeGastoRepo) ListRecurrentes(_ context.Context) ([]model.GastoRecurrente, error) {
	var out []model.GastoRecurrente
	for _, def := range r.recurrentes {
		out = append(out, *def)
	}
	return out, nil
}

func (r *fakeGastoRepo) FindRecurrenteByID(_ context.Context, id uuid.UUID) (*model.GastoRecurrente, error) {
	def, ok := r.recurrentes[id]
	if !ok {
		return nil, errors.New("not found")
	}
	copia := *def
	return &copia, nil
}

func (r *fakeGastoRepo) ListRecurrentesVencidos(_ context.Context, asOf time.Time) ([]model.GastoRecurrente, error) {
	var out []model.GastoRecurrente
	for _, def := range r.recurrentes {
		if def.Estado == model.RecurrenteActivo && !def.ProximoPago.After(asOf) {
			out = append(out, *def)
		}
	}
	return out, nil
}

func (r *fakeGastoRepo) UpdateCursorRecurrente(_ context.Context, def *model.GastoRecurrente) error {
	if r.conflictoCursor {
		r.conflictoCursor = false
		return repository.ErrVersionObsoleta
	}
	guardado, ok := r.recurrentes[def.ID]
	if !ok {
		return errors.New("not found")
	}
	guardado.ProximoPago = def.ProximoPago
	guardado.Version++
	def.Version = guardado.Version
	return nil
}

func (r *fakeGastoRepo) UpdateRecurrente(_ context.Context, def *model.GastoRecurrente) error {
	if _, ok := r.recurrentes[def.ID]; !ok {
		return errors.New("not found")
	}
	copia := *def
	r.recurrentes[def.ID] = &copia
	return nil
}

// ── In-memory IngresoRepository ──────────────────────────────────────────────

type fakeIngresoRepo struct {
	ingresos []model.Ingreso
}

var _ repository.IngresoRepository = (*fakeIngresoRepo)(nil)

func (r *fakeIngresoRepo) Create(_ context.Context, i *model.Ingreso) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	r.ingresos = append(r.ingresos, *i)
	return nil
}

func (r *fakeIngresoRepo) ListEntre(_ context.Context, desde, hasta *time.Time) ([]model.Ingreso, error) {
	var out []model.Ingreso
	for _, i := range r.ingresos {
		if desde != nil && i.Fecha.Before(*desde) {
			continue
		}
		if hasta != nil && i.Fecha.After(*hasta) {
			continue
		}
		out = append(out, i)
	}
	return out, nil
}

// ── Fixed rate source ────────────────────────────────────────────────────────

type fakeTasas struct {
	tasas map[string]decimal.Decimal
}

var _ moneda.FuenteTasas = (*fakeTasas)(nil)

func (f *fakeTasas) Tasa(_ context.Context, desde, hasta string) (decimal.Decimal, error) {
	if desde == hasta {
		return decimal.NewFromInt(1), nil
	}
	tasa, ok := f.tasas[desde+":"+hasta]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s→%s", moneda.ErrTasaNoDisponible, desde, hasta)
	}
	return tasa, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func fecha(anio int, mes time.Month, dia int) time.Time {
	return time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
