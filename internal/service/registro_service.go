package service

import (
	"context"
	"fmt"
	"time"

	"flujo/internal/calendario"
	"flujo/internal/dto"
	"flujo/internal/model"
	"flujo/internal/moneda"
	"flujo/internal/repository"
)

// RegistroService persists the standalone ledger entries: one-off incomes,
// one-off expenses and recurring expense templates. Amounts are normalized to
// the currency minor unit on the way in so downstream aggregation never
// re-rounds stored values.
type RegistroService interface {
	CrearIngreso(ctx context.Context, req dto.CrearIngresoRequest) (*model.Ingreso, error)
	CrearGasto(ctx context.Context, req dto.CrearGastoRequest) (*model.Gasto, error)
	CrearRecurrente(ctx context.Context, req dto.CrearGastoRecurrenteRequest) (*model.GastoRecurrente, error)
	ListarIngresos(ctx context.Context, desde, hasta *time.Time) ([]model.Ingreso, error)
	ListarGastos(ctx context.Context, desde, hasta *time.Time) ([]model.Gasto, error)
	ListarRecurrentes(ctx context.Context) ([]model.GastoRecurrente, error)
}

type registroService struct {
	ingresoRepo repository.IngresoRepository
	gastoRepo   repository.GastoRepository
}

func NewRegistroService(ingresoRepo repository.IngresoRepository, gastoRepo repository.GastoRepository) RegistroService {
	return &registroService{ingresoRepo: ingresoRepo, gastoRepo: gastoRepo}
}

func (s *registroService) CrearIngreso(ctx context.Context, req dto.CrearIngresoRequest) (*model.Ingreso, error) {
	fecha, err := calendario.FechaDesdeTexto(req.Fecha)
	if err != nil {
		return nil, err
	}
	monto, err := moneda.Redondear(req.Monto, req.Moneda)
	if err != nil {
		return nil, err
	}
	ingreso := &model.Ingreso{
		Descripcion: req.Descripcion,
		Fecha:       fecha,
		Monto:       monto,
		Moneda:      req.Moneda,
		Tipo:        req.Tipo,
		Cliente:     req.Cliente,
		MetodoPago:  req.MetodoPago,
		Notas:       req.Notas,
	}
	if err := s.ingresoRepo.Create(ctx, ingreso); err != nil {
		return nil, fmt.Errorf("crear ingreso: %w", err)
	}
	return ingreso, nil
}

func (s *registroService) CrearGasto(ctx context.Context, req dto.CrearGastoRequest) (*model.Gasto, error) {
	fecha, err := calendario.FechaDesdeTexto(req.Fecha)
	if err != nil {
		return nil, err
	}
	monto, err := moneda.Redondear(req.Monto, req.Moneda)
	if err != nil {
		return nil, err
	}
	gasto := &model.Gasto{
		Descripcion: req.Descripcion,
		Fecha:       fecha,
		Monto:       monto,
		Moneda:      req.Moneda,
		Categoria:   req.Categoria,
		MetodoPago:  req.MetodoPago,
		Notas:       req.Notas,
	}
	if err := s.gastoRepo.CreateGasto(ctx, gasto); err != nil {
		return nil, fmt.Errorf("crear gasto: %w", err)
	}
	return gasto, nil
}

func (s *registroService) CrearRecurrente(ctx context.Context, req dto.CrearGastoRecurrenteRequest) (*model.GastoRecurrente, error) {
	if err := calendario.Valida(req.Frecuencia); err != nil {
		return nil, err
	}
	inicio, err := calendario.FechaDesdeTexto(req.FechaInicio)
	if err != nil {
		return nil, err
	}
	monto, err := moneda.Redondear(req.Monto, req.Moneda)
	if err != nil {
		return nil, err
	}
	def := &model.GastoRecurrente{
		Descripcion: req.Descripcion,
		Frecuencia:  req.Frecuencia,
		FechaInicio: inicio,
		Monto:       monto,
		Moneda:      req.Moneda,
		Categoria:   req.Categoria,
		MetodoPago:  req.MetodoPago,
		Estado:      model.RecurrenteActivo,
		// the first materialization covers the start date itself
		ProximoPago: inicio,
		Notas:       req.Notas,
	}
	if err := s.gastoRepo.CreateRecurrente(ctx, def); err != nil {
		return nil, fmt.Errorf("crear gasto recurrente: %w", err)
	}
	return def, nil
}

func (s *registroService) ListarIngresos(ctx context.Context, desde, hasta *time.Time) ([]model.Ingreso, error) {
	return s.ingresoRepo.ListEntre(ctx, desde, hasta)
}

func (s *registroService) ListarGastos(ctx context.Context, desde, hasta *time.Time) ([]model.Gasto, error) {
	return s.gastoRepo.ListGastosEntre(ctx, desde, hasta)
}

func (s *registroService) ListarRecurrentes(ctx context.Context) ([]model.GastoRecurrente, error) {
	return s.gastoRepo.ListRecurrentes(ctx)
}
