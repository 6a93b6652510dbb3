package service

import (
	"context"
	"fmt"

	"flujo/internal/calendario"
	"flujo/internal/dto"
	"flujo/internal/model"
	"flujo/internal/repository"

	"github.com/google/uuid"
)

// ProyectoService covers client / project registration. Schedule generation
// lives in CronogramaService; this one only persists the configuration.
type ProyectoService interface {
	CrearCliente(ctx context.Context, nombre string) (*model.Cliente, error)
	CrearProyecto(ctx context.Context, req dto.CrearProyectoRequest) (*model.Proyecto, error)
	ListarProyectos(ctx context.Context) ([]model.Proyecto, error)
	Obtener(ctx context.Context, id uuid.UUID) (*model.Proyecto, error)
}

type proyectoService struct {
	repo repository.ProyectoRepository
}

func NewProyectoService(repo repository.ProyectoRepository) ProyectoService {
	return &proyectoService{repo: repo}
}

func (s *proyectoService) CrearCliente(ctx context.Context, nombre string) (*model.Cliente, error) {
	cliente := &model.Cliente{Nombre: nombre, Estado: "Activo"}
	if err := s.repo.CreateCliente(ctx, cliente); err != nil {
		return nil, fmt.Errorf("crear cliente: %w", err)
	}
	return cliente, nil
}

func (s *proyectoService) CrearProyecto(ctx context.Context, req dto.CrearProyectoRequest) (*model.Proyecto, error) {
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, fmt.Errorf("cliente_id inválido: %w", err)
	}
	inicio, err := calendario.FechaDesdeTexto(req.FechaInicio)
	if err != nil {
		return nil, err
	}

	proyecto := &model.Proyecto{
		ClienteID:   clienteID,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		FechaInicio: inicio,
		Estado:      model.ProyectoActivo,
	}
	if req.Plan != nil {
		plan := planDesdeRequest(req.Plan)
		if err := validarPlan(plan); err != nil {
			return nil, err
		}
		proyecto.Plan = plan
	}
	if err := s.repo.CreateProyecto(ctx, proyecto); err != nil {
		return nil, fmt.Errorf("crear proyecto: %w", err)
	}
	return proyecto, nil
}

func (s *proyectoService) ListarProyectos(ctx context.Context) ([]model.Proyecto, error) {
	return s.repo.ListProyectos(ctx)
}

func (s *proyectoService) Obtener(ctx context.Context, id uuid.UUID) (*model.Proyecto, error) {
	return s.repo.FindByID(ctx, id)
}

func planDesdeRequest(req *dto.PlanPagoRequest) *model.PlanPago {
	plan := &model.PlanPago{
		Tipo:                 req.Tipo,
		ImplementacionTotal:  req.ImplementacionTotal,
		ImplementacionMoneda: req.ImplementacionMoneda,
		ImplementacionCuotas: req.ImplementacionCuotas,

		RecurrenteMonto:             req.RecurrenteMonto,
		RecurrenteMoneda:            req.RecurrenteMoneda,
		RecurrenteFrecuencia:        req.RecurrenteFrecuencia,
		RecurrenteDiaCobro:          req.RecurrenteDiaCobro,
		RecurrentePeriodosGracia:    req.RecurrentePeriodosGracia,
		RecurrentePeriodosDescuento: req.RecurrentePeriodosDescuento,
		RecurrenteDescuentoPct:      req.RecurrenteDescuentoPct,
	}
	if plan.RequiereImplementacion() && plan.ImplementacionCuotas == 0 {
		plan.ImplementacionCuotas = 1
	}
	return plan
}
