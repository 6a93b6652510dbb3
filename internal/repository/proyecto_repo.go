package repository

import (
	"context"
	"errors"

	"flujo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionObsoleta is returned when an optimistic cursor update finds the
// row already advanced by a concurrent job run.
var ErrVersionObsoleta = errors.New("version del cursor obsoleta")

type ProyectoRepository interface {
	CreateCliente(ctx context.Context, cliente *model.Cliente) error
	CreateProyecto(ctx context.Context, proyecto *model.Proyecto) error
	ListProyectos(ctx context.Context) ([]model.Proyecto, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proyecto, error)
	FindPlanByProyecto(ctx context.Context, proyectoID uuid.UUID) (*model.PlanPago, error)
	// ListActivosConPlan returns every active project that has a payment plan,
	// plan preloaded, for the daily regeneration sweep.
	ListActivosConPlan(ctx context.Context) ([]model.Proyecto, error)
	CreatePlan(ctx context.Context, plan *model.PlanPago) error
	// UpdateCursorPlan persists the generation cursors guarded by the plan
	// version; returns ErrVersionObsoleta when a concurrent run won.
	UpdateCursorPlan(ctx context.Context, plan *model.PlanPago) error
}

type proyectoRepo struct{ db *gorm.DB }

func NewProyectoRepository(db *gorm.DB) ProyectoRepository { return &proyectoRepo{db: db} }

func (r *proyectoRepo) CreateCliente(ctx context.Context, cliente *model.Cliente) error {
	return r.db.WithContext(ctx).Create(cliente).Error
}

func (r *proyectoRepo) CreateProyecto(ctx context.Context, proyecto *model.Proyecto) error {
	return r.db.WithContext(ctx).Create(proyecto).Error
}

func (r *proyectoRepo) ListProyectos(ctx context.Context) ([]model.Proyecto, error) {
	var proyectos []model.Proyecto
	err := r.db.WithContext(ctx).
		Preload("Plan").Preload("Cliente").
		Order("created_at").
		Find(&proyectos).Error
	return proyectos, err
}

func (r *proyectoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proyecto, error) {
	var p model.Proyecto
	err := r.db.WithContext(ctx).Preload("Plan").Preload("Cliente").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *proyectoRepo) FindPlanByProyecto(ctx context.Context, proyectoID uuid.UUID) (*model.PlanPago, error) {
	var plan model.PlanPago
	err := r.db.WithContext(ctx).Where("proyecto_id = ?", proyectoID).First(&plan).Error
	return &plan, err
}

func (r *proyectoRepo) ListActivosConPlan(ctx context.Context) ([]model.Proyecto, error) {
	var proyectos []model.Proyecto
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Joins("JOIN plan_pagos ON plan_pagos.proyecto_id = proyectos.id").
		Where("proyectos.estado = ?", model.ProyectoActivo).
		Order("proyectos.created_at").
		Find(&proyectos).Error
	return proyectos, err
}

func (r *proyectoRepo) CreatePlan(ctx context.Context, plan *model.PlanPago) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *proyectoRepo) UpdateCursorPlan(ctx context.Context, plan *model.PlanPago) error {
	res := r.db.WithContext(ctx).Model(&model.PlanPago{}).
		Where("id = ? AND version = ?", plan.ID, plan.Version).
		Updates(map[string]interface{}{
			"ultima_cuota_generada":      plan.UltimaCuotaGenerada,
			"ultima_ocurrencia_generada": plan.UltimaOcurrenciaGenerada,
			"version":                    plan.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionObsoleta
	}
	plan.Version++
	return nil
}
