package repository

import (
	"context"
	"time"

	"flujo/internal/model"

	"gorm.io/gorm"
)

type IngresoRepository interface {
	Create(ctx context.Context, i *model.Ingreso) error
	ListEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Ingreso, error)
}

type ingresoRepo struct{ db *gorm.DB }

func NewIngresoRepository(db *gorm.DB) IngresoRepository { return &ingresoRepo{db: db} }

func (r *ingresoRepo) Create(ctx context.Context, i *model.Ingreso) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *ingresoRepo) ListEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Ingreso, error) {
	q := r.db.WithContext(ctx).Model(&model.Ingreso{})
	if desde != nil {
		q = q.Where("fecha >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha <= ?", *hasta)
	}
	var ingresos []model.Ingreso
	err := q.Order("fecha, id").Find(&ingresos).Error
	return ingresos, err
}
