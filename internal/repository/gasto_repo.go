package repository

import (
	"context"
	"time"

	"flujo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GastoRepository covers standalone expenses, accrued expenses and the
// recurring definitions they materialize from. They share a repository because
// the recurring expander and the lifecycle sweep touch them as one unit.
type GastoRepository interface {
	// Standalone expenses
	CreateGasto(ctx context.Context, g *model.Gasto) error
	ListGastosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Gasto, error)

	// Accrued expenses
	CreateCausado(ctx context.Context, c *model.GastoCausado) error
	CreateCausadosBatch(ctx context.Context, causados []model.GastoCausado) error
	FindCausadoByID(ctx context.Context, id uuid.UUID) (*model.GastoCausado, error)
	UpdateCausado(ctx context.Context, c *model.GastoCausado) error
	// ListCausadosPendientesHasta returns pendiente accrued expenses due
	// strictly before the cut-off, in (fecha_vencimiento, id) order.
	ListCausadosPendientesHasta(ctx context.Context, corte time.Time) ([]model.GastoCausado, error)
	ListCausadosPagadosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.GastoCausado, error)

	// Recurring definitions
	CreateRecurrente(ctx context.Context, def *model.GastoRecurrente) error
	ListRecurrentes(ctx context.Context) ([]model.GastoRecurrente, error)
	FindRecurrenteByID(ctx context.Context, id uuid.UUID) (*model.GastoRecurrente, error)
	// ListRecurrentesVencidos returns Activo definitions whose cursor is due
	// (proximo_pago <= asOf).
	ListRecurrentesVencidos(ctx context.Context, asOf time.Time) ([]model.GastoRecurrente, error)
	// UpdateCursorRecurrente persists proximo_pago guarded by the definition
	// version; returns ErrVersionObsoleta when a concurrent run won.
	UpdateCursorRecurrente(ctx context.Context, def *model.GastoRecurrente) error
	UpdateRecurrente(ctx context.Context, def *model.GastoRecurrente) error
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) CreateGasto(ctx context.Context, g *model.Gasto) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *gastoRepo) ListGastosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Gasto, error) {
	q := r.db.WithContext(ctx).Model(&model.Gasto{})
	if desde != nil {
		q = q.Where("fecha >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha <= ?", *hasta)
	}
	var gastos []model.Gasto
	err := q.Order("fecha, id").Find(&gastos).Error
	return gastos, err
}

func (r *gastoRepo) CreateCausado(ctx context.Context, c *model.GastoCausado) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *gastoRepo) CreateCausadosBatch(ctx context.Context, causados []model.GastoCausado) error {
	if len(causados) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&causados).Error
}

func (r *gastoRepo) FindCausadoByID(ctx context.Context, id uuid.UUID) (*model.GastoCausado, error) {
	var c model.GastoCausado
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *gastoRepo) UpdateCausado(ctx context.Context, c *model.GastoCausado) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *gastoRepo) ListCausadosPendientesHasta(ctx context.Context, corte time.Time) ([]model.GastoCausado, error) {
	var causados []model.GastoCausado
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_vencimiento < ?", model.CausadoPendiente, corte).
		Order("fecha_vencimiento, id").
		Find(&causados).Error
	return causados, err
}

func (r *gastoRepo) ListCausadosPagadosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.GastoCausado, error) {
	q := r.db.WithContext(ctx).Where("estado = ?", model.CausadoPagado)
	if desde != nil {
		q = q.Where("fecha_pago >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha_pago <= ?", *hasta)
	}
	var causados []model.GastoCausado
	err := q.Order("fecha_pago, id").Find(&causados).Error
	return causados, err
}

func (r *gastoRepo) CreateRecurrente(ctx context.Context, def *model.GastoRecurrente) error {
	return r.db.WithContext(ctx).Create(def).Error
}

func (r *gastoRepo) ListRecurrentes(ctx context.Context) ([]model.GastoRecurrente, error) {
	var defs []model.GastoRecurrente
	err := r.db.WithContext(ctx).Order("created_at").Find(&defs).Error
	return defs, err
}

func (r *gastoRepo) FindRecurrenteByID(ctx context.Context, id uuid.UUID) (*model.GastoRecurrente, error) {
	var def model.GastoRecurrente
	err := r.db.WithContext(ctx).First(&def, "id = ?", id).Error
	return &def, err
}

func (r *gastoRepo) ListRecurrentesVencidos(ctx context.Context, asOf time.Time) ([]model.GastoRecurrente, error) {
	var defs []model.GastoRecurrente
	err := r.db.WithContext(ctx).
		Where("estado = ? AND proximo_pago <= ?", model.RecurrenteActivo, asOf).
		Order("proximo_pago, id").
		Find(&defs).Error
	return defs, err
}

func (r *gastoRepo) UpdateCursorRecurrente(ctx context.Context, def *model.GastoRecurrente) error {
	res := r.db.WithContext(ctx).Model(&model.GastoRecurrente{}).
		Where("id = ? AND version = ?", def.ID, def.Version).
		Updates(map[string]interface{}{
			"proximo_pago": def.ProximoPago,
			"version":      def.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionObsoleta
	}
	def.Version++
	return nil
}

func (r *gastoRepo) UpdateRecurrente(ctx context.Context, def *model.GastoRecurrente) error {
	return r.db.WithContext(ctx).Save(def).Error
}
