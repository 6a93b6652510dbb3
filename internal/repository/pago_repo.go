package repository

import (
	"context"
	"time"

	"flujo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PagoFilter narrows payment listings. Nil date bounds mean unbounded.
type PagoFilter struct {
	ProyectoID *uuid.UUID
	ClienteID  *uuid.UUID
	Estado     string
	Desde      *time.Time
	Hasta      *time.Time
}

type PagoRepository interface {
	Create(ctx context.Context, p *model.Pago) error
	CreateBatch(ctx context.Context, pagos []model.Pago) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error)
	Update(ctx context.Context, p *model.Pago) error
	List(ctx context.Context, filtro PagoFilter) ([]model.Pago, error)
	// ListPendientesHasta returns Pendiente payments scheduled strictly before
	// the cut-off, in (fecha, id) order so interrupted sweeps resume
	// deterministically.
	ListPendientesHasta(ctx context.Context, corte time.Time) ([]model.Pago, error)
	// ListPagadosEntre returns Pagado payments by settlement date range.
	ListPagadosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Pago, error)
	// MaxNumeroCuota returns the highest generated installment/occurrence
	// number for a project and payment type (0 when none exist).
	MaxNumeroCuota(ctx context.Context, proyectoID uuid.UUID, tipo string) (int, error)
	// UltimaFechaGenerada returns the latest scheduled date generated for a
	// project, or the zero time when none exist.
	UltimaFechaGenerada(ctx context.Context, proyectoID uuid.UUID) (time.Time, error)
}

type pagoRepo struct{ db *gorm.DB }

func NewPagoRepository(db *gorm.DB) PagoRepository { return &pagoRepo{db: db} }

func (r *pagoRepo) Create(ctx context.Context, p *model.Pago) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *pagoRepo) CreateBatch(ctx context.Context, pagos []model.Pago) error {
	if len(pagos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&pagos).Error
}

func (r *pagoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pago, error) {
	var p model.Pago
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pagoRepo) Update(ctx context.Context, p *model.Pago) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *pagoRepo) List(ctx context.Context, filtro PagoFilter) ([]model.Pago, error) {
	q := r.db.WithContext(ctx).Model(&model.Pago{})
	if filtro.ProyectoID != nil {
		q = q.Where("proyecto_id = ?", *filtro.ProyectoID)
	}
	if filtro.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filtro.ClienteID)
	}
	if filtro.Estado != "" {
		q = q.Where("estado = ?", filtro.Estado)
	}
	if filtro.Desde != nil {
		q = q.Where("fecha >= ?", *filtro.Desde)
	}
	if filtro.Hasta != nil {
		q = q.Where("fecha <= ?", *filtro.Hasta)
	}
	var pagos []model.Pago
	err := q.Order("fecha, id").Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListPendientesHasta(ctx context.Context, corte time.Time) ([]model.Pago, error) {
	var pagos []model.Pago
	err := r.db.WithContext(ctx).
		Where("estado = ? AND fecha < ?", model.PagoPendiente, corte).
		Order("fecha, id").
		Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) ListPagadosEntre(ctx context.Context, desde, hasta *time.Time) ([]model.Pago, error) {
	q := r.db.WithContext(ctx).Where("estado = ?", model.PagoPagado)
	if desde != nil {
		q = q.Where("fecha_pago >= ?", *desde)
	}
	if hasta != nil {
		q = q.Where("fecha_pago <= ?", *hasta)
	}
	var pagos []model.Pago
	err := q.Order("fecha_pago, id").Find(&pagos).Error
	return pagos, err
}

func (r *pagoRepo) MaxNumeroCuota(ctx context.Context, proyectoID uuid.UUID, tipo string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.Pago{}).
		Where("proyecto_id = ? AND tipo = ?", proyectoID, tipo).
		Select("MAX(numero_cuota)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

func (r *pagoRepo) UltimaFechaGenerada(ctx context.Context, proyectoID uuid.UUID) (time.Time, error) {
	var ultima *time.Time
	err := r.db.WithContext(ctx).Model(&model.Pago{}).
		Where("proyecto_id = ?", proyectoID).
		Select("MAX(fecha)").
		Scan(&ultima).Error
	if err != nil || ultima == nil {
		return time.Time{}, err
	}
	return *ultima, nil
}
