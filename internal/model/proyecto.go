package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente is the minimal client record payments denormalize against.
type Cliente struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"type:varchar(120);not null"`
	Estado    string    `gorm:"type:varchar(20);not null;default:'Activo'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Proyecto belongs to one Cliente and owns at most one PlanPago.
// Estado: "Activo" | "Pausado" | "Finalizado" | "Cancelado"
type Proyecto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClienteID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Nombre      string    `gorm:"type:varchar(120);not null"`
	Descripcion string    `gorm:"type:text"`
	FechaInicio time.Time `gorm:"type:date;not null"`
	FechaFin    *time.Time `gorm:"type:date"`
	Estado      string    `gorm:"type:varchar(20);not null;default:'Activo'"`
	Notas       *string   `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
	// Plan is the project's single billing configuration (unique project_id).
	Plan *PlanPago `gorm:"foreignKey:ProyectoID"`
}

// PlanPago is a project's billing configuration.
// Tipo: "Fee único" | "Fee por cuotas" | "Suscripción periódica" | "Mixto"
//
// The generation cursors (UltimaCuotaGenerada, UltimaOcurrenciaGenerada) record
// how far the schedule expander has materialized payments; they only move
// forward, and only after the corresponding rows were persisted. Version backs
// the optimistic-concurrency check that keeps two concurrent expansions from
// advancing the same cursor.
type PlanPago struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProyectoID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Tipo       string    `gorm:"type:varchar(30);not null"`

	// Implementation fee sub-plan (required for "Fee único", "Fee por cuotas", "Mixto")
	ImplementacionTotal  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	ImplementacionMoneda *string          `gorm:"type:varchar(3)"`
	ImplementacionCuotas int              `gorm:"not null;default:1"`

	// Recurring fee sub-plan (required for "Suscripción periódica", "Mixto")
	RecurrenteMonto         *decimal.Decimal `gorm:"type:decimal(14,2)"`
	RecurrenteMoneda        *string          `gorm:"type:varchar(3)"`
	RecurrenteFrecuencia    *string          `gorm:"type:varchar(20)"`
	RecurrenteDiaCobro      *int
	RecurrentePeriodosGracia    int             `gorm:"not null;default:0"`
	RecurrentePeriodosDescuento int             `gorm:"not null;default:0"`
	RecurrenteDescuentoPct      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	// Generation cursors
	UltimaCuotaGenerada      int `gorm:"not null;default:0"`
	UltimaOcurrenciaGenerada int `gorm:"not null;default:0"`
	Version                  int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RequiereImplementacion reports whether the declared plan type must carry the
// implementation sub-plan.
func (p *PlanPago) RequiereImplementacion() bool {
	return p.Tipo == PlanFeeUnico || p.Tipo == PlanFeeCuotas || p.Tipo == PlanMixto
}

// RequiereRecurrente reports whether the declared plan type must carry the
// recurring sub-plan.
func (p *PlanPago) RequiereRecurrente() bool {
	return p.Tipo == PlanSuscripcion || p.Tipo == PlanMixto
}
