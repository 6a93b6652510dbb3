package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pago is a scheduled or settled billing event generated from a PlanPago.
// Estado: "Pendiente" | "Pagado" | "Vencido"
// Tipo:   "Implementación" | "Recurrente"
//
// Invariants: FechaPago is non-nil iff Estado = "Pagado"; a payment never
// leaves "Pagado" through the sweep; paid rows are never deleted.
type Pago struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProyectoID uuid.UUID `gorm:"type:uuid;not null;index"`
	ClienteID  uuid.UUID `gorm:"type:uuid;not null;index"`

	Monto  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda string          `gorm:"type:varchar(3);not null"`

	// Fecha is the scheduled date; FechaPago the actual settlement date.
	Fecha     time.Time  `gorm:"type:date;not null;index"`
	FechaPago *time.Time `gorm:"type:date"`

	Estado string `gorm:"type:varchar(20);not null;default:'Pendiente';index"`
	Tipo   string `gorm:"type:varchar(20);not null"`

	// NumeroCuota is 1..N for implementation installments and the occurrence
	// index for recurring charges (grace periods included in the count).
	NumeroCuota   *int
	NumeroFactura *string `gorm:"type:varchar(100)"`
	Notas         *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Proyecto *Proyecto `gorm:"foreignKey:ProyectoID"`
	Cliente  *Cliente  `gorm:"foreignKey:ClienteID"`
}
