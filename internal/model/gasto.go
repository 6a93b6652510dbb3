package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is a standalone, already-realized expense.
type Gasto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion string          `gorm:"type:varchar(255);not null"`
	Fecha       time.Time       `gorm:"type:date;not null;index"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda      string          `gorm:"type:varchar(3);not null"`
	Categoria   string          `gorm:"type:varchar(100);not null"`
	MetodoPago  string          `gorm:"type:varchar(100);not null"`
	Notas       *string         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GastoRecurrente is the template a repeating obligation is materialized from.
// Estado: "Activo" | "Pausado"
//
// ProximoPago is the earliest not-yet-materialized occurrence; it advances
// monotonically, one frequency step past the last materialized boundary, and
// only after the generated rows were persisted. Pausing freezes the cursor;
// resuming materializes every missed cycle (catch-up, no silent jumps).
type GastoRecurrente struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion string          `gorm:"type:varchar(255);not null"`
	Frecuencia  string          `gorm:"type:varchar(20);not null"`
	FechaInicio time.Time       `gorm:"type:date;not null"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda      string          `gorm:"type:varchar(3);not null"`
	Categoria   string          `gorm:"type:varchar(100);not null"`
	MetodoPago  string          `gorm:"type:varchar(100);not null"`
	Estado      string          `gorm:"type:varchar(20);not null;default:'Activo'"`
	ProximoPago time.Time       `gorm:"type:date;not null;index"`
	Version     int             `gorm:"not null;default:0"`
	Notas       *string         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Causados []GastoCausado `gorm:"foreignKey:RecurrenteID"`
}

// GastoCausado is a discrete accrued obligation, standalone or materialized
// from a GastoRecurrente.
// Estado: "pendiente" | "pagado" | "vencido"
type GastoCausado struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion      string          `gorm:"type:varchar(255);not null"`
	FechaVencimiento time.Time       `gorm:"type:date;not null;index"`
	Monto            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda           string          `gorm:"type:varchar(3);not null"`
	Categoria        string          `gorm:"type:varchar(100);not null"`
	MetodoPago       string          `gorm:"type:varchar(100);not null"`
	Estado           string          `gorm:"type:varchar(20);not null;default:'pendiente';index"`
	FechaPago        *time.Time      `gorm:"type:date"`
	EsRecurrente     bool            `gorm:"not null;default:false"`
	RecurrenteID     *uuid.UUID      `gorm:"type:uuid;index"`
	ComprobanteRef   *string         `gorm:"type:varchar(255)"`
	Notas            *string         `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Ingreso is a standalone realized income (client payment outside the payment
// schedule, partner contribution, etc.).
type Ingreso struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Descripcion string          `gorm:"type:varchar(255);not null"`
	Fecha       time.Time       `gorm:"type:date;not null;index"`
	Monto       decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Moneda      string          `gorm:"type:varchar(3);not null"`
	Tipo        string          `gorm:"type:varchar(100);not null"` // 'Cliente', 'Aporte de socio', ...
	Cliente     *string         `gorm:"type:varchar(120)"`
	MetodoPago  string          `gorm:"type:varchar(100);not null"`
	Notas       *string         `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
