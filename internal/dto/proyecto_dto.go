package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre string `json:"nombre" validate:"required,min=2,max=120"`
}

// PlanPagoRequest configures the project's billing when creating it.
// Which sub-plans are required depends on tipo; the service validates the
// cross-field rules the tags cannot express.
type PlanPagoRequest struct {
	Tipo string `json:"tipo" validate:"required,oneof='Fee único' 'Fee por cuotas' 'Suscripción periódica' 'Mixto'"`

	ImplementacionTotal  *decimal.Decimal `json:"implementacion_total"  validate:"omitempty"`
	ImplementacionMoneda *string          `json:"implementacion_moneda" validate:"omitempty,oneof=COP USD"`
	ImplementacionCuotas int              `json:"implementacion_cuotas" validate:"omitempty,min=1,max=60"`

	RecurrenteMonto             *decimal.Decimal `json:"recurrente_monto"      validate:"omitempty"`
	RecurrenteMoneda            *string          `json:"recurrente_moneda"     validate:"omitempty,oneof=COP USD"`
	RecurrenteFrecuencia        *string          `json:"recurrente_frecuencia" validate:"omitempty,oneof=Diaria Semanal Quincenal Mensual Bimensual Trimestral Semestral Anual"`
	RecurrenteDiaCobro          *int             `json:"recurrente_dia_cobro"  validate:"omitempty,min=1,max=31"`
	RecurrentePeriodosGracia    int              `json:"recurrente_periodos_gracia"    validate:"min=0"`
	RecurrentePeriodosDescuento int              `json:"recurrente_periodos_descuento" validate:"min=0"`
	RecurrenteDescuentoPct      decimal.Decimal  `json:"recurrente_descuento_pct"      validate:"min=0,max=100"`
}

type CrearProyectoRequest struct {
	ClienteID   string           `json:"cliente_id"   validate:"required,uuid"`
	Nombre      string           `json:"nombre"       validate:"required,min=2,max=120"`
	Descripcion string           `json:"descripcion"`
	FechaInicio string           `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Plan        *PlanPagoRequest `json:"plan"         validate:"omitempty"`
}

// GenerarCronogramaRequest triggers schedule expansion for a project.
// Meses defaults to the configured horizon when omitted.
type GenerarCronogramaRequest struct {
	Meses int `json:"meses" validate:"omitempty,min=1,max=60"`
}

// PreviewRecurrenteRequest projects future occurrences without persisting.
type PreviewRecurrenteRequest struct {
	FechaInicio string          `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Frecuencia  string          `json:"frecuencia"   validate:"required,oneof=Diaria Semanal Quincenal Mensual Bimensual Trimestral Semestral Anual"`
	Monto       decimal.Decimal `json:"monto"        validate:"required"`
	Moneda      string          `json:"moneda"       validate:"required,oneof=COP USD"`
	Cantidad    int             `json:"cantidad"     validate:"omitempty,min=1,max=120"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Estado string `json:"estado"`
}

type ProyectoResponse struct {
	ID          string  `json:"id"`
	ClienteID   string  `json:"cliente_id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion,omitempty"`
	FechaInicio string  `json:"fecha_inicio"`
	Estado      string  `json:"estado"`
	PlanTipo    *string `json:"plan_tipo,omitempty"`
}

type OcurrenciaPreviewResponse struct {
	Fecha string          `json:"fecha"`
	Monto decimal.Decimal `json:"monto"`
}
