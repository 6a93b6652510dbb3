package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearGastoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=2,max=255"`
	Fecha       string          `json:"fecha"       validate:"required,datetime=2006-01-02"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Moneda      string          `json:"moneda"      validate:"required,oneof=COP USD"`
	Categoria   string          `json:"categoria"   validate:"required,max=100"`
	MetodoPago  string          `json:"metodo_pago" validate:"required,max=100"`
	Notas       *string         `json:"notas"`
}

type CrearIngresoRequest struct {
	Descripcion string          `json:"descripcion" validate:"required,min=2,max=255"`
	Fecha       string          `json:"fecha"       validate:"required,datetime=2006-01-02"`
	Monto       decimal.Decimal `json:"monto"       validate:"required"`
	Moneda      string          `json:"moneda"      validate:"required,oneof=COP USD"`
	Tipo        string          `json:"tipo"        validate:"required,max=100"`
	Cliente     *string         `json:"cliente"     validate:"omitempty,max=120"`
	MetodoPago  string          `json:"metodo_pago" validate:"required,max=100"`
	Notas       *string         `json:"notas"`
}

type CrearGastoRecurrenteRequest struct {
	Descripcion string          `json:"descripcion"  validate:"required,min=2,max=255"`
	Frecuencia  string          `json:"frecuencia"   validate:"required,oneof=Diaria Semanal Quincenal Mensual Bimensual Trimestral Semestral Anual"`
	FechaInicio string          `json:"fecha_inicio" validate:"required,datetime=2006-01-02"`
	Monto       decimal.Decimal `json:"monto"        validate:"required"`
	Moneda      string          `json:"moneda"       validate:"required,oneof=COP USD"`
	Categoria   string          `json:"categoria"    validate:"required,max=100"`
	MetodoPago  string          `json:"metodo_pago"  validate:"required,max=100"`
	Notas       *string         `json:"notas"`
}

type CambiarEstadoRecurrenteRequest struct {
	Estado string `json:"estado" validate:"required,oneof=Activo Pausado"`
}

// PagarCausadoRequest settles an accrued expense.
type PagarCausadoRequest struct {
	FechaPago      string  `json:"fecha_pago"      validate:"required,datetime=2006-01-02"`
	MetodoPago     string  `json:"metodo_pago"     validate:"omitempty,max=100"`
	ComprobanteRef *string `json:"comprobante_ref" validate:"omitempty,max=255"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type GastoCausadoResponse struct {
	ID               string          `json:"id"`
	Descripcion      string          `json:"descripcion"`
	FechaVencimiento string          `json:"fecha_vencimiento"`
	Monto            decimal.Decimal `json:"monto"`
	Moneda           string          `json:"moneda"`
	Categoria        string          `json:"categoria"`
	Estado           string          `json:"estado"`
	FechaPago        *string         `json:"fecha_pago,omitempty"`
	EsRecurrente     bool            `json:"es_recurrente"`
	RecurrenteID     *string         `json:"recurrente_id,omitempty"`
}

type GastoRecurrenteResponse struct {
	ID          string          `json:"id"`
	Descripcion string          `json:"descripcion"`
	Frecuencia  string          `json:"frecuencia"`
	FechaInicio string          `json:"fecha_inicio"`
	Monto       decimal.Decimal `json:"monto"`
	Moneda      string          `json:"moneda"`
	Categoria   string          `json:"categoria"`
	Estado      string          `json:"estado"`
	ProximoPago string          `json:"proximo_pago"`
}
