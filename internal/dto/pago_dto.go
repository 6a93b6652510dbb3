package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// PagoFilter is bound from the query string of GET /v1/pagos.
// Moneda, when present, adds a grand total converted to that currency
// (overdue / upcoming reports mix COP and USD rows).
type PagoFilter struct {
	ProyectoID string `form:"proyecto_id" validate:"omitempty,uuid"`
	ClienteID  string `form:"cliente_id"  validate:"omitempty,uuid"`
	Estado     string `form:"estado"      validate:"omitempty,oneof=Pendiente Pagado Vencido"`
	Desde      string `form:"desde"       validate:"omitempty,datetime=2006-01-02"`
	Hasta      string `form:"hasta"       validate:"omitempty,datetime=2006-01-02"`
	Moneda     string `form:"moneda"      validate:"omitempty,oneof=COP USD"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ActualizarEstadoPagoRequest drives the payment status machine.
// FechaPago is required when estado is Pagado; back-dating is allowed.
type ActualizarEstadoPagoRequest struct {
	Estado        string  `json:"estado"         validate:"required,oneof=Pendiente Pagado Vencido"`
	FechaPago     *string `json:"fecha_pago"     validate:"omitempty,datetime=2006-01-02"`
	NumeroFactura *string `json:"numero_factura" validate:"omitempty,max=50"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PagoResponse struct {
	ID            string          `json:"id"`
	ProyectoID    string          `json:"proyecto_id"`
	ClienteID     string          `json:"cliente_id"`
	Monto         decimal.Decimal `json:"monto"`
	Moneda        string          `json:"moneda"`
	Fecha         string          `json:"fecha"`
	FechaPago     *string         `json:"fecha_pago,omitempty"`
	Estado        string          `json:"estado"`
	Tipo          string          `json:"tipo"`
	NumeroCuota   *int            `json:"numero_cuota,omitempty"`
	NumeroFactura *string         `json:"numero_factura,omitempty"`
}

type CronogramaResponse struct {
	Generados int            `json:"generados"`
	Pagos     []PagoResponse `json:"pagos"`
}
