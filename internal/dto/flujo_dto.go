package dto

// FlujoCajaFilter is bound from the query string of GET /v1/flujo-caja.
type FlujoCajaFilter struct {
	Moneda string `form:"moneda,default=COP" validate:"oneof=COP USD"`
	Desde  string `form:"desde"              validate:"omitempty,datetime=2006-01-02"`
	Hasta  string `form:"hasta"              validate:"omitempty,datetime=2006-01-02"`
}

// MetricasFilter is bound from the query string of GET /v1/flujo-caja/metricas.
type MetricasFilter struct {
	Moneda string `form:"moneda,default=COP" validate:"oneof=COP USD"`
}
