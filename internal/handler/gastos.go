package handler

import (
	"errors"
	"net/http"
	"time"

	"flujo/internal/apierror"
	"flujo/internal/dto"
	"flujo/internal/model"
	"flujo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type GastosHandler struct {
	registro   service.RegistroService
	recurrente service.RecurrenteService
	estado     service.EstadoService
}

func NewGastosHandler(registro service.RegistroService, recurrente service.RecurrenteService, estado service.EstadoService) *GastosHandler {
	return &GastosHandler{registro: registro, recurrente: recurrente, estado: estado}
}

// CrearGasto maneja POST /v1/gastos.
func (h *GastosHandler) CrearGasto(c *gin.Context) {
	var req dto.CrearGastoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	gasto, err := h.registro.CrearGasto(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": gasto.ID.String()})
}

// CrearIngreso maneja POST /v1/ingresos.
func (h *GastosHandler) CrearIngreso(c *gin.Context) {
	var req dto.CrearIngresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ingreso, err := h.registro.CrearIngreso(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": ingreso.ID.String()})
}

// ListarGastos maneja GET /v1/gastos.
func (h *GastosHandler) ListarGastos(c *gin.Context) {
	desde, hasta, ok := rangoFechas(c)
	if !ok {
		return
	}
	gastos, err := h.registro.ListarGastos(c.Request.Context(), desde, hasta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error consultando gastos"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gastos, "total": len(gastos)})
}

// ListarIngresos maneja GET /v1/ingresos.
func (h *GastosHandler) ListarIngresos(c *gin.Context) {
	desde, hasta, ok := rangoFechas(c)
	if !ok {
		return
	}
	ingresos, err := h.registro.ListarIngresos(c.Request.Context(), desde, hasta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error consultando ingresos"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ingresos, "total": len(ingresos)})
}

// rangoFechas lee los parámetros desde/hasta opcionales del query string.
func rangoFechas(c *gin.Context) (*time.Time, *time.Time, bool) {
	d, h := c.Query("desde"), c.Query("hasta")
	desde, err := parseFechaPtr(&d)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("desde invalido"))
		return nil, nil, false
	}
	hasta, err := parseFechaPtr(&h)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("hasta invalido"))
		return nil, nil, false
	}
	return desde, hasta, true
}

// CrearRecurrente maneja POST /v1/gastos-recurrentes.
func (h *GastosHandler) CrearRecurrente(c *gin.Context) {
	var req dto.CrearGastoRecurrenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	def, err := h.registro.CrearRecurrente(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, recurrenteResponse(def))
}

// ListarRecurrentes maneja GET /v1/gastos-recurrentes.
func (h *GastosHandler) ListarRecurrentes(c *gin.Context) {
	defs, err := h.registro.ListarRecurrentes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error consultando gastos recurrentes"))
		return
	}
	resp := make([]dto.GastoRecurrenteResponse, 0, len(defs))
	for i := range defs {
		resp = append(resp, recurrenteResponse(&defs[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": len(resp)})
}

// CambiarEstadoRecurrente maneja PUT /v1/gastos-recurrentes/:id/estado
// (pausar / reactivar).
func (h *GastosHandler) CambiarEstadoRecurrente(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.CambiarEstadoRecurrenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	def, err := h.recurrente.CambiarEstado(c.Request.Context(), id, req.Estado)
	switch {
	case errors.Is(err, service.ErrEstadoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	case err != nil:
		c.JSON(http.StatusNotFound, apierror.New("Gasto recurrente no encontrado"))
		return
	}
	c.JSON(http.StatusOK, recurrenteResponse(def))
}

// Materializar maneja POST /v1/gastos-recurrentes/:id/materializar.
// Genera todos los ciclos atrasados hasta hoy (catch-up).
func (h *GastosHandler) Materializar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	generados, err := h.recurrente.Materializar(c.Request.Context(), id, time.Now())
	switch {
	case errors.Is(err, service.ErrCursorDesactualizado):
		c.JSON(http.StatusConflict, apierror.New("Otra materialización está en curso"))
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp := make([]dto.GastoCausadoResponse, 0, len(generados))
	for i := range generados {
		resp = append(resp, causadoResponse(&generados[i]))
	}
	c.JSON(http.StatusOK, gin.H{"generados": len(resp), "data": resp})
}

// PagarCausado maneja PUT /v1/gastos-causados/:id/pagar.
func (h *GastosHandler) PagarCausado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.PagarCausadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fechaPago, err := parseFecha(req.FechaPago)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha_pago invalida"))
		return
	}

	causado, err := h.estado.PagarCausado(c.Request.Context(), id, fechaPago, req.MetodoPago, req.ComprobanteRef)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Gasto causado no encontrado"))
		return
	}
	c.JSON(http.StatusOK, causadoResponse(causado))
}

func recurrenteResponse(def *model.GastoRecurrente) dto.GastoRecurrenteResponse {
	return dto.GastoRecurrenteResponse{
		ID:          def.ID.String(),
		Descripcion: def.Descripcion,
		Frecuencia:  def.Frecuencia,
		FechaInicio: formatFecha(def.FechaInicio),
		Monto:       def.Monto,
		Moneda:      def.Moneda,
		Categoria:   def.Categoria,
		Estado:      def.Estado,
		ProximoPago: formatFecha(def.ProximoPago),
	}
}

func causadoResponse(c *model.GastoCausado) dto.GastoCausadoResponse {
	resp := dto.GastoCausadoResponse{
		ID:               c.ID.String(),
		Descripcion:      c.Descripcion,
		FechaVencimiento: formatFecha(c.FechaVencimiento),
		Monto:            c.Monto,
		Moneda:           c.Moneda,
		Categoria:        c.Categoria,
		Estado:           c.Estado,
		FechaPago:        formatFechaPtr(c.FechaPago),
		EsRecurrente:     c.EsRecurrente,
	}
	if c.RecurrenteID != nil {
		id := c.RecurrenteID.String()
		resp.RecurrenteID = &id
	}
	return resp
}
