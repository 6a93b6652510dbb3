package handler

import (
	"errors"
	"net/http"

	"flujo/internal/apierror"
	"flujo/internal/dto"
	"flujo/internal/model"
	"flujo/internal/repository"
	"flujo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PagosHandler struct {
	estado   service.EstadoService
	pagoRepo repository.PagoRepository
	flujo    service.FlujoCajaService
}

func NewPagosHandler(estado service.EstadoService, pagoRepo repository.PagoRepository, flujo service.FlujoCajaService) *PagosHandler {
	return &PagosHandler{estado: estado, pagoRepo: pagoRepo, flujo: flujo}
}

// Listar maneja GET /v1/pagos con filtros por proyecto, cliente, estado y rango
// de fechas programadas.
func (h *PagosHandler) Listar(c *gin.Context) {
	var filtro dto.PagoFilter
	if !bindQueryAndValidate(c, &filtro) {
		return
	}

	repoFiltro, err := filtroRepo(filtro)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	pagos, err := h.pagoRepo.List(c.Request.Context(), repoFiltro)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error consultando pagos"))
		return
	}

	resp := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		resp = append(resp, pagoResponse(&pagos[i]))
	}
	cuerpo := gin.H{"data": resp, "total": len(resp)}

	// vencidos y próximos mezclan COP y USD: el total convertido se pide con ?moneda=
	if filtro.Moneda != "" {
		total, err := h.flujo.TotalEnMoneda(c.Request.Context(), pagos, filtro.Moneda)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, apierror.New("Tasa de cambio no disponible, intente más tarde"))
			return
		}
		cuerpo["moneda"] = filtro.Moneda
		cuerpo["total_monto"] = total
	}
	c.JSON(http.StatusOK, cuerpo)
}

// ActualizarEstado maneja PUT /v1/pagos/:id/estado.
func (h *PagosHandler) ActualizarEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de pago invalido"))
		return
	}
	var req dto.ActualizarEstadoPagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	fechaPago, err := parseFechaPtr(req.FechaPago)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha_pago invalida"))
		return
	}

	pago, err := h.estado.ActualizarEstadoPago(c.Request.Context(), id, req.Estado, fechaPago, req.NumeroFactura)
	switch {
	case errors.Is(err, service.ErrEstadoInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	case err != nil:
		c.JSON(http.StatusNotFound, apierror.New("Pago no encontrado"))
		return
	}
	c.JSON(http.StatusOK, pagoResponse(pago))
}

func filtroRepo(f dto.PagoFilter) (repository.PagoFilter, error) {
	var out repository.PagoFilter
	if f.ProyectoID != "" {
		id, err := uuid.Parse(f.ProyectoID)
		if err != nil {
			return out, errors.New("proyecto_id invalido")
		}
		out.ProyectoID = &id
	}
	if f.ClienteID != "" {
		id, err := uuid.Parse(f.ClienteID)
		if err != nil {
			return out, errors.New("cliente_id invalido")
		}
		out.ClienteID = &id
	}
	out.Estado = f.Estado
	var err error
	if out.Desde, err = parseFechaPtr(&f.Desde); err != nil {
		return out, errors.New("desde invalido")
	}
	if out.Hasta, err = parseFechaPtr(&f.Hasta); err != nil {
		return out, errors.New("hasta invalido")
	}
	return out, nil
}

func pagoResponse(p *model.Pago) dto.PagoResponse {
	return dto.PagoResponse{
		ID:            p.ID.String(),
		ProyectoID:    p.ProyectoID.String(),
		ClienteID:     p.ClienteID.String(),
		Monto:         p.Monto,
		Moneda:        p.Moneda,
		Fecha:         formatFecha(p.Fecha),
		FechaPago:     formatFechaPtr(p.FechaPago),
		Estado:        p.Estado,
		Tipo:          p.Tipo,
		NumeroCuota:   p.NumeroCuota,
		NumeroFactura: p.NumeroFactura,
	}
}
