package handler

import (
	"errors"
	"net/http"
	"time"

	"flujo/internal/apierror"
	"flujo/internal/dto"
	"flujo/internal/moneda"
	"flujo/internal/service"

	"github.com/gin-gonic/gin"
)

type FlujoHandler struct {
	flujo    service.FlujoCajaService
	metricas service.MetricasService
}

func NewFlujoHandler(flujo service.FlujoCajaService, metricas service.MetricasService) *FlujoHandler {
	return &FlujoHandler{flujo: flujo, metricas: metricas}
}

// Flujo maneja GET /v1/flujo-caja: movimientos realizados convertidos a una
// moneda, con saldo acumulado.
func (h *FlujoHandler) Flujo(c *gin.Context) {
	var filtro dto.FlujoCajaFilter
	if !bindQueryAndValidate(c, &filtro) {
		return
	}
	desde, err := parseFechaPtr(&filtro.Desde)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("desde invalido"))
		return
	}
	hasta, err := parseFechaPtr(&filtro.Hasta)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("hasta invalido"))
		return
	}

	flujo, err := h.flujo.Flujo(c.Request.Context(), filtro.Moneda, desde, hasta, time.Now())
	switch {
	case errors.Is(err, moneda.ErrTasaNoDisponible):
		c.JSON(http.StatusServiceUnavailable, apierror.New("Tasa de cambio no disponible, intente más tarde"))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, apierror.New("Error calculando el flujo de caja"))
		return
	}
	c.JSON(http.StatusOK, flujo)
}

// Metricas maneja GET /v1/flujo-caja/metricas: burn rate, runway y fecha
// estimada de quiebre de caja.
func (h *FlujoHandler) Metricas(c *gin.Context) {
	var filtro dto.MetricasFilter
	if !bindQueryAndValidate(c, &filtro) {
		return
	}

	m, err := h.metricas.Calcular(c.Request.Context(), filtro.Moneda, time.Now())
	switch {
	case errors.Is(err, moneda.ErrTasaNoDisponible):
		c.JSON(http.StatusServiceUnavailable, apierror.New("Tasa de cambio no disponible, intente más tarde"))
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, apierror.New("Error calculando métricas"))
		return
	}
	c.JSON(http.StatusOK, m)
}
