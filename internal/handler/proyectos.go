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

type ProyectosHandler struct {
	svc        service.ProyectoService
	cronograma service.CronogramaService
	horizonte  int
}

func NewProyectosHandler(svc service.ProyectoService, cronograma service.CronogramaService, horizonteMeses int) *ProyectosHandler {
	return &ProyectosHandler{svc: svc, cronograma: cronograma, horizonte: horizonteMeses}
}

// CrearCliente maneja POST /v1/clientes.
func (h *ProyectosHandler) CrearCliente(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	cliente, err := h.svc.CrearCliente(c.Request.Context(), req.Nombre)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, dto.ClienteResponse{
		ID:     cliente.ID.String(),
		Nombre: cliente.Nombre,
		Estado: cliente.Estado,
	})
}

// CrearProyecto maneja POST /v1/proyectos. El plan de pago es opcional y puede
// configurarse junto con el proyecto.
func (h *ProyectosHandler) CrearProyecto(c *gin.Context) {
	var req dto.CrearProyectoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	proyecto, err := h.svc.CrearProyecto(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, proyectoResponse(proyecto))
}

// ListarProyectos maneja GET /v1/proyectos.
func (h *ProyectosHandler) ListarProyectos(c *gin.Context) {
	proyectos, err := h.svc.ListarProyectos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error consultando proyectos"))
		return
	}
	resp := make([]dto.ProyectoResponse, 0, len(proyectos))
	for i := range proyectos {
		resp = append(resp, proyectoResponse(&proyectos[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp, "total": len(resp)})
}

// GenerarCronograma maneja POST /v1/proyectos/:id/cronograma.
// Es idempotente: re-ejecutar no duplica pagos, solo extiende el horizonte.
func (h *ProyectosHandler) GenerarCronograma(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID de proyecto invalido"))
		return
	}
	var req dto.GenerarCronogramaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	meses := req.Meses
	if meses == 0 {
		meses = h.horizonte
	}

	pagos, err := h.cronograma.GenerarPagos(c.Request.Context(), id, meses, time.Now())
	switch {
	case errors.Is(err, service.ErrPlanInvalido):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	case errors.Is(err, service.ErrCursorDesactualizado):
		c.JSON(http.StatusConflict, apierror.New("Otra generación está en curso para este proyecto"))
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}

	resp := dto.CronogramaResponse{Generados: len(pagos)}
	resp.Pagos = make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		resp.Pagos = append(resp.Pagos, pagoResponse(&pagos[i]))
	}
	c.JSON(http.StatusCreated, resp)
}

// PreviewRecurrente maneja POST /v1/cronogramas/preview. Proyección pura: no
// persiste nada.
func (h *ProyectosHandler) PreviewRecurrente(c *gin.Context) {
	var req dto.PreviewRecurrenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	inicio, err := parseFecha(req.FechaInicio)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("fecha_inicio invalida"))
		return
	}
	cantidad := req.Cantidad
	if cantidad == 0 {
		cantidad = 12
	}

	ocurrencias, err := h.cronograma.PreviewRecurrente(inicio, req.Frecuencia, req.Monto, req.Moneda, cantidad)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return
	}

	resp := make([]dto.OcurrenciaPreviewResponse, 0, len(ocurrencias))
	for _, o := range ocurrencias {
		resp = append(resp, dto.OcurrenciaPreviewResponse{
			Fecha: formatFecha(o.Fecha),
			Monto: o.Monto,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func proyectoResponse(p *model.Proyecto) dto.ProyectoResponse {
	resp := dto.ProyectoResponse{
		ID:          p.ID.String(),
		ClienteID:   p.ClienteID.String(),
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		FechaInicio: formatFecha(p.FechaInicio),
		Estado:      p.Estado,
	}
	if p.Plan != nil {
		resp.PlanTipo = &p.Plan.Tipo
	}
	return resp
}
