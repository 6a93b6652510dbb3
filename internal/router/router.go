package router

import (
	"time"

	"flujo/internal/config"
	"flujo/internal/handler"
	"flujo/internal/middleware"
	"flujo/internal/moneda"
	"flujo/internal/repository"
	"flujo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, tasas moneda.FuenteTasas) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	proyectoRepo := repository.NewProyectoRepository(db)
	pagoRepo := repository.NewPagoRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	ingresoRepo := repository.NewIngresoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	proyectoSvc := service.NewProyectoService(proyectoRepo)
	cronogramaSvc := service.NewCronogramaService(proyectoRepo, pagoRepo)
	estadoSvc := service.NewEstadoService(pagoRepo, gastoRepo)
	recurrenteSvc := service.NewRecurrenteService(gastoRepo)
	registroSvc := service.NewRegistroService(ingresoRepo, gastoRepo)
	flujoSvc := service.NewFlujoCajaService(pagoRepo, gastoRepo, ingresoRepo, tasas)
	metricasSvc := service.NewMetricasService(flujoSvc, pagoRepo, tasas)

	// ── Handlers ─────────────────────────────────────────────────────────────
	proyectosH := handler.NewProyectosHandler(proyectoSvc, cronogramaSvc, cfg.HorizonteMeses)
	pagosH := handler.NewPagosHandler(estadoSvc, pagoRepo, flujoSvc)
	gastosH := handler.NewGastosHandler(registroSvc, recurrenteSvc, estadoSvc)
	flujoH := handler.NewFlujoHandler(flujoSvc, metricasSvc)

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		v1.POST("/clientes", proyectosH.CrearCliente)
		v1.POST("/proyectos", proyectosH.CrearProyecto)
		v1.GET("/proyectos", proyectosH.ListarProyectos)
		v1.POST("/proyectos/:id/cronograma", proyectosH.GenerarCronograma)
		v1.POST("/cronogramas/preview", proyectosH.PreviewRecurrente)

		v1.GET("/pagos", pagosH.Listar)
		v1.PUT("/pagos/:id/estado", pagosH.ActualizarEstado)

		v1.POST("/ingresos", gastosH.CrearIngreso)
		v1.GET("/ingresos", gastosH.ListarIngresos)
		v1.POST("/gastos", gastosH.CrearGasto)
		v1.GET("/gastos", gastosH.ListarGastos)

		v1.POST("/gastos-recurrentes", gastosH.CrearRecurrente)
		v1.GET("/gastos-recurrentes", gastosH.ListarRecurrentes)
		v1.PUT("/gastos-recurrentes/:id/estado", gastosH.CambiarEstadoRecurrente)
		v1.POST("/gastos-recurrentes/:id/materializar", gastosH.Materializar)
		v1.PUT("/gastos-causados/:id/pagar", gastosH.PagarCausado)

		v1.GET("/flujo-caja", flujoH.Flujo)
		v1.GET("/flujo-caja/metricas", flujoH.Metricas)
	}

	return r
}
