package model

// Currency codes. The two currencies the business operates in.
const (
	MonedaCOP = "COP"
	MonedaUSD = "USD"
)

// Payment status values — stored and served verbatim, casing included.
const (
	PagoPendiente = "Pendiente"
	PagoPagado    = "Pagado"
	PagoVencido   = "Vencido"
)

// Payment type values.
const (
	TipoImplementacion = "Implementación"
	TipoRecurrente     = "Recurrente"
)

// Payment plan types.
const (
	PlanFeeUnico    = "Fee único"
	PlanFeeCuotas   = "Fee por cuotas"
	PlanSuscripcion = "Suscripción periódica"
	PlanMixto       = "Mixto"
)

// Frequency values shared by payment plans and recurring expenses.
// 'Diaria' is only valid for recurring expenses.
const (
	FrecuenciaDiaria     = "Diaria"
	FrecuenciaSemanal    = "Semanal"
	FrecuenciaQuincenal  = "Quincenal"
	FrecuenciaMensual    = "Mensual"
	FrecuenciaBimensual  = "Bimensual"
	FrecuenciaTrimestral = "Trimestral"
	FrecuenciaSemestral  = "Semestral"
	FrecuenciaAnual      = "Anual"
)

// Recurring expense definition status.
const (
	RecurrenteActivo  = "Activo"
	RecurrentePausado = "Pausado"
)

// Accrued expense status — lower-case mirror of the payment statuses.
const (
	CausadoPendiente = "pendiente"
	CausadoPagado    = "pagado"
	CausadoVencido   = "vencido"
)

// Project status.
const (
	ProyectoActivo     = "Activo"
	ProyectoPausado    = "Pausado"
	ProyectoFinalizado = "Finalizado"
	ProyectoCancelado  = "Cancelado"
)
