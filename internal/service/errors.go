package service

import "errors"

// Core error taxonomy. Handlers map these onto HTTP statuses; jobs decide
// retry behavior on them.
var (
	// ErrPlanInvalido: malformed plan (missing sub-plan fields for the declared
	// type, day-of-charge out of range). Rejected outright, never retried.
	ErrPlanInvalido = errors.New("configuracion de plan invalida")

	// ErrCursorDesactualizado: a concurrent job already advanced a generation
	// cursor. The losing run aborts; the next scheduled cycle retries.
	ErrCursorDesactualizado = errors.New("cursor avanzado por otra ejecucion")

	// ErrEstadoInvalido: a status transition the state machine does not allow.
	ErrEstadoInvalido = errors.New("transicion de estado invalida")
)
