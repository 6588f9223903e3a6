package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInvalidState        = errors.New("transición de estado no permitida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrInvalidDiscount     = errors.New("el descuento excede el subtotal")
	ErrInsufficientPayment = errors.New("el monto recibido no cubre el total")
	// ErrTransientConflict se devuelve cuando la transacción agotó sus reintentos
	// por bloqueos o serialización; el llamador puede reintentar.
	ErrTransientConflict = errors.New("conflicto transitorio, intente de nuevo")
)
