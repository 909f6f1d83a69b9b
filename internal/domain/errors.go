package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// El motor de movimientos los devuelve tal cual; la capa HTTP los traduce a
// códigos de estado. Solo ErrBusy es reintentable por el caller.
var (
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidQuantity   = errors.New("cantidad inválida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrSameLocation      = errors.New("ubicación origen y destino son la misma")
	ErrBusy              = errors.New("fila de stock ocupada, reintente")
	ErrNotFound          = errors.New("recurso no encontrado")
)
