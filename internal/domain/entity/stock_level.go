package entity

import "time"

// StockLevel representa la cantidad actual de un SKU en una ubicación
// (proyección materializada del ledger de movimientos).
// La fila se crea implícitamente, con cantidad 0, en el primer movimiento que
// toca el par (SKU, ubicación); nunca se borra y nunca queda negativa.
type StockLevel struct {
	SKUID      string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}
