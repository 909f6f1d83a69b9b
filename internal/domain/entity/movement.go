package entity

import "time"

// Tipos de movimiento de inventario.
const (
	MovementKindInbound    = "INBOUND"    // entrada
	MovementKindOutbound   = "OUTBOUND"   // salida
	MovementKindTransfer   = "TRANSFER"   // traslado entre ubicaciones
	MovementKindAdjustment = "ADJUSTMENT" // ajuste manual
)

// Movement es una entrada inmutable del ledger. Se crea una sola vez al
// confirmar la transacción; nunca se actualiza ni se borra — las correcciones
// son movimientos compensatorios nuevos.
//
// Quantity es el delta con signo sobre la ubicación afectada. Un TRANSFER se
// registra como dos entradas pareadas con el mismo TransactionID: el débito
// (−q) en origen y el crédito (+q) en destino, ambas con origen y destino
// informados para auditoría.
type Movement struct {
	ID               string
	TransactionID    string
	Kind             string
	SKUID            string
	SourceLocationID string // vacío = NULL (entradas y ajustes)
	DestLocationID   string // vacío = NULL (salidas)
	Quantity         int64
	Note             string
	Seq              int64 // orden de commit en el ledger, asignado al persistir
	CreatedAt        time.Time
	CreatedBy        string
}

// AffectedLocationID devuelve la ubicación cuyo stock altera esta entrada.
// Sumar Quantity por ubicación afectada reproduce exactamente la proyección.
func (m *Movement) AffectedLocationID() string {
	switch m.Kind {
	case MovementKindOutbound:
		return m.SourceLocationID
	case MovementKindInbound, MovementKindAdjustment:
		return m.DestLocationID
	case MovementKindTransfer:
		if m.Quantity < 0 {
			return m.SourceLocationID
		}
		return m.DestLocationID
	}
	return ""
}
