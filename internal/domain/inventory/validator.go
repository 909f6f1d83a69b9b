package inventory

import (
	"sort"

	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
)

// Operation es una solicitud de movimiento normalizada.
// Quantity es estrictamente positiva en INBOUND/OUTBOUND/TRANSFER; en
// ADJUSTMENT es el delta con signo (nunca cero) y la ubicación va en
// DestLocationID.
type Operation struct {
	Kind             string
	SKUID            string
	SourceLocationID string
	DestLocationID   string
	Quantity         int64
	Note             string
}

// Entry es una entrada de ledger implicada por una operación aceptada.
// Quantity lleva el signo del delta sobre la ubicación afectada.
type Entry struct {
	SourceLocationID string
	DestLocationID   string
	Quantity         int64
}

// Delta es el cambio neto sobre la proyección de una ubicación.
type Delta struct {
	LocationID string
	Delta      int64
}

// Effect describe el efecto completo de una operación aceptada: las entradas
// de ledger a insertar y los deltas a aplicar sobre StockLevel.
type Effect struct {
	Entries []Entry
	Deltas  []Delta
}

// Check valida la operación sin mirar el stock actual: tipo conocido,
// identificadores presentes, cantidad con el signo correcto. Una cantidad o
// delta de cero siempre se rechaza: no es un no-op, para no ensuciar el
// ledger con entradas sin efecto.
func (op Operation) Check() error {
	switch op.Kind {
	case entity.MovementKindInbound:
		if op.SKUID == "" || op.DestLocationID == "" {
			return domain.ErrInvalidInput
		}
		if op.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	case entity.MovementKindOutbound:
		if op.SKUID == "" || op.SourceLocationID == "" {
			return domain.ErrInvalidInput
		}
		if op.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	case entity.MovementKindTransfer:
		if op.SKUID == "" || op.SourceLocationID == "" || op.DestLocationID == "" {
			return domain.ErrInvalidInput
		}
		if op.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if op.SourceLocationID == op.DestLocationID {
			return domain.ErrSameLocation
		}
	case entity.MovementKindAdjustment:
		if op.SKUID == "" || op.DestLocationID == "" {
			return domain.ErrInvalidInput
		}
		if op.Quantity == 0 {
			return domain.ErrInvalidQuantity
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}

// Locations devuelve las ubicaciones cuyo StockLevel toca la operación,
// ordenadas ascendentemente. El coordinador bloquea las filas en este orden
// para que dos transferencias cruzadas no puedan formar una espera circular.
func (op Operation) Locations() []string {
	switch op.Kind {
	case entity.MovementKindInbound, entity.MovementKindAdjustment:
		return []string{op.DestLocationID}
	case entity.MovementKindOutbound:
		return []string{op.SourceLocationID}
	case entity.MovementKindTransfer:
		locs := []string{op.SourceLocationID, op.DestLocationID}
		sort.Strings(locs)
		return locs
	}
	return nil
}

// Decide es la decisión pura del validador: dada la operación y las
// cantidades actuales por ubicación (leídas bajo bloqueo por el coordinador),
// devuelve el efecto implicado o el motivo de rechazo. Sin I/O ni efectos.
func Decide(op Operation, current map[string]int64) (*Effect, error) {
	if err := op.Check(); err != nil {
		return nil, err
	}
	switch op.Kind {
	case entity.MovementKindInbound:
		return &Effect{
			Entries: []Entry{{DestLocationID: op.DestLocationID, Quantity: op.Quantity}},
			Deltas:  []Delta{{LocationID: op.DestLocationID, Delta: op.Quantity}},
		}, nil

	case entity.MovementKindOutbound:
		if current[op.SourceLocationID] < op.Quantity {
			return nil, domain.ErrInsufficientStock
		}
		return &Effect{
			Entries: []Entry{{SourceLocationID: op.SourceLocationID, Quantity: -op.Quantity}},
			Deltas:  []Delta{{LocationID: op.SourceLocationID, Delta: -op.Quantity}},
		}, nil

	case entity.MovementKindTransfer:
		if current[op.SourceLocationID] < op.Quantity {
			return nil, domain.ErrInsufficientStock
		}
		// Dos entradas pareadas; el efecto neto sobre el sistema es cero.
		return &Effect{
			Entries: []Entry{
				{SourceLocationID: op.SourceLocationID, DestLocationID: op.DestLocationID, Quantity: -op.Quantity},
				{SourceLocationID: op.SourceLocationID, DestLocationID: op.DestLocationID, Quantity: op.Quantity},
			},
			Deltas: []Delta{
				{LocationID: op.SourceLocationID, Delta: -op.Quantity},
				{LocationID: op.DestLocationID, Delta: op.Quantity},
			},
		}, nil

	case entity.MovementKindAdjustment:
		if current[op.DestLocationID]+op.Quantity < 0 {
			return nil, domain.ErrInsufficientStock
		}
		return &Effect{
			Entries: []Entry{{DestLocationID: op.DestLocationID, Quantity: op.Quantity}},
			Deltas:  []Delta{{LocationID: op.DestLocationID, Delta: op.Quantity}},
		}, nil
	}
	return nil, domain.ErrInvalidInput
}
