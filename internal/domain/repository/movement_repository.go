package repository

import (
	"context"

	"github.com/tu-usuario/stock-engine/internal/domain/entity"
)

// MovementRepository es el ledger: almacenamiento append-only de movimientos.
// Create es la única mutación; no existe API de update ni delete. Una vez
// confirmada la transacción, la entrada es historia permanente.
type MovementRepository interface {
	// Create persiste una entrada. Asigna ID si viene vacío y deja en
	// m.Seq el orden de commit dentro del ledger.
	Create(ctx context.Context, m *entity.Movement) error

	// GetByID devuelve la entrada o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)

	// ListBySKU lista el historial de un SKU ordenado por commit
	// (ascendente o descendente) con paginación.
	ListBySKU(ctx context.Context, skuID string, asc bool, limit, offset int) ([]*entity.Movement, error)

	// ListBySKUAndLocation lista el historial de un SKU restringido a las
	// entradas que tocan una ubicación (como origen o destino).
	ListBySKUAndLocation(ctx context.Context, skuID, locationID string, asc bool, limit, offset int) ([]*entity.Movement, error)

	// ReplayBySKU devuelve todas las entradas de un SKU en orden de
	// commit ascendente, para reconstruir la proyección.
	ReplayBySKU(ctx context.Context, skuID string) ([]*entity.Movement, error)
}
