package repository

import (
	"context"

	"github.com/tu-usuario/stock-engine/internal/domain/entity"
)

// StockLevelRepository mantiene la proyección de cantidades actuales.
// Solo el coordinador de transacciones la muta, dentro de la misma
// transacción que el append al ledger.
type StockLevelRepository interface {
	// Get devuelve la fila actual; si no existe, una fila con cantidad 0
	// (no es error: toda combinación (SKU, ubicación) empieza en cero).
	Get(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error)

	// GetForUpdate crea la fila con cantidad 0 si no existe y la bloquea
	// en exclusiva hasta el fin de la transacción. La espera por el
	// bloqueo está acotada; al agotarse devuelve domain.ErrBusy.
	GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error)

	// Upsert escribe la cantidad absoluta de la fila.
	Upsert(ctx context.Context, level *entity.StockLevel) error

	// ListBySKU devuelve todas las filas de un SKU ordenadas por ubicación.
	ListBySKU(ctx context.Context, skuID string) ([]*entity.StockLevel, error)

	// ListBySKUForUpdate es ListBySKU bloqueando las filas (en orden de
	// ubicación ascendente, el mismo orden que usa el coordinador).
	ListBySKUForUpdate(ctx context.Context, skuID string) ([]*entity.StockLevel, error)
}
