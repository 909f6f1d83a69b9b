package inventory

import (
	"context"

	"github.com/tu-usuario/stock-engine/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo atómica,
// pasando repositorios atados a esa transacción. Si fn devuelve error no
// queda ningún escrito durable (all-or-nothing); si devuelve nil se confirma.
// Garantiza la atomicidad del motor de movimientos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		levelRepo repository.StockLevelRepository,
	) error) error
}
