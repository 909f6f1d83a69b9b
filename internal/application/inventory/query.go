package inventory

import (
	"context"

	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
)

// QueryUseCase lecturas de stock e historial para reporting y UI.
// Lee fuera de transacción; la consistencia por fila la da el commit order
// del coordinador.
type QueryUseCase struct {
	movRepo   repository.MovementRepository
	levelRepo repository.StockLevelRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(movRepo repository.MovementRepository, levelRepo repository.StockLevelRepository) *QueryUseCase {
	return &QueryUseCase{movRepo: movRepo, levelRepo: levelRepo}
}

// GetQuantity devuelve la cantidad actual de un SKU en una ubicación.
// 0 si el par nunca tuvo movimientos (no es error).
func (uc *QueryUseCase) GetQuantity(ctx context.Context, skuID, locationID string) (int64, error) {
	if skuID == "" || locationID == "" {
		return 0, domain.ErrInvalidInput
	}
	level, err := uc.levelRepo.Get(ctx, skuID, locationID)
	if err != nil {
		return 0, err
	}
	return level.Quantity, nil
}

// ListLevels devuelve las filas de stock de un SKU en todas sus ubicaciones.
func (uc *QueryUseCase) ListLevels(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	if skuID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.levelRepo.ListBySKU(ctx, skuID)
}

// HistoryFilter filtro del historial de movimientos.
type HistoryFilter struct {
	SKUID      string
	LocationID string // vacío = todas las ubicaciones
	Ascending  bool
	Limit      int
	Offset     int
}

// History devuelve el historial de movimientos de un SKU (opcionalmente
// restringido a una ubicación) en orden de commit.
func (uc *QueryUseCase) History(ctx context.Context, f HistoryFilter) ([]*entity.Movement, error) {
	if f.SKUID == "" {
		return nil, domain.ErrInvalidInput
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.LocationID != "" {
		return uc.movRepo.ListBySKUAndLocation(ctx, f.SKUID, f.LocationID, f.Ascending, f.Limit, f.Offset)
	}
	return uc.movRepo.ListBySKU(ctx, f.SKUID, f.Ascending, f.Limit, f.Offset)
}

// GetMovement devuelve una entrada del ledger por id.
func (uc *QueryUseCase) GetMovement(ctx context.Context, id string) (*entity.Movement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	mov, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}
