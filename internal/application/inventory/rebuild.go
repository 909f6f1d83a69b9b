package inventory

import (
	"context"
	"sort"

	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
	"github.com/tu-usuario/stock-engine/pkg/logger"
)

// RebuildUseCase reconstruye o audita la proyección de StockLevel de un SKU
// reproduciendo su ledger completo. El ledger es la fuente de verdad: tras un
// Rebuild, cada fila queda exactamente en la suma de los deltas confirmados.
type RebuildUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewRebuildUseCase construye el caso de uso.
func NewRebuildUseCase(txRunner TxRunner, log *logger.Logger) *RebuildUseCase {
	return &RebuildUseCase{txRunner: txRunner, log: log}
}

// Discrepancy es una fila cuya proyección no coincide con el replay.
type Discrepancy struct {
	LocationID string
	Projected  int64
	Replayed   int64
}

// Rebuild reproduce el ledger del SKU dentro de una transacción y deja la
// proyección en el resultado exacto del replay. Bloquea las filas existentes
// del SKU (orden ascendente de ubicación, el mismo del coordinador) para no
// pisar operaciones en vuelo.
func (uc *RebuildUseCase) Rebuild(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	if skuID == "" {
		return nil, domain.ErrInvalidInput
	}
	var rebuilt []*entity.StockLevel
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		levels, err := levelRepo.ListBySKUForUpdate(ctx, skuID)
		if err != nil {
			return err
		}
		sums, err := replaySums(ctx, movRepo, skuID)
		if err != nil {
			return err
		}

		byLocation := make(map[string]*entity.StockLevel, len(levels))
		for _, lv := range levels {
			byLocation[lv.LocationID] = lv
		}
		// Ubicaciones con movimientos pero sin fila materializada; se
		// bloquean en orden ascendente, como todo lo demás.
		var missing []string
		for loc := range sums {
			if _, ok := byLocation[loc]; !ok {
				missing = append(missing, loc)
			}
		}
		sort.Strings(missing)
		for _, loc := range missing {
			lv, err := levelRepo.GetForUpdate(ctx, skuID, loc)
			if err != nil {
				return err
			}
			byLocation[loc] = lv
			levels = append(levels, lv)
		}

		rebuilt = rebuilt[:0]
		for _, lv := range levels {
			lv.Quantity = sums[lv.LocationID]
			if err := levelRepo.Upsert(ctx, lv); err != nil {
				return err
			}
			rebuilt = append(rebuilt, lv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("sku_id", skuID).Int("locations", len(rebuilt)).Msg("proyección reconstruida")
	return rebuilt, nil
}

// Verify compara la proyección actual contra el replay del ledger sin
// escribir nada. Devuelve las discrepancias (vacío = proyección consistente).
func (uc *RebuildUseCase) Verify(ctx context.Context, skuID string) ([]Discrepancy, error) {
	if skuID == "" {
		return nil, domain.ErrInvalidInput
	}
	var diffs []Discrepancy
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		levels, err := levelRepo.ListBySKU(ctx, skuID)
		if err != nil {
			return err
		}
		sums, err := replaySums(ctx, movRepo, skuID)
		if err != nil {
			return err
		}
		seen := make(map[string]bool, len(levels))
		for _, lv := range levels {
			seen[lv.LocationID] = true
			if lv.Quantity != sums[lv.LocationID] {
				diffs = append(diffs, Discrepancy{LocationID: lv.LocationID, Projected: lv.Quantity, Replayed: sums[lv.LocationID]})
			}
		}
		for loc, sum := range sums {
			if !seen[loc] && sum != 0 {
				diffs = append(diffs, Discrepancy{LocationID: loc, Projected: 0, Replayed: sum})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return diffs, nil
}

// replaySums suma los deltas confirmados por ubicación afectada, en orden de
// commit ascendente.
func replaySums(ctx context.Context, movRepo repository.MovementRepository, skuID string) (map[string]int64, error) {
	movs, err := movRepo.ReplayBySKU(ctx, skuID)
	if err != nil {
		return nil, err
	}
	sums := make(map[string]int64)
	for _, m := range movs {
		sums[m.AffectedLocationID()] += m.Quantity
	}
	return sums, nil
}
