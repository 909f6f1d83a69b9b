package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	dominventory "github.com/tu-usuario/stock-engine/internal/domain/inventory"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
	"github.com/tu-usuario/stock-engine/pkg/logger"
)

// Coordinator es el único punto de entrada para mutar stock. Por cada
// solicitud abre una unidad de trabajo, bloquea las filas de StockLevel
// afectadas en orden determinista (ubicación menor primero), invoca el
// validador con las cantidades recién leídas y, si acepta, inserta las
// entradas de ledger y actualiza la proyección en la misma transacción.
// En rechazo no queda ningún escrito durable. No reintenta: los reintentos
// (solo ante ErrBusy) son responsabilidad del caller.
type Coordinator struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewCoordinator construye el coordinador.
func NewCoordinator(txRunner TxRunner, log *logger.Logger) *Coordinator {
	return &Coordinator{txRunner: txRunner, log: log}
}

// InboundInput recepción de mercancía: acredita la ubicación destino.
type InboundInput struct {
	SKUID          string
	DestLocationID string
	Quantity       int64
	Note           string
}

// OutboundInput salida de mercancía: debita la ubicación origen.
type OutboundInput struct {
	SKUID            string
	SourceLocationID string
	Quantity         int64
	Note             string
}

// TransferInput traslado entre ubicaciones: debita origen y acredita destino
// como una sola unidad atómica.
type TransferInput struct {
	SKUID            string
	SourceLocationID string
	DestLocationID   string
	Quantity         int64
	Note             string
}

// AdjustmentInput ajuste manual: aplica un delta con signo (≠ 0).
type AdjustmentInput struct {
	SKUID      string
	LocationID string
	Delta      int64
	Note       string
}

// Result es el resultado de una operación confirmada: el id lógico de la
// transacción, las entradas de ledger creadas y las filas de StockLevel
// resultantes.
type Result struct {
	TransactionID string
	Movements     []*entity.Movement
	Levels        []*entity.StockLevel
}

// Inbound registra una recepción.
func (c *Coordinator) Inbound(ctx context.Context, actorID string, in InboundInput) (*Result, error) {
	return c.execute(ctx, actorID, dominventory.Operation{
		Kind:           entity.MovementKindInbound,
		SKUID:          in.SKUID,
		DestLocationID: in.DestLocationID,
		Quantity:       in.Quantity,
		Note:           in.Note,
	})
}

// Outbound registra una salida.
func (c *Coordinator) Outbound(ctx context.Context, actorID string, in OutboundInput) (*Result, error) {
	return c.execute(ctx, actorID, dominventory.Operation{
		Kind:             entity.MovementKindOutbound,
		SKUID:            in.SKUID,
		SourceLocationID: in.SourceLocationID,
		Quantity:         in.Quantity,
		Note:             in.Note,
	})
}

// Transfer registra un traslado entre ubicaciones.
func (c *Coordinator) Transfer(ctx context.Context, actorID string, in TransferInput) (*Result, error) {
	return c.execute(ctx, actorID, dominventory.Operation{
		Kind:             entity.MovementKindTransfer,
		SKUID:            in.SKUID,
		SourceLocationID: in.SourceLocationID,
		DestLocationID:   in.DestLocationID,
		Quantity:         in.Quantity,
		Note:             in.Note,
	})
}

// Adjust registra un ajuste manual.
func (c *Coordinator) Adjust(ctx context.Context, actorID string, in AdjustmentInput) (*Result, error) {
	return c.execute(ctx, actorID, dominventory.Operation{
		Kind:           entity.MovementKindAdjustment,
		SKUID:          in.SKUID,
		DestLocationID: in.LocationID,
		Quantity:       in.Delta,
		Note:           in.Note,
	})
}

// execute: RECEIVED → VALIDATING → {COMMITTED | REJECTED}.
func (c *Coordinator) execute(ctx context.Context, actorID string, op dominventory.Operation) (*Result, error) {
	// Validación estática antes de abrir la transacción: un rechazo aquí
	// no debe costar un round-trip al almacenamiento.
	if err := op.Check(); err != nil {
		operationsTotal.WithLabelValues(op.Kind, resultRejected).Inc()
		return nil, err
	}

	now := time.Now()
	txID := uuid.New().String()
	var res *Result

	err := c.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		levelRepo repository.StockLevelRepository,
	) error {
		// Bloquea las filas afectadas en orden ascendente de ubicación.
		levels := make(map[string]*entity.StockLevel, 2)
		current := make(map[string]int64, 2)
		for _, loc := range op.Locations() {
			lv, err := levelRepo.GetForUpdate(ctx, op.SKUID, loc)
			if err != nil {
				return err
			}
			levels[loc] = lv
			current[loc] = lv.Quantity
		}

		effect, err := dominventory.Decide(op, current)
		if err != nil {
			return err
		}

		res = &Result{TransactionID: txID}
		for _, d := range effect.Deltas {
			lv := levels[d.LocationID]
			lv.Quantity += d.Delta
			lv.UpdatedAt = now
			if err := levelRepo.Upsert(ctx, lv); err != nil {
				return err
			}
			res.Levels = append(res.Levels, lv)
		}
		for _, e := range effect.Entries {
			mov := &entity.Movement{
				TransactionID:    txID,
				Kind:             op.Kind,
				SKUID:            op.SKUID,
				SourceLocationID: e.SourceLocationID,
				DestLocationID:   e.DestLocationID,
				Quantity:         e.Quantity,
				Note:             op.Note,
				CreatedAt:        now,
				CreatedBy:        actorID,
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
			res.Movements = append(res.Movements, mov)
		}
		return nil
	})
	if err != nil {
		operationsTotal.WithLabelValues(op.Kind, resultLabel(err)).Inc()
		c.log.Debug().Err(err).
			Str("kind", op.Kind).
			Str("sku_id", op.SKUID).
			Msg("operación rechazada")
		return nil, err
	}

	operationsTotal.WithLabelValues(op.Kind, resultCommitted).Inc()
	c.log.Info().
		Str("kind", op.Kind).
		Str("sku_id", op.SKUID).
		Str("transaction_id", txID).
		Int("entries", len(res.Movements)).
		Msg("movimiento confirmado")
	return res, nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return resultBusy
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrSameLocation):
		return resultRejected
	default:
		return resultError
	}
}
