package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene la fila actual de un SKU en una ubicación. Si no existe devuelve
// una fila con cantidad 0 (toda combinación empieza en cero; no es error).
func (r *StockLevelRepo) Get(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	query := `
		SELECT sku_id, location_id, quantity, updated_at
		FROM stock_levels WHERE sku_id = $1 AND location_id = $2`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, skuID, locationID).Scan(
		&s.SKUID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{SKUID: skuID, LocationID: locationID}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &s, nil
}

// GetForUpdate crea la fila con cantidad 0 si no existe (misma transacción,
// sin carrera check-then-create) y la bloquea con SELECT ... FOR UPDATE.
// Si el lock_timeout de la transacción se agota devuelve domain.ErrBusy.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	insert := `
		INSERT INTO stock_levels (sku_id, location_id, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (sku_id, location_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, skuID, locationID); err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("ensure stock level: %w", err)
	}

	query := `
		SELECT sku_id, location_id, quantity, updated_at
		FROM stock_levels WHERE sku_id = $1 AND location_id = $2
		FOR UPDATE`
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, query, skuID, locationID).Scan(
		&s.SKUID, &s.LocationID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if isLockTimeout(err) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad absoluta (por SKU y ubicación).
func (r *StockLevelRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	query := `
		INSERT INTO stock_levels (sku_id, location_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (sku_id, location_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(ctx, query, level.SKUID, level.LocationID, level.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock level: %w", err)
	}
	return nil
}

// ListBySKU devuelve las filas de un SKU ordenadas por ubicación.
func (r *StockLevelRepo) ListBySKU(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT sku_id, location_id, quantity, updated_at
		FROM stock_levels WHERE sku_id = $1
		ORDER BY location_id`
	return r.scanLevels(ctx, query, skuID)
}

// ListBySKUForUpdate es ListBySKU bloqueando las filas en orden ascendente de
// ubicación, el mismo orden de bloqueo que usa el coordinador.
func (r *StockLevelRepo) ListBySKUForUpdate(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	query := `
		SELECT sku_id, location_id, quantity, updated_at
		FROM stock_levels WHERE sku_id = $1
		ORDER BY location_id
		FOR UPDATE`
	levels, err := r.scanLevels(ctx, query, skuID)
	if err != nil && isLockTimeout(err) {
		return nil, domain.ErrBusy
	}
	return levels, err
}

func (r *StockLevelRepo) scanLevels(ctx context.Context, query, skuID string) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, query, skuID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var s entity.StockLevel
		if err := rows.Scan(&s.SKUID, &s.LocationID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	return list, nil
}
