package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo inserta y lee: el esquema no expone update ni delete de movimientos.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `seq, id, transaction_id, kind, sku_id, source_location_id, dest_location_id, quantity, note, created_at, created_by`

// Create persiste una entrada del ledger y deja en m.Seq su orden de commit.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, transaction_id, kind, sku_id, source_location_id, dest_location_id, quantity, note, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.TransactionID, m.Kind, m.SKUID,
		nullable(m.SourceLocationID), nullable(m.DestLocationID),
		m.Quantity, m.Note, m.CreatedAt, nullable(m.CreatedBy),
	).Scan(&m.Seq)
	if err != nil {
		// El ledger es append-only: un id repetido jamás sobreescribe la
		// entrada existente.
		if isUniqueViolation(err) {
			return fmt.Errorf("movement %s ya registrado: %w", m.ID, domain.ErrInvalidInput)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene una entrada por ID; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListBySKU lista el historial de un SKU en orden de commit con paginación.
func (r *MovementRepo) ListBySKU(ctx context.Context, skuID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stock_movements
		WHERE sku_id = $1
		ORDER BY seq %s LIMIT $2 OFFSET $3`, movementColumns, direction(asc))
	return r.scanMovements(ctx, query, skuID, limit, offset)
}

// ListBySKUAndLocation lista el historial restringido a las entradas que
// tocan una ubicación como origen o destino.
func (r *MovementRepo) ListBySKUAndLocation(ctx context.Context, skuID, locationID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM stock_movements
		WHERE sku_id = $1 AND (source_location_id = $2 OR dest_location_id = $2)
		ORDER BY seq %s LIMIT $3 OFFSET $4`, movementColumns, direction(asc))
	return r.scanMovements(ctx, query, skuID, locationID, limit, offset)
}

// ReplayBySKU devuelve el ledger completo de un SKU en orden de commit
// ascendente, para reconstruir la proyección.
func (r *MovementRepo) ReplayBySKU(ctx context.Context, skuID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE sku_id = $1 ORDER BY seq ASC`
	return r.scanMovements(ctx, query, skuID)
}

func (r *MovementRepo) scanMovements(ctx context.Context, query string, args ...any) ([]*entity.Movement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return list, nil
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var source, dest, createdBy *string
	err := row.Scan(
		&m.Seq, &m.ID, &m.TransactionID, &m.Kind, &m.SKUID,
		&source, &dest, &m.Quantity, &m.Note, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if source != nil {
		m.SourceLocationID = *source
	}
	if dest != nil {
		m.DestLocationID = *dest
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

func direction(asc bool) string {
	if asc {
		return "ASC"
	}
	return "DESC"
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
