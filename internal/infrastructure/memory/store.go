// Package memory implementa el almacenamiento del motor de movimientos en
// proceso: un mutex por fila (SKU, ubicación) con espera acotada y escrituras
// en staging que solo se aplican al confirmar. Se usa en desarrollo
// (STOCK_DRIVER=memory) y como arnés de los tests de concurrencia.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stock-engine/internal/application/inventory"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

type rowKey struct {
	skuID      string
	locationID string
}

// Store es el estado compartido: proyección, ledger y bloqueos por fila.
type Store struct {
	mu          sync.Mutex
	levels      map[rowKey]entity.StockLevel
	ledger      []*entity.Movement
	byID        map[string]*entity.Movement
	locks       map[rowKey]chan struct{}
	seq         int64
	lockTimeout time.Duration
}

// New construye el store. lockTimeout acota la espera por una fila bloqueada;
// al agotarse la operación falla con domain.ErrBusy.
func New(lockTimeout time.Duration) *Store {
	return &Store{
		levels:      make(map[rowKey]entity.StockLevel),
		byID:        make(map[string]*entity.Movement),
		locks:       make(map[rowKey]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Movements devuelve la vista de ledger para lecturas fuera de transacción.
func (s *Store) Movements() repository.MovementRepository { return &movementView{s: s} }

// Levels devuelve la vista de proyección para lecturas fuera de transacción.
func (s *Store) Levels() repository.StockLevelRepository { return &levelView{s: s} }

// Run ejecuta fn como unidad de trabajo atómica: las escrituras quedan en
// staging y se aplican solo si fn devuelve nil; los bloqueos de fila
// adquiridos se liberan al final en ambos casos.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	levelRepo repository.StockLevelRepository,
) error) error {
	tx := &storeTx{
		s:            s,
		stagedLevels: make(map[rowKey]entity.StockLevel),
		held:         make(map[rowKey]bool),
	}
	defer tx.release()

	if err := fn(&txMovementRepo{tx: tx}, &txLevelRepo{tx: tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *Store) lockChan(k rowKey) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[k]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[k] = ch
	}
	return ch
}

// ──────────────────────────────────────────────────────────────────────────────
// Transacción
// ──────────────────────────────────────────────────────────────────────────────

type storeTx struct {
	s            *Store
	stagedLevels map[rowKey]entity.StockLevel
	stagedMovs   []*entity.Movement
	held         map[rowKey]bool
	heldOrder    []rowKey
}

// lockRow adquiere la exclusividad de una fila con espera acotada.
func (tx *storeTx) lockRow(ctx context.Context, k rowKey) error {
	if tx.held[k] {
		return nil
	}
	ch := tx.s.lockChan(k)
	timer := time.NewTimer(tx.s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		tx.held[k] = true
		tx.heldOrder = append(tx.heldOrder, k)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return domain.ErrBusy
	}
}

func (tx *storeTx) readLevel(k rowKey) entity.StockLevel {
	if lv, ok := tx.stagedLevels[k]; ok {
		return lv
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if lv, ok := tx.s.levels[k]; ok {
		return lv
	}
	return entity.StockLevel{SKUID: k.skuID, LocationID: k.locationID}
}

// commit aplica el staging bajo el mutex global. Los bloqueos de fila siguen
// en poder de la transacción, así que nadie pudo observar estados intermedios.
func (tx *storeTx) commit() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	for k, lv := range tx.stagedLevels {
		tx.s.levels[k] = lv
	}
	for _, m := range tx.stagedMovs {
		tx.s.seq++
		m.Seq = tx.s.seq
		stored := *m
		tx.s.ledger = append(tx.s.ledger, &stored)
		tx.s.byID[stored.ID] = &stored
	}
}

func (tx *storeTx) release() {
	for _, k := range tx.heldOrder {
		<-tx.s.locks[k]
	}
	tx.held = nil
	tx.heldOrder = nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios atados a la transacción
// ──────────────────────────────────────────────────────────────────────────────

type txLevelRepo struct{ tx *storeTx }

var _ repository.StockLevelRepository = (*txLevelRepo)(nil)

func (r *txLevelRepo) Get(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	lv := r.tx.readLevel(rowKey{skuID, locationID})
	return &lv, nil
}

func (r *txLevelRepo) GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	k := rowKey{skuID, locationID}
	if err := r.tx.lockRow(ctx, k); err != nil {
		return nil, err
	}
	lv := r.tx.readLevel(k)
	return &lv, nil
}

func (r *txLevelRepo) Upsert(ctx context.Context, level *entity.StockLevel) error {
	r.tx.stagedLevels[rowKey{level.SKUID, level.LocationID}] = *level
	return nil
}

func (r *txLevelRepo) ListBySKU(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	return r.list(skuID), nil
}

func (r *txLevelRepo) ListBySKUForUpdate(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	keys := r.tx.s.levelKeysBySKU(skuID)
	for _, k := range keys {
		if err := r.tx.lockRow(ctx, k); err != nil {
			return nil, err
		}
	}
	return r.list(skuID), nil
}

func (r *txLevelRepo) list(skuID string) []*entity.StockLevel {
	merged := make(map[string]entity.StockLevel)
	r.tx.s.mu.Lock()
	for k, lv := range r.tx.s.levels {
		if k.skuID == skuID {
			merged[k.locationID] = lv
		}
	}
	r.tx.s.mu.Unlock()
	for k, lv := range r.tx.stagedLevels {
		if k.skuID == skuID {
			merged[k.locationID] = lv
		}
	}
	return sortedLevels(merged)
}

type txMovementRepo struct{ tx *storeTx }

var _ repository.MovementRepository = (*txMovementRepo)(nil)

func (r *txMovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.tx.stagedMovs = append(r.tx.stagedMovs, m)
	return nil
}

func (r *txMovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	r.tx.s.mu.Lock()
	m, ok := r.tx.s.byID[id]
	r.tx.s.mu.Unlock()
	if ok {
		cp := *m
		return &cp, nil
	}
	for _, sm := range r.tx.stagedMovs {
		if sm.ID == id {
			cp := *sm
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *txMovementRepo) ListBySKU(ctx context.Context, skuID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	return paginate(r.all(skuID, ""), asc, limit, offset), nil
}

func (r *txMovementRepo) ListBySKUAndLocation(ctx context.Context, skuID, locationID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	return paginate(r.all(skuID, locationID), asc, limit, offset), nil
}

func (r *txMovementRepo) ReplayBySKU(ctx context.Context, skuID string) ([]*entity.Movement, error) {
	return r.all(skuID, ""), nil
}

// all devuelve las entradas confirmadas (en orden de commit) más las de
// staging de la propia transacción al final.
func (r *txMovementRepo) all(skuID, locationID string) []*entity.Movement {
	r.tx.s.mu.Lock()
	out := filterMovements(r.tx.s.ledger, skuID, locationID)
	r.tx.s.mu.Unlock()
	for _, sm := range r.tx.stagedMovs {
		if matches(sm, skuID, locationID) {
			cp := *sm
			out = append(out, &cp)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Vistas de solo consulta (fuera de transacción)
// ──────────────────────────────────────────────────────────────────────────────

type levelView struct{ s *Store }

var _ repository.StockLevelRepository = (*levelView)(nil)

func (v *levelView) Get(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if lv, ok := v.s.levels[rowKey{skuID, locationID}]; ok {
		return &lv, nil
	}
	return &entity.StockLevel{SKUID: skuID, LocationID: locationID}, nil
}

// GetForUpdate fuera de una transacción equivale a Get.
func (v *levelView) GetForUpdate(ctx context.Context, skuID, locationID string) (*entity.StockLevel, error) {
	return v.Get(ctx, skuID, locationID)
}

func (v *levelView) Upsert(ctx context.Context, level *entity.StockLevel) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.levels[rowKey{level.SKUID, level.LocationID}] = *level
	return nil
}

func (v *levelView) ListBySKU(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	merged := make(map[string]entity.StockLevel)
	for k, lv := range v.s.levels {
		if k.skuID == skuID {
			merged[k.locationID] = lv
		}
	}
	return sortedLevels(merged), nil
}

func (v *levelView) ListBySKUForUpdate(ctx context.Context, skuID string) ([]*entity.StockLevel, error) {
	return v.ListBySKU(ctx, skuID)
}

type movementView struct{ s *Store }

var _ repository.MovementRepository = (*movementView)(nil)

// Create fuera de transacción confirma la entrada de inmediato.
func (v *movementView) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.seq++
	m.Seq = v.s.seq
	stored := *m
	v.s.ledger = append(v.s.ledger, &stored)
	v.s.byID[stored.ID] = &stored
	return nil
}

func (v *movementView) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if m, ok := v.s.byID[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (v *movementView) ListBySKU(ctx context.Context, skuID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return paginate(filterMovements(v.s.ledger, skuID, ""), asc, limit, offset), nil
}

func (v *movementView) ListBySKUAndLocation(ctx context.Context, skuID, locationID string, asc bool, limit, offset int) ([]*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return paginate(filterMovements(v.s.ledger, skuID, locationID), asc, limit, offset), nil
}

func (v *movementView) ReplayBySKU(ctx context.Context, skuID string) ([]*entity.Movement, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return filterMovements(v.s.ledger, skuID, ""), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (s *Store) levelKeysBySKU(skuID string) []rowKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []rowKey
	for k := range s.levels {
		if k.skuID == skuID {
			keys = append(keys, k)
		}
	}
	// Mismo orden de bloqueo que el coordinador: ubicación ascendente.
	sort.Slice(keys, func(i, j int) bool { return keys[i].locationID < keys[j].locationID })
	return keys
}

func filterMovements(ledger []*entity.Movement, skuID, locationID string) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range ledger {
		if matches(m, skuID, locationID) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out
}

func matches(m *entity.Movement, skuID, locationID string) bool {
	if m.SKUID != skuID {
		return false
	}
	return locationID == "" || m.SourceLocationID == locationID || m.DestLocationID == locationID
}

func paginate(movs []*entity.Movement, asc bool, limit, offset int) []*entity.Movement {
	if !asc {
		for i, j := 0, len(movs)-1; i < j; i, j = i+1, j-1 {
			movs[i], movs[j] = movs[j], movs[i]
		}
	}
	if offset >= len(movs) {
		return nil
	}
	movs = movs[offset:]
	if limit > 0 && limit < len(movs) {
		movs = movs[:limit]
	}
	return movs
}

func sortedLevels(merged map[string]entity.StockLevel) []*entity.StockLevel {
	locs := make([]string, 0, len(merged))
	for loc := range merged {
		locs = append(locs, loc)
	}
	sort.Strings(locs)
	out := make([]*entity.StockLevel, 0, len(locs))
	for _, loc := range locs {
		lv := merged[loc]
		out = append(out, &lv)
	}
	return out
}
