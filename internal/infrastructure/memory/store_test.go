package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/repository"
	"github.com/tu-usuario/stock-engine/internal/infrastructure/memory"
)

func TestRun_CommitAplicaStagingYAsignaSeq(t *testing.T) {
	store := memory.New(time.Second)
	ctx := context.Background()

	err := store.Run(ctx, func(movRepo repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
		lv, err := levelRepo.GetForUpdate(ctx, "sku-1", "A")
		require.NoError(t, err)
		assert.EqualValues(t, 0, lv.Quantity, "una fila inexistente nace en cero")

		lv.Quantity = 7
		if err := levelRepo.Upsert(ctx, lv); err != nil {
			return err
		}
		return movRepo.Create(ctx, &entity.Movement{
			Kind: entity.MovementKindInbound, SKUID: "sku-1",
			DestLocationID: "A", Quantity: 7,
		})
	})
	require.NoError(t, err)

	lv, err := store.Levels().Get(ctx, "sku-1", "A")
	require.NoError(t, err)
	assert.EqualValues(t, 7, lv.Quantity)

	movs, err := store.Movements().ReplayBySKU(ctx, "sku-1")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.EqualValues(t, 1, movs[0].Seq, "seq se asigna al confirmar, empezando en 1")
	assert.NotEmpty(t, movs[0].ID)
}

func TestRun_ErrorDescartaStaging(t *testing.T) {
	store := memory.New(time.Second)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Run(ctx, func(movRepo repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
		lv, err := levelRepo.GetForUpdate(ctx, "sku-1", "A")
		require.NoError(t, err)
		lv.Quantity = 99
		require.NoError(t, levelRepo.Upsert(ctx, lv))
		require.NoError(t, movRepo.Create(ctx, &entity.Movement{
			Kind: entity.MovementKindInbound, SKUID: "sku-1",
			DestLocationID: "A", Quantity: 99,
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	lv, err := store.Levels().Get(ctx, "sku-1", "A")
	require.NoError(t, err)
	assert.EqualValues(t, 0, lv.Quantity, "nada del staging debe ser visible tras el rollback")

	movs, err := store.Movements().ReplayBySKU(ctx, "sku-1")
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestLockRow_TimeoutDevuelveBusy(t *testing.T) {
	store := memory.New(50 * time.Millisecond)
	ctx := context.Background()

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(ctx, func(_ repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
			if _, err := levelRepo.GetForUpdate(ctx, "sku-1", "A"); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	err := store.Run(ctx, func(_ repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
		_, err := levelRepo.GetForUpdate(ctx, "sku-1", "A")
		return err
	})
	require.ErrorIs(t, err, domain.ErrBusy)

	close(release)
	<-done

	// Con la fila liberada, el bloqueo se adquiere de inmediato.
	err = store.Run(ctx, func(_ repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
		_, err := levelRepo.GetForUpdate(ctx, "sku-1", "A")
		return err
	})
	require.NoError(t, err)
}

func TestLockRow_ContextoCanceladoInterrumpeLaEspera(t *testing.T) {
	store := memory.New(10 * time.Second)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(context.Background(), func(_ repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
			if _, err := levelRepo.GetForUpdate(context.Background(), "sku-1", "A"); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := store.Run(ctx, func(_ repository.MovementRepository, levelRepo repository.StockLevelRepository) error {
		_, err := levelRepo.GetForUpdate(ctx, "sku-1", "A")
		return err
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done
}

func TestMovementView_PaginacionYOrden(t *testing.T) {
	store := memory.New(time.Second)
	ctx := context.Background()
	movs := store.Movements()

	for i := 0; i < 5; i++ {
		require.NoError(t, movs.Create(ctx, &entity.Movement{
			Kind: entity.MovementKindInbound, SKUID: "sku-1",
			DestLocationID: "A", Quantity: int64(i + 1),
		}))
	}

	asc, err := movs.ListBySKU(ctx, "sku-1", true, 0, 0)
	require.NoError(t, err)
	require.Len(t, asc, 5)
	for i := 1; i < len(asc); i++ {
		assert.Greater(t, asc[i].Seq, asc[i-1].Seq, "orden ascendente por seq")
	}

	desc, err := movs.ListBySKU(ctx, "sku-1", false, 2, 1)
	require.NoError(t, err)
	require.Len(t, desc, 2)
	assert.EqualValues(t, 4, desc[0].Seq)
	assert.EqualValues(t, 3, desc[1].Seq)

	vacio, err := movs.ListBySKU(ctx, "sku-1", true, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, vacio, "offset fuera de rango devuelve vacío")
}

func TestMovementView_FiltroPorUbicacion(t *testing.T) {
	store := memory.New(time.Second)
	ctx := context.Background()
	movs := store.Movements()

	require.NoError(t, movs.Create(ctx, &entity.Movement{
		Kind: entity.MovementKindInbound, SKUID: "sku-1", DestLocationID: "A", Quantity: 5,
	}))
	require.NoError(t, movs.Create(ctx, &entity.Movement{
		Kind: entity.MovementKindTransfer, SKUID: "sku-1",
		SourceLocationID: "A", DestLocationID: "B", Quantity: -2,
	}))
	require.NoError(t, movs.Create(ctx, &entity.Movement{
		Kind: entity.MovementKindInbound, SKUID: "sku-2", DestLocationID: "A", Quantity: 1,
	}))

	porA, err := movs.ListBySKUAndLocation(ctx, "sku-1", "A", true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, porA, 2, "el traslado toca A como origen")

	porB, err := movs.ListBySKUAndLocation(ctx, "sku-1", "B", true, 0, 0)
	require.NoError(t, err)
	assert.Len(t, porB, 1)
}
