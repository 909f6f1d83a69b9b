package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/stock-engine/internal/domain"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
	"github.com/tu-usuario/stock-engine/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Check: validación estática (sin mirar stock)
// ──────────────────────────────────────────────────────────────────────────────

func TestCheck_Rechazos(t *testing.T) {
	cases := []struct {
		name string
		op   inventory.Operation
		want error
	}{
		{
			name: "tipo desconocido",
			op:   inventory.Operation{Kind: "RESERVE", SKUID: "sku-1", DestLocationID: "A", Quantity: 1},
			want: domain.ErrInvalidInput,
		},
		{
			name: "entrada sin ubicación destino",
			op:   inventory.Operation{Kind: entity.MovementKindInbound, SKUID: "sku-1", Quantity: 5},
			want: domain.ErrInvalidInput,
		},
		{
			name: "entrada con cantidad cero",
			op:   inventory.Operation{Kind: entity.MovementKindInbound, SKUID: "sku-1", DestLocationID: "A", Quantity: 0},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "salida con cantidad negativa",
			op:   inventory.Operation{Kind: entity.MovementKindOutbound, SKUID: "sku-1", SourceLocationID: "A", Quantity: -3},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "traslado a la misma ubicación",
			op:   inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "sku-1", SourceLocationID: "A", DestLocationID: "A", Quantity: 5},
			want: domain.ErrSameLocation,
		},
		{
			name: "traslado sin destino",
			op:   inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "sku-1", SourceLocationID: "A", Quantity: 5},
			want: domain.ErrInvalidInput,
		},
		{
			name: "ajuste con delta cero",
			op:   inventory.Operation{Kind: entity.MovementKindAdjustment, SKUID: "sku-1", DestLocationID: "A", Quantity: 0},
			want: domain.ErrInvalidQuantity,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.op.Check(), tc.want)
		})
	}
}

func TestCheck_AjusteNegativoEsValido(t *testing.T) {
	op := inventory.Operation{Kind: entity.MovementKindAdjustment, SKUID: "sku-1", DestLocationID: "A", Quantity: -2}
	assert.NoError(t, op.Check())
}

// ──────────────────────────────────────────────────────────────────────────────
// Locations: orden de bloqueo determinista
// ──────────────────────────────────────────────────────────────────────────────

func TestLocations_TrasladoOrdenAscendente(t *testing.T) {
	// El orden no depende de cuál es origen y cuál destino.
	ab := inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "s", SourceLocationID: "A", DestLocationID: "B", Quantity: 1}
	ba := inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "s", SourceLocationID: "B", DestLocationID: "A", Quantity: 1}
	assert.Equal(t, []string{"A", "B"}, ab.Locations())
	assert.Equal(t, []string{"A", "B"}, ba.Locations())
}

// ──────────────────────────────────────────────────────────────────────────────
// Decide: decisión pura contra el stock leído
// ──────────────────────────────────────────────────────────────────────────────

func TestDecide_Entrada(t *testing.T) {
	op := inventory.Operation{Kind: entity.MovementKindInbound, SKUID: "sku-1", DestLocationID: "A", Quantity: 10}
	eff, err := inventory.Decide(op, map[string]int64{})
	require.NoError(t, err)
	require.Len(t, eff.Entries, 1)
	assert.Equal(t, int64(10), eff.Entries[0].Quantity)
	assert.Equal(t, "A", eff.Entries[0].DestLocationID)
	assert.Empty(t, eff.Entries[0].SourceLocationID, "una entrada no tiene origen")
	require.Len(t, eff.Deltas, 1)
	assert.Equal(t, inventory.Delta{LocationID: "A", Delta: 10}, eff.Deltas[0])
}

func TestDecide_SalidaInsuficiente(t *testing.T) {
	op := inventory.Operation{Kind: entity.MovementKindOutbound, SKUID: "sku-1", SourceLocationID: "A", Quantity: 5}
	_, err := inventory.Decide(op, map[string]int64{"A": 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestDecide_SalidaExacta(t *testing.T) {
	// Dejar la ubicación en cero es válido; la fila con cantidad 0 se conserva.
	op := inventory.Operation{Kind: entity.MovementKindOutbound, SKUID: "sku-1", SourceLocationID: "A", Quantity: 4}
	eff, err := inventory.Decide(op, map[string]int64{"A": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(-4), eff.Entries[0].Quantity)
	assert.Equal(t, "A", eff.Entries[0].SourceLocationID)
}

func TestDecide_TrasladoEfectoNetoCero(t *testing.T) {
	op := inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "sku-1", SourceLocationID: "B", DestLocationID: "A", Quantity: 6}
	eff, err := inventory.Decide(op, map[string]int64{"B": 10})
	require.NoError(t, err)

	require.Len(t, eff.Entries, 2, "un traslado son dos entradas pareadas")
	var net int64
	for _, e := range eff.Entries {
		net += e.Quantity
		assert.Equal(t, "B", e.SourceLocationID)
		assert.Equal(t, "A", e.DestLocationID)
	}
	assert.Zero(t, net, "el efecto neto de un traslado sobre el sistema es cero")

	require.Len(t, eff.Deltas, 2)
	assert.Equal(t, inventory.Delta{LocationID: "B", Delta: -6}, eff.Deltas[0])
	assert.Equal(t, inventory.Delta{LocationID: "A", Delta: 6}, eff.Deltas[1])
}

func TestDecide_TrasladoInsuficiente(t *testing.T) {
	op := inventory.Operation{Kind: entity.MovementKindTransfer, SKUID: "sku-1", SourceLocationID: "A", DestLocationID: "B", Quantity: 11}
	_, err := inventory.Decide(op, map[string]int64{"A": 10, "B": 100})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestDecide_AjustePositivoYNegativo(t *testing.T) {
	up := inventory.Operation{Kind: entity.MovementKindAdjustment, SKUID: "sku-1", DestLocationID: "A", Quantity: 3}
	eff, err := inventory.Decide(up, map[string]int64{"A": 0})
	require.NoError(t, err)
	assert.Equal(t, int64(3), eff.Entries[0].Quantity)

	down := inventory.Operation{Kind: entity.MovementKindAdjustment, SKUID: "sku-1", DestLocationID: "A", Quantity: -2}
	eff, err = inventory.Decide(down, map[string]int64{"A": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), eff.Entries[0].Quantity)

	_, err = inventory.Decide(inventory.Operation{
		Kind: entity.MovementKindAdjustment, SKUID: "sku-1", DestLocationID: "A", Quantity: -10,
	}, map[string]int64{"A": 4})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock, "un ajuste no puede dejar la cantidad negativa")
}
