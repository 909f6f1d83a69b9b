package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
)

// TestAffectedLocationID fija la regla de atribución del replay: cada entrada
// del ledger afecta exactamente una ubicación, y la suma de Quantity por
// ubicación afectada debe reproducir la proyección.
func TestAffectedLocationID(t *testing.T) {
	cases := []struct {
		name string
		mov  entity.Movement
		want string
	}{
		{
			name: "inbound afecta el destino",
			mov:  entity.Movement{Kind: entity.MovementKindInbound, DestLocationID: "A", Quantity: 5},
			want: "A",
		},
		{
			name: "outbound afecta el origen",
			mov:  entity.Movement{Kind: entity.MovementKindOutbound, SourceLocationID: "A", Quantity: -5},
			want: "A",
		},
		{
			name: "ajuste afecta el destino",
			mov:  entity.Movement{Kind: entity.MovementKindAdjustment, DestLocationID: "B", Quantity: -3},
			want: "B",
		},
		{
			name: "débito de traslado afecta el origen",
			mov:  entity.Movement{Kind: entity.MovementKindTransfer, SourceLocationID: "A", DestLocationID: "B", Quantity: -4},
			want: "A",
		},
		{
			name: "crédito de traslado afecta el destino",
			mov:  entity.Movement{Kind: entity.MovementKindTransfer, SourceLocationID: "A", DestLocationID: "B", Quantity: 4},
			want: "B",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.mov.AffectedLocationID())
		})
	}
}
