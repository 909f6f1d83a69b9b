package dto

import (
	"time"

	"github.com/tu-usuario/stock-engine/internal/application/inventory"
	"github.com/tu-usuario/stock-engine/internal/domain/entity"
)

// InboundRequest recepción de mercancía.
type InboundRequest struct {
	SKUID          string `json:"sku_id"`
	DestLocationID string `json:"dest_location_id"`
	Quantity       int64  `json:"quantity"`
	Note           string `json:"note"`
}

// OutboundRequest salida de mercancía.
type OutboundRequest struct {
	SKUID            string `json:"sku_id"`
	SourceLocationID string `json:"source_location_id"`
	Quantity         int64  `json:"quantity"`
	Note             string `json:"note"`
}

// TransferRequest traslado entre ubicaciones.
type TransferRequest struct {
	SKUID            string `json:"sku_id"`
	SourceLocationID string `json:"source_location_id"`
	DestLocationID   string `json:"dest_location_id"`
	Quantity         int64  `json:"quantity"`
	Note             string `json:"note"`
}

// AdjustmentRequest ajuste manual con delta con signo.
type AdjustmentRequest struct {
	SKUID      string `json:"sku_id"`
	LocationID string `json:"location_id"`
	Delta      int64  `json:"delta"`
	Note       string `json:"note"`
}

// MovementDTO una entrada del ledger en respuestas.
type MovementDTO struct {
	ID               string    `json:"id"`
	TransactionID    string    `json:"transaction_id"`
	Kind             string    `json:"kind"`
	SKUID            string    `json:"sku_id"`
	SourceLocationID string    `json:"source_location_id,omitempty"`
	DestLocationID   string    `json:"dest_location_id,omitempty"`
	Quantity         int64     `json:"quantity"`
	Note             string    `json:"note,omitempty"`
	Seq              int64     `json:"seq"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by,omitempty"`
}

// StockLevelDTO una fila de la proyección en respuestas.
type StockLevelDTO struct {
	SKUID      string    `json:"sku_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MovementResultResponse respuesta de una operación confirmada: entradas
// creadas y cantidades resultantes.
type MovementResultResponse struct {
	TransactionID string          `json:"transaction_id"`
	Movements     []MovementDTO   `json:"movements"`
	Levels        []StockLevelDTO `json:"levels"`
}

// DiscrepancyDTO fila cuya proyección no coincide con el replay del ledger.
type DiscrepancyDTO struct {
	LocationID string `json:"location_id"`
	Projected  int64  `json:"projected"`
	Replayed   int64  `json:"replayed"`
}

// FromMovement convierte la entidad a DTO.
func FromMovement(m *entity.Movement) MovementDTO {
	return MovementDTO{
		ID:               m.ID,
		TransactionID:    m.TransactionID,
		Kind:             m.Kind,
		SKUID:            m.SKUID,
		SourceLocationID: m.SourceLocationID,
		DestLocationID:   m.DestLocationID,
		Quantity:         m.Quantity,
		Note:             m.Note,
		Seq:              m.Seq,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}

// FromStockLevel convierte la entidad a DTO.
func FromStockLevel(s *entity.StockLevel) StockLevelDTO {
	return StockLevelDTO{
		SKUID:      s.SKUID,
		LocationID: s.LocationID,
		Quantity:   s.Quantity,
		UpdatedAt:  s.UpdatedAt,
	}
}

// FromResult convierte el resultado del coordinador a respuesta HTTP.
func FromResult(res *inventory.Result) MovementResultResponse {
	out := MovementResultResponse{TransactionID: res.TransactionID}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, FromMovement(m))
	}
	for _, lv := range res.Levels {
		out.Levels = append(out.Levels, FromStockLevel(lv))
	}
	return out
}
