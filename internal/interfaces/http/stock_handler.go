package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-engine/internal/application/dto"
	"github.com/tu-usuario/stock-engine/internal/application/inventory"
)

// StockHandler lecturas de stock e historial, más las operaciones de
// mantenimiento de la proyección (protegido).
type StockHandler struct {
	query   *inventory.QueryUseCase
	rebuild *inventory.RebuildUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(query *inventory.QueryUseCase, rebuild *inventory.RebuildUseCase) *StockHandler {
	return &StockHandler{query: query, rebuild: rebuild}
}

// ListLevels devuelve el stock de un SKU en todas sus ubicaciones.
// GET /api/inventory/stock/:sku
func (h *StockHandler) ListLevels(c *fiber.Ctx) error {
	levels, err := h.query.ListLevels(c.Context(), c.Params("sku"))
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, lv := range levels {
		out = append(out, dto.FromStockLevel(lv))
	}
	return c.JSON(fiber.Map{"total": len(out), "levels": out})
}

// GetQuantity devuelve la cantidad actual de un SKU en una ubicación
// (0 si el par nunca tuvo movimientos).
// GET /api/inventory/stock/:sku/:location
func (h *StockHandler) GetQuantity(c *fiber.Ctx) error {
	qty, err := h.query.GetQuantity(c.Context(), c.Params("sku"), c.Params("location"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(fiber.Map{
		"sku_id":      c.Params("sku"),
		"location_id": c.Params("location"),
		"quantity":    qty,
	})
}

// History devuelve el historial de movimientos de un SKU en orden de commit.
// GET /api/inventory/movements?sku_id=&location_id=&order=asc|desc&limit=&offset=
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	page.DefaultPage()

	movs, err := h.query.History(c.Context(), inventory.HistoryFilter{
		SKUID:      c.Query("sku_id"),
		LocationID: c.Query("location_id"),
		Ascending:  c.Query("order", "desc") == "asc",
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.FromMovement(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// GetMovement devuelve una entrada del ledger por id.
// GET /api/inventory/movements/:id
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.query.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(dto.FromMovement(mov))
}

// Rebuild reconstruye la proyección de un SKU desde el ledger.
// POST /api/inventory/stock/:sku/rebuild
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	levels, err := h.rebuild.Rebuild(c.Context(), c.Params("sku"))
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.StockLevelDTO, 0, len(levels))
	for _, lv := range levels {
		out = append(out, dto.FromStockLevel(lv))
	}
	return c.JSON(fiber.Map{"total": len(out), "levels": out})
}

// Verify compara la proyección de un SKU contra el replay del ledger.
// GET /api/inventory/stock/:sku/verify
func (h *StockHandler) Verify(c *fiber.Ctx) error {
	diffs, err := h.rebuild.Verify(c.Context(), c.Params("sku"))
	if err != nil {
		return writeDomainError(c, err)
	}
	out := make([]dto.DiscrepancyDTO, 0, len(diffs))
	for _, d := range diffs {
		out = append(out, dto.DiscrepancyDTO{LocationID: d.LocationID, Projected: d.Projected, Replayed: d.Replayed})
	}
	return c.JSON(fiber.Map{"consistent": len(out) == 0, "discrepancies": out})
}
