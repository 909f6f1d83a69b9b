package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stock-engine/internal/application/dto"
	"github.com/tu-usuario/stock-engine/internal/application/inventory"
	"github.com/tu-usuario/stock-engine/internal/domain"
)

// InventoryHandler maneja las peticiones HTTP de movimientos de stock (protegido).
// Capa fina: parsea el DTO, invoca al coordinador y traduce el error de dominio.
type InventoryHandler struct {
	coordinator *inventory.Coordinator
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(coordinator *inventory.Coordinator) *InventoryHandler {
	return &InventoryHandler{coordinator: coordinator}
}

// Inbound registra una recepción de mercancía.
// POST /api/inventory/inbound
func (h *InventoryHandler) Inbound(c *fiber.Ctx) error {
	var in dto.InboundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.coordinator.Inbound(c.Context(), GetUserID(c), inventory.InboundInput{
		SKUID:          in.SKUID,
		DestLocationID: in.DestLocationID,
		Quantity:       in.Quantity,
		Note:           in.Note,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromResult(res))
}

// Outbound registra una salida de mercancía.
// POST /api/inventory/outbound
func (h *InventoryHandler) Outbound(c *fiber.Ctx) error {
	var in dto.OutboundRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.coordinator.Outbound(c.Context(), GetUserID(c), inventory.OutboundInput{
		SKUID:            in.SKUID,
		SourceLocationID: in.SourceLocationID,
		Quantity:         in.Quantity,
		Note:             in.Note,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromResult(res))
}

// Transfer registra un traslado entre ubicaciones.
// POST /api/inventory/transfers
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.coordinator.Transfer(c.Context(), GetUserID(c), inventory.TransferInput{
		SKUID:            in.SKUID,
		SourceLocationID: in.SourceLocationID,
		DestLocationID:   in.DestLocationID,
		Quantity:         in.Quantity,
		Note:             in.Note,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromResult(res))
}

// Adjustment registra un ajuste manual.
// POST /api/inventory/adjustments
func (h *InventoryHandler) Adjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.coordinator.Adjust(c.Context(), GetUserID(c), inventory.AdjustmentInput{
		SKUID:      in.SKUID,
		LocationID: in.LocationID,
		Delta:      in.Delta,
		Note:       in.Note,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromResult(res))
}

// writeDomainError traduce un error de dominio a código de estado y cuerpo.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUANTITY", Message: "cantidad inválida"})
	case errors.Is(err, domain.ErrSameLocation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "SAME_LOCATION", Message: "origen y destino son la misma ubicación"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrBusy):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "BUSY", Message: "fila de stock ocupada, reintente"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
