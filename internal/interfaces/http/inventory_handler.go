package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryHandler ajustes, entradas manuales, kardex y reposición (protegido).
type InventoryHandler struct {
	stock         *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(stock *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *InventoryHandler {
	return &InventoryHandler{stock: stock, replenishment: replenishment}
}

// Adjust godoc
// @Summary      Registrar ajuste de stock en el kardex
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "item_kind (product | raw_material), item_id, quantity con signo, type"
// @Success      201   {object}  dto.StockAdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	unitPrice := decimal.Zero
	if in.UnitPrice != nil {
		unitPrice = *in.UnitPrice
	}
	out, err := h.stock.AdjustStock(c.Context(), GetActor(c), inventory.AdjustInput{
		Item:      entity.ItemRef{Kind: entity.ItemKind(in.ItemKind), ID: in.ItemID},
		Quantity:  in.Quantity,
		Type:      entity.MovementType(in.Type),
		UnitPrice: unitPrice,
		Notes:     in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddStock godoc
// @Summary      Entrada de materia prima con costo promedio ponderado
// @Description  Entrada manual de materia prima que recalcula el costo promedio ponderado.
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de la materia prima"
// @Param        body  body  dto.AddStockRequest  true  "quantity y unit_price"
// @Success      201   {object}  dto.StockAdjustmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/raw-materials/{id}/stock [post]
func (h *InventoryHandler) AddStock(c *fiber.Ctx) error {
	var in dto.AddStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.stock.AddStock(c.Context(), GetActor(c), c.Params("id"), in.Quantity, in.UnitPrice, in.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// History godoc
// @Summary      Kardex de un producto o materia prima
// @Description  kind: product | raw_material
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        kind    path   string  true   "product | raw_material"
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "máximo de movimientos"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/inventory/{kind}/{id}/movements [get]
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "paginación inválida"})
	}
	item := entity.ItemRef{Kind: entity.ItemKind(c.Params("kind")), ID: c.Params("id")}
	list, err := h.stock.History(c.Context(), item, page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "movements": list})
}

// VerifyLedger godoc
// @Summary      Verificar saldos contra la suma del kardex
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  dto.LedgerVerificationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/ledger/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	out, err := h.stock.VerifyLedger(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetReplenishmentList godoc
// @Summary      Materias primas bajo el mínimo
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
