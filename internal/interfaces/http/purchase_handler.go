package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/purchase"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// PurchaseHandler órdenes de compra de materia prima (protegido).
type PurchaseHandler struct {
	uc *purchase.UseCase
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchase.UseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de compra
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "supplier_id, items con raw_material_id, quantity, unit_price"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]purchase.CreateItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, purchase.CreateItemInput{RawMaterialID: it.RawMaterialID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	p, err := h.uc.Create(c.Context(), GetActor(c), purchase.CreateInput{
		SupplierID: in.SupplierID,
		Notes:      in.Notes,
		Items:      items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPurchaseResponse(p))
}

// Get godoc
// @Summary      Obtener compra
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) Get(c *fiber.Ctx) error {
	p, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Approve godoc
// @Summary      Aprobar compra
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/approve [post]
func (h *PurchaseHandler) Approve(c *fiber.Ctx) error {
	p, err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Receive godoc
// @Summary      Recibir compra total o parcialmente
// @Description  Sin body recibe todo lo pendiente; con {"quantities": {...}} recepción parcial.
// @Tags         purchases
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "ID de la compra"
// @Param        body  body  dto.ReceivePurchaseRequest  false  "quantities por ítem; vacío recibe todo lo pendiente"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceivePurchaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	var (
		p   *entity.Purchase
		err error
	)
	if len(in.Quantities) == 0 {
		p, err = h.uc.Receive(c.Context(), GetActor(c), c.Params("id"))
	} else {
		p, err = h.uc.ReceivePartial(c.Context(), GetActor(c), c.Params("id"), in.Quantities)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Cancel godoc
// @Summary      Anular compra
// @Description  Si la compra ya fue recibida se revierte el stock disponible; el costo no cambia.
// @Tags         purchases
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	p, err := h.uc.Cancel(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPurchaseResponse(p))
}
