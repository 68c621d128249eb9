package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/production"
)

// ProductionHandler ciclo de vida de los planes de producción (protegido).
type ProductionHandler struct {
	uc *production.UseCase
}

// NewProductionHandler construye el handler.
func NewProductionHandler(uc *production.UseCase) *ProductionHandler {
	return &ProductionHandler{uc: uc}
}

// Create godoc
// @Summary      Crear plan de producción en borrador
// @Tags         production
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePlanRequest  true  "items con product_id y planned_quantity"
// @Success      201   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production-plans [post]
func (h *ProductionHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePlanRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	items := make([]production.CreatePlanItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, production.CreatePlanItemInput{
			ProductID:       it.ProductID,
			RecipeID:        it.RecipeID,
			PlannedQuantity: it.PlannedQuantity,
		})
	}
	plan, err := h.uc.CreatePlan(c.Context(), GetActor(c), production.CreatePlanInput{
		PlannedStartDate: in.PlannedStartDate,
		PlannedEndDate:   in.PlannedEndDate,
		Notes:            in.Notes,
		Items:            items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPlanResponse(plan))
}

// Get godoc
// @Summary      Obtener plan de producción
// @Tags         production
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id} [get]
func (h *ProductionHandler) Get(c *fiber.Ctx) error {
	plan, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// Approve godoc
// @Summary      Aprobar plan de producción
// @Tags         production
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/approve [post]
func (h *ProductionHandler) Approve(c *fiber.Ctx) error {
	plan, err := h.uc.Approve(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// Start godoc
// @Summary      Iniciar plan de producción
// @Description  Los faltantes no bloquean el inicio; se devuelven como warnings.
// @Tags         production
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.StartPlanResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/start [post]
func (h *ProductionHandler) Start(c *fiber.Ctx) error {
	res, err := h.uc.Start(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StartPlanResponse{
		Plan:     toPlanResponse(res.Plan),
		Warnings: toShortageDTOs(res.Warnings),
	})
}

// Complete godoc
// @Summary      Completar plan: consume materiales y acredita producto
// @Description  Body opcional: {"actual_quantities": {"<item_id>": "95"}}.
// @Tags         production
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true   "ID del plan"
// @Param        body  body  dto.CompletePlanRequest  false  "actual_quantities por ítem; 0 registra un lote fallido"
// @Success      200   {object}  dto.PlanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/complete [post]
func (h *ProductionHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompletePlanRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	plan, err := h.uc.Complete(c.Context(), GetActor(c), c.Params("id"), in.ActualQuantities)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// Cancel godoc
// @Summary      Cancelar plan de producción
// @Tags         production
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/cancel [post]
func (h *ProductionHandler) Cancel(c *fiber.Ctx) error {
	plan, err := h.uc.Cancel(c.Context(), GetActor(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toPlanResponse(plan))
}

// Requirements godoc
// @Summary      Requerimientos de materiales del plan
// @Tags         production
// @Security     BearerAuth
// @Produce      json
// @Param        id   path  string  true  "ID del plan"
// @Success      200  {object}  dto.PlanRequirementsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/production-plans/{id}/requirements [get]
func (h *ProductionHandler) Requirements(c *fiber.Ctx) error {
	req, err := h.uc.Requirements(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PlanRequirementsResponse{
		PlanID:        req.Plan.ID,
		Required:      req.Required,
		Shortages:     toShortageDTOs(req.Shortages),
		EstimatedCost: req.Estimated,
		CanComplete:   len(req.Shortages) == 0,
	})
}
