package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShortageDTO faltante de un ítem: requerido, disponible y diferencia.
type ShortageDTO struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// CreatePlanItemRequest línea del plan. RecipeID vacío usa la receta por defecto.
type CreatePlanItemRequest struct {
	ProductID       string          `json:"product_id"`
	RecipeID        string          `json:"recipe_id"`
	PlannedQuantity decimal.Decimal `json:"planned_quantity"`
}

// CreatePlanRequest body para POST /api/production-plans.
type CreatePlanRequest struct {
	PlannedStartDate *time.Time              `json:"planned_start_date,omitempty"`
	PlannedEndDate   *time.Time              `json:"planned_end_date,omitempty"`
	Notes            string                  `json:"notes"`
	Items            []CreatePlanItemRequest `json:"items"`
}

// CompletePlanRequest cantidades reales producidas por ítem del plan (opcional).
type CompletePlanRequest struct {
	ActualQuantities map[string]decimal.Decimal `json:"actual_quantities"`
}

type PlanItemResponse struct {
	ID                    string          `json:"id"`
	ProductID             string          `json:"product_id"`
	RecipeID              string          `json:"recipe_id,omitempty"`
	PlannedQuantity       decimal.Decimal `json:"planned_quantity"`
	ActualQuantity        decimal.Decimal `json:"actual_quantity"`
	EstimatedMaterialCost decimal.Decimal `json:"estimated_material_cost"`
	ActualMaterialCost    decimal.Decimal `json:"actual_material_cost"`
	Status                string          `json:"status"`
	Sequence              int             `json:"sequence"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
}

type PlanResponse struct {
	ID                 string             `json:"id"`
	PlanNumber         string             `json:"plan_number"`
	Status             string             `json:"status"`
	PlannedStartDate   *time.Time         `json:"planned_start_date,omitempty"`
	PlannedEndDate     *time.Time         `json:"planned_end_date,omitempty"`
	ActualStartDate    *time.Time         `json:"actual_start_date,omitempty"`
	ActualEndDate      *time.Time         `json:"actual_end_date,omitempty"`
	TotalEstimatedCost decimal.Decimal    `json:"total_estimated_cost"`
	TotalActualCost    decimal.Decimal    `json:"total_actual_cost"`
	ApprovedBy         string             `json:"approved_by,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at,omitempty"`
	CreatedBy          string             `json:"created_by"`
	Notes              string             `json:"notes,omitempty"`
	Items              []PlanItemResponse `json:"items"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// StartPlanResponse plan iniciado con los faltantes detectados como advertencia.
type StartPlanResponse struct {
	Plan     PlanResponse  `json:"plan"`
	Warnings []ShortageDTO `json:"warnings"`
}

// PlanRequirementsResponse necesidades agregadas de materia prima del plan.
type PlanRequirementsResponse struct {
	PlanID        string                     `json:"plan_id"`
	Required      map[string]decimal.Decimal `json:"required"`
	Shortages     []ShortageDTO              `json:"shortages"`
	EstimatedCost decimal.Decimal            `json:"estimated_cost"`
	CanComplete   bool                       `json:"can_complete"`
}
