package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus estado del plan de producción.
type PlanStatus string

const (
	PlanStatusDraft      PlanStatus = "draft"
	PlanStatusApproved   PlanStatus = "approved"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusCompleted  PlanStatus = "completed"
	PlanStatusCancelled  PlanStatus = "cancelled"
)

// CanTransitionTo aplica la máquina de estados:
// draft → approved → in_progress → completed; draft|approved → cancelled.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	switch s {
	case PlanStatusDraft:
		return target == PlanStatusApproved || target == PlanStatusCancelled
	case PlanStatusApproved:
		return target == PlanStatusInProgress || target == PlanStatusCancelled
	case PlanStatusInProgress:
		return target == PlanStatusCompleted
	}
	return false
}

// IsTerminal indica completed o cancelled.
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// PlanItemStatus estado de una línea del plan.
type PlanItemStatus string

const (
	PlanItemStatusPending    PlanItemStatus = "pending"
	PlanItemStatusInProgress PlanItemStatus = "in_progress"
	PlanItemStatusCompleted  PlanItemStatus = "completed"
	PlanItemStatusCancelled  PlanItemStatus = "cancelled"
)

// ProductionPlan agrupa las órdenes de fabricación de un lote.
type ProductionPlan struct {
	ID                 string
	PlanNumber         string
	Status             PlanStatus
	PlannedStartDate   *time.Time
	PlannedEndDate     *time.Time
	ActualStartDate    *time.Time
	ActualEndDate      *time.Time
	TotalEstimatedCost decimal.Decimal
	TotalActualCost    decimal.Decimal
	ApprovedBy         string
	ApprovedAt         *time.Time
	CreatedBy          string
	Notes              string
	Items              []*ProductionPlanItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ProductionPlanItem convierte materias primas en PlannedQuantity unidades de ProductID.
type ProductionPlanItem struct {
	ID                    string
	PlanID                string
	ProductID             string
	RecipeID              string
	PlannedQuantity       decimal.Decimal
	ActualQuantity        decimal.Decimal
	EstimatedMaterialCost decimal.Decimal
	ActualMaterialCost    decimal.Decimal
	Status                PlanItemStatus
	Sequence              int
	CompletedAt           *time.Time
}
