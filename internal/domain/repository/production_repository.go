package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ProductionPlanRepository persiste planes con sus ítems.
// GetByID y GetForUpdate cargan los ítems ordenados por Sequence.
type ProductionPlanRepository interface {
	Create(ctx context.Context, plan *entity.ProductionPlan) error
	GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error)
	GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error)
	// Update guarda la cabecera (estado, fechas, costos, aprobación).
	Update(ctx context.Context, plan *entity.ProductionPlan) error
	UpdateItem(ctx context.Context, item *entity.ProductionPlanItem) error
}

// MaterialUsageRepository hechos de consumo de materia prima.
type MaterialUsageRepository interface {
	Create(ctx context.Context, usage *entity.MaterialUsage) error
	ListByPlan(ctx context.Context, planID string) ([]*entity.MaterialUsage, error)
}
