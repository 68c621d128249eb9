package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.ProductionPlanRepository = (*ProductionPlanRepo)(nil)

// ProductionPlanRepo planes de producción con sus ítems.
type ProductionPlanRepo struct {
	q Querier
}

// NewProductionPlanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionPlanRepository(q Querier) *ProductionPlanRepo {
	return &ProductionPlanRepo{q: q}
}

const planColumns = `id, plan_number, status, planned_start_date, planned_end_date, actual_start_date, actual_end_date,
	total_estimated_cost, total_actual_cost, approved_by, approved_at, created_by, notes, created_at, updated_at`

const planItemColumns = `id, plan_id, product_id, recipe_id, planned_quantity, actual_quantity,
	estimated_material_cost, actual_material_cost, status, sequence, completed_at`

// Create inserta la cabecera y los ítems. Debe ejecutarse dentro de una transacción.
func (r *ProductionPlanRepo) Create(ctx context.Context, p *entity.ProductionPlan) error {
	_, err := r.q.Exec(ctx, `INSERT INTO production_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		p.ID, p.PlanNumber, string(p.Status), p.PlannedStartDate, p.PlannedEndDate, p.ActualStartDate, p.ActualEndDate,
		p.TotalEstimatedCost, p.TotalActualCost, p.ApprovedBy, p.ApprovedAt, p.CreatedBy, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrap("insert production plan", err)
	}
	for _, it := range p.Items {
		_, err := r.q.Exec(ctx, `INSERT INTO production_plan_items (`+planItemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			it.ID, p.ID, it.ProductID, it.RecipeID, it.PlannedQuantity, it.ActualQuantity,
			it.EstimatedMaterialCost, it.ActualMaterialCost, string(it.Status), it.Sequence, it.CompletedAt,
		)
		if err != nil {
			return wrap("insert production plan item", err)
		}
	}
	return nil
}

func (r *ProductionPlanRepo) GetByID(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.get(ctx, `SELECT `+planColumns+` FROM production_plans WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; los ítems solo se modifican con la cabecera bloqueada.
func (r *ProductionPlanRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.get(ctx, `SELECT `+planColumns+` FROM production_plans WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductionPlanRepo) get(ctx context.Context, query, id string) (*entity.ProductionPlan, error) {
	var p entity.ProductionPlan
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.PlanNumber, &status, &p.PlannedStartDate, &p.PlannedEndDate, &p.ActualStartDate, &p.ActualEndDate,
		&p.TotalEstimatedCost, &p.TotalActualCost, &p.ApprovedBy, &p.ApprovedAt, &p.CreatedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get production plan", err)
	}
	p.Status = entity.PlanStatus(status)

	rows, err := r.q.Query(ctx, `SELECT `+planItemColumns+` FROM production_plan_items WHERE plan_id = $1 ORDER BY sequence, id`, id)
	if err != nil {
		return nil, wrap("list production plan items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.ProductionPlanItem
		var itemStatus string
		if err := rows.Scan(&it.ID, &it.PlanID, &it.ProductID, &it.RecipeID, &it.PlannedQuantity, &it.ActualQuantity,
			&it.EstimatedMaterialCost, &it.ActualMaterialCost, &itemStatus, &it.Sequence, &it.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan production plan item: %w", err)
		}
		it.Status = entity.PlanItemStatus(itemStatus)
		p.Items = append(p.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductionPlanRepo) Update(ctx context.Context, p *entity.ProductionPlan) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE production_plans SET status = $2, actual_start_date = $3, actual_end_date = $4,
			total_estimated_cost = $5, total_actual_cost = $6, approved_by = $7, approved_at = $8, updated_at = $9
		WHERE id = $1`,
		p.ID, string(p.Status), p.ActualStartDate, p.ActualEndDate,
		p.TotalEstimatedCost, p.TotalActualCost, p.ApprovedBy, p.ApprovedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrap("update production plan", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("plan de producción", p.ID)
	}
	return nil
}

func (r *ProductionPlanRepo) UpdateItem(ctx context.Context, it *entity.ProductionPlanItem) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE production_plan_items SET actual_quantity = $3, actual_material_cost = $4, status = $5, completed_at = $6
		WHERE id = $1 AND plan_id = $2`,
		it.ID, it.PlanID, it.ActualQuantity, it.ActualMaterialCost, string(it.Status), it.CompletedAt,
	)
	if err != nil {
		return wrap("update production plan item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("ítem de plan", it.ID)
	}
	return nil
}

var _ repository.MaterialUsageRepository = (*MaterialUsageRepo)(nil)

// MaterialUsageRepo consumos de materia prima por plan.
type MaterialUsageRepo struct {
	q Querier
}

func NewMaterialUsageRepository(q Querier) *MaterialUsageRepo {
	return &MaterialUsageRepo{q: q}
}

func (r *MaterialUsageRepo) Create(ctx context.Context, u *entity.MaterialUsage) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO material_usages (id, raw_material_id, product_id, plan_id, plan_item_id, quantity, unit_cost, total_cost, batch_number, used_by, used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.RawMaterialID, u.ProductID, u.PlanID, u.PlanItemID, u.Quantity, u.UnitCost, u.TotalCost,
		u.BatchNumber, u.UsedBy, u.UsedAt,
	)
	if err != nil {
		return wrap("insert material usage", err)
	}
	return nil
}

func (r *MaterialUsageRepo) ListByPlan(ctx context.Context, planID string) ([]*entity.MaterialUsage, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, raw_material_id, product_id, plan_id, plan_item_id, quantity, unit_cost, total_cost, batch_number, used_by, used_at
		FROM material_usages WHERE plan_id = $1 ORDER BY used_at, id`, planID)
	if err != nil {
		return nil, wrap("list material usages", err)
	}
	defer rows.Close()
	var list []*entity.MaterialUsage
	for rows.Next() {
		var u entity.MaterialUsage
		if err := rows.Scan(&u.ID, &u.RawMaterialID, &u.ProductID, &u.PlanID, &u.PlanItemID, &u.Quantity,
			&u.UnitCost, &u.TotalCost, &u.BatchNumber, &u.UsedBy, &u.UsedAt); err != nil {
			return nil, fmt.Errorf("scan material usage: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
