package production

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	appinv "github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// UseCase motor de ejecución de planes de producción.
// Ciclo: draft → approved → in_progress → completed; draft|approved → cancelled.
type UseCase struct {
	txRunner appinv.TxRunner
	ledger   *appinv.Ledger
	obs      appinv.Observers
	now      func() time.Time
}

// NewUseCase construye el motor de producción.
func NewUseCase(txRunner appinv.TxRunner, ledger *appinv.Ledger, obs appinv.Observers) *UseCase {
	return &UseCase{txRunner: txRunner, ledger: ledger, obs: obs, now: time.Now}
}

// CreatePlanItemInput línea a planificar.
type CreatePlanItemInput struct {
	ProductID       string
	RecipeID        string
	PlannedQuantity decimal.Decimal
}

// CreatePlanInput entrada para crear un plan en borrador.
type CreatePlanInput struct {
	PlannedStartDate *time.Time
	PlannedEndDate   *time.Time
	Notes            string
	Items            []CreatePlanItemInput
}

// StartResult plan iniciado y faltantes detectados (advertencia, no bloquean).
type StartResult struct {
	Plan     *entity.ProductionPlan
	Warnings []domain.Shortage
}

// Requirements reporte de necesidades agregadas del plan contra el stock actual.
type Requirements struct {
	Plan      *entity.ProductionPlan
	Required  map[string]decimal.Decimal
	Shortages []domain.Shortage
	Estimated decimal.Decimal
}

// resolvedItem requerimientos de una línea del plan.
type resolvedItem struct {
	item *entity.ProductionPlanItem
	reqs []inventory.Requirement
}

// CreatePlan crea un plan en draft con costo estimado según el BOM y el costo vigente de cada materia prima.
func (uc *UseCase) CreatePlan(ctx context.Context, actor string, in CreatePlanInput) (plan *entity.ProductionPlan, err error) {
	defer uc.obs.Observe("production_create", time.Now(), &err)

	if actor == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.PlannedQuantity.IsPositive() || !inventory.HasQuantityScale(it.PlannedQuantity) {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now().UTC()
	plan = &entity.ProductionPlan{
		ID:               uuid.New().String(),
		PlanNumber:       planNumber(now),
		Status:           entity.PlanStatusDraft,
		PlannedStartDate: in.PlannedStartDate,
		PlannedEndDate:   in.PlannedEndDate,
		CreatedBy:        actor,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for i, it := range in.Items {
		plan.Items = append(plan.Items, &entity.ProductionPlanItem{
			ID:              uuid.New().String(),
			PlanID:          plan.ID,
			ProductID:       it.ProductID,
			RecipeID:        it.RecipeID,
			PlannedQuantity: it.PlannedQuantity,
			Status:          entity.PlanItemStatusPending,
			Sequence:        i + 1,
		})
	}

	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		for _, it := range plan.Items {
			p, err := repos.Products().GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewNotFoundError("producto", it.ProductID)
			}
		}
		resolved, _, err := uc.resolve(ctx, repos, plan, false)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for _, r := range resolved {
			r.item.EstimatedMaterialCost = inventory.TotalCost(r.reqs)
			total = total.Add(r.item.EstimatedMaterialCost)
		}
		plan.TotalEstimatedCost = total
		return repos.Plans().Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Get obtiene el plan con sus ítems.
func (uc *UseCase) Get(ctx context.Context, planID string) (*entity.ProductionPlan, error) {
	var plan *entity.ProductionPlan
	err := uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		plan, err = loadPlan(ctx, repos, planID, false)
		return err
	})
	return plan, err
}

// Approve solo desde draft; registra quién aprobó y cuándo.
func (uc *UseCase) Approve(ctx context.Context, actor, planID string) (plan *entity.ProductionPlan, err error) {
	defer uc.obs.Observe("production_approve", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		plan, err = loadPlan(ctx, repos, planID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(plan, entity.PlanStatusApproved); err != nil {
			return err
		}
		now := uc.now().UTC()
		plan.Status = entity.PlanStatusApproved
		plan.ApprovedBy = actor
		plan.ApprovedAt = &now
		plan.UpdatedAt = now
		return repos.Plans().Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	uc.obs.Logger().Info().Str("plan", plan.PlanNumber).Str("actor", actor).Msg("plan de producción aprobado")
	return plan, nil
}

// Start solo desde approved. Ejecuta la misma verificación agregada de faltantes que Complete,
// pero no bloquea: el plan pasa a in_progress y los faltantes se devuelven como advertencia.
func (uc *UseCase) Start(ctx context.Context, actor, planID string) (res *StartResult, err error) {
	defer uc.obs.Observe("production_start", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	res = &StartResult{}
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		plan, err := loadPlan(ctx, repos, planID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(plan, entity.PlanStatusInProgress); err != nil {
			return err
		}
		resolved, materials, err := uc.resolve(ctx, repos, plan, false)
		if err != nil {
			return err
		}
		res.Warnings = inventory.Shortages(inventory.Aggregate(requirementsOf(resolved)...), materials)

		now := uc.now().UTC()
		for _, it := range plan.Items {
			it.Status = entity.PlanItemStatusInProgress
			if err := repos.Plans().UpdateItem(ctx, it); err != nil {
				return err
			}
		}
		plan.Status = entity.PlanStatusInProgress
		plan.ActualStartDate = &now
		plan.UpdatedAt = now
		res.Plan = plan
		return repos.Plans().Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	if len(res.Warnings) > 0 {
		uc.obs.Logger().Warn().Str("plan", res.Plan.PlanNumber).Int("shortages", len(res.Warnings)).
			Msg("plan iniciado con faltantes de materia prima")
	}
	uc.obs.Publish(ctx, appinv.NewEvent(ports.EventProductionStarted, res.Plan.ID, actor, map[string]any{
		"plan_number": res.Plan.PlanNumber,
		"shortages":   len(res.Warnings),
	}))
	return res, nil
}

// Complete solo desde in_progress, en una única transacción:
//  1. bloquea el plan y todas las materias primas involucradas (orden ascendente de ID);
//  2. agrega las necesidades de todos los ítems y, si falta algo, aborta con el detalle sin mutar nada;
//  3. por cada ítem descuenta materias primas (usage) y registra el consumo con lote = número de plan;
//  4. acredita el producto terminado (production) por la cantidad real o planificada;
//  5. marca ítems y plan como completados con el costo real.
//
// actualQuantities (opcional) reemplaza la cantidad acreditada por ítem (0 = lote fallido); el consumo
// de materia prima siempre se calcula sobre la cantidad planificada.
func (uc *UseCase) Complete(ctx context.Context, actor, planID string, actualQuantities map[string]decimal.Decimal) (plan *entity.ProductionPlan, err error) {
	defer uc.obs.Observe("production_complete", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, q := range actualQuantities {
		if q.IsNegative() || !inventory.HasQuantityScale(q) {
			return nil, domain.ErrInvalidInput
		}
	}

	var events []ports.DomainEvent
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		events = events[:0]
		var err error
		plan, err = loadPlan(ctx, repos, planID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(plan, entity.PlanStatusCompleted); err != nil {
			return err
		}
		itemIDs := make(map[string]bool, len(plan.Items))
		for _, it := range plan.Items {
			itemIDs[it.ID] = true
		}
		for id := range actualQuantities {
			if !itemIDs[id] {
				return fmt.Errorf("%w: ítem %s no pertenece al plan", domain.ErrInvalidInput, id)
			}
		}

		resolved, materials, err := uc.resolve(ctx, repos, plan, true)
		if err != nil {
			return err
		}
		if shortages := inventory.Shortages(inventory.Aggregate(requirementsOf(resolved)...), materials); len(shortages) > 0 {
			return domain.NewInsufficientStockError(shortages)
		}
		products, err := lockProducts(ctx, repos, plan)
		if err != nil {
			return err
		}

		now := uc.now().UTC()
		total := decimal.Zero
		for _, r := range resolved {
			item := r.item
			for _, req := range r.reqs {
				if req.RequiredTotal.IsZero() {
					continue
				}
				applied, err := uc.ledger.Record(ctx, repos, appinv.Entry{
					Item:      entity.RawMaterialRef(req.RawMaterialID),
					Quantity:  req.RequiredTotal.Neg(),
					Type:      entity.MovementTypeUsage,
					UnitPrice: req.UnitCost,
					Reference: entity.PlanRef(plan.ID),
					Actor:     actor,
					Notes:     "consumo plan " + plan.PlanNumber,
				})
				if err != nil {
					return err
				}
				if applied.CrossedMinimum() {
					events = append(events, applied.LowStockEvent(actor))
				}
				if err := repos.Usages().Create(ctx, &entity.MaterialUsage{
					ID:            uuid.New().String(),
					RawMaterialID: req.RawMaterialID,
					ProductID:     item.ProductID,
					PlanID:        plan.ID,
					PlanItemID:    item.ID,
					Quantity:      req.RequiredTotal,
					UnitCost:      req.UnitCost,
					TotalCost:     req.MaterialCost,
					BatchNumber:   plan.PlanNumber,
					UsedBy:        actor,
					UsedAt:        now,
				}); err != nil {
					return err
				}
			}

			produced := item.PlannedQuantity
			if q, ok := actualQuantities[item.ID]; ok {
				produced = q
			}
			// Un lote fallido se registra con cantidad 0: consume material pero no acredita producto.
			if produced.IsPositive() {
				if _, err := uc.ledger.Record(ctx, repos, appinv.Entry{
					Item:      entity.ProductRef(item.ProductID),
					Quantity:  produced,
					Type:      entity.MovementTypeProduction,
					UnitPrice: products[item.ProductID].Cost,
					Reference: entity.PlanRef(plan.ID),
					Actor:     actor,
					Notes:     "producción plan " + plan.PlanNumber,
				}); err != nil {
					return err
				}
			}

			itemCost := inventory.TotalCost(r.reqs)
			item.ActualQuantity = produced
			item.ActualMaterialCost = itemCost
			item.Status = entity.PlanItemStatusCompleted
			item.CompletedAt = &now
			if err := repos.Plans().UpdateItem(ctx, item); err != nil {
				return err
			}
			total = total.Add(itemCost)
		}

		plan.TotalActualCost = total
		plan.Status = entity.PlanStatusCompleted
		plan.ActualEndDate = &now
		plan.UpdatedAt = now
		return repos.Plans().Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}

	uc.obs.Logger().Info().Str("plan", plan.PlanNumber).Str("total_actual_cost", plan.TotalActualCost.String()).
		Str("actor", actor).Msg("plan de producción completado")
	events = append(events, appinv.NewEvent(ports.EventProductionCompleted, plan.ID, actor, map[string]any{
		"plan_number":       plan.PlanNumber,
		"total_actual_cost": plan.TotalActualCost.String(),
		"items":             len(plan.Items),
	}))
	uc.obs.Publish(ctx, events...)
	return plan, nil
}

// Cancel solo desde draft o approved; no hay efecto sobre el stock.
func (uc *UseCase) Cancel(ctx context.Context, actor, planID string) (plan *entity.ProductionPlan, err error) {
	defer uc.obs.Observe("production_cancel", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		plan, err = loadPlan(ctx, repos, planID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(plan, entity.PlanStatusCancelled); err != nil {
			return err
		}
		for _, it := range plan.Items {
			it.Status = entity.PlanItemStatusCancelled
			if err := repos.Plans().UpdateItem(ctx, it); err != nil {
				return err
			}
		}
		plan.Status = entity.PlanStatusCancelled
		plan.UpdatedAt = uc.now().UTC()
		return repos.Plans().Update(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Requirements calcula (solo lectura) las necesidades agregadas del plan y los faltantes actuales.
func (uc *UseCase) Requirements(ctx context.Context, planID string) (*Requirements, error) {
	res := &Requirements{}
	err := uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		plan, err := loadPlan(ctx, repos, planID, false)
		if err != nil {
			return err
		}
		resolved, materials, err := uc.resolve(ctx, repos, plan, false)
		if err != nil {
			return err
		}
		groups := requirementsOf(resolved)
		res.Plan = plan
		res.Required = inventory.Aggregate(groups...)
		res.Shortages = inventory.Shortages(res.Required, materials)
		res.Estimated = decimal.Zero
		for _, g := range groups {
			res.Estimated = res.Estimated.Add(inventory.TotalCost(g))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// resolve carga las líneas del BOM de cada ítem y las materias primas involucradas.
// Con lock=true las materias primas se bloquean en orden ascendente de ID.
func (uc *UseCase) resolve(ctx context.Context, repos appinv.Repos, plan *entity.ProductionPlan, lock bool) ([]resolvedItem, map[string]*entity.RawMaterial, error) {
	linesByItem := make([][]*entity.BOMLine, len(plan.Items))
	for i, it := range plan.Items {
		lines, err := repos.BOM().ListByProduct(ctx, it.ProductID, it.RecipeID)
		if err != nil {
			return nil, nil, err
		}
		if len(lines) == 0 {
			return nil, nil, fmt.Errorf("%w: producto %s sin lista de materiales", domain.ErrInvalidInput, it.ProductID)
		}
		linesByItem[i] = lines
	}

	materials := make(map[string]*entity.RawMaterial)
	for _, id := range inventory.MaterialIDs(linesByItem...) {
		var m *entity.RawMaterial
		var err error
		if lock {
			m, err = repos.RawMaterials().GetForUpdate(ctx, id)
		} else {
			m, err = repos.RawMaterials().GetByID(ctx, id)
		}
		if err != nil {
			return nil, nil, err
		}
		if m == nil {
			return nil, nil, domain.NewNotFoundError("materia prima", id)
		}
		materials[id] = m
	}

	out := make([]resolvedItem, 0, len(plan.Items))
	for i, it := range plan.Items {
		reqs, err := inventory.RequirementsFor(linesByItem[i], materials, it.PlannedQuantity)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, resolvedItem{item: it, reqs: reqs})
	}
	return out, materials, nil
}

// lockProducts bloquea los productos del plan en orden ascendente de ID.
func lockProducts(ctx context.Context, repos appinv.Repos, plan *entity.ProductionPlan) (map[string]*entity.Product, error) {
	ids := make([]string, 0, len(plan.Items))
	seen := make(map[string]bool)
	for _, it := range plan.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)

	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := repos.Products().GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFoundError("producto", id)
		}
		out[id] = p
	}
	return out, nil
}

func loadPlan(ctx context.Context, repos appinv.Repos, planID string, lock bool) (*entity.ProductionPlan, error) {
	if planID == "" {
		return nil, domain.ErrInvalidInput
	}
	var plan *entity.ProductionPlan
	var err error
	if lock {
		plan, err = repos.Plans().GetForUpdate(ctx, planID)
	} else {
		plan, err = repos.Plans().GetByID(ctx, planID)
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.NewNotFoundError("plan de producción", planID)
	}
	return plan, nil
}

func checkTransition(plan *entity.ProductionPlan, to entity.PlanStatus) error {
	if !plan.Status.CanTransitionTo(to) {
		return domain.NewInvalidTransitionError("plan de producción", plan.ID, string(plan.Status), string(to))
	}
	return nil
}

func requirementsOf(resolved []resolvedItem) [][]inventory.Requirement {
	out := make([][]inventory.Requirement, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, r.reqs)
	}
	return out
}

func planNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PP-%s-%s", now.Format("20060102"), suffix)
}
