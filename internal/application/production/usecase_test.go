package production_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/production"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/memory"
)

const (
	actor   = "user-1"
	breadID = "prod-bread"
	rollID  = "prod-roll"
	flourID = "mat-flour"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	ctx   context.Context
	store *memory.Store
	uc    *production.UseCase
	stock *appinv.StockUseCase
}

// newFixture: pan con 0.5 kg de harina por unidad y 5 % de merma; harina a 10 por kg.
func newFixture(t *testing.T, flourQty string) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: memory.NewStore()}
	ledger := appinv.NewLedger()
	f.uc = production.NewUseCase(f.store, ledger, appinv.Observers{})
	f.stock = appinv.NewStockUseCase(f.store, ledger, appinv.Observers{})

	err := f.store.Run(f.ctx, func(r appinv.Repos) error {
		for _, p := range []*entity.Product{
			{ID: breadID, SKU: "PAN", Name: "Pan", Cost: d("2"), Price: d("5")},
			{ID: rollID, SKU: "BOLLO", Name: "Bollo", Cost: d("1"), Price: d("3")},
		} {
			if err := r.Products().Create(f.ctx, p); err != nil {
				return err
			}
		}
		if err := r.RawMaterials().Create(f.ctx, &entity.RawMaterial{
			ID: flourID, SKU: "HAR", Name: "Harina", Unit: "kg", CostPerUnit: d("10"), MinimumStockLevel: d("10"),
		}); err != nil {
			return err
		}
		for _, l := range []*entity.BOMLine{
			{ID: "bom-bread", ProductID: breadID, RawMaterialID: flourID, QuantityRequired: d("0.5"), WastePercentage: d("5"), Sequence: 1},
			{ID: "bom-roll", ProductID: rollID, RawMaterialID: flourID, QuantityRequired: d("0.3"), WastePercentage: d("0"), Sequence: 1},
		} {
			if err := r.BOM().Create(f.ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	_, err = f.stock.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item:     entity.RawMaterialRef(flourID),
		Quantity: d(flourQty),
		Type:     entity.MovementTypeInitial,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) material(t *testing.T) *entity.RawMaterial {
	t.Helper()
	var m *entity.RawMaterial
	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		var err error
		m, err = r.RawMaterials().GetByID(f.ctx, flourID)
		return err
	}))
	return m
}

func (f *fixture) product(t *testing.T, id string) *entity.Product {
	t.Helper()
	var p *entity.Product
	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		var err error
		p, err = r.Products().GetByID(f.ctx, id)
		return err
	}))
	return p
}

func (f *fixture) movementsOf(t *testing.T, planID string) []*entity.StockMovement {
	t.Helper()
	var movs []*entity.StockMovement
	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		var err error
		movs, err = r.Movements().ListByReference(f.ctx, entity.PlanRef(planID))
		return err
	}))
	return movs
}

// startedPlan crea, aprueba e inicia un plan con los ítems dados.
func (f *fixture) startedPlan(t *testing.T, items ...production.CreatePlanItemInput) (*entity.ProductionPlan, []domain.Shortage) {
	t.Helper()
	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: items})
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, actor, plan.ID)
	require.NoError(t, err)
	res, err := f.uc.Start(f.ctx, actor, plan.ID)
	require.NoError(t, err)
	return res.Plan, res.Warnings
}

func breadItem(qty string) production.CreatePlanItemInput {
	return production.CreatePlanItemInput{ProductID: breadID, PlannedQuantity: d(qty)}
}

func TestCreatePlan_CalculaCostoEstimado(t *testing.T) {
	f := newFixture(t, "60")

	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("100")}})
	require.NoError(t, err)

	assert.Equal(t, entity.PlanStatusDraft, plan.Status)
	assert.NotEmpty(t, plan.PlanNumber)
	require.Len(t, plan.Items, 1)
	assert.True(t, plan.Items[0].EstimatedMaterialCost.Equal(d("525")))
	assert.True(t, plan.TotalEstimatedCost.Equal(d("525")))
}

func TestCreatePlan_ProductoInexistente(t *testing.T) {
	f := newFixture(t, "60")

	_, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{
		{ProductID: "no-existe", PlannedQuantity: d("1")},
	}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreatePlan_CantidadInvalida(t *testing.T) {
	f := newFixture(t, "60")

	_, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("0")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_ProduccionExitosa(t *testing.T) {
	f := newFixture(t, "60")
	plan, warnings := f.startedPlan(t, breadItem("100"))
	assert.Empty(t, warnings)

	done, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, entity.PlanStatusCompleted, done.Status)
	assert.NotNil(t, done.ActualEndDate)
	assert.True(t, done.TotalActualCost.Equal(d("525")))
	require.Len(t, done.Items, 1)
	assert.Equal(t, entity.PlanItemStatusCompleted, done.Items[0].Status)
	assert.True(t, done.Items[0].ActualQuantity.Equal(d("100")))

	assert.True(t, f.material(t).Quantity.Equal(d("7.5")))
	assert.True(t, f.material(t).CostPerUnit.Equal(d("10")), "el consumo no cambia el costo")
	assert.True(t, f.product(t, breadID).Quantity.Equal(d("100")))

	movs := f.movementsOf(t, plan.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeUsage, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(d("-52.5")))
	assert.Equal(t, entity.MovementTypeProduction, movs[1].Type)
	assert.True(t, movs[1].Quantity.Equal(d("100")))
	assert.True(t, movs[1].UnitPrice.Equal(d("2")))

	var usages []*entity.MaterialUsage
	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		var err error
		usages, err = r.Usages().ListByPlan(f.ctx, plan.ID)
		return err
	}))
	require.Len(t, usages, 1)
	assert.Equal(t, plan.PlanNumber, usages[0].BatchNumber)
	assert.True(t, usages[0].TotalCost.Equal(d("525")))

	ver, err := f.stock.VerifyLedger(f.ctx)
	require.NoError(t, err)
	assert.True(t, ver.Consistent)
}

func TestComplete_FaltanteNoMutaNada(t *testing.T) {
	f := newFixture(t, "40")
	plan, warnings := f.startedPlan(t, breadItem("100"))

	// Start solo advierte
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].Shortfall.Equal(d("12.5")))
	assert.Equal(t, entity.PlanStatusInProgress, plan.Status)

	_, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	require.Len(t, stockErr.Shortages, 1)
	assert.Equal(t, flourID, stockErr.Shortages[0].ItemID)
	assert.True(t, stockErr.Shortages[0].Shortfall.Equal(d("12.5")))

	assert.True(t, f.material(t).Quantity.Equal(d("40")))
	assert.True(t, f.product(t, breadID).Quantity.IsZero())
	assert.Empty(t, f.movementsOf(t, plan.ID))

	got, err := f.uc.Get(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusInProgress, got.Status)
}

func TestComplete_AgregaNecesidadesDeMaterialCompartido(t *testing.T) {
	// 100 panes = 52.5 kg y 100 bollos = 30 kg; cada uno cabe en 60 kg pero juntos no.
	f := newFixture(t, "60")
	plan, warnings := f.startedPlan(t, breadItem("100"), production.CreatePlanItemInput{ProductID: rollID, PlannedQuantity: d("100")})
	require.Len(t, warnings, 1)

	_, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Shortages[0].Required.Equal(d("82.5")))
	assert.True(t, stockErr.Shortages[0].Shortfall.Equal(d("22.5")))
	assert.True(t, f.material(t).Quantity.Equal(d("60")))
}

func TestComplete_CantidadRealReemplazaLaPlanificada(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("100"))

	done, err := f.uc.Complete(f.ctx, actor, plan.ID, map[string]decimal.Decimal{plan.Items[0].ID: d("95")})
	require.NoError(t, err)

	assert.True(t, done.Items[0].ActualQuantity.Equal(d("95")))
	assert.True(t, f.product(t, breadID).Quantity.Equal(d("95")))
	// el consumo se calcula sobre lo planificado
	assert.True(t, f.material(t).Quantity.Equal(d("7.5")))
}

func TestComplete_ItemAjenoAlPlan(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("100"))

	_, err := f.uc.Complete(f.ctx, actor, plan.ID, map[string]decimal.Decimal{"otro": d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, f.material(t).Quantity.Equal(d("60")))
}

func TestComplete_FalloDelKardexRevierteTodo(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("100"))

	f.store.MovementFault = errors.New("disco lleno")
	_, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	f.store.MovementFault = nil

	assert.ErrorIs(t, err, domain.ErrConsistency)
	assert.True(t, f.material(t).Quantity.Equal(d("60")))
	assert.True(t, f.product(t, breadID).Quantity.IsZero())
	got, err := f.uc.Get(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusInProgress, got.Status)
}

func TestComplete_DesdeApprovedNoPermitido(t *testing.T) {
	f := newFixture(t, "60")
	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("10")}})
	require.NoError(t, err)
	_, err = f.uc.Approve(f.ctx, actor, plan.ID)
	require.NoError(t, err)

	_, err = f.uc.Complete(f.ctx, actor, plan.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestPlanCompletado_EsTerminal(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("10"))
	_, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	require.NoError(t, err)

	_, err = f.uc.Approve(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Start(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Complete(f.ctx, actor, plan.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Cancel(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// una sola acreditación
	assert.True(t, f.product(t, breadID).Quantity.Equal(d("10")))
}

func TestCancel_DesdeDraftYLuegoTerminal(t *testing.T) {
	f := newFixture(t, "60")
	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("10")}})
	require.NoError(t, err)

	cancelled, err := f.uc.Cancel(f.ctx, actor, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusCancelled, cancelled.Status)
	assert.Equal(t, entity.PlanItemStatusCancelled, cancelled.Items[0].Status)

	_, err = f.uc.Approve(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.uc.Start(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCancel_DesdeInProgressNoPermitido(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("10"))

	_, err := f.uc.Cancel(f.ctx, actor, plan.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestApprove_RegistraAprobador(t *testing.T) {
	f := newFixture(t, "60")
	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("10")}})
	require.NoError(t, err)

	approved, err := f.uc.Approve(f.ctx, "supervisor", plan.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusApproved, approved.Status)
	assert.Equal(t, "supervisor", approved.ApprovedBy)
	assert.NotNil(t, approved.ApprovedAt)
}

func TestRequirements_ReportaFaltantesSinMutar(t *testing.T) {
	f := newFixture(t, "40")
	plan, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("100")}})
	require.NoError(t, err)

	req, err := f.uc.Requirements(f.ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, req.Required[flourID].Equal(d("52.5")))
	require.Len(t, req.Shortages, 1)
	assert.True(t, req.Shortages[0].Shortfall.Equal(d("12.5")))
	assert.True(t, req.Estimated.Equal(d("525")))
	assert.Equal(t, entity.PlanStatusDraft, req.Plan.Status)
}

func TestGet_PlanInexistente(t *testing.T) {
	f := newFixture(t, "60")

	_, err := f.uc.Get(f.ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Las columnas de cantidad guardan 4 decimales: saldo y movimientos deben coincidir tras el redondeo.
func TestComplete_CantidadesFraccionariasCuadranConElKardex(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("0.01"))

	_, err := f.uc.Complete(f.ctx, actor, plan.ID, nil)
	require.NoError(t, err)

	movs := f.movementsOf(t, plan.ID)
	require.Len(t, movs, 2)
	assert.Equal(t, "-0.0053", movs[0].Quantity.String())
	for _, m := range movs {
		assert.True(t, m.Quantity.Equal(m.Quantity.Round(4)), "movimiento %s fuera de escala", m.Quantity)
	}

	qty := f.material(t).Quantity
	assert.Equal(t, "59.9947", qty.String())
	assert.True(t, qty.Equal(qty.Round(4)))

	ver, err := f.stock.VerifyLedger(f.ctx)
	require.NoError(t, err)
	assert.True(t, ver.Consistent)
}

func TestCreatePlan_CantidadFueraDeEscala(t *testing.T) {
	f := newFixture(t, "60")

	_, err := f.uc.CreatePlan(f.ctx, actor, production.CreatePlanInput{Items: []production.CreatePlanItemInput{breadItem("1.00001")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestComplete_LoteFallidoConCantidadCero(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("100"))

	done, err := f.uc.Complete(f.ctx, actor, plan.ID, map[string]decimal.Decimal{plan.Items[0].ID: d("0")})
	require.NoError(t, err)

	assert.Equal(t, entity.PlanStatusCompleted, done.Status)
	assert.True(t, done.Items[0].ActualQuantity.IsZero())
	assert.True(t, done.TotalActualCost.Equal(d("525")), "el material consumido se costea igual")
	assert.True(t, f.material(t).Quantity.Equal(d("7.5")))
	assert.True(t, f.product(t, breadID).Quantity.IsZero())

	movs := f.movementsOf(t, plan.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeUsage, movs[0].Type)
}

func TestComplete_CantidadRealNegativa(t *testing.T) {
	f := newFixture(t, "60")
	plan, _ := f.startedPlan(t, breadItem("100"))

	_, err := f.uc.Complete(f.ctx, actor, plan.ID, map[string]decimal.Decimal{plan.Items[0].ID: d("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
