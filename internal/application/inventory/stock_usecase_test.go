package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	appinv "github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/memory"
)

const (
	actor   = "user-1"
	breadID = "prod-bread"
	flourID = "mat-flour"
	saltID  = "mat-salt"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakePublisher guarda los eventos publicados; err simula un broker caído.
type fakePublisher struct {
	mu     sync.Mutex
	events []ports.DomainEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, events ...ports.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

// fakeMetrics cuenta operaciones por resultado.
type fakeMetrics struct {
	ok, failed map[string]int
}

func (m *fakeMetrics) ObserveOperation(op string, err error, _ time.Duration) {
	if err != nil {
		m.failed[op]++
		return
	}
	m.ok[op]++
}

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	uc      *appinv.StockUseCase
	pub     *fakePublisher
	metrics *fakeMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:     context.Background(),
		store:   memory.NewStore(),
		pub:     &fakePublisher{},
		metrics: &fakeMetrics{ok: map[string]int{}, failed: map[string]int{}},
	}
	f.uc = appinv.NewStockUseCase(f.store, appinv.NewLedger(), appinv.Observers{Publisher: f.pub, Metrics: f.metrics})

	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		if err := r.Products().Create(f.ctx, &entity.Product{
			ID: breadID, SKU: "PAN", Name: "Pan", Cost: d("2"), Price: d("5"), MinimumStockLevel: d("5"),
		}); err != nil {
			return err
		}
		if err := r.RawMaterials().Create(f.ctx, &entity.RawMaterial{
			ID: flourID, SKU: "HAR", Name: "Harina", Unit: "kg", CostPerUnit: d("10"), MinimumStockLevel: d("20"),
		}); err != nil {
			return err
		}
		return r.RawMaterials().Create(f.ctx, &entity.RawMaterial{
			ID: saltID, SKU: "SAL", Name: "Sal", Unit: "kg", CostPerUnit: d("1"), MinimumStockLevel: d("1"),
		})
	}))
	return f
}

func (f *fixture) initial(t *testing.T, item entity.ItemRef, qty string) {
	t.Helper()
	_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{Item: item, Quantity: d(qty), Type: entity.MovementTypeInitial})
	require.NoError(t, err)
}

func TestAdjustStock_RegistraMovimiento(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "50")

	res, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(flourID), Quantity: d("-3"), Type: entity.MovementTypeDamage, Notes: "bolsa rota",
	})
	require.NoError(t, err)

	assert.True(t, res.Before.Equal(d("50")))
	assert.True(t, res.After.Equal(d("47")))
	assert.True(t, res.CostPerUnit.Equal(d("10")))
	assert.Equal(t, "damage", res.Movement.Type)
	assert.Equal(t, actor, res.Movement.Actor)
	assert.Empty(t, res.Movement.ReferenceKind)
	assert.Equal(t, 2, f.metrics.ok["adjust_stock"])
}

func TestAdjustStock_RechazaSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.ProductRef(breadID), "3")

	_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.ProductRef(breadID), Quantity: d("-4"), Type: entity.MovementTypeAdjustment,
	})

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.True(t, stockErr.Shortages[0].Shortfall.Equal(d("1")))
	assert.Equal(t, 1, f.metrics.failed["adjust_stock"])

	hist, err := f.uc.History(f.ctx, entity.ProductRef(breadID), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestAdjustStock_ValidaTipoYSigno(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "50")

	cases := []struct {
		name string
		in   appinv.AdjustInput
	}{
		{"tipo automático", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("1"), Type: entity.MovementTypePurchase}},
		{"merma positiva", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("1"), Type: entity.MovementTypeWaste}},
		{"inicial negativo", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("-1"), Type: entity.MovementTypeInitial}},
		{"cantidad cero", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("0"), Type: entity.MovementTypeAdjustment}},
		{"ítem inválido", appinv.AdjustInput{Item: entity.ItemRef{Kind: "otro", ID: "x"}, Quantity: d("1"), Type: entity.MovementTypeAdjustment}},
		{"más decimales que el kardex", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("-0.00005"), Type: entity.MovementTypeAdjustment}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.AdjustStock(f.ctx, actor, tc.in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := f.uc.AdjustStock(f.ctx, "", appinv.AdjustInput{Item: entity.RawMaterialRef(flourID), Quantity: d("1"), Type: entity.MovementTypeAdjustment})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el actor es obligatorio")
}

func TestAdjustStock_ItemInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.ProductRef("no-existe"), Quantity: d("1"), Type: entity.MovementTypeInitial,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddStock_RecalculaCostoPromedio(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "100")

	res, err := f.uc.AddStock(f.ctx, actor, flourID, d("50"), d("12"), "")
	require.NoError(t, err)

	assert.True(t, res.After.Equal(d("150")))
	assert.Equal(t, "10.667", res.CostPerUnit.Round(3).String())
	assert.Equal(t, "adjustment", res.Movement.Type)
}

func TestAddStock_ValidaEntrada(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.AddStock(f.ctx, actor, flourID, d("-1"), d("12"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddStock(f.ctx, actor, flourID, d("1"), d("-12"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.AddStock(f.ctx, actor, flourID, d("0.12345"), d("12"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustStock_PublicaStockBajoAlCruzarElMinimo(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "25")
	require.Empty(t, f.pub.events)

	_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(flourID), Quantity: d("-10"), Type: entity.MovementTypeWaste,
	})
	require.NoError(t, err)
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, ports.EventStockBelowMinimum, f.pub.events[0].Type)
	assert.Equal(t, flourID, f.pub.events[0].AggregateID)

	// ya está bajo el mínimo: no se repite
	_, err = f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(flourID), Quantity: d("-1"), Type: entity.MovementTypeWaste,
	})
	require.NoError(t, err)
	assert.Len(t, f.pub.events, 1)
}

func TestAdjustStock_FalloAlPublicarNoRevierte(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "25")
	f.pub.err = errors.New("broker caído")

	res, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(flourID), Quantity: d("-10"), Type: entity.MovementTypeWaste,
	})
	require.NoError(t, err)
	assert.True(t, res.After.Equal(d("15")))
}

func TestAdjustStock_FalloDelKardexEsConsistencyError(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "25")

	f.store.MovementFault = errors.New("tabla bloqueada")
	_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(flourID), Quantity: d("-5"), Type: entity.MovementTypeWaste,
	})
	f.store.MovementFault = nil

	assert.ErrorIs(t, err, domain.ErrConsistency)
	ver, err := f.uc.VerifyLedger(f.ctx)
	require.NoError(t, err)
	assert.True(t, ver.Consistent, "la cantidad no cambia si el kardex falla")
}

func TestVerifyLedger_DetectaDiferencias(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "25")
	f.initial(t, entity.ProductRef(breadID), "7")

	ver, err := f.uc.VerifyLedger(f.ctx)
	require.NoError(t, err)
	assert.True(t, ver.Consistent)
	assert.Equal(t, 3, ver.ItemsChecked)

	// mutación directa sin movimiento
	require.NoError(t, f.store.Run(f.ctx, func(r appinv.Repos) error {
		return r.RawMaterials().UpdateQuantity(f.ctx, saltID, d("4"))
	}))

	ver, err = f.uc.VerifyLedger(f.ctx)
	require.NoError(t, err)
	assert.False(t, ver.Consistent)
	require.Len(t, ver.Discrepancies, 1)
	assert.Equal(t, saltID, ver.Discrepancies[0].ItemID)
	assert.True(t, ver.Discrepancies[0].Difference.Equal(d("4")))
}

func TestHistory_MasRecientePrimeroYPaginado(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "10")
	for i := 0; i < 3; i++ {
		_, err := f.uc.AdjustStock(f.ctx, actor, appinv.AdjustInput{
			Item: entity.RawMaterialRef(flourID), Quantity: d("-1"), Type: entity.MovementTypeWaste,
		})
		require.NoError(t, err)
	}

	hist, err := f.uc.History(f.ctx, entity.RawMaterialRef(flourID), dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "waste", hist[0].Type)

	hist, err = f.uc.History(f.ctx, entity.RawMaterialRef(flourID), dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "initial", hist[1].Type)
}

func TestReplenishment_OrdenaPorCobertura(t *testing.T) {
	f := newFixture(t)
	f.initial(t, entity.RawMaterialRef(flourID), "10") // 10/20 = 0.5
	f.initial(t, entity.ProductRef(breadID), "1")      // 1/5 = 0.2
	f.initial(t, entity.RawMaterialRef(saltID), "3")   // sobre el mínimo

	list, err := appinv.NewReplenishmentUseCase(f.store).GenerateReplenishmentList(f.ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, breadID, list[0].ItemID)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("6.5")))

	assert.Equal(t, flourID, list[1].ItemID)
	assert.True(t, list[1].IdealStock.Equal(d("30")))
	assert.True(t, list[1].SuggestedOrderQty.Equal(d("20")))
	assert.True(t, list[1].EstimatedOrderCost.Equal(d("200")))
}
