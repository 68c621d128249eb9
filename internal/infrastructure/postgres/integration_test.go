package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	appinv "github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/order"
	"github.com/jhoicas/Manufactura-api/internal/application/production"
	"github.com/jhoicas/Manufactura-api/internal/application/purchase"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Manufactura-api/pkg/config"
)

const actor = "integration"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// startPostgres levanta un contenedor, aplica las migraciones y devuelve el pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("integración con PostgreSQL omitida en modo -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("manufactura"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("docker no disponible: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := postgres.NewMigrator(dsn)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	version, dirty, err := migrator.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)
	require.NoError(t, migrator.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type seed struct {
	flourID string
	breadID string
}

// seedCatalog: pan con 0.5 kg de harina y 5 % de merma; harina a 10 por kg.
func seedCatalog(t *testing.T, ctx context.Context, runner *postgres.TxRunner) seed {
	t.Helper()
	s := seed{flourID: uuid.New().String(), breadID: uuid.New().String()}
	err := runner.Run(ctx, func(r appinv.Repos) error {
		if err := r.Products().Create(ctx, &entity.Product{
			ID: s.breadID, SKU: "PAN", Name: "Pan", Cost: d("2"), Price: d("5"),
		}); err != nil {
			return err
		}
		if err := r.RawMaterials().Create(ctx, &entity.RawMaterial{
			ID: s.flourID, SKU: "HAR", Name: "Harina", Unit: "kg", CostPerUnit: d("10"), MinimumStockLevel: d("10"),
		}); err != nil {
			return err
		}
		return r.BOM().Create(ctx, &entity.BOMLine{
			ID: uuid.New().String(), ProductID: s.breadID, RawMaterialID: s.flourID,
			QuantityRequired: d("0.5"), WastePercentage: d("5"), Sequence: 1,
		})
	})
	require.NoError(t, err)
	return s
}

func TestPostgres_FlujoCompletoCompraYProduccion(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	purchases := purchase.NewUseCase(runner, ledger, appinv.Observers{})
	plans := production.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(s.flourID), Quantity: d("100"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	// Compra de 50 kg a 12: costo promedio (100*10 + 50*12) / 150.
	p, err := purchases.Create(ctx, actor, purchase.CreateInput{
		SupplierID: "prov-1",
		Items:      []purchase.CreateItemInput{{RawMaterialID: s.flourID, Quantity: d("50"), UnitPrice: d("12")}},
	})
	require.NoError(t, err)
	_, err = purchases.Approve(ctx, actor, p.ID)
	require.NoError(t, err)
	received, err := purchases.Receive(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseStatusReceived, received.Status)

	var flour *entity.RawMaterial
	require.NoError(t, runner.Run(ctx, func(r appinv.Repos) error {
		flour, err = r.RawMaterials().GetByID(ctx, s.flourID)
		return err
	}))
	assert.True(t, d("150").Equal(flour.Quantity))
	assert.Equal(t, "10.667", flour.CostPerUnit.Round(3).String())

	// Plan de 100 panes: 0.5 * 100 * 1.05 = 52.5 kg.
	plan, err := plans.CreatePlan(ctx, actor, production.CreatePlanInput{
		Items: []production.CreatePlanItemInput{{ProductID: s.breadID, PlannedQuantity: d("100")}},
	})
	require.NoError(t, err)
	_, err = plans.Approve(ctx, actor, plan.ID)
	require.NoError(t, err)
	_, err = plans.Start(ctx, actor, plan.ID)
	require.NoError(t, err)
	completed, err := plans.Complete(ctx, actor, plan.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusCompleted, completed.Status)
	require.Len(t, completed.Items, 1)
	assert.Equal(t, entity.PlanItemStatusCompleted, completed.Items[0].Status)

	var bread *entity.Product
	var usages []*entity.MaterialUsage
	var movs []*entity.StockMovement
	require.NoError(t, runner.Run(ctx, func(r appinv.Repos) error {
		if flour, err = r.RawMaterials().GetByID(ctx, s.flourID); err != nil {
			return err
		}
		if bread, err = r.Products().GetByID(ctx, s.breadID); err != nil {
			return err
		}
		if usages, err = r.Usages().ListByPlan(ctx, plan.ID); err != nil {
			return err
		}
		movs, err = r.Movements().ListByReference(ctx, entity.PlanRef(plan.ID))
		return err
	}))
	assert.True(t, d("97.5").Equal(flour.Quantity), flour.Quantity.String())
	assert.True(t, d("100").Equal(bread.Quantity))
	require.Len(t, usages, 1)
	assert.Equal(t, completed.PlanNumber, usages[0].BatchNumber)
	require.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, entity.RefKindProductionPlan, m.Reference.Kind())
	}

	report, err := stock.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 2, report.ItemsChecked)
}

func TestPostgres_ProduccionConFaltanteNoMuta(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	plans := production.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(s.flourID), Quantity: d("40"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	plan, err := plans.CreatePlan(ctx, actor, production.CreatePlanInput{
		Items: []production.CreatePlanItemInput{{ProductID: s.breadID, PlannedQuantity: d("100")}},
	})
	require.NoError(t, err)
	_, err = plans.Approve(ctx, actor, plan.ID)
	require.NoError(t, err)
	_, err = plans.Start(ctx, actor, plan.ID)
	require.NoError(t, err)

	_, err = plans.Complete(ctx, actor, plan.ID, nil)
	var shortErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &shortErr), "esperaba InsufficientStockError, got %v", err)
	require.Len(t, shortErr.Shortages, 1)
	assert.True(t, d("12.5").Equal(shortErr.Shortages[0].Shortfall))

	got, err := plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PlanStatusInProgress, got.Status)

	history, err := stock.History(ctx, entity.RawMaterialRef(s.flourID), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestPostgres_KardexEsSoloInsercion(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	stock := appinv.NewStockUseCase(runner, appinv.NewLedger(), appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	res, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.ProductRef(s.breadID), Quantity: d("5"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `UPDATE stock_movements SET quantity = 50 WHERE id = $1`, res.Movement.ID)
	assert.Error(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM stock_movements WHERE id = $1`, res.Movement.ID)
	assert.Error(t, err)
}

// Dos confirmaciones concurrentes sobre el último stock: una gana, la otra ve el saldo ya descontado.
func TestPostgres_ConfirmacionesConcurrentesNoSobregiran(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	orders := order.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.ProductRef(s.breadID), Quantity: d("5"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	ids := make([]string, 2)
	for i := range ids {
		o, err := orders.CreateOrder(ctx, actor, order.CreateInput{
			CustomerID: "cli-1",
			Items:      []order.CreateItemInput{{ProductID: s.breadID, Quantity: d("5")}},
		})
		require.NoError(t, err)
		ids[i] = o.ID
	}

	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = orders.Confirm(ctx, actor, id)
		}(i, id)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		var shortErr *domain.InsufficientStockError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &shortErr):
			short++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)

	report, err := stock.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

// startedPlan crea, aprueba e inicia un plan de qty panes.
func startedPlan(t *testing.T, ctx context.Context, plans *production.UseCase, breadID, qty string) *entity.ProductionPlan {
	t.Helper()
	plan, err := plans.CreatePlan(ctx, actor, production.CreatePlanInput{
		Items: []production.CreatePlanItemInput{{ProductID: breadID, PlannedQuantity: d(qty)}},
	})
	require.NoError(t, err)
	_, err = plans.Approve(ctx, actor, plan.ID)
	require.NoError(t, err)
	_, err = plans.Start(ctx, actor, plan.ID)
	require.NoError(t, err)
	return plan
}

// completeConcurrently completa los planes en paralelo y devuelve los éxitos y los errores.
func completeConcurrently(t *testing.T, ctx context.Context, plans *production.UseCase, ids ...string) (ok int, failed []error) {
	t.Helper()
	errs := make([]error, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = plans.Complete(ctx, actor, id, nil)
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		failed = append(failed, err)
	}
	return ok, failed
}

// Dos planes que comparten la harina: 52.5 kg cada uno sobre 60 kg. Solo uno puede completarse.
func TestPostgres_ProduccionesConcurrentesSobreMaterialCompartido(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	plans := production.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(s.flourID), Quantity: d("60"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	first := startedPlan(t, ctx, plans, s.breadID, "100")
	second := startedPlan(t, ctx, plans, s.breadID, "100")

	ok, failed := completeConcurrently(t, ctx, plans, first.ID, second.ID)
	assert.Equal(t, 1, ok)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], domain.ErrInsufficientStock)

	var flour *entity.RawMaterial
	var bread *entity.Product
	require.NoError(t, runner.Run(ctx, func(r appinv.Repos) error {
		if flour, err = r.RawMaterials().GetByID(ctx, s.flourID); err != nil {
			return err
		}
		bread, err = r.Products().GetByID(ctx, s.breadID)
		return err
	}))
	assert.True(t, d("7.5").Equal(flour.Quantity))
	assert.True(t, d("100").Equal(bread.Quantity))

	report, err := stock.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

// El mismo plan completado dos veces en paralelo se serializa por el bloqueo del plan.
func TestPostgres_CompletarElMismoPlanEnParaleloAcreditaUnaVez(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	plans := production.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(s.flourID), Quantity: d("200"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)
	plan := startedPlan(t, ctx, plans, s.breadID, "100")

	ok, failed := completeConcurrently(t, ctx, plans, plan.ID, plan.ID)
	assert.Equal(t, 1, ok)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0], domain.ErrInvalidTransition)

	history, err := stock.History(ctx, entity.ProductRef(s.breadID), dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

// Con NUMERIC(18,4) el saldo guardado debe seguir siendo la suma exacta del kardex.
func TestPostgres_CantidadesFraccionariasCuadranConElKardex(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	runner := postgres.NewTxRunner(pool)
	ledger := appinv.NewLedger()
	stock := appinv.NewStockUseCase(runner, ledger, appinv.Observers{})
	plans := production.NewUseCase(runner, ledger, appinv.Observers{})
	s := seedCatalog(t, ctx, runner)

	_, err := stock.AdjustStock(ctx, actor, appinv.AdjustInput{
		Item: entity.RawMaterialRef(s.flourID), Quantity: d("60"), Type: entity.MovementTypeInitial,
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		plan := startedPlan(t, ctx, plans, s.breadID, "0.01")
		_, err := plans.Complete(ctx, actor, plan.ID, nil)
		require.NoError(t, err)
	}

	var flour *entity.RawMaterial
	require.NoError(t, runner.Run(ctx, func(r appinv.Repos) error {
		flour, err = r.RawMaterials().GetByID(ctx, s.flourID)
		return err
	}))
	assert.Equal(t, "59.9841", flour.Quantity.StringFixed(4))

	report, err := stock.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, report.Consistent, "%+v", report.Discrepancies)
}
