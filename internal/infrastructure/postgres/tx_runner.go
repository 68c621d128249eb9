package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(txRepos{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txRepos construye cada repositorio sobre la misma pgx.Tx.
type txRepos struct {
	tx pgx.Tx
}

func (r txRepos) Products() repository.ProductRepository { return NewProductRepository(r.tx) }
func (r txRepos) RawMaterials() repository.RawMaterialRepository {
	return NewRawMaterialRepository(r.tx)
}
func (r txRepos) BOM() repository.BOMRepository { return NewBOMRepository(r.tx) }
func (r txRepos) Movements() repository.StockMovementRepository {
	return NewStockMovementRepository(r.tx)
}
func (r txRepos) Levels() repository.StockLevelRepository { return NewStockLevelRepository(r.tx) }
func (r txRepos) Plans() repository.ProductionPlanRepository {
	return NewProductionPlanRepository(r.tx)
}
func (r txRepos) Usages() repository.MaterialUsageRepository {
	return NewMaterialUsageRepository(r.tx)
}
func (r txRepos) Orders() repository.OrderRepository       { return NewOrderRepository(r.tx) }
func (r txRepos) Sales() repository.SaleRepository         { return NewSaleRepository(r.tx) }
func (r txRepos) Purchases() repository.PurchaseRepository { return NewPurchaseRepository(r.tx) }
