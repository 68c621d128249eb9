package inventory

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos interface {
	Products() repository.ProductRepository
	RawMaterials() repository.RawMaterialRepository
	BOM() repository.BOMRepository
	Movements() repository.StockMovementRepository
	Levels() repository.StockLevelRepository
	Plans() repository.ProductionPlanRepository
	Usages() repository.MaterialUsageRepository
	Orders() repository.OrderRepository
	Sales() repository.SaleRepository
	Purchases() repository.PurchaseRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback completo; si no, Commit.
// Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
