package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate retornan (nil, nil) si no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateQuantity solo lo usa el motor de inventario, después de registrar el movimiento en la misma tx.
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// RawMaterialRepository define el puerto de persistencia para materias primas.
type RawMaterialRepository interface {
	Create(ctx context.Context, material *entity.RawMaterial) error
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error)
	UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error
	// UpdateQuantityAndCost se usa en entradas que recalculan el costo promedio ponderado.
	UpdateQuantityAndCost(ctx context.Context, id string, quantity, costPerUnit decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.RawMaterial, error)
}

// BOMRepository lista de materiales por producto. recipeID vacío = receta por defecto.
type BOMRepository interface {
	Create(ctx context.Context, line *entity.BOMLine) error
	ListByProduct(ctx context.Context, productID, recipeID string) ([]*entity.BOMLine, error)
}
