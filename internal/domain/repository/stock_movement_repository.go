package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockMovementRepository puerto del kardex. Solo inserción y consulta: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByItem(ctx context.Context, item entity.ItemRef, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(ctx context.Context, ref entity.EventRef) ([]*entity.StockMovement, error)
	// SumByItem devuelve la suma de movimientos por ítem (saldo según kardex).
	SumByItem(ctx context.Context) (map[entity.ItemRef]decimal.Decimal, error)
}
