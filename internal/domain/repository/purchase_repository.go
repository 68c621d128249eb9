package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PurchaseRepository órdenes de compra con sus líneas.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *entity.Purchase) error
	GetByID(ctx context.Context, id string) (*entity.Purchase, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error)
	// Update guarda estado, aprobación y fecha de recepción.
	Update(ctx context.Context, purchase *entity.Purchase) error
	UpdateItemReceived(ctx context.Context, itemID string, received decimal.Decimal) error
}
