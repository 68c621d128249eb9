package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// OrderRepository pedidos de cliente con sus líneas.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Order, error)
	// UpdateStatus guarda Status, StockDeducted y UpdatedAt.
	UpdateStatus(ctx context.Context, order *entity.Order) error
}

// SaleRepository ventas generadas desde pedidos completados.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByOrderID retorna (nil, nil) si el pedido aún no tiene venta.
	GetByOrderID(ctx context.Context, orderID string) (*entity.Sale, error)
}
