package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale registro de venta generado al completar un pedido (a lo sumo una por pedido).
type Sale struct {
	ID        string
	OrderID   string
	Total     decimal.Decimal
	CreatedBy string
	Items     []*SaleItem
	CreatedAt time.Time
}

// SaleItem refleja una línea del pedido.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Subtotal  decimal.Decimal
}
