package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto terminado del catálogo.
// Quantity es el saldo cacheado del kardex; solo lo mutan la producción y los pedidos.
type Product struct {
	ID                string
	SKU               string
	Name              string
	Quantity          decimal.Decimal // saldo actual (≥ 0)
	Cost              decimal.Decimal // costo unitario vigente
	Price             decimal.Decimal // precio de venta
	MinimumStockLevel decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BelowMinimum indica si el saldo quedó por debajo del nivel mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.MinimumStockLevel.GreaterThan(decimal.Zero) && p.Quantity.LessThan(p.MinimumStockLevel)
}
