package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial representa una materia prima comprada a un proveedor.
// CostPerUnit es promedio ponderado; solo se recalcula en entradas por compra o "agregar stock".
type RawMaterial struct {
	ID                string
	SKU               string
	Name              string
	Unit              string
	Quantity          decimal.Decimal // saldo actual (≥ 0)
	CostPerUnit       decimal.Decimal // ≥ 0
	MinimumStockLevel decimal.Decimal
	SupplierID        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BelowMinimum indica si el saldo quedó por debajo del nivel mínimo configurado.
func (m *RawMaterial) BelowMinimum() bool {
	return m.MinimumStockLevel.GreaterThan(decimal.Zero) && m.Quantity.LessThan(m.MinimumStockLevel)
}
