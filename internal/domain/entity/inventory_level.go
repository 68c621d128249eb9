package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLevel saldo de un ítem frente a su nivel mínimo (base de la lista de reposición).
type StockLevel struct {
	Item              ItemRef
	SKU               string
	Name              string
	Quantity          decimal.Decimal
	MinimumStockLevel decimal.Decimal
	UnitCost          decimal.Decimal
	UpdatedAt         time.Time
}
