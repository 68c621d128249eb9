package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOMLine asocia un producto con una materia prima requerida (lista de materiales).
// RecipeID vacío = receta por defecto del producto.
type BOMLine struct {
	ID               string
	ProductID        string
	RawMaterialID    string
	RecipeID         string
	QuantityRequired decimal.Decimal  // por unidad de producto
	WastePercentage  decimal.Decimal  // 5 = 5 %
	CostPerUnit      *decimal.Decimal // override opcional del costo de la materia prima
	Sequence         int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
