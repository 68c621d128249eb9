package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto terminado. El saldo inicia en 0 y solo cambia vía movimientos.
type CreateProductRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Cost              decimal.Decimal `json:"cost"`
	Price             decimal.Decimal `json:"price"`
	MinimumStockLevel decimal.Decimal `json:"minimum_stock_level"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Quantity          decimal.Decimal `json:"quantity"`
	Cost              decimal.Decimal `json:"cost"`
	Price             decimal.Decimal `json:"price"`
	MinimumStockLevel decimal.Decimal `json:"minimum_stock_level"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateRawMaterialRequest entrada para crear una materia prima.
type CreateRawMaterialRequest struct {
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	MinimumStockLevel decimal.Decimal `json:"minimum_stock_level"`
	SupplierID        string          `json:"supplier_id"`
}

// RawMaterialResponse salida de una materia prima.
type RawMaterialResponse struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	Quantity          decimal.Decimal `json:"quantity"`
	CostPerUnit       decimal.Decimal `json:"cost_per_unit"`
	MinimumStockLevel decimal.Decimal `json:"minimum_stock_level"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CreateBOMLineRequest línea de receta. CostPerUnit opcional reemplaza el costo de la materia prima al estimar.
type CreateBOMLineRequest struct {
	RawMaterialID    string           `json:"raw_material_id"`
	RecipeID         string           `json:"recipe_id"`
	QuantityRequired decimal.Decimal  `json:"quantity_required"`
	WastePercentage  decimal.Decimal  `json:"waste_percentage"`
	CostPerUnit      *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Sequence         int              `json:"sequence"`
}

// BOMLineResponse salida de una línea de receta.
type BOMLineResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	RawMaterialID    string           `json:"raw_material_id"`
	RecipeID         string           `json:"recipe_id,omitempty"`
	QuantityRequired decimal.Decimal  `json:"quantity_required"`
	WastePercentage  decimal.Decimal  `json:"waste_percentage"`
	CostPerUnit      *decimal.Decimal `json:"cost_per_unit,omitempty"`
	Sequence         int              `json:"sequence"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// RawMaterialListResponse lista paginada de materias primas.
type RawMaterialListResponse struct {
	Items []RawMaterialResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
