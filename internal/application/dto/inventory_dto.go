package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Quantity con signo; Type ∈ adjustment, waste, damage, initial, return.
type AdjustStockRequest struct {
	ItemKind  string           `json:"item_kind"` // product | raw_material
	ItemID    string           `json:"item_id"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Type      string           `json:"type"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// AddStockRequest body para POST /api/raw-materials/:id/stock (entrada manual con recálculo de costo).
type AddStockRequest struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes,omitempty"`
}

// StockMovementDTO entrada del kardex.
type StockMovementDTO struct {
	ID            string          `json:"id"`
	ItemKind      string          `json:"item_kind"`
	ItemID        string          `json:"item_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	Type          string          `json:"type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ReferenceKind string          `json:"reference_kind,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Actor         string          `json:"actor"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StockAdjustmentResponse resultado de un ajuste.
type StockAdjustmentResponse struct {
	Movement    StockMovementDTO `json:"movement"`
	Before      decimal.Decimal  `json:"before"`
	After       decimal.Decimal  `json:"after"`
	CostPerUnit decimal.Decimal  `json:"cost_per_unit"`
}

// DiscrepancyDTO diferencia entre saldo cacheado y kardex.
type DiscrepancyDTO struct {
	ItemKind   string          `json:"item_kind"`
	ItemID     string          `json:"item_id"`
	Cached     decimal.Decimal `json:"cached"`
	Ledger     decimal.Decimal `json:"ledger"`
	Difference decimal.Decimal `json:"difference"`
}

// LedgerVerificationResponse resultado de reconstruir los saldos desde el kardex.
type LedgerVerificationResponse struct {
	Consistent    bool             `json:"consistent"`
	ItemsChecked  int              `json:"items_checked"`
	Discrepancies []DiscrepancyDTO `json:"discrepancies"`
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un ítem
// que se encuentra por debajo de su nivel mínimo.
type ReplenishmentSuggestionDTO struct {
	ItemKind           string          `json:"item_kind"`
	ItemID             string          `json:"item_id"`
	SKU                string          `json:"sku"`
	Name               string          `json:"name"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinimumStockLevel  decimal.Decimal `json:"minimum_stock_level"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MinimumStockLevel * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	Priority           int             `json:"priority"`             // 1 = más urgente
}
