package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePurchaseItemRequest struct {
	RawMaterialID string          `json:"raw_material_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID string                      `json:"supplier_id"`
	Notes      string                      `json:"notes"`
	Items      []CreatePurchaseItemRequest `json:"items"`
}

// ReceivePurchaseRequest cantidades por ítem de compra. Vacío recibe todo lo pendiente.
type ReceivePurchaseRequest struct {
	Quantities map[string]decimal.Decimal `json:"quantities"`
}

type PurchaseItemResponse struct {
	ID               string          `json:"id"`
	RawMaterialID    string          `json:"raw_material_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	Outstanding      decimal.Decimal `json:"outstanding"`
}

type PurchaseResponse struct {
	ID             string                 `json:"id"`
	PurchaseNumber string                 `json:"purchase_number"`
	SupplierID     string                 `json:"supplier_id,omitempty"`
	Status         string                 `json:"status"`
	Total          decimal.Decimal        `json:"total"`
	ApprovedBy     string                 `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time             `json:"approved_at,omitempty"`
	ReceivedAt     *time.Time             `json:"received_at,omitempty"`
	CreatedBy      string                 `json:"created_by"`
	Notes          string                 `json:"notes,omitempty"`
	Items          []PurchaseItemResponse `json:"items"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
