package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseStatus estado de la orden de compra a proveedor.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusApproved  PurchaseStatus = "approved"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// CanTransitionTo: pending → approved → received; pending|approved|received → cancelled.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	switch s {
	case PurchaseStatusPending:
		return target == PurchaseStatusApproved || target == PurchaseStatusCancelled
	case PurchaseStatusApproved:
		return target == PurchaseStatusReceived || target == PurchaseStatusCancelled
	case PurchaseStatusReceived:
		return target == PurchaseStatusCancelled
	}
	return false
}

// Purchase orden de compra de materias primas.
type Purchase struct {
	ID             string
	PurchaseNumber string
	SupplierID     string
	Status         PurchaseStatus
	Total          decimal.Decimal
	ApprovedBy     string
	ApprovedAt     *time.Time
	ReceivedAt     *time.Time
	CreatedBy      string
	Notes          string
	Items          []*PurchaseItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PurchaseItem línea de compra.
type PurchaseItem struct {
	ID               string
	PurchaseID       string
	RawMaterialID    string
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	ReceivedQuantity decimal.Decimal
}

// Outstanding cantidad pendiente de recibir (nunca negativa).
func (i *PurchaseItem) Outstanding() decimal.Decimal {
	r := i.Quantity.Sub(i.ReceivedQuantity)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}
