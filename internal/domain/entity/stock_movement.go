package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica una entrada del kardex.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypePurchase         MovementType = "purchase"          // recepción de compra (+)
	MovementTypeProduction       MovementType = "production"        // producto terminado (+)
	MovementTypeUsage            MovementType = "usage"             // consumo en producción (-)
	MovementTypeSale             MovementType = "sale"              // pedido confirmado (-)
	MovementTypeReturn           MovementType = "return"            // devolución / pedido cancelado (+)
	MovementTypeAdjustment       MovementType = "adjustment"        // ajuste manual (±)
	MovementTypeWaste            MovementType = "waste"             // merma (-)
	MovementTypeDamage           MovementType = "damage"            // daño (-)
	MovementTypeInitial          MovementType = "initial"           // saldo inicial (+)
	MovementTypePurchaseReversal MovementType = "purchase_reversal" // anulación de compra recibida (-)
)

// IsValid indica si el tipo es conocido.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypePurchase, MovementTypeProduction, MovementTypeUsage, MovementTypeSale,
		MovementTypeReturn, MovementTypeAdjustment, MovementTypeWaste, MovementTypeDamage,
		MovementTypeInitial, MovementTypePurchaseReversal:
		return true
	}
	return false
}

// IsManual indica si el tipo se puede registrar con un ajuste manual.
func (t MovementType) IsManual() bool {
	switch t {
	case MovementTypeAdjustment, MovementTypeWaste, MovementTypeDamage, MovementTypeInitial, MovementTypeReturn:
		return true
	}
	return false
}

// ItemKind distingue producto terminado de materia prima.
type ItemKind string

const (
	ItemKindProduct     ItemKind = "product"
	ItemKindRawMaterial ItemKind = "raw_material"
)

// ItemRef identifica exactamente un ítem de inventario.
type ItemRef struct {
	Kind ItemKind
	ID   string
}

// ProductRef referencia un producto.
func ProductRef(id string) ItemRef { return ItemRef{Kind: ItemKindProduct, ID: id} }

// RawMaterialRef referencia una materia prima.
func RawMaterialRef(id string) ItemRef { return ItemRef{Kind: ItemKindRawMaterial, ID: id} }

// IsValid indica si la referencia apunta a un tipo de ítem conocido con ID.
func (r ItemRef) IsValid() bool {
	return (r.Kind == ItemKindProduct || r.Kind == ItemKindRawMaterial) && r.ID != ""
}

func (r ItemRef) String() string { return string(r.Kind) + ":" + r.ID }

// RefKind es la etiqueta del documento que originó un movimiento.
type RefKind string

const (
	RefKindNone           RefKind = ""
	RefKindOrder          RefKind = "order"
	RefKindPurchase       RefKind = "purchase"
	RefKindProductionPlan RefKind = "production_plan"
)

// EventRef es la variante {Order(id) | Purchase(id) | ProductionPlan(id) | None}.
// Los campos son privados para que solo se construya con los constructores.
type EventRef struct {
	kind RefKind
	id   string
}

// NoRef movimiento sin documento (ajuste manual).
func NoRef() EventRef { return EventRef{} }

// OrderRef referencia un pedido.
func OrderRef(id string) EventRef { return EventRef{kind: RefKindOrder, id: id} }

// PurchaseRef referencia una compra.
func PurchaseRef(id string) EventRef { return EventRef{kind: RefKindPurchase, id: id} }

// PlanRef referencia un plan de producción.
func PlanRef(id string) EventRef { return EventRef{kind: RefKindProductionPlan, id: id} }

// ParseEventRef reconstruye la variante desde su forma persistida.
func ParseEventRef(kind, id string) (EventRef, error) {
	switch RefKind(kind) {
	case RefKindNone:
		if id != "" {
			return EventRef{}, fmt.Errorf("referencia sin tipo con id %q", id)
		}
		return NoRef(), nil
	case RefKindOrder, RefKindPurchase, RefKindProductionPlan:
		if id == "" {
			return EventRef{}, fmt.Errorf("referencia %q sin id", kind)
		}
		return EventRef{kind: RefKind(kind), id: id}, nil
	}
	return EventRef{}, fmt.Errorf("tipo de referencia desconocido %q", kind)
}

func (r EventRef) Kind() RefKind { return r.kind }
func (r EventRef) ID() string    { return r.id }
func (r EventRef) IsNone() bool  { return r.kind == RefKindNone }

// StockMovement es una entrada inmutable del kardex. Nunca se actualiza ni se elimina.
type StockMovement struct {
	ID        string
	Item      ItemRef
	Quantity  decimal.Decimal // con signo: positivo entrada, negativo salida
	Type      MovementType
	UnitPrice decimal.Decimal
	Reference EventRef
	Actor     string
	Notes     string
	CreatedAt time.Time
}
