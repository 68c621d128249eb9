package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialUsage es el hecho de consumo de materia prima en una producción.
// Congela cantidad y costo aplicados; cambios posteriores al BOM no lo afectan.
type MaterialUsage struct {
	ID            string
	RawMaterialID string
	ProductID     string
	PlanID        string
	PlanItemID    string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	TotalCost     decimal.Decimal
	BatchNumber   string // número del plan
	UsedBy        string
	UsedAt        time.Time
}
