package inventory

import (
	"sort"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Requirement necesidad de materia prima derivada de una línea del BOM.
type Requirement struct {
	BOMLineID     string
	RawMaterialID string
	Sequence      int
	RequiredBase  decimal.Decimal // quantity_required * cantidad
	RequiredTotal decimal.Decimal // RequiredBase * (1 + merma/100), redondeado a QuantityScale
	UnitCost      decimal.Decimal // override del BOM o costo vigente de la materia prima
	MaterialCost  decimal.Decimal // RequiredTotal * UnitCost
}

// RequirementsFor calcula los requerimientos para producir quantity unidades con las líneas dadas.
// materials debe contener cada materia prima referenciada (usualmente bloqueadas en la tx).
func RequirementsFor(lines []*entity.BOMLine, materials map[string]*entity.RawMaterial, quantity decimal.Decimal) ([]Requirement, error) {
	sorted := make([]*entity.BOMLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Sequence < sorted[j].Sequence })

	reqs := make([]Requirement, 0, len(sorted))
	for _, line := range sorted {
		material, ok := materials[line.RawMaterialID]
		if !ok || material == nil {
			return nil, domain.NewNotFoundError("materia prima", line.RawMaterialID)
		}
		base := line.QuantityRequired.Mul(quantity)
		total := RoundQuantity(base.Mul(decimal.NewFromInt(1).Add(line.WastePercentage.Div(hundred))))
		unitCost := material.CostPerUnit
		if line.CostPerUnit != nil {
			unitCost = *line.CostPerUnit
		}
		reqs = append(reqs, Requirement{
			BOMLineID:     line.ID,
			RawMaterialID: line.RawMaterialID,
			Sequence:      line.Sequence,
			RequiredBase:  base,
			RequiredTotal: total,
			UnitCost:      unitCost,
			MaterialCost:  total.Mul(unitCost),
		})
	}
	return reqs, nil
}

// Aggregate suma por materia prima los requerimientos de todas las líneas del plan.
// Debe usarse antes de comparar con el stock: materiales compartidos entre ítems se acumulan.
func Aggregate(groups ...[]Requirement) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, reqs := range groups {
		for _, r := range reqs {
			out[r.RawMaterialID] = out[r.RawMaterialID].Add(r.RequiredTotal)
		}
	}
	return out
}

// Shortages compara el agregado contra el saldo de cada materia prima.
// El resultado se ordena por ID para que el reporte sea estable.
func Shortages(required map[string]decimal.Decimal, materials map[string]*entity.RawMaterial) []domain.Shortage {
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []domain.Shortage
	for _, id := range ids {
		need := required[id]
		available := decimal.Zero
		name := ""
		if m, ok := materials[id]; ok && m != nil {
			available = m.Quantity
			name = m.Name
		}
		if need.GreaterThan(available) {
			out = append(out, domain.Shortage{
				ItemID:    id,
				ItemName:  name,
				Required:  need,
				Available: available,
				Shortfall: need.Sub(available),
			})
		}
	}
	return out
}

// TotalCost suma el costo de material de los requerimientos.
func TotalCost(reqs []Requirement) decimal.Decimal {
	total := decimal.Zero
	for _, r := range reqs {
		total = total.Add(r.MaterialCost)
	}
	return total
}

// MaterialIDs devuelve los IDs distintos referenciados por las líneas, ordenados.
// El orden ascendente es el orden de bloqueo de filas.
func MaterialIDs(lines ...[]*entity.BOMLine) []string {
	seen := make(map[string]struct{})
	for _, group := range lines {
		for _, l := range group {
			seen[l.RawMaterialID] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
