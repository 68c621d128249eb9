package inventory

import (
	"sort"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Balance reconstruye el saldo de un ítem sumando sus movimientos con signo.
func Balance(movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Quantity)
	}
	return total
}

// Discrepancy diferencia entre el saldo cacheado y el saldo del kardex.
type Discrepancy struct {
	Item       entity.ItemRef
	Cached     decimal.Decimal
	Ledger     decimal.Decimal
	Difference decimal.Decimal // Cached - Ledger
}

// Reconcile compara saldos cacheados contra las sumas del kardex.
// Un ítem ausente en un lado cuenta como cero.
func Reconcile(cached, ledger map[entity.ItemRef]decimal.Decimal) []Discrepancy {
	keys := make(map[entity.ItemRef]struct{}, len(cached)+len(ledger))
	for k := range cached {
		keys[k] = struct{}{}
	}
	for k := range ledger {
		keys[k] = struct{}{}
	}

	var out []Discrepancy
	for k := range keys {
		c, l := cached[k], ledger[k]
		if !c.Equal(l) {
			out = append(out, Discrepancy{Item: k, Cached: c, Ledger: l, Difference: c.Sub(l)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.String() < out[j].Item.String() })
	return out
}
