package inventory_test

import (
	"testing"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalance_SumaConSigno(t *testing.T) {
	movs := []*entity.StockMovement{
		{Quantity: d("100")},
		{Quantity: d("-52.5")},
		{Quantity: d("10")},
	}
	assert.True(t, inventory.Balance(movs).Equal(d("57.5")))
	assert.True(t, inventory.Balance(nil).Equal(decimal.Zero))
}

func TestReconcile_DetectaDiferencias(t *testing.T) {
	flour := entity.RawMaterialRef("mat-flour")
	bread := entity.ProductRef("prod-bread")
	salt := entity.RawMaterialRef("mat-salt")

	cached := map[entity.ItemRef]decimal.Decimal{flour: d("7.5"), bread: d("100")}
	ledger := map[entity.ItemRef]decimal.Decimal{flour: d("7.5"), bread: d("90"), salt: d("3")}

	out := inventory.Reconcile(cached, ledger)
	require.Len(t, out, 2)
	assert.Equal(t, bread, out[0].Item)
	assert.True(t, out[0].Difference.Equal(d("10")))
	assert.Equal(t, salt, out[1].Item)
	assert.True(t, out[1].Difference.Equal(d("-3")))
}
