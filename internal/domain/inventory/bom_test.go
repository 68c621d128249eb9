package inventory_test

import (
	"testing"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flour(qty string) *entity.RawMaterial {
	return &entity.RawMaterial{ID: "mat-flour", Name: "Harina", Quantity: d(qty), CostPerUnit: d("10")}
}

func breadLines() []*entity.BOMLine {
	return []*entity.BOMLine{
		{ID: "bom-1", ProductID: "prod-bread", RawMaterialID: "mat-flour", QuantityRequired: d("0.5"), WastePercentage: d("5"), Sequence: 1},
	}
}

func TestRequirementsFor_AplicaMerma(t *testing.T) {
	mats := map[string]*entity.RawMaterial{"mat-flour": flour("60")}

	reqs, err := inventory.RequirementsFor(breadLines(), mats, d("100"))
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	assert.True(t, reqs[0].RequiredBase.Equal(d("50")))
	assert.True(t, reqs[0].RequiredTotal.Equal(d("52.5")))
	assert.True(t, reqs[0].MaterialCost.Equal(d("525")))
}

func TestRequirementsFor_UsaOverrideDeCosto(t *testing.T) {
	override := d("7")
	lines := breadLines()
	lines[0].CostPerUnit = &override
	mats := map[string]*entity.RawMaterial{"mat-flour": flour("60")}

	reqs, err := inventory.RequirementsFor(lines, mats, d("10"))
	require.NoError(t, err)
	assert.True(t, reqs[0].UnitCost.Equal(d("7")))
	assert.True(t, reqs[0].MaterialCost.Equal(d("36.75")))
}

func TestRequirementsFor_MateriaPrimaInexistente(t *testing.T) {
	_, err := inventory.RequirementsFor(breadLines(), map[string]*entity.RawMaterial{}, d("1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequirementsFor_OrdenaPorSecuencia(t *testing.T) {
	lines := []*entity.BOMLine{
		{ID: "b", RawMaterialID: "m2", QuantityRequired: d("1"), WastePercentage: d("0"), Sequence: 2},
		{ID: "a", RawMaterialID: "m1", QuantityRequired: d("1"), WastePercentage: d("0"), Sequence: 1},
	}
	mats := map[string]*entity.RawMaterial{
		"m1": {ID: "m1", CostPerUnit: d("1")},
		"m2": {ID: "m2", CostPerUnit: d("1")},
	}
	reqs, err := inventory.RequirementsFor(lines, mats, d("1"))
	require.NoError(t, err)
	assert.Equal(t, "a", reqs[0].BOMLineID)
	assert.Equal(t, "b", reqs[1].BOMLineID)
}

// Dos ítems que comparten harina: cada uno cabe por separado, pero el agregado no.
func TestShortages_AgregaMaterialCompartido(t *testing.T) {
	mats := map[string]*entity.RawMaterial{"mat-flour": flour("60")}

	r1, err := inventory.RequirementsFor(breadLines(), mats, d("60")) // 31.5
	require.NoError(t, err)
	r2, err := inventory.RequirementsFor(breadLines(), mats, d("60")) // 31.5
	require.NoError(t, err)

	assert.Empty(t, inventory.Shortages(inventory.Aggregate(r1), mats))
	assert.Empty(t, inventory.Shortages(inventory.Aggregate(r2), mats))

	shortages := inventory.Shortages(inventory.Aggregate(r1, r2), mats)
	require.Len(t, shortages, 1)
	assert.Equal(t, "mat-flour", shortages[0].ItemID)
	assert.True(t, shortages[0].Required.Equal(d("63")))
	assert.True(t, shortages[0].Shortfall.Equal(d("3")))
}

func TestShortages_EscenarioFaltanteHarina(t *testing.T) {
	mats := map[string]*entity.RawMaterial{"mat-flour": flour("40")}
	reqs, err := inventory.RequirementsFor(breadLines(), mats, d("100"))
	require.NoError(t, err)

	shortages := inventory.Shortages(inventory.Aggregate(reqs), mats)
	require.Len(t, shortages, 1)
	assert.Equal(t, "Harina", shortages[0].ItemName)
	assert.True(t, shortages[0].Shortfall.Equal(d("12.5")))
}

func TestMaterialIDs_DistintosYOrdenados(t *testing.T) {
	ids := inventory.MaterialIDs(
		[]*entity.BOMLine{{RawMaterialID: "z"}, {RawMaterialID: "a"}},
		[]*entity.BOMLine{{RawMaterialID: "a"}, {RawMaterialID: "m"}},
	)
	assert.Equal(t, []string{"a", "m", "z"}, ids)
}

func TestRequirementsFor_RedondeaAEscalaDelKardex(t *testing.T) {
	mats := map[string]*entity.RawMaterial{"mat-flour": flour("60")}

	// 0.5 * 0.01 * 1.05 = 0.00525 -> 0.0053 (mitad lejos de cero)
	reqs, err := inventory.RequirementsFor(breadLines(), mats, d("0.01"))
	require.NoError(t, err)
	assert.Equal(t, "0.0053", reqs[0].RequiredTotal.String())
	assert.True(t, inventory.HasQuantityScale(reqs[0].RequiredTotal))
}

func TestHasQuantityScale(t *testing.T) {
	assert.True(t, inventory.HasQuantityScale(d("59.9947")))
	assert.True(t, inventory.HasQuantityScale(d("100")))
	assert.False(t, inventory.HasQuantityScale(d("0.00525")))
	assert.Equal(t, "-0.0053", inventory.RoundQuantity(d("-0.00525")).String())
}
