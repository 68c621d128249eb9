package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase genera la lista de reposición: ítems por debajo de su nivel mínimo
// con la cantidad sugerida de compra o de producción.
type ReplenishmentUseCase struct {
	txRunner TxRunner
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(txRunner TxRunner) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{txRunner: txRunner}
}

// GenerateReplenishmentList ordena por déficit relativo (el más lejos de su mínimo primero).
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	var levels []*entity.StockLevel
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		levels, err = repos.Levels().BelowMinimum(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	factor := decimal.NewFromFloat(1.5)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(levels))
	for _, lv := range levels {
		ideal := lv.MinimumStockLevel.Mul(factor)
		suggested := ideal.Sub(lv.Quantity)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ItemKind:           string(lv.Item.Kind),
			ItemID:             lv.Item.ID,
			SKU:                lv.SKU,
			Name:               lv.Name,
			CurrentStock:       lv.Quantity,
			MinimumStockLevel:  lv.MinimumStockLevel,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           lv.UnitCost,
			EstimatedOrderCost: suggested.Mul(lv.UnitCost),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return coverage(suggestions[i]).LessThan(coverage(suggestions[j]))
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

// coverage saldo / mínimo; menor = más urgente.
func coverage(s dto.ReplenishmentSuggestionDTO) decimal.Decimal {
	if !s.MinimumStockLevel.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return s.CurrentStock.Div(s.MinimumStockLevel)
}
