package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// StockUseCase ajustes manuales, entradas manuales y consultas del kardex.
type StockUseCase struct {
	txRunner TxRunner
	ledger   *Ledger
	obs      Observers
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(txRunner TxRunner, ledger *Ledger, obs Observers) *StockUseCase {
	return &StockUseCase{txRunner: txRunner, ledger: ledger, obs: obs}
}

// AdjustInput ajuste manual con signo. No modifica el costo.
type AdjustInput struct {
	Item      entity.ItemRef
	Quantity  decimal.Decimal
	Type      entity.MovementType
	UnitPrice decimal.Decimal
	Notes     string
}

// AdjustStock registra un ajuste manual (adjustment, waste, damage, initial, return).
// Salidas que dejarían el saldo negativo retornan InsufficientStockError.
func (uc *StockUseCase) AdjustStock(ctx context.Context, actor string, in AdjustInput) (res *dto.StockAdjustmentResponse, err error) {
	defer uc.obs.Observe("adjust_stock", time.Now(), &err)

	if actor == "" || !in.Type.IsManual() || in.Quantity.IsZero() || !inventory.HasQuantityScale(in.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementTypeWaste, entity.MovementTypeDamage:
		if in.Quantity.IsPositive() {
			return nil, domain.ErrInvalidInput
		}
	case entity.MovementTypeInitial, entity.MovementTypeReturn:
		if in.Quantity.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	var applied *Applied
	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		applied, err = uc.ledger.Record(ctx, repos, Entry{
			Item:      in.Item,
			Quantity:  in.Quantity,
			Type:      in.Type,
			UnitPrice: in.UnitPrice,
			Reference: entity.NoRef(),
			Actor:     actor,
			Notes:     in.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.afterCommit(ctx, actor, applied)
	return adjustmentResponse(applied), nil
}

// AddStock entrada manual de materia prima: suma cantidad y recalcula el costo promedio ponderado.
func (uc *StockUseCase) AddStock(ctx context.Context, actor, rawMaterialID string, quantity, unitPrice decimal.Decimal, notes string) (res *dto.StockAdjustmentResponse, err error) {
	defer uc.obs.Observe("add_stock", time.Now(), &err)

	if actor == "" || rawMaterialID == "" || !quantity.IsPositive() || !inventory.HasQuantityScale(quantity) ||
		unitPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var applied *Applied
	err = uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		applied, err = uc.ledger.Record(ctx, repos, Entry{
			Item:      entity.RawMaterialRef(rawMaterialID),
			Quantity:  quantity,
			Type:      entity.MovementTypeAdjustment,
			UnitPrice: unitPrice,
			Reference: entity.NoRef(),
			Actor:     actor,
			Notes:     notes,
			Recost:    true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.obs.Logger().Info().Str("raw_material_id", rawMaterialID).Str("quantity", quantity.String()).
		Str("cost_per_unit", applied.CostPerUnit.String()).Str("actor", actor).Msg("entrada manual de stock")
	return adjustmentResponse(applied), nil
}

// History lista los movimientos de un ítem (más recientes primero).
func (uc *StockUseCase) History(ctx context.Context, item entity.ItemRef, page dto.PageRequest) ([]dto.StockMovementDTO, error) {
	if !item.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	page.DefaultPage()
	var movs []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		movs, err = repos.Movements().ListByItem(ctx, item, page.Limit, page.Offset)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockMovementDTO, 0, len(movs))
	for _, m := range movs {
		out = append(out, MovementDTO(m))
	}
	return out, nil
}

// VerifyLedger reconstruye el saldo de cada ítem desde el kardex y lo compara con el saldo cacheado.
func (uc *StockUseCase) VerifyLedger(ctx context.Context) (*dto.LedgerVerificationResponse, error) {
	var cached, ledger map[entity.ItemRef]decimal.Decimal
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		var err error
		if cached, err = repos.Levels().Balances(ctx); err != nil {
			return err
		}
		ledger, err = repos.Movements().SumByItem(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	diffs := inventory.Reconcile(cached, ledger)
	res := &dto.LedgerVerificationResponse{
		Consistent:    len(diffs) == 0,
		ItemsChecked:  len(cached),
		Discrepancies: make([]dto.DiscrepancyDTO, 0, len(diffs)),
	}
	for _, d := range diffs {
		res.Discrepancies = append(res.Discrepancies, dto.DiscrepancyDTO{
			ItemKind:   string(d.Item.Kind),
			ItemID:     d.Item.ID,
			Cached:     d.Cached,
			Ledger:     d.Ledger,
			Difference: d.Difference,
		})
	}
	if !res.Consistent {
		uc.obs.Logger().Warn().Int("discrepancies", len(diffs)).Msg("kardex y saldos no coinciden")
	}
	return res, nil
}

func (uc *StockUseCase) afterCommit(ctx context.Context, actor string, applied *Applied) {
	var events []ports.DomainEvent
	if applied.CrossedMinimum() {
		events = append(events, applied.LowStockEvent(actor))
	}
	uc.obs.Publish(ctx, events...)
}

// MovementDTO convierte una entrada del kardex.
func MovementDTO(m *entity.StockMovement) dto.StockMovementDTO {
	return dto.StockMovementDTO{
		ID:            m.ID,
		ItemKind:      string(m.Item.Kind),
		ItemID:        m.Item.ID,
		Quantity:      m.Quantity,
		Type:          string(m.Type),
		UnitPrice:     m.UnitPrice,
		ReferenceKind: string(m.Reference.Kind()),
		ReferenceID:   m.Reference.ID(),
		Actor:         m.Actor,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

func adjustmentResponse(a *Applied) *dto.StockAdjustmentResponse {
	return &dto.StockAdjustmentResponse{
		Movement:    MovementDTO(a.Movement),
		Before:      a.Before,
		After:       a.After,
		CostPerUnit: a.CostPerUnit,
	}
}
