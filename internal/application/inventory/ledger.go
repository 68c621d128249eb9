package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// Entry describe una mutación de stock y su asiento en el kardex.
type Entry struct {
	Item      entity.ItemRef
	Quantity  decimal.Decimal // con signo, distinto de cero
	Type      entity.MovementType
	UnitPrice decimal.Decimal
	Reference entity.EventRef
	Actor     string
	Notes     string
	// Recost recalcula el costo promedio ponderado con UnitPrice (solo entradas de materia prima).
	Recost bool
}

// Applied resultado de una mutación registrada.
type Applied struct {
	Movement          *entity.StockMovement
	Name              string
	Before            decimal.Decimal
	After             decimal.Decimal
	MinimumStockLevel decimal.Decimal
	CostPerUnit       decimal.Decimal // costo vigente después de la mutación
}

// CrossedMinimum indica si la mutación dejó el saldo por debajo del mínimo estando antes en o sobre él.
func (a *Applied) CrossedMinimum() bool {
	if !a.MinimumStockLevel.GreaterThan(decimal.Zero) {
		return false
	}
	return a.After.LessThan(a.MinimumStockLevel) && a.Before.GreaterThanOrEqual(a.MinimumStockLevel)
}

// LowStockEvent evento de stock bajo para el ítem aplicado.
func (a *Applied) LowStockEvent(actor string) ports.DomainEvent {
	return NewEvent(ports.EventStockBelowMinimum, a.Movement.Item.ID, actor, map[string]any{
		"item_kind":           string(a.Movement.Item.Kind),
		"item_name":           a.Name,
		"quantity":            a.After.String(),
		"minimum_stock_level": a.MinimumStockLevel.String(),
	})
}

// Ledger es el kardex: cada mutación de cantidad bloquea la fila, valida el saldo no negativo,
// guarda la nueva cantidad y agrega el movimiento, todo con los repos de la transacción del caller.
type Ledger struct {
	now func() time.Time
}

// NewLedger construye el kardex.
func NewLedger() *Ledger {
	return &Ledger{now: time.Now}
}

// Record aplica la entrada dentro de la transacción de repos.
// La cantidad debe venir en la escala de persistencia (inventory.QuantityScale).
// Un saldo resultante negativo retorna *domain.InsufficientStockError sin mutar nada;
// un fallo al insertar el movimiento retorna *domain.ConsistencyError y el caller debe abortar la tx.
func (l *Ledger) Record(ctx context.Context, repos Repos, e Entry) (*Applied, error) {
	if !e.Item.IsValid() || !e.Type.IsValid() || e.Quantity.IsZero() || e.UnitPrice.IsNegative() ||
		!inventory.HasQuantityScale(e.Quantity) {
		return nil, domain.ErrInvalidInput
	}
	if e.Recost && (e.Item.Kind != entity.ItemKindRawMaterial || !e.Quantity.IsPositive()) {
		return nil, domain.ErrInvalidInput
	}

	var applied *Applied
	var err error
	switch e.Item.Kind {
	case entity.ItemKindProduct:
		applied, err = l.applyProduct(ctx, repos, e)
	case entity.ItemKindRawMaterial:
		applied, err = l.applyRawMaterial(ctx, repos, e)
	}
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		Item:      e.Item,
		Quantity:  e.Quantity,
		Type:      e.Type,
		UnitPrice: e.UnitPrice,
		Reference: e.Reference,
		Actor:     e.Actor,
		Notes:     e.Notes,
		CreatedAt: now,
	}
	if err := repos.Movements().Create(ctx, mov); err != nil {
		return nil, domain.NewConsistencyError(err)
	}
	applied.Movement = mov
	return applied, nil
}

func (l *Ledger) applyProduct(ctx context.Context, repos Repos, e Entry) (*Applied, error) {
	// Bloquea la fila del producto (SELECT FOR UPDATE) para evitar condiciones de carrera
	p, err := repos.Products().GetForUpdate(ctx, e.Item.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFoundError("producto", e.Item.ID)
	}
	newQty := p.Quantity.Add(e.Quantity)
	if newQty.IsNegative() {
		return nil, domain.NewInsufficientStockError([]domain.Shortage{
			shortage(p.ID, p.Name, e.Quantity.Neg(), p.Quantity),
		})
	}
	if err := repos.Products().UpdateQuantity(ctx, p.ID, newQty); err != nil {
		return nil, err
	}
	return &Applied{
		Name:              p.Name,
		Before:            p.Quantity,
		After:             newQty,
		MinimumStockLevel: p.MinimumStockLevel,
		CostPerUnit:       p.Cost,
	}, nil
}

func (l *Ledger) applyRawMaterial(ctx context.Context, repos Repos, e Entry) (*Applied, error) {
	m, err := repos.RawMaterials().GetForUpdate(ctx, e.Item.ID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NewNotFoundError("materia prima", e.Item.ID)
	}
	newQty := m.Quantity.Add(e.Quantity)
	if newQty.IsNegative() {
		return nil, domain.NewInsufficientStockError([]domain.Shortage{
			shortage(m.ID, m.Name, e.Quantity.Neg(), m.Quantity),
		})
	}
	cost := m.CostPerUnit
	if e.Recost {
		cost = inventory.CostCalculator(m.Quantity, m.CostPerUnit, e.Quantity, e.UnitPrice)
		err = repos.RawMaterials().UpdateQuantityAndCost(ctx, m.ID, newQty, cost)
	} else {
		err = repos.RawMaterials().UpdateQuantity(ctx, m.ID, newQty)
	}
	if err != nil {
		return nil, err
	}
	return &Applied{
		Name:              m.Name,
		Before:            m.Quantity,
		After:             newQty,
		MinimumStockLevel: m.MinimumStockLevel,
		CostPerUnit:       cost,
	}, nil
}

func shortage(id, name string, required, available decimal.Decimal) domain.Shortage {
	return domain.Shortage{
		ItemID:    id,
		ItemName:  name,
		Required:  required,
		Available: available,
		Shortfall: required.Sub(available),
	}
}
