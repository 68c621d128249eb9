package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex sobre PostgreSQL. La tabla rechaza UPDATE y DELETE por trigger.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, product_id, raw_material_id, quantity, movement_type, unit_price, reference_kind, reference_id, actor, notes, created_at`

// Create agrega un movimiento. Exactamente una de product_id / raw_material_id queda con valor.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	var productID, rawMaterialID *string
	switch m.Item.Kind {
	case entity.ItemKindProduct:
		productID = &m.Item.ID
	case entity.ItemKindRawMaterial:
		rawMaterialID = &m.Item.ID
	default:
		return fmt.Errorf("insert stock movement: tipo de ítem %q desconocido", m.Item.Kind)
	}
	_, err := r.q.Exec(ctx, `INSERT INTO stock_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, productID, rawMaterialID, m.Quantity, string(m.Type), m.UnitPrice,
		string(m.Reference.Kind()), m.Reference.ID(), m.Actor, m.Notes, m.CreatedAt,
	)
	if err != nil {
		return wrap("insert stock movement", err)
	}
	return nil
}

// ListByItem movimientos de un ítem, más recientes primero.
func (r *StockMovementRepo) ListByItem(ctx context.Context, item entity.ItemRef, limit, offset int) ([]*entity.StockMovement, error) {
	column := "product_id"
	if item.Kind == entity.ItemKindRawMaterial {
		column = "raw_material_id"
	}
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE `+column+` = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, item.ID, limit, offset)
	if err != nil {
		return nil, wrap("list movements by item", err)
	}
	return scanMovements(rows)
}

// ListByReference movimientos generados por un documento, en orden de registro.
func (r *StockMovementRepo) ListByReference(ctx context.Context, ref entity.EventRef) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `SELECT `+movementColumns+` FROM stock_movements
		WHERE reference_kind = $1 AND reference_id = $2 ORDER BY created_at, id`, string(ref.Kind()), ref.ID())
	if err != nil {
		return nil, wrap("list movements by reference", err)
	}
	return scanMovements(rows)
}

// SumByItem saldo según el kardex para cada ítem con movimientos.
func (r *StockMovementRepo) SumByItem(ctx context.Context) (map[entity.ItemRef]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, raw_material_id, SUM(quantity)
		FROM stock_movements
		GROUP BY product_id, raw_material_id`)
	if err != nil {
		return nil, wrap("sum movements", err)
	}
	defer rows.Close()
	out := make(map[entity.ItemRef]decimal.Decimal)
	for rows.Next() {
		var productID, rawMaterialID *string
		var sum decimal.Decimal
		if err := rows.Scan(&productID, &rawMaterialID, &sum); err != nil {
			return nil, fmt.Errorf("scan movement sum: %w", err)
		}
		out[itemRef(productID, rawMaterialID)] = sum
	}
	return out, rows.Err()
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var productID, rawMaterialID *string
		var movType, refKind, refID string
		if err := rows.Scan(&m.ID, &productID, &rawMaterialID, &m.Quantity, &movType, &m.UnitPrice,
			&refKind, &refID, &m.Actor, &m.Notes, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		ref, err := entity.ParseEventRef(refKind, refID)
		if err != nil {
			return nil, fmt.Errorf("movimiento %s: %w", m.ID, err)
		}
		m.Item = itemRef(productID, rawMaterialID)
		m.Type = entity.MovementType(movType)
		m.Reference = ref
		list = append(list, &m)
	}
	return list, rows.Err()
}

func itemRef(productID, rawMaterialID *string) entity.ItemRef {
	if productID != nil {
		return entity.ProductRef(*productID)
	}
	if rawMaterialID != nil {
		return entity.RawMaterialRef(*rawMaterialID)
	}
	return entity.ItemRef{}
}
