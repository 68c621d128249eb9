package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo vista de saldos cacheados de productos y materias primas.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

const stockLevelsQuery = `
	SELECT 'product' AS kind, id, sku, name, quantity, minimum_stock_level, cost AS unit_cost, updated_at
	FROM products
	UNION ALL
	SELECT 'raw_material' AS kind, id, sku, name, quantity, minimum_stock_level, cost_per_unit AS unit_cost, updated_at
	FROM raw_materials`

// Balances devuelve el saldo cacheado de todos los ítems.
func (r *StockLevelRepo) Balances(ctx context.Context) (map[entity.ItemRef]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `SELECT kind, id, quantity FROM (`+stockLevelsQuery+`) levels`)
	if err != nil {
		return nil, wrap("list balances", err)
	}
	defer rows.Close()
	out := make(map[entity.ItemRef]decimal.Decimal)
	for rows.Next() {
		var kind, id string
		var qty decimal.Decimal
		if err := rows.Scan(&kind, &id, &qty); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		out[entity.ItemRef{Kind: entity.ItemKind(kind), ID: id}] = qty
	}
	return out, rows.Err()
}

// BelowMinimum ítems con mínimo configurado y saldo por debajo de él.
func (r *StockLevelRepo) BelowMinimum(ctx context.Context) ([]*entity.StockLevel, error) {
	rows, err := r.q.Query(ctx, `
		SELECT kind, id, sku, name, quantity, minimum_stock_level, unit_cost, updated_at
		FROM (`+stockLevelsQuery+`) levels
		WHERE minimum_stock_level > 0 AND quantity < minimum_stock_level
		ORDER BY kind, sku`)
	if err != nil {
		return nil, wrap("list below minimum", err)
	}
	defer rows.Close()
	var list []*entity.StockLevel
	for rows.Next() {
		var l entity.StockLevel
		var kind string
		if err := rows.Scan(&kind, &l.Item.ID, &l.SKU, &l.Name, &l.Quantity, &l.MinimumStockLevel,
			&l.UnitCost, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		l.Item.Kind = entity.ItemKind(kind)
		list = append(list, &l)
	}
	return list, rows.Err()
}
