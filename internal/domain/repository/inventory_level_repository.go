package repository

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockLevelRepository consultas de saldos cacheados (productos y materias primas).
type StockLevelRepository interface {
	// Balances devuelve el saldo cacheado de todos los ítems.
	Balances(ctx context.Context) (map[entity.ItemRef]decimal.Decimal, error)
	// BelowMinimum lista los ítems con saldo por debajo de su nivel mínimo.
	BelowMinimum(ctx context.Context) ([]*entity.StockLevel, error)
}
