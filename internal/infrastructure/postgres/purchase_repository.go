package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo órdenes de compra de materia prima.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, purchase_number, supplier_id, status, total, approved_by, approved_at, received_at,
	created_by, notes, created_at, updated_at`

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, p.PurchaseNumber, p.SupplierID, string(p.Status), p.Total, p.ApprovedBy, p.ApprovedAt, p.ReceivedAt,
		p.CreatedBy, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return wrap("insert purchase", err)
	}
	for i, it := range p.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_items (id, purchase_id, raw_material_id, quantity, unit_price, received_quantity, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.ID, p.ID, it.RawMaterialID, it.Quantity, it.UnitPrice, it.ReceivedQuantity, i,
		)
		if err != nil {
			return wrap("insert purchase item", err)
		}
	}
	return nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id)
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1 FOR UPDATE`, id)
}

func (r *PurchaseRepo) get(ctx context.Context, query, id string) (*entity.Purchase, error) {
	var p entity.Purchase
	var status string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.PurchaseNumber, &p.SupplierID, &status, &p.Total, &p.ApprovedBy, &p.ApprovedAt, &p.ReceivedAt,
		&p.CreatedBy, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase", err)
	}
	p.Status = entity.PurchaseStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, raw_material_id, quantity, unit_price, received_quantity
		FROM purchase_items WHERE purchase_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, wrap("list purchase items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.RawMaterialID, &it.Quantity, &it.UnitPrice, &it.ReceivedQuantity); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		p.Items = append(p.Items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update guarda estado, aprobación y fecha de recepción.
func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchases SET status = $2, approved_by = $3, approved_at = $4, received_at = $5, updated_at = $6
		WHERE id = $1`,
		p.ID, string(p.Status), p.ApprovedBy, p.ApprovedAt, p.ReceivedAt, p.UpdatedAt)
	if err != nil {
		return wrap("update purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("compra", p.ID)
	}
	return nil
}

func (r *PurchaseRepo) UpdateItemReceived(ctx context.Context, itemID string, received decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_items SET received_quantity = $2 WHERE id = $1`, itemID, received)
	if err != nil {
		return wrap("update purchase item", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("ítem de compra", itemID)
	}
	return nil
}
