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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, sku, name, quantity, cost, price, minimum_stock_level, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Quantity, &p.Cost, &p.Price, &p.MinimumStockLevel, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `INSERT INTO products (` + productColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.q.Exec(ctx, query, p.ID, p.SKU, p.Name, p.Quantity, p.Cost, p.Price, p.MinimumStockLevel)
	if err != nil {
		return wrap("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto y bloquea la fila (SELECT FOR UPDATE).
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get product", err)
	}
	return p, nil
}

// UpdateQuantity guarda el saldo cacheado.
func (r *ProductRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE products SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrap("update product quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("producto", id)
	}
	return nil
}

// List lista productos por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrap("list products", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

// RawMaterialRepo materias primas sobre PostgreSQL.
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

const rawMaterialColumns = `id, sku, name, unit, quantity, cost_per_unit, minimum_stock_level, supplier_id, created_at, updated_at`

func scanRawMaterial(row pgx.Row) (*entity.RawMaterial, error) {
	var m entity.RawMaterial
	err := row.Scan(&m.ID, &m.SKU, &m.Name, &m.Unit, &m.Quantity, &m.CostPerUnit, &m.MinimumStockLevel,
		&m.SupplierID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	query := `INSERT INTO raw_materials (` + rawMaterialColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query, m.ID, m.SKU, m.Name, m.Unit, m.Quantity, m.CostPerUnit, m.MinimumStockLevel, m.SupplierID)
	if err != nil {
		return wrap("insert raw material", err)
	}
	return nil
}

func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials WHERE id = $1`, id)
}

func (r *RawMaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.get(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials WHERE id = $1 FOR UPDATE`, id)
}

func (r *RawMaterialRepo) get(ctx context.Context, query, id string) (*entity.RawMaterial, error) {
	m, err := scanRawMaterial(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get raw material", err)
	}
	return m, nil
}

func (r *RawMaterialRepo) UpdateQuantity(ctx context.Context, id string, quantity decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE raw_materials SET quantity = $2, updated_at = now() WHERE id = $1`, id, quantity)
	if err != nil {
		return wrap("update raw material quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("materia prima", id)
	}
	return nil
}

func (r *RawMaterialRepo) UpdateQuantityAndCost(ctx context.Context, id string, quantity, costPerUnit decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE raw_materials SET quantity = $2, cost_per_unit = $3, updated_at = now() WHERE id = $1`,
		id, quantity, costPerUnit)
	if err != nil {
		return wrap("update raw material quantity and cost", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFoundError("materia prima", id)
	}
	return nil
}

func (r *RawMaterialRepo) List(ctx context.Context, limit, offset int) ([]*entity.RawMaterial, error) {
	rows, err := r.q.Query(ctx, `SELECT `+rawMaterialColumns+` FROM raw_materials ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, wrap("list raw materials", err)
	}
	defer rows.Close()
	var list []*entity.RawMaterial
	for rows.Next() {
		m, err := scanRawMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo líneas de lista de materiales.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

func (r *BOMRepo) Create(ctx context.Context, l *entity.BOMLine) error {
	var override any
	if l.CostPerUnit != nil {
		override = *l.CostPerUnit
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO bom_lines (id, product_id, raw_material_id, recipe_id, quantity_required, waste_percentage, cost_per_unit, sequence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`,
		l.ID, l.ProductID, l.RawMaterialID, l.RecipeID, l.QuantityRequired, l.WastePercentage, override, l.Sequence)
	if err != nil {
		return wrap("insert bom line", err)
	}
	return nil
}

// ListByProduct devuelve las líneas de la receta ordenadas por sequence.
func (r *BOMRepo) ListByProduct(ctx context.Context, productID, recipeID string) ([]*entity.BOMLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, raw_material_id, recipe_id, quantity_required, waste_percentage, cost_per_unit, sequence, created_at, updated_at
		FROM bom_lines WHERE product_id = $1 AND recipe_id = $2
		ORDER BY sequence, id`, productID, recipeID)
	if err != nil {
		return nil, wrap("list bom lines", err)
	}
	defer rows.Close()
	var list []*entity.BOMLine
	for rows.Next() {
		var l entity.BOMLine
		var override decimal.NullDecimal
		if err := rows.Scan(&l.ID, &l.ProductID, &l.RawMaterialID, &l.RecipeID, &l.QuantityRequired,
			&l.WastePercentage, &override, &l.Sequence, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		if override.Valid {
			v := override.Decimal
			l.CostPerUnit = &v
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
