package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// --- productos ---

type productRepo struct{ st *state }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.st.products[p.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.products {
		if p.SKU != "" && other.SKU == p.SKU {
			return domain.ErrDuplicate
		}
	}
	r.st.products[p.ID] = cloneProduct(p)
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return cloneProduct(p), nil
}

func (r productRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r productRepo) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	p, ok := r.st.products[id]
	if !ok {
		return domain.NewNotFoundError("producto", id)
	}
	p.Quantity = quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r productRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	all := make([]*entity.Product, 0, len(r.st.products))
	for _, p := range r.st.products {
		all = append(all, cloneProduct(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

// --- materias primas ---

type materialRepo struct{ st *state }

func (r materialRepo) Create(_ context.Context, m *entity.RawMaterial) error {
	if _, ok := r.st.materials[m.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, other := range r.st.materials {
		if m.SKU != "" && other.SKU == m.SKU {
			return domain.ErrDuplicate
		}
	}
	r.st.materials[m.ID] = cloneMaterial(m)
	return nil
}

func (r materialRepo) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	m, ok := r.st.materials[id]
	if !ok {
		return nil, nil
	}
	return cloneMaterial(m), nil
}

func (r materialRepo) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.GetByID(ctx, id)
}

func (r materialRepo) UpdateQuantity(_ context.Context, id string, quantity decimal.Decimal) error {
	m, ok := r.st.materials[id]
	if !ok {
		return domain.NewNotFoundError("materia prima", id)
	}
	m.Quantity = quantity
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r materialRepo) UpdateQuantityAndCost(_ context.Context, id string, quantity, costPerUnit decimal.Decimal) error {
	m, ok := r.st.materials[id]
	if !ok {
		return domain.NewNotFoundError("materia prima", id)
	}
	m.Quantity = quantity
	m.CostPerUnit = costPerUnit
	m.UpdatedAt = time.Now().UTC()
	return nil
}

func (r materialRepo) List(_ context.Context, limit, offset int) ([]*entity.RawMaterial, error) {
	all := make([]*entity.RawMaterial, 0, len(r.st.materials))
	for _, m := range r.st.materials {
		all = append(all, cloneMaterial(m))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

// --- BOM ---

type bomRepo struct{ st *state }

func (r bomRepo) Create(_ context.Context, line *entity.BOMLine) error {
	for _, l := range r.st.bom {
		if l.ID == line.ID {
			return domain.ErrDuplicate
		}
	}
	c := *line
	r.st.bom = append(r.st.bom, &c)
	return nil
}

func (r bomRepo) ListByProduct(_ context.Context, productID, recipeID string) ([]*entity.BOMLine, error) {
	var out []*entity.BOMLine
	for _, l := range r.st.bom {
		if l.ProductID == productID && l.RecipeID == recipeID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// --- kardex ---

type movementRepo struct {
	st    *state
	fault error
}

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	if r.fault != nil {
		return r.fault
	}
	c := *m
	r.st.movements = append(r.st.movements, &c)
	return nil
}

func (r movementRepo) ListByItem(_ context.Context, item entity.ItemRef, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.st.movements) - 1; i >= 0; i-- {
		if m := r.st.movements[i]; m.Item == item {
			c := *m
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

func (r movementRepo) ListByReference(_ context.Context, ref entity.EventRef) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.st.movements {
		if m.Reference == ref {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r movementRepo) SumByItem(_ context.Context) (map[entity.ItemRef]decimal.Decimal, error) {
	out := make(map[entity.ItemRef]decimal.Decimal)
	for _, m := range r.st.movements {
		out[m.Item] = out[m.Item].Add(m.Quantity)
	}
	return out, nil
}

// --- saldos ---

type levelRepo struct{ st *state }

func (r levelRepo) Balances(_ context.Context) (map[entity.ItemRef]decimal.Decimal, error) {
	out := make(map[entity.ItemRef]decimal.Decimal, len(r.st.products)+len(r.st.materials))
	for id, p := range r.st.products {
		out[entity.ProductRef(id)] = p.Quantity
	}
	for id, m := range r.st.materials {
		out[entity.RawMaterialRef(id)] = m.Quantity
	}
	return out, nil
}

func (r levelRepo) BelowMinimum(_ context.Context) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	for _, p := range r.st.products {
		if p.BelowMinimum() {
			out = append(out, &entity.StockLevel{
				Item: entity.ProductRef(p.ID), SKU: p.SKU, Name: p.Name,
				Quantity: p.Quantity, MinimumStockLevel: p.MinimumStockLevel, UnitCost: p.Cost, UpdatedAt: p.UpdatedAt,
			})
		}
	}
	for _, m := range r.st.materials {
		if m.BelowMinimum() {
			out = append(out, &entity.StockLevel{
				Item: entity.RawMaterialRef(m.ID), SKU: m.SKU, Name: m.Name,
				Quantity: m.Quantity, MinimumStockLevel: m.MinimumStockLevel, UnitCost: m.CostPerUnit, UpdatedAt: m.UpdatedAt,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item.String() < out[j].Item.String() })
	return out, nil
}

// --- planes de producción ---

type planRepo struct{ st *state }

func (r planRepo) Create(_ context.Context, plan *entity.ProductionPlan) error {
	if _, ok := r.st.plans[plan.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r planRepo) GetByID(_ context.Context, id string) (*entity.ProductionPlan, error) {
	p, ok := r.st.plans[id]
	if !ok {
		return nil, nil
	}
	c := clonePlan(p)
	sort.SliceStable(c.Items, func(i, j int) bool { return c.Items[i].Sequence < c.Items[j].Sequence })
	return c, nil
}

func (r planRepo) GetForUpdate(ctx context.Context, id string) (*entity.ProductionPlan, error) {
	return r.GetByID(ctx, id)
}

func (r planRepo) Update(_ context.Context, plan *entity.ProductionPlan) error {
	cur, ok := r.st.plans[plan.ID]
	if !ok {
		return domain.NewNotFoundError("plan de producción", plan.ID)
	}
	items := cur.Items
	c := clonePlan(plan)
	c.Items = items
	r.st.plans[plan.ID] = c
	return nil
}

func (r planRepo) UpdateItem(_ context.Context, item *entity.ProductionPlanItem) error {
	plan, ok := r.st.plans[item.PlanID]
	if !ok {
		return domain.NewNotFoundError("plan de producción", item.PlanID)
	}
	for i, it := range plan.Items {
		if it.ID == item.ID {
			c := *item
			plan.Items[i] = &c
			return nil
		}
	}
	return domain.NewNotFoundError("ítem de plan", item.ID)
}

type usageRepo struct{ st *state }

func (r usageRepo) Create(_ context.Context, u *entity.MaterialUsage) error {
	c := *u
	r.st.usages = append(r.st.usages, &c)
	return nil
}

func (r usageRepo) ListByPlan(_ context.Context, planID string) ([]*entity.MaterialUsage, error) {
	var out []*entity.MaterialUsage
	for _, u := range r.st.usages {
		if u.PlanID == planID {
			c := *u
			out = append(out, &c)
		}
	}
	return out, nil
}

// --- pedidos y ventas ---

type orderRepo struct{ st *state }

func (r orderRepo) Create(_ context.Context, o *entity.Order) error {
	if _, ok := r.st.orders[o.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r orderRepo) GetByID(_ context.Context, id string) (*entity.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r orderRepo) GetForUpdate(ctx context.Context, id string) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r orderRepo) UpdateStatus(_ context.Context, o *entity.Order) error {
	cur, ok := r.st.orders[o.ID]
	if !ok {
		return domain.NewNotFoundError("pedido", o.ID)
	}
	cur.Status = o.Status
	cur.StockDeducted = o.StockDeducted
	cur.UpdatedAt = o.UpdatedAt
	return nil
}

type saleRepo struct{ st *state }

func (r saleRepo) Create(_ context.Context, s *entity.Sale) error {
	if _, ok := r.st.sales[s.OrderID]; ok {
		return domain.ErrDuplicate
	}
	r.st.sales[s.OrderID] = cloneSale(s)
	return nil
}

func (r saleRepo) GetByOrderID(_ context.Context, orderID string) (*entity.Sale, error) {
	s, ok := r.st.sales[orderID]
	if !ok {
		return nil, nil
	}
	return cloneSale(s), nil
}

// --- compras ---

type purchaseRepo struct{ st *state }

func (r purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	if _, ok := r.st.purchases[p.ID]; ok {
		return domain.ErrDuplicate
	}
	r.st.purchases[p.ID] = clonePurchase(p)
	return nil
}

func (r purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.st.purchases[id]
	if !ok {
		return nil, nil
	}
	return clonePurchase(p), nil
}

func (r purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r purchaseRepo) Update(_ context.Context, p *entity.Purchase) error {
	cur, ok := r.st.purchases[p.ID]
	if !ok {
		return domain.NewNotFoundError("compra", p.ID)
	}
	cur.Status = p.Status
	cur.ApprovedBy = p.ApprovedBy
	cur.ApprovedAt = p.ApprovedAt
	cur.ReceivedAt = p.ReceivedAt
	cur.UpdatedAt = p.UpdatedAt
	return nil
}

func (r purchaseRepo) UpdateItemReceived(_ context.Context, itemID string, received decimal.Decimal) error {
	for _, p := range r.st.purchases {
		for _, it := range p.Items {
			if it.ID == itemID {
				it.ReceivedQuantity = received
				return nil
			}
		}
	}
	return domain.NewNotFoundError("línea de compra", itemID)
}

// --- copias ---

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneMaterial(m *entity.RawMaterial) *entity.RawMaterial {
	c := *m
	return &c
}

func clonePlan(p *entity.ProductionPlan) *entity.ProductionPlan {
	c := *p
	c.Items = make([]*entity.ProductionPlanItem, len(p.Items))
	for i, it := range p.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}

func cloneOrder(o *entity.Order) *entity.Order {
	c := *o
	c.Items = make([]*entity.OrderItem, len(o.Items))
	for i, it := range o.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}

func cloneSale(s *entity.Sale) *entity.Sale {
	c := *s
	c.Items = make([]*entity.SaleItem, len(s.Items))
	for i, it := range s.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}

func clonePurchase(p *entity.Purchase) *entity.Purchase {
	c := *p
	c.Items = make([]*entity.PurchaseItem, len(p.Items))
	for i, it := range p.Items {
		ic := *it
		c.Items[i] = &ic
	}
	return &c
}
