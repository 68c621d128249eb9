// Package memory implementa los repositorios en memoria para tests y para STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// state datos del almacén. Cada transacción trabaja sobre el estado vivo y
// restaura una copia si fn falla.
type state struct {
	products  map[string]*entity.Product
	materials map[string]*entity.RawMaterial
	bom       []*entity.BOMLine
	movements []*entity.StockMovement
	plans     map[string]*entity.ProductionPlan
	usages    []*entity.MaterialUsage
	orders    map[string]*entity.Order
	sales     map[string]*entity.Sale // por order_id
	purchases map[string]*entity.Purchase
}

func newState() *state {
	return &state{
		products:  make(map[string]*entity.Product),
		materials: make(map[string]*entity.RawMaterial),
		plans:     make(map[string]*entity.ProductionPlan),
		orders:    make(map[string]*entity.Order),
		sales:     make(map[string]*entity.Sale),
		purchases: make(map[string]*entity.Purchase),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range s.materials {
		c.materials[k] = cloneMaterial(v)
	}
	c.bom = append(c.bom, s.bom...)
	c.movements = append(c.movements, s.movements...)
	c.usages = append(c.usages, s.usages...)
	for k, v := range s.plans {
		c.plans[k] = clonePlan(v)
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	for k, v := range s.sales {
		c.sales[k] = cloneSale(v)
	}
	for k, v := range s.purchases {
		c.purchases[k] = clonePurchase(v)
	}
	return c
}

// Store almacén en memoria. Las transacciones se serializan con un mutex global,
// equivalente a bloquear todas las filas: GetForUpdate no necesita bloqueo adicional.
type Store struct {
	mu sync.Mutex
	st *state

	// MovementFault, si no es nil, hace fallar toda inserción en el kardex (tests de atomicidad).
	MovementFault error
}

var _ inventory.TxRunner = (*Store)(nil)

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// Run ejecuta fn de forma exclusiva. Si fn retorna error el estado vuelve al snapshot previo.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(&repos{store: s, st: s.st}); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// repos implementa inventory.Repos sobre el estado de la transacción en curso.
type repos struct {
	store *Store
	st    *state
}

func (r *repos) Products() repository.ProductRepository         { return productRepo{r.st} }
func (r *repos) RawMaterials() repository.RawMaterialRepository { return materialRepo{r.st} }
func (r *repos) BOM() repository.BOMRepository                  { return bomRepo{r.st} }
func (r *repos) Movements() repository.StockMovementRepository {
	return movementRepo{st: r.st, fault: r.store.MovementFault}
}
func (r *repos) Levels() repository.StockLevelRepository    { return levelRepo{r.st} }
func (r *repos) Plans() repository.ProductionPlanRepository { return planRepo{r.st} }
func (r *repos) Usages() repository.MaterialUsageRepository { return usageRepo{r.st} }
func (r *repos) Orders() repository.OrderRepository         { return orderRepo{r.st} }
func (r *repos) Sales() repository.SaleRepository           { return saleRepo{r.st} }
func (r *repos) Purchases() repository.PurchaseRepository   { return purchaseRepo{r.st} }
