package order

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	appinv "github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// UseCase máquina de estados de pedidos de cliente.
// El stock se descuenta una sola vez al salir de pending y se restaura al cancelar.
type UseCase struct {
	txRunner appinv.TxRunner
	ledger   *appinv.Ledger
	obs      appinv.Observers
	now      func() time.Time
}

// NewUseCase construye el caso de uso de pedidos.
func NewUseCase(txRunner appinv.TxRunner, ledger *appinv.Ledger, obs appinv.Observers) *UseCase {
	return &UseCase{txRunner: txRunner, ledger: ledger, obs: obs, now: time.Now}
}

// CreateItemInput línea del pedido. Price nil toma el precio vigente del producto.
type CreateItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Price     *decimal.Decimal
}

// CreateInput entrada para crear un pedido. Status vacío equivale a pending.
type CreateInput struct {
	CustomerID string
	Status     entity.OrderStatus
	Notes      string
	Items      []CreateItemInput
}

// CreateOrder valida el stock de todas las líneas antes de persistir.
// Si el estado inicial ya retiene stock se descuenta de inmediato; completed además genera la venta.
func (uc *UseCase) CreateOrder(ctx context.Context, actor string, in CreateInput) (order *entity.Order, err error) {
	defer uc.obs.Observe("order_create", time.Now(), &err)

	status := in.Status
	if status == "" {
		status = entity.OrderStatusPending
	}
	if actor == "" || in.CustomerID == "" || len(in.Items) == 0 || !status.IsValid() || status == entity.OrderStatusCancelled {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.ProductID == "" || !it.Quantity.IsPositive() || !inventory.HasQuantityScale(it.Quantity) ||
			(it.Price != nil && it.Price.IsNegative()) {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now().UTC()
	order = &entity.Order{
		ID:          uuid.New().String(),
		OrderNumber: orderNumber(now),
		CustomerID:  in.CustomerID,
		Status:      status,
		Notes:       in.Notes,
		CreatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, it := range in.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	var events []ports.DomainEvent
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		events = events[:0]
		products, err := lockAndValidate(ctx, repos, order)
		if err != nil {
			return err
		}
		total := decimal.Zero
		for i, it := range order.Items {
			if p := in.Items[i].Price; p != nil {
				it.Price = *p
			} else {
				it.Price = products[it.ProductID].Price
			}
			total = total.Add(it.Subtotal())
		}
		order.Total = total

		if status.HoldsStock() {
			evs, err := uc.deduct(ctx, repos, actor, order)
			if err != nil {
				return err
			}
			events = append(events, evs...)
			order.StockDeducted = true
		}
		if err := repos.Orders().Create(ctx, order); err != nil {
			return err
		}
		if status == entity.OrderStatusCompleted {
			if _, err := uc.convert(ctx, repos, actor, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.obs.Logger().Info().Str("order", order.OrderNumber).Str("status", string(order.Status)).
		Str("actor", actor).Msg("pedido creado")
	uc.obs.Publish(ctx, events...)
	return order, nil
}

// Get obtiene el pedido con sus líneas.
func (uc *UseCase) Get(ctx context.Context, orderID string) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		order, err = loadOrder(ctx, repos, orderID, false)
		return err
	})
	return order, err
}

// Confirm pending → confirmed (descuenta stock).
func (uc *UseCase) Confirm(ctx context.Context, actor, orderID string) (*entity.Order, error) {
	return uc.UpdateStatus(ctx, actor, orderID, entity.OrderStatusConfirmed)
}

// Cancel cancela el pedido; si el stock fue descontado lo restaura con entradas return.
func (uc *UseCase) Cancel(ctx context.Context, actor, orderID string) (*entity.Order, error) {
	return uc.UpdateStatus(ctx, actor, orderID, entity.OrderStatusCancelled)
}

// UpdateStatus aplica una transición de la tabla y sus efectos sobre el stock en una transacción.
func (uc *UseCase) UpdateStatus(ctx context.Context, actor, orderID string, target entity.OrderStatus) (order *entity.Order, err error) {
	defer uc.obs.Observe("order_update_status", time.Now(), &err)
	if actor == "" || !target.IsValid() {
		return nil, domain.ErrInvalidInput
	}

	var from entity.OrderStatus
	var events []ports.DomainEvent
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		events = events[:0]
		var err error
		order, err = loadOrder(ctx, repos, orderID, true)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(target) {
			return domain.NewInvalidTransitionError("pedido", order.ID, string(from), string(target))
		}

		switch {
		case target.HoldsStock() && !order.StockDeducted:
			if _, err := lockAndValidate(ctx, repos, order); err != nil {
				return err
			}
			evs, err := uc.deduct(ctx, repos, actor, order)
			if err != nil {
				return err
			}
			events = append(events, evs...)
			order.StockDeducted = true
		case target == entity.OrderStatusCancelled && order.StockDeducted:
			if err := uc.restore(ctx, repos, actor, order); err != nil {
				return err
			}
			order.StockDeducted = false
		}

		order.Status = target
		order.UpdatedAt = uc.now().UTC()
		if err := repos.Orders().UpdateStatus(ctx, order); err != nil {
			return err
		}
		if target == entity.OrderStatusCompleted {
			if _, err := uc.convert(ctx, repos, actor, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.obs.Logger().Info().Str("order", order.OrderNumber).Str("from", string(from)).Str("to", string(target)).
		Str("actor", actor).Msg("estado de pedido actualizado")
	events = append(events, appinv.NewEvent(ports.EventOrderStatusChanged, order.ID, actor, map[string]any{
		"order_number": order.OrderNumber,
		"from":         string(from),
		"to":           string(target),
	}))
	uc.obs.Publish(ctx, events...)
	return order, nil
}

// ConvertToSale genera la venta de un pedido completado. Idempotente: si ya existe la retorna.
func (uc *UseCase) ConvertToSale(ctx context.Context, actor, orderID string) (sale *entity.Sale, err error) {
	defer uc.obs.Observe("order_convert_to_sale", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		order, err := loadOrder(ctx, repos, orderID, true)
		if err != nil {
			return err
		}
		if order.Status != entity.OrderStatusCompleted {
			return fmt.Errorf("%w: el pedido %s está en estado %s, se requiere completed", domain.ErrConflict, order.ID, order.Status)
		}
		sale, err = uc.convert(ctx, repos, actor, order)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// convert crea la venta dentro de la tx del caller si aún no existe.
func (uc *UseCase) convert(ctx context.Context, repos appinv.Repos, actor string, order *entity.Order) (*entity.Sale, error) {
	existing, err := repos.Sales().GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	sale := &entity.Sale{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Total:     order.Total,
		CreatedBy: actor,
		CreatedAt: uc.now().UTC(),
	}
	for _, it := range order.Items {
		sale.Items = append(sale.Items, &entity.SaleItem{
			ID:        uuid.New().String(),
			SaleID:    sale.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Subtotal:  it.Subtotal(),
		})
	}
	if err := repos.Sales().Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// deduct registra una salida sale por línea. El stock ya fue validado por lockAndValidate.
func (uc *UseCase) deduct(ctx context.Context, repos appinv.Repos, actor string, order *entity.Order) ([]ports.DomainEvent, error) {
	var events []ports.DomainEvent
	for _, it := range order.Items {
		applied, err := uc.ledger.Record(ctx, repos, appinv.Entry{
			Item:      entity.ProductRef(it.ProductID),
			Quantity:  it.Quantity.Neg(),
			Type:      entity.MovementTypeSale,
			UnitPrice: it.Price,
			Reference: entity.OrderRef(order.ID),
			Actor:     actor,
			Notes:     "pedido " + order.OrderNumber,
		})
		if err != nil {
			return nil, err
		}
		if applied.CrossedMinimum() {
			events = append(events, applied.LowStockEvent(actor))
		}
	}
	return events, nil
}

// restore devuelve al stock cada línea con una entrada return.
func (uc *UseCase) restore(ctx context.Context, repos appinv.Repos, actor string, order *entity.Order) error {
	if _, err := lockProducts(ctx, repos, order); err != nil {
		return err
	}
	for _, it := range order.Items {
		if _, err := uc.ledger.Record(ctx, repos, appinv.Entry{
			Item:      entity.ProductRef(it.ProductID),
			Quantity:  it.Quantity,
			Type:      entity.MovementTypeReturn,
			UnitPrice: it.Price,
			Reference: entity.OrderRef(order.ID),
			Actor:     actor,
			Notes:     "cancelación pedido " + order.OrderNumber,
		}); err != nil {
			return err
		}
	}
	return nil
}

// lockAndValidate bloquea los productos del pedido y verifica el stock agregado por producto.
func lockAndValidate(ctx context.Context, repos appinv.Repos, order *entity.Order) (map[string]*entity.Product, error) {
	products, err := lockProducts(ctx, repos, order)
	if err != nil {
		return nil, err
	}
	required := make(map[string]decimal.Decimal)
	for _, it := range order.Items {
		required[it.ProductID] = required[it.ProductID].Add(it.Quantity)
	}
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var shortages []domain.Shortage
	for _, id := range ids {
		p := products[id]
		if req := required[id]; req.GreaterThan(p.Quantity) {
			shortages = append(shortages, domain.Shortage{
				ItemID:    p.ID,
				ItemName:  p.Name,
				Required:  req,
				Available: p.Quantity,
				Shortfall: req.Sub(p.Quantity),
			})
		}
	}
	if len(shortages) > 0 {
		return nil, domain.NewInsufficientStockError(shortages)
	}
	return products, nil
}

// lockProducts bloquea los productos distintos del pedido en orden ascendente de ID.
func lockProducts(ctx context.Context, repos appinv.Repos, order *entity.Order) (map[string]*entity.Product, error) {
	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]bool)
	for _, it := range order.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	sort.Strings(ids)

	out := make(map[string]*entity.Product, len(ids))
	for _, id := range ids {
		p, err := repos.Products().GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.NewNotFoundError("producto", id)
		}
		out[id] = p
	}
	return out, nil
}

func loadOrder(ctx context.Context, repos appinv.Repos, orderID string, lock bool) (*entity.Order, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	var order *entity.Order
	var err error
	if lock {
		order, err = repos.Orders().GetForUpdate(ctx, orderID)
	} else {
		order, err = repos.Orders().GetByID(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.NewNotFoundError("pedido", orderID)
	}
	return order, nil
}

func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("PED-%s-%s", now.Format("20060102"), suffix)
}
