package purchase

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

// UseCase órdenes de compra: pending → approved → received; cancelación con reverso de stock.
type UseCase struct {
	txRunner appinv.TxRunner
	ledger   *appinv.Ledger
	obs      appinv.Observers
	now      func() time.Time
}

// NewUseCase construye el caso de uso de compras.
func NewUseCase(txRunner appinv.TxRunner, ledger *appinv.Ledger, obs appinv.Observers) *UseCase {
	return &UseCase{txRunner: txRunner, ledger: ledger, obs: obs, now: time.Now}
}

// CreateItemInput línea de compra.
type CreateItemInput struct {
	RawMaterialID string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
}

// CreateInput entrada para registrar una compra en pending.
type CreateInput struct {
	SupplierID string
	Notes      string
	Items      []CreateItemInput
}

// Create registra la compra. Las materias primas deben existir.
func (uc *UseCase) Create(ctx context.Context, actor string, in CreateInput) (p *entity.Purchase, err error) {
	defer uc.obs.Observe("purchase_create", time.Now(), &err)
	if actor == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.RawMaterialID == "" || !it.Quantity.IsPositive() || !inventory.HasQuantityScale(it.Quantity) || it.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
	}

	now := uc.now().UTC()
	p = &entity.Purchase{
		ID:             uuid.New().String(),
		PurchaseNumber: purchaseNumber(now),
		SupplierID:     in.SupplierID,
		Status:         entity.PurchaseStatusPending,
		CreatedBy:      actor,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	total := decimal.Zero
	for _, it := range in.Items {
		p.Items = append(p.Items, &entity.PurchaseItem{
			ID:               uuid.New().String(),
			PurchaseID:       p.ID,
			RawMaterialID:    it.RawMaterialID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
			ReceivedQuantity: decimal.Zero,
		})
		total = total.Add(it.Quantity.Mul(it.UnitPrice))
	}
	p.Total = total

	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		for _, it := range p.Items {
			m, err := repos.RawMaterials().GetByID(ctx, it.RawMaterialID)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.NewNotFoundError("materia prima", it.RawMaterialID)
			}
		}
		return repos.Purchases().Create(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Get obtiene la compra con sus líneas.
func (uc *UseCase) Get(ctx context.Context, purchaseID string) (*entity.Purchase, error) {
	var p *entity.Purchase
	err := uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		p, err = loadPurchase(ctx, repos, purchaseID, false)
		return err
	})
	return p, err
}

// Approve solo desde pending.
func (uc *UseCase) Approve(ctx context.Context, actor, purchaseID string) (p *entity.Purchase, err error) {
	defer uc.obs.Observe("purchase_approve", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		var err error
		p, err = loadPurchase(ctx, repos, purchaseID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(p, entity.PurchaseStatusApproved); err != nil {
			return err
		}
		now := uc.now().UTC()
		p.Status = entity.PurchaseStatusApproved
		p.ApprovedBy = actor
		p.ApprovedAt = &now
		p.UpdatedAt = now
		return repos.Purchases().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Receive recibe la cantidad pendiente de cada línea: suma stock, recalcula el costo promedio
// y registra una entrada purchase. Una compra received no puede recibirse de nuevo.
func (uc *UseCase) Receive(ctx context.Context, actor, purchaseID string) (*entity.Purchase, error) {
	return uc.receive(ctx, actor, purchaseID, nil)
}

// ReceivePartial recibe solo las cantidades indicadas por ID de línea (0 < q ≤ pendiente).
// La compra queda received igualmente.
func (uc *UseCase) ReceivePartial(ctx context.Context, actor, purchaseID string, quantities map[string]decimal.Decimal) (*entity.Purchase, error) {
	if len(quantities) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return uc.receive(ctx, actor, purchaseID, quantities)
}

func (uc *UseCase) receive(ctx context.Context, actor, purchaseID string, quantities map[string]decimal.Decimal) (p *entity.Purchase, err error) {
	defer uc.obs.Observe("purchase_receive", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	received := decimal.Zero
	var events []ports.DomainEvent
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		received = decimal.Zero
		events = events[:0]
		var err error
		p, err = loadPurchase(ctx, repos, purchaseID, true)
		if err != nil {
			return err
		}
		if err := checkTransition(p, entity.PurchaseStatusReceived); err != nil {
			return err
		}

		apply := make(map[string]decimal.Decimal, len(p.Items))
		if quantities == nil {
			for _, it := range p.Items {
				apply[it.ID] = it.Outstanding()
			}
		} else {
			byID := make(map[string]*entity.PurchaseItem, len(p.Items))
			for _, it := range p.Items {
				byID[it.ID] = it
			}
			for id, q := range quantities {
				it, ok := byID[id]
				if !ok {
					return fmt.Errorf("%w: línea %s no pertenece a la compra", domain.ErrInvalidInput, id)
				}
				if !q.IsPositive() || !inventory.HasQuantityScale(q) || q.GreaterThan(it.Outstanding()) {
					return fmt.Errorf("%w: cantidad %s fuera de rango para la línea %s", domain.ErrInvalidInput, q, id)
				}
				apply[id] = q
			}
		}

		if err := lockMaterials(ctx, repos, p); err != nil {
			return err
		}
		for _, it := range p.Items {
			q := apply[it.ID]
			if !q.IsPositive() {
				continue
			}
			if _, err := uc.ledger.Record(ctx, repos, appinv.Entry{
				Item:      entity.RawMaterialRef(it.RawMaterialID),
				Quantity:  q,
				Type:      entity.MovementTypePurchase,
				UnitPrice: it.UnitPrice,
				Reference: entity.PurchaseRef(p.ID),
				Actor:     actor,
				Notes:     "recepción compra " + p.PurchaseNumber,
				Recost:    true,
			}); err != nil {
				return err
			}
			it.ReceivedQuantity = it.ReceivedQuantity.Add(q)
			if err := repos.Purchases().UpdateItemReceived(ctx, it.ID, it.ReceivedQuantity); err != nil {
				return err
			}
			received = received.Add(q)
		}

		now := uc.now().UTC()
		p.Status = entity.PurchaseStatusReceived
		p.ReceivedAt = &now
		p.UpdatedAt = now
		return repos.Purchases().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.obs.Logger().Info().Str("purchase", p.PurchaseNumber).Str("received", received.String()).
		Bool("partial", quantities != nil).Str("actor", actor).Msg("compra recibida")
	events = append(events, appinv.NewEvent(ports.EventPurchaseReceived, p.ID, actor, map[string]any{
		"purchase_number": p.PurchaseNumber,
		"partial":         quantities != nil,
		"received":        received.String(),
	}))
	uc.obs.Publish(ctx, events...)
	return p, nil
}

// Cancel desde pending o approved no toca el stock. Desde received revierte por línea
// min(recibido, stock actual) con una entrada purchase_reversal; el costo no cambia.
func (uc *UseCase) Cancel(ctx context.Context, actor, purchaseID string) (p *entity.Purchase, err error) {
	defer uc.obs.Observe("purchase_cancel", time.Now(), &err)
	if actor == "" {
		return nil, domain.ErrInvalidInput
	}

	var from entity.PurchaseStatus
	var events []ports.DomainEvent
	err = uc.txRunner.Run(ctx, func(repos appinv.Repos) error {
		events = events[:0]
		var err error
		p, err = loadPurchase(ctx, repos, purchaseID, true)
		if err != nil {
			return err
		}
		from = p.Status
		if err := checkTransition(p, entity.PurchaseStatusCancelled); err != nil {
			return err
		}

		if from == entity.PurchaseStatusReceived {
			if err := lockMaterials(ctx, repos, p); err != nil {
				return err
			}
			for _, it := range p.Items {
				if !it.ReceivedQuantity.IsPositive() {
					continue
				}
				m, err := repos.RawMaterials().GetForUpdate(ctx, it.RawMaterialID)
				if err != nil {
					return err
				}
				if m == nil {
					return domain.NewNotFoundError("materia prima", it.RawMaterialID)
				}
				delta := decimal.Min(it.ReceivedQuantity, m.Quantity)
				if !delta.IsPositive() {
					continue
				}
				applied, err := uc.ledger.Record(ctx, repos, appinv.Entry{
					Item:      entity.RawMaterialRef(it.RawMaterialID),
					Quantity:  delta.Neg(),
					Type:      entity.MovementTypePurchaseReversal,
					UnitPrice: it.UnitPrice,
					Reference: entity.PurchaseRef(p.ID),
					Actor:     actor,
					Notes:     "reverso compra " + p.PurchaseNumber,
				})
				if err != nil {
					return err
				}
				if applied.CrossedMinimum() {
					events = append(events, applied.LowStockEvent(actor))
				}
			}
		}

		p.Status = entity.PurchaseStatusCancelled
		p.UpdatedAt = uc.now().UTC()
		return repos.Purchases().Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.obs.Logger().Info().Str("purchase", p.PurchaseNumber).Str("from", string(from)).Str("actor", actor).Msg("compra cancelada")
	events = append(events, appinv.NewEvent(ports.EventPurchaseCancelled, p.ID, actor, map[string]any{
		"purchase_number": p.PurchaseNumber,
		"from":            string(from),
	}))
	uc.obs.Publish(ctx, events...)
	return p, nil
}

// lockMaterials bloquea las materias primas de la compra en orden ascendente de ID.
func lockMaterials(ctx context.Context, repos appinv.Repos, p *entity.Purchase) error {
	ids := make([]string, 0, len(p.Items))
	seen := make(map[string]bool)
	for _, it := range p.Items {
		if !seen[it.RawMaterialID] {
			seen[it.RawMaterialID] = true
			ids = append(ids, it.RawMaterialID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		m, err := repos.RawMaterials().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NewNotFoundError("materia prima", id)
		}
	}
	return nil
}

func loadPurchase(ctx context.Context, repos appinv.Repos, purchaseID string, lock bool) (*entity.Purchase, error) {
	if purchaseID == "" {
		return nil, domain.ErrInvalidInput
	}
	var p *entity.Purchase
	var err error
	if lock {
		p, err = repos.Purchases().GetForUpdate(ctx, purchaseID)
	} else {
		p, err = repos.Purchases().GetByID(ctx, purchaseID)
	}
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NewNotFoundError("compra", purchaseID)
	}
	return p, nil
}

func checkTransition(p *entity.Purchase, to entity.PurchaseStatus) error {
	if !p.Status.CanTransitionTo(to) {
		return domain.NewInvalidTransitionError("compra", p.ID, string(p.Status), string(to))
	}
	return nil
}

func purchaseNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return fmt.Sprintf("OC-%s-%s", now.Format("20060102"), suffix)
}
