package entity_test

import (
	"testing"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_TablaDeTransiciones(t *testing.T) {
	cases := []struct {
		from, to entity.OrderStatus
		ok       bool
	}{
		{entity.OrderStatusPending, entity.OrderStatusConfirmed, true},
		{entity.OrderStatusPending, entity.OrderStatusCancelled, true},
		{entity.OrderStatusPending, entity.OrderStatusShipped, false},
		{entity.OrderStatusConfirmed, entity.OrderStatusProcessing, true},
		{entity.OrderStatusConfirmed, entity.OrderStatusPending, false},
		{entity.OrderStatusProcessing, entity.OrderStatusShipped, true},
		{entity.OrderStatusShipped, entity.OrderStatusCompleted, true},
		{entity.OrderStatusShipped, entity.OrderStatusCancelled, true},
		{entity.OrderStatusCompleted, entity.OrderStatusCancelled, false},
		{entity.OrderStatusCancelled, entity.OrderStatusPending, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransitionTo(c.to), "%s → %s", c.from, c.to)
	}
}

func TestPlanStatus_EstadosTerminales(t *testing.T) {
	for _, s := range []entity.PlanStatus{entity.PlanStatusCompleted, entity.PlanStatusCancelled} {
		assert.True(t, s.IsTerminal())
		for _, to := range []entity.PlanStatus{entity.PlanStatusApproved, entity.PlanStatusInProgress, entity.PlanStatusCompleted, entity.PlanStatusCancelled} {
			assert.False(t, s.CanTransitionTo(to), "%s no debe pasar a %s", s, to)
		}
	}
	assert.False(t, entity.PlanStatusInProgress.CanTransitionTo(entity.PlanStatusCancelled))
	assert.True(t, entity.PlanStatusApproved.CanTransitionTo(entity.PlanStatusCancelled))
}

func TestPurchaseStatus_RecibidaNoSeRecibeDeNuevo(t *testing.T) {
	assert.False(t, entity.PurchaseStatusReceived.CanTransitionTo(entity.PurchaseStatusReceived))
	assert.False(t, entity.PurchaseStatusPending.CanTransitionTo(entity.PurchaseStatusReceived))
	assert.True(t, entity.PurchaseStatusReceived.CanTransitionTo(entity.PurchaseStatusCancelled))
	assert.False(t, entity.PurchaseStatusCancelled.CanTransitionTo(entity.PurchaseStatusApproved))
}

func TestEventRef_Variantes(t *testing.T) {
	ref, err := entity.ParseEventRef("production_plan", "plan-1")
	assert.NoError(t, err)
	assert.Equal(t, entity.PlanRef("plan-1"), ref)

	none, err := entity.ParseEventRef("", "")
	assert.NoError(t, err)
	assert.True(t, none.IsNone())

	_, err = entity.ParseEventRef("invoice", "x")
	assert.Error(t, err)
	_, err = entity.ParseEventRef("order", "")
	assert.Error(t, err)
	_, err = entity.ParseEventRef("", "x")
	assert.Error(t, err)
}
