package ports

import (
	"context"
	"time"
)

// EventType tipo de evento de dominio publicado después del commit.
type EventType string

const (
	EventStockBelowMinimum   EventType = "inventory.stock_below_minimum"
	EventOrderStatusChanged  EventType = "order.status_changed"
	EventProductionCompleted EventType = "production.completed"
	EventProductionStarted   EventType = "production.started"
	EventPurchaseReceived    EventType = "purchase.received"
	EventPurchaseCancelled   EventType = "purchase.cancelled"
)

// DomainEvent evento serializable. AggregateID se usa como clave de partición.
type DomainEvent struct {
	ID          string         `json:"event_id"`
	Type        EventType      `json:"event_type"`
	AggregateID string         `json:"aggregate_id"`
	Actor       string         `json:"actor"`
	OccurredAt  time.Time      `json:"occurred_at"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// EventPublisher define el puerto de salida para eventos de dominio.
// Se invoca solo después de confirmar la transacción: un fallo aquí nunca revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// MetricsRecorder registra duración y resultado de cada operación del motor.
type MetricsRecorder interface {
	ObserveOperation(operation string, err error, elapsed time.Duration)
}
