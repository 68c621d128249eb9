package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Manufactura-api/internal/application/ports"
	"github.com/jhoicas/Manufactura-api/pkg/logger"
)

// Observers dependencias transversales de los casos de uso (logs, métricas, eventos).
// Todos los campos son opcionales.
type Observers struct {
	Log       *logger.Logger
	Metrics   ports.MetricsRecorder
	Publisher ports.EventPublisher
}

// Logger devuelve el logger configurado o uno que descarta.
func (o Observers) Logger() *logger.Logger {
	if o.Log == nil {
		return logger.Nop()
	}
	return o.Log
}

// Observe registra la operación en métricas. Uso: defer obs.Observe("op", time.Now(), &err).
func (o Observers) Observe(operation string, start time.Time, err *error) {
	if o.Metrics == nil {
		return
	}
	var e error
	if err != nil {
		e = *err
	}
	o.Metrics.ObserveOperation(operation, e, time.Since(start))
}

// Publish envía los eventos después del commit. Los errores solo se registran.
func (o Observers) Publish(ctx context.Context, events ...ports.DomainEvent) {
	if o.Publisher == nil || len(events) == 0 {
		return
	}
	if err := o.Publisher.Publish(ctx, events...); err != nil {
		o.Logger().Error().Err(err).Int("events", len(events)).Msg("publicar eventos de dominio")
	}
}

// NewEvent construye un evento con ID y fecha.
func NewEvent(t ports.EventType, aggregateID, actor string, payload map[string]any) ports.DomainEvent {
	return ports.DomainEvent{
		ID:          uuid.New().String(),
		Type:        t,
		AggregateID: aggregateID,
		Actor:       actor,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
}
