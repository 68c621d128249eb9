package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrConsistency       = errors.New("inconsistencia entre stock y kardex")
)

// NotFoundError indica que la entidad referenciada no existe.
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError construye el error para entity/id.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

// Is permite errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidTransitionError se retorna antes de cualquier mutación cuando el cambio de estado no está permitido.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

// NewInvalidTransitionError construye el error.
func NewInvalidTransitionError(entity, id, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Entity: entity, ID: id, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: no se puede pasar de %q a %q", e.Entity, e.ID, e.From, e.To)
}

// Is permite errors.Is(err, ErrInvalidTransition).
func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Shortage es una línea del reporte de faltantes.
type Shortage struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Shortfall decimal.Decimal `json:"shortfall"`
}

// InsufficientStockError lleva el detalle de faltantes; ninguna mutación se aplicó.
type InsufficientStockError struct {
	Shortages []Shortage
}

// NewInsufficientStockError construye el error a partir de los faltantes.
func NewInsufficientStockError(shortages []Shortage) *InsufficientStockError {
	return &InsufficientStockError{Shortages: shortages}
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		name := s.ItemName
		if name == "" {
			name = s.ItemID
		}
		parts = append(parts, fmt.Sprintf("%s (requerido %s, disponible %s, faltan %s)",
			name, s.Required.String(), s.Available.String(), s.Shortfall.String()))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// Is permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// ConsistencyError indica que el registro en el kardex falló después de mutar la cantidad.
// Siempre es fatal para la transacción completa.
type ConsistencyError struct {
	Cause error
}

// NewConsistencyError envuelve la causa.
func NewConsistencyError(cause error) *ConsistencyError {
	return &ConsistencyError{Cause: cause}
}

func (e *ConsistencyError) Error() string {
	return "no se pudo registrar el movimiento de stock: " + e.Cause.Error()
}

func (e *ConsistencyError) Unwrap() error { return e.Cause }

// Is permite errors.Is(err, ErrConsistency).
func (e *ConsistencyError) Is(target error) bool { return target == ErrConsistency }
