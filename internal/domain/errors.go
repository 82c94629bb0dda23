package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrDuplicate         = errors.New("recurso duplicado")

	// ErrInconsistency señala una operación multi-paso observada a medias.
	// Con el motor transaccional actual no debería ocurrir; si un lector la
	// detecta, se propaga al caller y nunca se repara en silencio.
	ErrInconsistency = errors.New("estado inconsistente detectado")
)

// StockKind distingue qué campo del stock resultó insuficiente.
type StockKind string

const (
	StockKindPackages   StockKind = "packages"
	StockKindUnitsLoose StockKind = "units_loose"
)

// InsufficientStockError lleva los datos del faltante: qué campo, cuánto hay
// y cuánto se pidió. El texto es presentación; el contrato son los campos.
type InsufficientStockError struct {
	ProductID string
	Kind      StockKind
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente de %s: disponible %d, solicitado %d", e.Kind, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError nombra el campo faltante o inválido de una petición.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("campo %q inválido", e.Field)
	}
	return fmt.Sprintf("campo %q inválido: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
