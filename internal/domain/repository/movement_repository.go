package repository

import (
	"time"

	"github.com/jhoicas/adega-api/internal/domain/entity"
)

// MovementFilter filtros para consultar el historial de movimientos.
type MovementFilter struct {
	ProductID string
	Store     *entity.Store
	Type      string
	UserID    string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// MovementRepository persistencia del historial de movimientos. Solo inserta
// y lee: los movimientos son inmutables, nunca se actualizan ni se borran.
type MovementRepository interface {
	Create(m *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	List(f MovementFilter) ([]*entity.Movement, error)
	CountByProduct(productID string) (int64, error)
}
