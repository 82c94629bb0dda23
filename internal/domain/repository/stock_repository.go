package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// StockRepository acceso al libro de stock (fila por producto y tienda).
// Las mutaciones pasan siempre por GetForUpdate + Upsert dentro de una
// transacción; ningún otro componente escribe cantidades directamente.
type StockRepository interface {
	// Get devuelve la fila actual; si no existe, una fila en cero.
	Get(productID string, store entity.Store) (*entity.StockLevel, error)
	// GetForUpdate igual que Get pero bloquea la fila (SELECT FOR UPDATE)
	// para serializar escritores concurrentes sobre la misma clave.
	GetForUpdate(productID string, store entity.Store) (*entity.StockLevel, error)
	Upsert(level *entity.StockLevel) error
	ListByProduct(productID string) ([]*entity.StockLevel, error)
}
