package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// SaleRepository persistencia de ventas (cabecera + líneas).
type SaleRepository interface {
	// Create inserta cabecera y líneas con el mismo Querier (misma transacción).
	Create(sale *entity.Sale, items []*entity.SaleItem) error
	GetByID(id string) (*entity.Sale, []*entity.SaleItem, error)
	CountByProduct(productID string) (int64, error)
}
