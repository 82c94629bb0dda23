package repository

import "github.com/jhoicas/adega-api/internal/domain/entity"

// ProductRepository acceso a productos del catálogo. GetByID incluye
// productos eliminados (soft delete): el historial sigue apuntando a ellos.
type ProductRepository interface {
	Create(p *entity.Product) error
	Update(p *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	// GetByBarcode busca por código de barras de unidad o de paquete.
	GetByBarcode(code string) (*entity.Product, error)
	// ListActiveByStore lista productos activos visibles en una tienda.
	// La tienda secundaria solo muestra productos con al menos un traslado
	// entrante registrado (pertenencia derivada del log de traslados).
	ListActiveByStore(store entity.Store, limit, offset int) ([]*entity.Product, error)
	ListDeleted(limit, offset int) ([]*entity.Product, error)
	// SoftDelete marca el producto como eliminado. Devuelve domain.ErrConflict
	// si ya estaba eliminado (la condición se evalúa en el mismo UPDATE).
	SoftDelete(id, userID string) error
	// Restore limpia la marca. Devuelve domain.ErrConflict si no estaba eliminado.
	Restore(id string) error
}
