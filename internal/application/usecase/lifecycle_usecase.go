package usecase

import (
	"context"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// LifecycleUseCase borrado lógico y restauración de productos. El borrado
// nunca destruye historial: movimientos, ventas y traslados siguen apuntando
// al producto marcado.
type LifecycleUseCase struct {
	productRepo  repository.ProductRepository
	stockRepo    repository.StockRepository
	saleRepo     repository.SaleRepository
	movementRepo repository.MovementRepository
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	saleRepo repository.SaleRepository,
	movementRepo repository.MovementRepository,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		productRepo:  productRepo,
		stockRepo:    stockRepo,
		saleRepo:     saleRepo,
		movementRepo: movementRepo,
	}
}

// SoftDelete marca el producto como eliminado. Repetir el borrado devuelve
// Conflict: la condición se evalúa en el mismo UPDATE, así dos clientes
// concurrentes no pueden borrarlo "dos veces".
func (uc *LifecycleUseCase) SoftDelete(ctx context.Context, productID, userID string) error {
	if userID == "" {
		return domain.ErrUnauthorized
	}
	if productID == "" {
		return &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	return uc.productRepo.SoftDelete(productID, userID)
}

// Restore limpia la marca de borrado. Restaurar un producto activo devuelve
// Conflict con la misma técnica.
func (uc *LifecycleUseCase) Restore(ctx context.Context, productID string) error {
	if productID == "" {
		return &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	return uc.productRepo.Restore(productID)
}

// HistoricalUsage agregado de solo lectura para que el operador dimensione
// el impacto de un borrado. Informa, nunca bloquea.
func (uc *LifecycleUseCase) HistoricalUsage(ctx context.Context, productID string) (*dto.ProductUsageResponse, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if _, err := uc.productRepo.GetByID(productID); err != nil {
		return nil, err
	}

	salesCount, err := uc.saleRepo.CountByProduct(productID)
	if err != nil {
		return nil, err
	}
	movementsCount, err := uc.movementRepo.CountByProduct(productID)
	if err != nil {
		return nil, err
	}
	levels, err := uc.stockRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}

	usage := &dto.ProductUsageResponse{
		ProductID:      productID,
		SalesCount:     salesCount,
		MovementsCount: movementsCount,
		Stocks:         make([]dto.StockLevelDTO, 0, len(levels)),
	}
	for _, level := range levels {
		usage.Stocks = append(usage.Stocks, dto.StockLevelDTO{
			Store:      int(level.Store),
			Packages:   level.Packages,
			UnitsLoose: level.UnitsLoose,
		})
	}
	return usage, nil
}
