package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/application/dto"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/inventory"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// ProductUseCase CRUD del catálogo. Los márgenes son derivados: se recalculan
// en cada escritura de precios y nunca se aceptan del cliente. El stock
// tampoco se escribe por acá; eso es territorio exclusivo de los movimientos.
type ProductUseCase struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(productRepo repository.ProductRepository, stockRepo repository.StockRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, stockRepo: stockRepo}
}

// Create registra un producto nuevo con márgenes calculados.
func (uc *ProductUseCase) Create(ctx context.Context, req *dto.CreateProductRequest) (*entity.Product, error) {
	if req.Name == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "obligatorio"}
	}
	if req.Price.IsNegative() || req.CostPrice.IsNegative() || req.PackagePrice.IsNegative() {
		return nil, &domain.ValidationError{Field: "price", Reason: "los precios no pueden ser negativos"}
	}
	if req.PackageSize < 0 {
		return nil, &domain.ValidationError{Field: "package_size", Reason: "no puede ser negativo"}
	}

	now := time.Now()
	product := &entity.Product{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Category:       req.Category,
		Barcode:        req.Barcode,
		PackageBarcode: req.PackageBarcode,
		Price:          req.Price,
		CostPrice:      req.CostPrice,
		PackageSize:    req.PackageSize,
		PackagePrice:   req.PackagePrice,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	recalculateMargins(product)

	if err := uc.productRepo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update aplica cambios parciales y recalcula márgenes si algún precio o el
// tamaño de paquete cambió. No acepta escrituras sobre productos eliminados.
func (uc *ProductUseCase) Update(ctx context.Context, id string, req *dto.UpdateProductRequest) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil || product.Deleted() {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ValidationError{Field: "name", Reason: "no puede quedar vacío"}
		}
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Barcode != nil {
		product.Barcode = *req.Barcode
	}
	if req.PackageBarcode != nil {
		product.PackageBarcode = *req.PackageBarcode
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, &domain.ValidationError{Field: "price", Reason: "no puede ser negativo"}
		}
		product.Price = *req.Price
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, &domain.ValidationError{Field: "cost_price", Reason: "no puede ser negativo"}
		}
		product.CostPrice = *req.CostPrice
	}
	if req.PackageSize != nil {
		if *req.PackageSize < 0 {
			return nil, &domain.ValidationError{Field: "package_size", Reason: "no puede ser negativo"}
		}
		product.PackageSize = *req.PackageSize
	}
	if req.PackagePrice != nil {
		if req.PackagePrice.IsNegative() {
			return nil, &domain.ValidationError{Field: "package_price", Reason: "no puede ser negativo"}
		}
		product.PackagePrice = *req.PackagePrice
	}

	recalculateMargins(product)
	product.UpdatedAt = time.Now()

	if err := uc.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID devuelve el producto con su stock por tienda. Incluye eliminados:
// el historial sigue referenciándolos.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, []*entity.StockLevel, error) {
	product, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	levels, err := uc.stockRepo.ListByProduct(id)
	if err != nil {
		return nil, nil, err
	}
	return product, levels, nil
}

// GetByBarcode busca por código de unidad o de paquete entre los activos.
func (uc *ProductUseCase) GetByBarcode(ctx context.Context, code string) (*entity.Product, error) {
	if code == "" {
		return nil, &domain.ValidationError{Field: "barcode", Reason: "obligatorio"}
	}
	return uc.productRepo.GetByBarcode(code)
}

// ListActive productos activos visibles en la tienda. El depósito filtra por
// pertenencia derivada del log de traslados.
func (uc *ProductUseCase) ListActive(ctx context.Context, store entity.Store, page dto.PageRequest) ([]*entity.Product, error) {
	if !store.Valid() {
		return nil, &domain.ValidationError{Field: "store", Reason: "tienda desconocida"}
	}
	page.DefaultPage()
	return uc.productRepo.ListActiveByStore(store, page.Limit, page.Offset)
}

// ListDeleted productos con soft delete, para la papelera.
func (uc *ProductUseCase) ListDeleted(ctx context.Context, page dto.PageRequest) ([]*entity.Product, error) {
	page.DefaultPage()
	return uc.productRepo.ListDeleted(page.Limit, page.Offset)
}

// recalculateMargins deriva los márgenes de los precios vigentes; precios
// inválidos dejan el margen en cero en vez de propagar un error.
func recalculateMargins(p *entity.Product) {
	if margin, ok := inventory.SafeUnitMargin(p.Price, p.CostPrice); ok {
		p.MarginPercent = margin
	} else {
		p.MarginPercent = decimal.Zero
	}
	if margin, ok := inventory.SafePackageMargin(p.PackagePrice, p.CostPrice, p.PackageSize); ok {
		p.PackageMargin = margin
	} else {
		p.PackageMargin = decimal.Zero
	}
}
