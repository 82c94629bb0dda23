package inventory

import (
	"context"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// StockQueryUseCase lecturas de stock sin bloqueo, con caché opcional.
type StockQueryUseCase struct {
	stockRepo    repository.StockRepository
	transferRepo repository.TransferRepository
	cache        StockCache // puede ser nil
}

// NewStockQueryUseCase construye el caso de uso. cache puede ser nil.
func NewStockQueryUseCase(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	cache StockCache,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		stockRepo:    stockRepo,
		transferRepo: transferRepo,
		cache:        cache,
	}
}

// CurrentStock devuelve el nivel de una tienda; sin filas previas devuelve
// ceros. Lectura cache-aside: acierto devuelve el snapshot, fallo consulta la
// base y repuebla.
func (uc *StockQueryUseCase) CurrentStock(ctx context.Context, productID string, store entity.Store) (*entity.StockLevel, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	if !store.Valid() {
		return nil, &domain.ValidationError{Field: "store", Reason: "tienda desconocida"}
	}

	if uc.cache != nil {
		if level, ok := uc.cache.Get(ctx, productID, store); ok {
			return level, nil
		}
	}

	level, err := uc.stockRepo.Get(productID, store)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, level)
	}
	return level, nil
}

// AllStock niveles de un producto en todas las tiendas.
func (uc *StockQueryUseCase) AllStock(ctx context.Context, productID string) ([]*entity.StockLevel, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	return uc.stockRepo.ListByProduct(productID)
}

// StockedStores tiendas donde el producto figura: la tienda principal lista
// todo el catálogo activo; el depósito solo productos con alguna
// transferencia entrante registrada. No se guarda membresía en el producto,
// se deriva del historial de transferencias.
func (uc *StockQueryUseCase) StockedStores(ctx context.Context, productID string) ([]entity.Store, error) {
	if productID == "" {
		return nil, &domain.ValidationError{Field: "product_id", Reason: "obligatorio"}
	}
	stores := []entity.Store{entity.StorePrimary}
	inbound, err := uc.transferRepo.HasInbound(productID, entity.StoreSecondary)
	if err != nil {
		return nil, err
	}
	if inbound {
		stores = append(stores, entity.StoreSecondary)
	}
	return stores, nil
}
