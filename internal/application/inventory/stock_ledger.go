package inventory

import (
	"time"

	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// applyDelta aplica (packageDelta, unitDelta) a la fila del libro de stock.
// Es el único camino de escritura sobre stock_levels: bloquea la fila
// (SELECT FOR UPDATE), rechaza con InsufficientStockError si algún campo
// quedaría negativo y confirma los nuevos valores en un solo paso.
// Devuelve la fila antes y después del cambio.
func applyDelta(
	stockRepo repository.StockRepository,
	productID string,
	store entity.Store,
	packageDelta, unitDelta int64,
	now time.Time,
) (before, after *entity.StockLevel, err error) {
	current, err := stockRepo.GetForUpdate(productID, store)
	if err != nil {
		return nil, nil, err
	}

	newPackages := current.Packages + packageDelta
	newUnits := current.UnitsLoose + unitDelta
	if newPackages < 0 {
		return nil, nil, &domain.InsufficientStockError{
			ProductID: productID,
			Kind:      domain.StockKindPackages,
			Available: current.Packages,
			Requested: -packageDelta,
		}
	}
	if newUnits < 0 {
		return nil, nil, &domain.InsufficientStockError{
			ProductID: productID,
			Kind:      domain.StockKindUnitsLoose,
			Available: current.UnitsLoose,
			Requested: -unitDelta,
		}
	}

	before = &entity.StockLevel{
		ProductID:  current.ProductID,
		Store:      current.Store,
		Packages:   current.Packages,
		UnitsLoose: current.UnitsLoose,
		UpdatedAt:  current.UpdatedAt,
	}
	after = &entity.StockLevel{
		ProductID:  productID,
		Store:      store,
		Packages:   newPackages,
		UnitsLoose: newUnits,
		UpdatedAt:  now,
	}
	if err := stockRepo.Upsert(after); err != nil {
		return nil, nil, err
	}
	return before, after, nil
}

// checkAvailable verifica disponibilidad sobre una fila ya bloqueada sin
// escribir nada. Lo usan las operaciones que validan todos los ítems antes
// de mutar el primero (checkout, traslados).
func checkAvailable(current *entity.StockLevel, packages, unitsLoose int64) error {
	if packages > current.Packages {
		return &domain.InsufficientStockError{
			ProductID: current.ProductID,
			Kind:      domain.StockKindPackages,
			Available: current.Packages,
			Requested: packages,
		}
	}
	if unitsLoose > current.UnitsLoose {
		return &domain.InsufficientStockError{
			ProductID: current.ProductID,
			Kind:      domain.StockKindUnitsLoose,
			Available: current.UnitsLoose,
			Requested: unitsLoose,
		}
	}
	return nil
}
