package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/adega-api/internal/domain/entity"
	"github.com/jhoicas/adega-api/internal/domain/repository"
)

// TxRunner variante del runner transaccional para el checkout: pasa también
// el repositorio de ventas y el catálogo atados a la misma transacción.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockDebitor contrato que el checkout exige al motor de stock: verificar y
// debitar líneas de venta dentro de la transacción del caller. Lo implementa
// inventory.RegisterMovementUseCase.
type StockDebitor interface {
	CheckSaleItemInTx(
		stockRepo repository.StockRepository,
		productID string,
		store entity.Store,
		packages, unitsLoose int64,
	) error
	DebitSaleItemInTx(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
		product *entity.Product,
		store entity.Store,
		packages, unitsLoose int64,
		userID, saleID, customerID string,
		creditAmount *decimal.Decimal,
		creditDueDate *time.Time,
		metadata map[string]any,
		now time.Time,
	) (*entity.Movement, error)
	InvalidateStock(ctx context.Context, productID string)
}

// CustomerInsights recálculo de métricas del cliente tras una venta
// confirmada. Se dispara después del commit; un fallo se loguea y no afecta
// la venta.
type CustomerInsights interface {
	Recalculate(ctx context.Context, customerID string) error
}
