package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer cliente de la tienda. Los campos de insight (compras, gasto, última
// compra) se recalculan después de cada venta confirmada; este core solo
// dispara el recálculo, no depende del resultado.
type Customer struct {
	ID             string
	Name           string
	Phone          string
	PurchaseCount  int64
	TotalSpent     decimal.Decimal
	LastPurchaseAt *time.Time
	CreatedAt      time.Time
}
