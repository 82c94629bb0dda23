package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de línea de venta: por unidad suelta o por paquete cerrado.
const (
	SaleTypeUnit    = "unit"
	SaleTypePackage = "package"
)

// Método de pago "fiado": venta a crédito ligada a un cliente con fecha de vencimiento.
const PaymentMethodCredit = "fiado"

// Sale cabecera de una venta. Se persiste en la misma transacción que los
// débitos de stock y los movimientos por ítem: o se confirma todo o nada.
type Sale struct {
	ID             string
	CustomerID     *string
	UserID         string
	TotalAmount    decimal.Decimal // subtotal antes del descuento
	DiscountAmount decimal.Decimal
	PaymentMethod  string
	CreditDueDate  *time.Time // solo ventas fiadas
	CreatedAt      time.Time
}

// SaleItem línea de venta. Quantity cuenta paquetes cuando SaleType es
// "package" y unidades sueltas cuando es "unit".
type SaleItem struct {
	ID           string
	SaleID       string
	ProductID    string
	Quantity     int64
	UnitPrice    decimal.Decimal
	SaleType     string
	PackageUnits int // unidades por paquete al momento de la venta
}

// Subtotal importe de la línea.
func (i *SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}
