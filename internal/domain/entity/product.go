package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. El stock se maneja por tienda
// en StockLevel y solo se muta vía movimientos; aquí viven identidad, precios
// y los márgenes derivados. Nunca se borra físicamente: el soft delete marca
// DeletedAt/DeletedBy y el historial sigue referenciando al producto.
type Product struct {
	ID             string
	Name           string
	Category       string
	Barcode        string // código de barras de la unidad
	PackageBarcode string // código de barras del paquete/caja
	Price          decimal.Decimal // precio de venta por unidad
	CostPrice      decimal.Decimal // costo por unidad
	MarginPercent  decimal.Decimal // derivado de Price/CostPrice
	PackageSize    int             // unidades por paquete
	PackagePrice   decimal.Decimal // precio de venta del paquete
	PackageMargin  decimal.Decimal // derivado de PackagePrice/CostPrice*PackageSize
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
	DeletedBy      *string
}

// Deleted indica si el producto está marcado como eliminado (soft delete).
func (p *Product) Deleted() bool { return p.DeletedAt != nil }
