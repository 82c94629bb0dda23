package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest body para POST /api/products. Sin campos de stock:
// el stock inicial se registra con un movimiento initial_stock.
type CreateProductRequest struct {
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Barcode        string          `json:"barcode,omitempty"`
	PackageBarcode string          `json:"package_barcode,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	PackageSize    int             `json:"package_size"`
	PackagePrice   decimal.Decimal `json:"package_price"`
}

// UpdateProductRequest body para PUT /api/products/:id (campos opcionales).
type UpdateProductRequest struct {
	Name           *string          `json:"name,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Barcode        *string          `json:"barcode,omitempty"`
	PackageBarcode *string          `json:"package_barcode,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	CostPrice      *decimal.Decimal `json:"cost_price,omitempty"`
	PackageSize    *int             `json:"package_size,omitempty"`
	PackagePrice   *decimal.Decimal `json:"package_price,omitempty"`
}

// StockLevelDTO stock de una tienda en el contrato de salida.
type StockLevelDTO struct {
	Store      int   `json:"store"`
	Packages   int64 `json:"packages"`
	UnitsLoose int64 `json:"units_loose"`
}

// ProductResponse producto con márgenes derivados y stock por tienda.
type ProductResponse struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Barcode        string          `json:"barcode,omitempty"`
	PackageBarcode string          `json:"package_barcode,omitempty"`
	Price          decimal.Decimal `json:"price"`
	CostPrice      decimal.Decimal `json:"cost_price"`
	MarginPercent  decimal.Decimal `json:"margin_percent"`
	PackageSize    int             `json:"package_size"`
	PackagePrice   decimal.Decimal `json:"package_price"`
	PackageMargin  decimal.Decimal `json:"package_margin"`
	Stocks         []StockLevelDTO `json:"stocks,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy      *string         `json:"deleted_by,omitempty"`
}

// ProductListResponse listado paginado.
type ProductListResponse struct {
	Items  []*ProductResponse `json:"items"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

// ProductUsageResponse agregado de uso histórico, para decidir si un borrado
// es de bajo riesgo. Nunca bloquea el borrado por sí mismo.
type ProductUsageResponse struct {
	ProductID      string          `json:"product_id"`
	SalesCount     int64           `json:"sales_count"`
	MovementsCount int64           `json:"movements_count"`
	Stocks         []StockLevelDTO `json:"stocks"`
}
