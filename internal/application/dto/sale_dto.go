package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea del carrito. UnitPrice en cero toma el precio vigente
// del producto (unitario o de paquete según SaleType).
type SaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SaleType  string          `json:"sale_type"` // unit | package
}

// CreateSaleRequest body para POST /api/sales. PaymentMethod "fiado" exige
// CustomerID y CreditDueDate.
type CreateSaleRequest struct {
	Items          []SaleItemRequest `json:"items"`
	CustomerID     string            `json:"customer_id,omitempty"`
	PaymentMethod  string            `json:"payment_method"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	CreditDueDate  *time.Time        `json:"credit_due_date,omitempty"`
}

// SaleItemResponse línea registrada.
type SaleItemResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SaleType     string          `json:"sale_type"`
	PackageUnits int             `json:"package_units"`
}

// SaleResponse venta confirmada con sus movimientos de stock.
type SaleResponse struct {
	ID             string              `json:"id"`
	CustomerID     *string             `json:"customer_id,omitempty"`
	UserID         string              `json:"user_id"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	PaymentMethod  string              `json:"payment_method"`
	CreditDueDate  *time.Time          `json:"credit_due_date,omitempty"`
	Items          []*SaleItemResponse `json:"items"`
	Movements      []*MovementResponse `json:"movements"`
	CreatedAt      time.Time           `json:"created_at"`
}
