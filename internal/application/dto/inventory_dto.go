package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Packages/UnitsLoose son magnitudes (>= 0) para todos los tipos salvo
// inventory_adjustment, donde llevan el signo del ajuste.
type RegisterMovementRequest struct {
	ProductID     string           `json:"product_id"`
	Store         int              `json:"store"`
	Type          string           `json:"type"`
	Packages      int64            `json:"packages"`
	UnitsLoose    int64            `json:"units_loose"`
	Reason        string           `json:"reason,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	CustomerID    string           `json:"customer_id,omitempty"`
	SaleID        string           `json:"sale_id,omitempty"`
	CreditAmount  *decimal.Decimal `json:"credit_amount,omitempty"`
	CreditDueDate *time.Time       `json:"credit_due_date,omitempty"`
}

// SetStockAbsoluteRequest body para POST /api/inventory/stock-absolute:
// fija el stock de una tienda a valores absolutos y registra el ajuste.
type SetStockAbsoluteRequest struct {
	ProductID     string `json:"product_id"`
	Store         int    `json:"store"`
	NewPackages   int64  `json:"new_packages"`
	NewUnitsLoose int64  `json:"new_units_loose"`
	Reason        string `json:"reason"`
}

// MovementResponse movimiento en el contrato de salida.
type MovementResponse struct {
	ID               string           `json:"id"`
	ProductID        string           `json:"product_id"`
	Store            int              `json:"store"`
	Type             string           `json:"type"`
	PackageChange    int64            `json:"package_change"`
	UnitsLooseChange int64            `json:"units_loose_change"`
	QuantityChange   int64            `json:"quantity_change"`
	PreviousQuantity int64            `json:"previous_quantity"`
	NewQuantity      int64            `json:"new_quantity"`
	Reason           string           `json:"reason,omitempty"`
	Metadata         json.RawMessage  `json:"metadata,omitempty"`
	UserID           string           `json:"user_id"`
	CustomerID       *string          `json:"customer_id,omitempty"`
	SaleID           *string          `json:"sale_id,omitempty"`
	CreditAmount     *decimal.Decimal `json:"credit_amount,omitempty"`
	CreditDueDate    *time.Time       `json:"credit_due_date,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// MovementListResponse historial filtrable de movimientos.
type MovementListResponse struct {
	Items  []*MovementResponse `json:"items"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}
