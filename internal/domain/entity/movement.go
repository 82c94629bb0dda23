package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeSale                = "sale"                 // venta (salida)
	MovementTypeInitialStock        = "initial_stock"        // stock inicial (entrada)
	MovementTypeAdjustment          = "inventory_adjustment" // ajuste manual (cualquier signo)
	MovementTypeReturn              = "return"               // devolución ligada a una venta (entrada)
	MovementTypeTransferOut         = "stock_transfer_out"   // salida por traslado entre tiendas
	MovementTypeTransferIn          = "stock_transfer_in"    // entrada por traslado entre tiendas
	MovementTypePersonalConsumption = "personal_consumption" // consumo propio (salida)
	MovementTypeCreditSale          = "credit_sale"          // venta fiada (salida, con crédito)
)

// Movement es un registro inmutable de un cambio de stock y su causa.
// Se crea una vez y nunca se modifica ni se borra. Por cada (producto, tienda)
// la secuencia ordenada forma una cadena: PreviousQuantity de la entrada i
// es igual a NewQuantity de la entrada i-1.
// Invariante: NewQuantity == PreviousQuantity + QuantityChange.
type Movement struct {
	ID               string
	ProductID        string
	Store            Store
	Type             string
	PackageChange    int64 // delta de paquetes, con signo
	UnitsLooseChange int64 // delta de unidades sueltas, con signo
	QuantityChange   int64 // delta escalar en unidades (paquetes * tamaño + sueltas)
	PreviousQuantity int64 // total en unidades antes del cambio
	NewQuantity      int64 // total en unidades después del cambio
	Reason           string
	Metadata         json.RawMessage
	UserID           string
	CustomerID       *string
	SaleID           *string
	CreditAmount     *decimal.Decimal // solo para credit_sale
	CreditDueDate    *time.Time       // solo para credit_sale
	CreatedAt        time.Time
}
