package entity

import "time"

// StoreTransfer es el registro inmutable de un traslado de stock entre las dos
// tiendas. Conserva la cantidad total: el origen baja exactamente
// (Packages, UnitsLoose) y el destino sube exactamente lo mismo, de forma
// atómica. La pertenencia de un producto a la tienda secundaria se deriva de
// este log (existe al menos un traslado con destino allí), nunca de un flag.
type StoreTransfer struct {
	ID         string
	ProductID  string
	FromStore  Store
	ToStore    Store
	Packages   int64
	UnitsLoose int64
	UserID     string
	Notes      string
	CreatedAt  time.Time
}
