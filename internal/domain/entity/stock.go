package entity

import "time"

// StockLevel es una fila del libro de stock: la cantidad actual de un producto
// en una tienda, partida en paquetes cerrados y unidades sueltas. Es la única
// fuente de verdad de "cuánto hay aquí ahora". Invariante: Packages >= 0 y
// UnitsLoose >= 0 en todo momento.
type StockLevel struct {
	ProductID  string
	Store      Store
	Packages   int64
	UnitsLoose int64
	UpdatedAt  time.Time
}

// TotalUnits devuelve la cantidad escalar en unidades sueltas equivalentes.
func (s *StockLevel) TotalUnits(packageSize int) int64 {
	size := int64(packageSize)
	if size <= 0 {
		size = 1
	}
	return s.Packages*size + s.UnitsLoose
}
