package inventory

import "github.com/shopspring/decimal"

// MaxMarginPercent tope del margen derivado. Divisores cercanos a cero pueden
// producir porcentajes absurdos; todo resultado se recorta a [0, 999].
var MaxMarginPercent = decimal.NewFromInt(999)

var hundred = decimal.NewFromInt(100)

// SafeUnitMargin calcula el margen unitario (Venta - Costo) / Costo * 100.
// Devuelve ok=false si alguno de los dos precios no es estrictamente positivo.
// Sin efectos secundarios; nunca hace panic.
func SafeUnitMargin(salePrice, costPrice decimal.Decimal) (decimal.Decimal, bool) {
	return safeMargin(salePrice, costPrice)
}

// SafePackageMargin calcula el margen del paquete usando como denominador el
// costo total: CostoUnitario * UnidadesPorPaquete.
func SafePackageMargin(packagePrice, costPrice decimal.Decimal, unitsPerPackage int) (decimal.Decimal, bool) {
	if unitsPerPackage <= 0 {
		return decimal.Zero, false
	}
	totalCost := costPrice.Mul(decimal.NewFromInt(int64(unitsPerPackage)))
	return safeMargin(packagePrice, totalCost)
}

func safeMargin(sale, cost decimal.Decimal) (decimal.Decimal, bool) {
	if !sale.IsPositive() || !cost.IsPositive() {
		return decimal.Zero, false
	}
	margin := sale.Sub(cost).Div(cost).Mul(hundred).Round(2)
	if margin.IsNegative() {
		return decimal.Zero, true
	}
	if margin.GreaterThan(MaxMarginPercent) {
		return MaxMarginPercent, true
	}
	return margin, true
}
