package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Margen normal: (100 - 50) / 50 * 100 = 100%.
func TestSafeUnitMargin_CalculoNormal(t *testing.T) {
	m, ok := SafeUnitMargin(dec("100"), dec("50"))
	require.True(t, ok)
	assert.True(t, dec("100").Equal(m), "esperaba 100%%, obtuve %s", m)
}

func TestSafeUnitMargin_Redondeo(t *testing.T) {
	// (100 - 60) / 60 * 100 = 66.67 (redondeado a 2 decimales)
	m, ok := SafeUnitMargin(dec("100"), dec("60"))
	require.True(t, ok)
	assert.True(t, dec("66.67").Equal(m), "esperaba 66.67, obtuve %s", m)
}

// Precio de venta cero o negativo: entrada inválida, sin resultado.
func TestSafeUnitMargin_PrecioInvalido(t *testing.T) {
	_, ok := SafeUnitMargin(decimal.Zero, dec("45"))
	assert.False(t, ok, "precio de venta 0 no debe producir margen")

	_, ok = SafeUnitMargin(dec("-10"), dec("45"))
	assert.False(t, ok)
}

// Costo cero: evita división por cero devolviendo ok=false.
func TestSafeUnitMargin_CostoCero(t *testing.T) {
	_, ok := SafeUnitMargin(dec("100"), decimal.Zero)
	assert.False(t, ok, "costo 0 no debe producir margen")
}

// Margen desproporcionado se recorta al tope de 999.
func TestSafeUnitMargin_RecorteAlTope(t *testing.T) {
	m, ok := SafeUnitMargin(dec("1000000"), dec("0.01"))
	require.True(t, ok)
	assert.True(t, MaxMarginPercent.Equal(m), "esperaba el tope 999, obtuve %s", m)
}

// Venta por debajo del costo: el margen se recorta a 0, no a un negativo.
func TestSafeUnitMargin_MargenNegativoRecortaACero(t *testing.T) {
	m, ok := SafeUnitMargin(dec("40"), dec("50"))
	require.True(t, ok)
	assert.True(t, m.IsZero(), "esperaba 0, obtuve %s", m)
}

// Margen de paquete: costo total = costo unitario * unidades por paquete.
// Paquete a 140, costo 15 * 6 = 90 -> 50 / 90 * 100 = 55.56%.
func TestSafePackageMargin_CalculoNormal(t *testing.T) {
	m, ok := SafePackageMargin(dec("140"), dec("15"), 6)
	require.True(t, ok)
	assert.True(t, dec("55.56").Equal(m), "esperaba 55.56, obtuve %s", m)
}

func TestSafePackageMargin_UnidadesInvalidas(t *testing.T) {
	_, ok := SafePackageMargin(dec("140"), dec("15"), 0)
	assert.False(t, ok, "paquete de 0 unidades no debe producir margen")

	_, ok = SafePackageMargin(dec("140"), dec("15"), -3)
	assert.False(t, ok)
}
