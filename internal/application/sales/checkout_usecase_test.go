package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/adega-api/internal/application/sales"
	"github.com/jhoicas/adega-api/internal/domain"
	"github.com/jhoicas/adega-api/internal/domain/entity"
)

// TestRecordSale_DebitaYRegistraEnUnaOperacion venta de 2 unidades sueltas
// sobre 25 totales (3 paquetes de 6 + 7 sueltas): el stock queda en 23 y la
// venta, sus líneas y el movimiento salen juntos.
func TestRecordSale_DebitaYRegistraEnUnaOperacion(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 3, 7)

	result, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	require.NoError(t, err)
	assert.True(t, result.Sale.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, result.Items, 1)
	require.Len(t, result.Movements, 1)

	mov := result.Movements[0]
	assert.Equal(t, entity.MovementTypeSale, mov.Type)
	assert.Equal(t, int64(25), mov.PreviousQuantity)
	assert.Equal(t, int64(23), mov.NewQuantity)
	require.NotNil(t, mov.SaleID)
	assert.Equal(t, result.Sale.ID, *mov.SaleID)

	level, _ := f.runner.stockRepo.Get("p1", entity.StorePrimary)
	assert.Equal(t, int64(3), level.Packages)
	assert.Equal(t, int64(5), level.UnitsLoose)

	require.Len(t, f.audit.events, 1)
	assert.Equal(t, entity.AuditActionSale, f.audit.events[0].Action)
}

// TestRecordSale_FalloEnSegundaLineaNoDejaNada si la segunda línea no tiene
// stock, la venta completa aborta: ni cabecera, ni líneas, ni movimientos,
// ni débito de la primera línea.
func TestRecordSale_FalloEnSegundaLineaNoDejaNada(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50), vino("p2", 80)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 0, 10)
	f.runner.stockRepo.seed("p2", entity.StorePrimary, 0, 1)

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
			{ProductID: "p2", Quantity: 3, UnitPrice: decimal.NewFromInt(80), SaleType: entity.SaleTypeUnit},
		},
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	require.Error(t, err)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "p2", insufficient.ProductID)
	assert.Equal(t, int64(1), insufficient.Available)
	assert.Equal(t, int64(3), insufficient.Requested)

	p1, _ := f.runner.stockRepo.Get("p1", entity.StorePrimary)
	assert.Equal(t, int64(10), p1.UnitsLoose, "la primera línea no debe haberse debitado")
	assert.Empty(t, f.runner.saleRepo.sales)
	assert.Empty(t, f.runner.movRepo.movements)
	assert.Empty(t, f.audit.events)
}

// TestRecordSale_LineasDelMismoProductoSeSuman dos líneas del mismo producto
// se validan por su requerimiento agregado, no una por una.
func TestRecordSale_LineasDelMismoProductoSeSuman(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 0, 5)

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(45), SaleType: entity.SaleTypeUnit},
		},
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	require.Error(t, err, "3 + 3 unidades con 5 disponibles debe fallar aunque cada línea quepa sola")
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(6), insufficient.Requested)
}

// TestRecordSale_PaqueteDebitaPaquetes una línea package descuenta paquetes
// cerrados, no unidades sueltas.
func TestRecordSale_PaqueteDebitaPaquetes(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 4, 2)

	result, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(270), SaleType: entity.SaleTypePackage},
		},
		UserID:        "u1",
		PaymentMethod: "card",
	})

	require.NoError(t, err)
	level, _ := f.runner.stockRepo.Get("p1", entity.StorePrimary)
	assert.Equal(t, int64(2), level.Packages)
	assert.Equal(t, int64(2), level.UnitsLoose, "las sueltas no se tocan")
	assert.Equal(t, int64(-12), result.Movements[0].QuantityChange, "2 paquetes de 6 = 12 unidades")
}

// TestRecordSale_FiadoGeneraMovimientosDeCredito pago fiado: movimientos
// credit_sale con cliente, monto por línea y vencimiento, y recálculo de
// insights del cliente tras el commit.
func TestRecordSale_FiadoGeneraMovimientosDeCredito(t *testing.T) {
	customer := &entity.Customer{ID: "c1", Name: "Doña Marta"}
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)}, customer)
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 0, 10)
	due := time.Now().AddDate(0, 1, 0)

	result, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		CustomerID:    "c1",
		UserID:        "u1",
		PaymentMethod: entity.PaymentMethodCredit,
		CreditDueDate: &due,
	})

	require.NoError(t, err)
	mov := result.Movements[0]
	assert.Equal(t, entity.MovementTypeCreditSale, mov.Type)
	require.NotNil(t, mov.CustomerID)
	assert.Equal(t, "c1", *mov.CustomerID)
	require.NotNil(t, mov.CreditAmount)
	assert.True(t, mov.CreditAmount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, mov.CreditDueDate)
	assert.Equal(t, []string{"c1"}, f.insights.recalculated)
}

// TestRecordSale_FiadoProrrateaElDescuento con descuento, el crédito de cada
// línea es su parte proporcional del total neto: la deuda registrada suma
// exactamente lo que el cliente debe, no el total bruto.
func TestRecordSale_FiadoProrrateaElDescuento(t *testing.T) {
	customer := &entity.Customer{ID: "c1", Name: "Doña Marta"}
	f := newCheckoutFixture([]*entity.Product{vino("p1", 20), vino("p2", 40)}, customer)
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 0, 10)
	f.runner.stockRepo.seed("p2", entity.StorePrimary, 0, 10)
	due := time.Now().AddDate(0, 1, 0)

	result, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 3, UnitPrice: decimal.NewFromInt(20), SaleType: entity.SaleTypeUnit},
			{ProductID: "p2", Quantity: 1, UnitPrice: decimal.NewFromInt(40), SaleType: entity.SaleTypeUnit},
		},
		CustomerID:     "c1",
		UserID:         "u1",
		PaymentMethod:  entity.PaymentMethodCredit,
		CreditDueDate:  &due,
		DiscountAmount: decimal.NewFromInt(10),
	})

	require.NoError(t, err)
	require.Len(t, result.Movements, 2)

	// Subtotales 60 y 40 sobre un neto de 90: 54 y 36.
	first, second := result.Movements[0], result.Movements[1]
	require.NotNil(t, first.CreditAmount)
	require.NotNil(t, second.CreditAmount)
	assert.True(t, first.CreditAmount.Equal(decimal.NewFromInt(54)), "crédito p1 = %s", first.CreditAmount)
	assert.True(t, second.CreditAmount.Equal(decimal.NewFromInt(36)), "crédito p2 = %s", second.CreditAmount)

	net := result.Sale.TotalAmount.Sub(result.Sale.DiscountAmount)
	sum := first.CreditAmount.Add(*second.CreditAmount)
	assert.True(t, sum.Equal(net), "la deuda por líneas suma el total neto de la venta")
}

// TestRecordSale_BorradoConcurrenteAbortaLaVenta un soft delete confirmado
// entre la resolución de líneas y la transacción aborta la venta entera.
func TestRecordSale_BorradoConcurrenteAbortaLaVenta(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 0, 10)
	f.runner.beforeFn = func() {
		require.NoError(t, f.runner.productRepo.SoftDelete("p1", "u2"))
	}

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 2, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.runner.saleRepo.sales)
	assert.Empty(t, f.runner.movRepo.movements)
	level, _ := f.runner.stockRepo.Get("p1", entity.StorePrimary)
	assert.Equal(t, int64(10), level.UnitsLoose, "el aborto no debe debitar stock")
}

// TestRecordSale_ValidaEntrada reglas de entrada del checkout.
func TestRecordSale_ValidaEntrada(t *testing.T) {
	due := time.Now().AddDate(0, 1, 0)
	item := sales.SaleItemInput{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit}

	cases := []struct {
		name string
		in   sales.SaleInput
	}{
		{"sin líneas", sales.SaleInput{UserID: "u1", PaymentMethod: "cash"}},
		{"cantidad cero", sales.SaleInput{
			Items:  []sales.SaleItemInput{{ProductID: "p1", UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit}},
			UserID: "u1", PaymentMethod: "cash"}},
		{"tipo de línea desconocido", sales.SaleInput{
			Items:  []sales.SaleItemInput{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(50), SaleType: "caja"}},
			UserID: "u1", PaymentMethod: "cash"}},
		{"fiado sin cliente", sales.SaleInput{
			Items: []sales.SaleItemInput{item}, UserID: "u1",
			PaymentMethod: entity.PaymentMethodCredit, CreditDueDate: &due}},
		{"fiado sin vencimiento", sales.SaleInput{
			Items: []sales.SaleItemInput{item}, UserID: "u1", CustomerID: "c1",
			PaymentMethod: entity.PaymentMethodCredit}},
		{"descuento negativo", sales.SaleInput{
			Items: []sales.SaleItemInput{item}, UserID: "u1", PaymentMethod: "cash",
			DiscountAmount: decimal.NewFromInt(-5)}},
		{"descuento mayor que el total", sales.SaleInput{
			Items: []sales.SaleItemInput{item}, UserID: "u1", PaymentMethod: "cash",
			DiscountAmount: decimal.NewFromInt(500)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture([]*entity.Product{vino("p1", 50)}, &entity.Customer{ID: "c1"})
			f.runner.stockRepo.seed("p1", entity.StorePrimary, 5, 5)

			_, err := f.uc.RecordSale(context.Background(), tc.in)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, f.runner.saleRepo.sales)
		})
	}
}

// TestRecordSale_ClienteInexistente referenciar un cliente que no existe
// falla con NotFound antes de abrir la transacción.
func TestRecordSale_ClienteInexistente(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})
	f.runner.stockRepo.seed("p1", entity.StorePrimary, 5, 5)

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		CustomerID:    "fantasma",
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestRecordSale_SinActor una venta sin usuario identificado se rechaza.
func TestRecordSale_SinActor(t *testing.T) {
	f := newCheckoutFixture([]*entity.Product{vino("p1", 50)})

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		PaymentMethod: "cash",
	})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// TestRecordSale_ProductoEliminado no se venden productos con soft delete.
func TestRecordSale_ProductoEliminado(t *testing.T) {
	deleted := vino("p1", 50)
	now := time.Now()
	deleted.DeletedAt = &now
	f := newCheckoutFixture([]*entity.Product{deleted})

	_, err := f.uc.RecordSale(context.Background(), sales.SaleInput{
		Items: []sales.SaleItemInput{
			{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(50), SaleType: entity.SaleTypeUnit},
		},
		UserID:        "u1",
		PaymentMethod: "cash",
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
